// Package metrics holds the prometheus collectors of the ingestion job.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcome labels.
const (
	StatusCompleted     = "completed"
	StatusOutsideWindow = "outside_window"
	StatusDailyLimit    = "daily_limit"
	StatusFailed        = "failed"
)

// Channel skip reasons.
const (
	SkipNoVideo   = "no_video"
	SkipDuplicate = "duplicate"
	SkipGone      = "gone"
	SkipTooLong   = "too_long"
	SkipUpstream  = "upstream_error"
	SkipMalformed = "malformed"
)

// Metrics groups the collectors. Build one per registry with New.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	VideosIngested   prometheus.Counter
	ChannelsSkipped  *prometheus.CounterVec
	QuotaUnits       *prometheus.CounterVec
	LastSuccessfulAt prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shorts_ingestion_runs_total",
				Help: "Ingestion runs, by outcome.",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shorts_ingestion_run_duration_seconds",
				Help:    "Wall-clock duration of runs that passed the gate.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
			},
		),
		VideosIngested: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "shorts_ingestion_videos_total",
				Help: "Videos committed to the catalog.",
			},
		),
		ChannelsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shorts_ingestion_channels_skipped_total",
				Help: "Channels that produced no video in a run, by reason.",
			},
			[]string{"reason"},
		),
		QuotaUnits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shorts_ingestion_youtube_quota_units_total",
				Help: "YouTube Data API units spent, by endpoint.",
			},
			[]string{"endpoint"},
		),
		LastSuccessfulAt: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "shorts_ingestion_last_success_timestamp_seconds",
				Help: "Unix time of the last completed run.",
			},
		),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.VideosIngested,
		m.ChannelsSkipped,
		m.QuotaUnits,
		m.LastSuccessfulAt,
	)

	return m
}
