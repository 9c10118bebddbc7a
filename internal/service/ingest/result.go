package ingest

import (
	"time"

	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/metrics"

	"github.com/google/uuid"
)

// Status is the outcome of one run.
type Status string

// Run outcomes.
const (
	StatusCompleted         Status = metrics.StatusCompleted
	StatusOutsideWindow     Status = metrics.StatusOutsideWindow
	StatusDailyLimitReached Status = metrics.StatusDailyLimit
	StatusFailed            Status = metrics.StatusFailed
)

// Result reports what a run did. Err is set only when Status is StatusFailed.
type Result struct {
	RunID      uuid.UUID
	Status     Status
	VideoCount int
	// QuotaUsed is the documented charge, VideoCount × 102.
	QuotaUsed int
	// QuotaSpent is what the run's calls actually cost, skipped channels included.
	QuotaSpent int
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Failed reports whether the run ended in a run-level error.
func (r Result) Failed() bool {
	return r.Status == StatusFailed
}

// Duration returns how long the run took.
func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
