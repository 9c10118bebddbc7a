// Package ingest runs the daily shorts ingestion: gate, fetch each watched channel, commit the batch.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db/models"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/metrics"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/service/quota"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/service/youtube"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Gate decides whether a run may proceed.
type Gate interface {
	ShouldRun() bool
	RemainingToday(ctx context.Context) (int, error)
}

// VideoStore is the write side of the persisted catalog.
type VideoStore interface {
	VideoLookup
	InsertBatch(ctx context.Context, videos []*models.Video) error
}

// RunLog receives the append-only execution and error entries.
type RunLog interface {
	AppendExecution(ctx context.Context, entry *models.ExecutionLog) error
	AppendError(ctx context.Context, entry *models.ErrorLog) error
}

// Publisher announces committed videos to downstream consumers.
type Publisher interface {
	PublishVideos(ctx context.Context, runID uuid.UUID, videos []*models.Video) error
}

// Config holds the run parameters.
type Config struct {
	Channels           []string
	RequestDelay       time.Duration
	MaxDurationSeconds int
}

// Dependencies are the collaborators of the Orchestrator. Publisher may be nil.
type Dependencies struct {
	Gate      Gate
	Catalog   Catalog
	Store     VideoStore
	RunLog    RunLog
	Publisher Publisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Orchestrator executes ingestion runs. Runs are sequential and must not overlap.
type Orchestrator struct {
	deps Dependencies
	cfg  Config
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(deps Dependencies, cfg Config) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(prometheus.NewRegistry())
	}
	return &Orchestrator{deps: deps, cfg: cfg}
}

// Run executes one ingestion run. It never panics; run-level failures are written to the
// error log and returned in the Result.
func (o *Orchestrator) Run(ctx context.Context) (result Result) {
	result = Result{RunID: uuid.New(), StartedAt: time.Now()}
	logger := o.deps.Logger.With(zap.String("run_id", result.RunID.String()))

	defer func() {
		if p := recover(); p != nil {
			result = o.fail(ctx, logger, result, fmt.Errorf("run panicked: %v", p), string(debug.Stack()))
		}
		result.FinishedAt = time.Now()
		o.deps.Metrics.RunsTotal.WithLabelValues(string(result.Status)).Inc()
	}()

	if !o.deps.Gate.ShouldRun() {
		logger.Info("not the scheduled time, skipping run")
		result.Status = StatusOutsideWindow
		return result
	}

	remaining, err := o.deps.Gate.RemainingToday(ctx)
	if err != nil {
		return o.failWithStack(ctx, logger, result, pkgerrors.Wrap(err, "check daily limit"))
	}
	if remaining == 0 {
		logger.Info("daily limit reached, skipping run")
		result.Status = StatusDailyLimitReached
		return result
	}

	meter := quota.NewMeter()
	defer o.recordQuota(meter)

	videos, err := o.collect(ctx, logger, result.RunID, meter, remaining)
	result.QuotaSpent = meter.Total()
	if err != nil {
		return o.failWithStack(ctx, logger, result, err)
	}

	result.VideoCount = len(videos)
	result.QuotaUsed = quota.Calculate(len(videos))

	if len(videos) > 0 {
		if err := o.deps.Store.InsertBatch(ctx, videos); err != nil {
			return o.failWithStack(ctx, logger, result, pkgerrors.Wrap(err, "save videos"))
		}
		o.deps.Metrics.VideosIngested.Add(float64(len(videos)))

		logger.Info("added videos",
			zap.Int("video_count", result.VideoCount),
			zap.Int("quota_used", result.QuotaUsed),
			zap.Int("quota_spent", result.QuotaSpent),
		)

		o.publish(ctx, logger, result.RunID, videos)
	} else {
		logger.Info("no new videos found today", zap.Int("quota_spent", result.QuotaSpent))
	}

	entry := models.NewExecutionLog(result.RunID, result.VideoCount, result.QuotaUsed)
	if err := o.deps.RunLog.AppendExecution(ctx, entry); err != nil {
		return o.failWithStack(ctx, logger, result, pkgerrors.Wrap(err, "log execution"))
	}

	result.Status = StatusCompleted
	o.deps.Metrics.RunDuration.Observe(time.Since(result.StartedAt).Seconds())
	o.deps.Metrics.LastSuccessfulAt.SetToCurrentTime()
	return result
}

// collect walks the watch-list in order and returns at most limit new videos.
// Upstream failures skip the channel; store failures and cancellation abort.
func (o *Orchestrator) collect(ctx context.Context, logger *zap.Logger, runID uuid.UUID, meter *quota.Meter, limit int) ([]*models.Video, error) {
	catalog := MeterCatalog(o.deps.Catalog, meter)
	fetcher := NewFetcher(catalog, o.deps.Store, NewChannelCache(catalog), o.cfg.MaxDurationSeconds, runID, logger)

	var videos []*models.Video
	for _, channelID := range o.cfg.Channels {
		if len(videos) >= limit {
			logger.Info("daily limit reached mid-run, stopping", zap.Int("limit", limit))
			break
		}

		if err := sleep(ctx, o.cfg.RequestDelay); err != nil {
			return nil, pkgerrors.Wrap(err, "wait before next channel")
		}

		video, skip, err := fetcher.Fetch(ctx, channelID)
		if err != nil {
			var storeErr *StoreError
			if errors.As(err, &storeErr) {
				return nil, pkgerrors.Wrap(err, "fetch channel "+channelID)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, pkgerrors.Wrap(ctxErr, "fetch channel "+channelID)
			}

			reason := metrics.SkipUpstream
			if errors.Is(err, youtube.ErrMalformedResponse) {
				reason = metrics.SkipMalformed
			}
			o.deps.Metrics.ChannelsSkipped.WithLabelValues(reason).Inc()
			logger.Warn("channel fetch failed, skipping",
				zap.String("channel_id", channelID),
				zap.Error(err),
			)
			continue
		}

		if video == nil {
			o.deps.Metrics.ChannelsSkipped.WithLabelValues(skip).Inc()
			continue
		}

		videos = append(videos, video)
	}

	return videos, nil
}

func (o *Orchestrator) publish(ctx context.Context, logger *zap.Logger, runID uuid.UUID, videos []*models.Video) {
	if o.deps.Publisher == nil {
		return
	}
	// The batch is already committed; a lost notification is not a run failure.
	if err := o.deps.Publisher.PublishVideos(ctx, runID, videos); err != nil {
		logger.Warn("failed to publish ingested videos", zap.Error(err))
	}
}

func (o *Orchestrator) recordQuota(meter *quota.Meter) {
	for endpoint, units := range meter.Endpoints() {
		o.deps.Metrics.QuotaUnits.WithLabelValues(endpoint).Add(float64(units))
	}
}

// failWithStack fails the run, using the stack recorded by pkg/errors when present.
func (o *Orchestrator) failWithStack(ctx context.Context, logger *zap.Logger, result Result, err error) Result {
	return o.fail(ctx, logger, result, err, fmt.Sprintf("%+v", err))
}

func (o *Orchestrator) fail(ctx context.Context, logger *zap.Logger, result Result, err error, stack string) Result {
	result.Status = StatusFailed
	result.Err = err

	logger.Error("ingestion run failed", zap.Error(err))

	// Write the error entry even when the run's context is already cancelled.
	entry := models.NewErrorLog(result.RunID, err.Error(), stack)
	if logErr := o.deps.RunLog.AppendError(context.WithoutCancel(ctx), entry); logErr != nil {
		logger.Error("failed to write error log", zap.Error(logErr))
	}

	return result
}

// sleep waits the full delay, so every channel gets the same courtesy gap however long
// the previous fetch took.
func sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
