package ingest

import (
	"context"
	"fmt"

	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db/models"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/metrics"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/service/quota"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/service/youtube"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Catalog is the remote video platform.
type Catalog interface {
	ChannelSource
	LatestVideoID(ctx context.Context, channelID string) (string, error)
	VideoDetails(ctx context.Context, videoID string) (*youtube.VideoDetails, error)
}

// VideoLookup answers dedup checks against the persisted catalog.
type VideoLookup interface {
	Exists(ctx context.Context, videoID string) (bool, error)
}

// StoreError marks a failure of the persisted store during a fetch.
// Unlike upstream errors it aborts the whole run.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Fetcher turns one channel into at most one new catalog entry.
type Fetcher struct {
	catalog     Catalog
	store       VideoLookup
	cache       *ChannelCache
	maxDuration int
	runID       uuid.UUID
	logger      *zap.Logger

	// claimed holds the ids already returned in this run. Two watch-list entries can
	// name the same channel, and the batch insert rejects repeated keys.
	claimed map[string]struct{}
}

// NewFetcher creates a Fetcher. The cache must be scoped to the same run as runID.
func NewFetcher(catalog Catalog, store VideoLookup, cache *ChannelCache, maxDuration int, runID uuid.UUID, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		catalog:     catalog,
		store:       store,
		cache:       cache,
		maxDuration: maxDuration,
		runID:       runID,
		logger:      logger,
		claimed:     make(map[string]struct{}),
	}
}

// Fetch returns the newest short of channelID if it is new and short enough.
// A nil video comes with the reason it was skipped.
func (f *Fetcher) Fetch(ctx context.Context, channelID string) (*models.Video, string, error) {
	videoID, err := f.catalog.LatestVideoID(ctx, channelID)
	if err != nil {
		return nil, "", err
	}
	if videoID == "" {
		return nil, metrics.SkipNoVideo, nil
	}

	if _, ok := f.claimed[videoID]; ok {
		f.logger.Info("skipping video already collected this run",
			zap.String("channel_id", channelID),
			zap.String("video_id", videoID),
		)
		return nil, metrics.SkipDuplicate, nil
	}

	// Dedup before the detail lookup so known videos cost a single search call.
	exists, err := f.store.Exists(ctx, videoID)
	if err != nil {
		return nil, "", &StoreError{Op: "check video exists", Err: err}
	}
	if exists {
		f.logger.Info("skipping existing video",
			zap.String("channel_id", channelID),
			zap.String("video_id", videoID),
		)
		return nil, metrics.SkipDuplicate, nil
	}

	details, err := f.catalog.VideoDetails(ctx, videoID)
	if err != nil {
		return nil, "", err
	}
	if details == nil {
		return nil, metrics.SkipGone, nil
	}

	seconds, err := youtube.ParseVideoDuration(details.DurationRaw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: video %s: %v", youtube.ErrMalformedResponse, videoID, err)
	}
	if seconds > f.maxDuration {
		f.logger.Debug("video too long",
			zap.String("video_id", videoID),
			zap.Int("duration_seconds", seconds),
		)
		return nil, metrics.SkipTooLong, nil
	}

	// The owner id from the detail response is authoritative.
	channel, err := f.cache.Get(ctx, details.ChannelID)
	if err != nil {
		return nil, "", err
	}

	f.claimed[videoID] = struct{}{}

	return &models.Video{
		VideoID:         videoID,
		ChannelID:       details.ChannelID,
		Title:           details.Title,
		ThumbnailURL:    details.ThumbnailURL,
		DurationRaw:     details.DurationRaw,
		DurationSeconds: seconds,
		CreatorUsername: channel.Title,
		CreatorAvatar:   channel.AvatarURL,
		IsVerified:      channel.IsVerified,
		Likes:           details.Likes,
		Comments:        details.Comments,
		IsAI:            true,
		RunID:           f.runID,
	}, "", nil
}

// MeterCatalog wraps catalog so every remote call, successful or not, is charged to meter.
func MeterCatalog(catalog Catalog, meter *quota.Meter) Catalog {
	return &meteredCatalog{Catalog: catalog, meter: meter}
}

type meteredCatalog struct {
	Catalog
	meter *quota.Meter
}

func (c *meteredCatalog) LatestVideoID(ctx context.Context, channelID string) (string, error) {
	c.meter.Record(quota.EndpointSearch)
	return c.Catalog.LatestVideoID(ctx, channelID)
}

func (c *meteredCatalog) VideoDetails(ctx context.Context, videoID string) (*youtube.VideoDetails, error) {
	c.meter.Record(quota.EndpointVideos)
	return c.Catalog.VideoDetails(ctx, videoID)
}

func (c *meteredCatalog) ChannelDetails(ctx context.Context, channelID string) (*youtube.ChannelDetails, error) {
	c.meter.Record(quota.EndpointChannels)
	return c.Catalog.ChannelDetails(ctx, channelID)
}
