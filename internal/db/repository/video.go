// Package repository implements the catalog store on PostgreSQL.
package repository

import (
	"context"
	"time"

	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VideoRepository defines operations on the write-once video catalog.
type VideoRepository interface {
	// Exists reports whether videoID is already in the catalog.
	Exists(ctx context.Context, videoID string) (bool, error)

	// CountSince counts videos ingested at or after since.
	CountSince(ctx context.Context, since time.Time) (int, error)

	// InsertBatch writes all videos in one transaction. Every row gets the same ingested_at.
	InsertBatch(ctx context.Context, videos []*models.Video) error

	// GetVideoByID retrieves a single video by ID.
	GetVideoByID(ctx context.Context, videoID string) (*models.Video, error)
}

type videoRepository struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a new VideoRepository.
func NewVideoRepository(pool *pgxpool.Pool) VideoRepository {
	return &videoRepository{pool: pool}
}

const insertVideoQuery = `
	INSERT INTO videos (
		video_id, channel_id, title, thumbnail_url, duration_raw, duration_seconds,
		creator_username, creator_avatar, is_verified, likes, comments, is_ai, run_id
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING ingested_at
`

func (r *videoRepository) Exists(ctx context.Context, videoID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM videos WHERE video_id = $1)`, videoID).Scan(&exists)
	if err != nil {
		return false, db.WrapError(err, "check video exists")
	}
	return exists, nil
}

func (r *videoRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM videos WHERE ingested_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, db.WrapError(err, "count videos since")
	}
	return count, nil
}

func (r *videoRepository) InsertBatch(ctx context.Context, videos []*models.Video) error {
	if len(videos) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.WrapError(err, "begin insert batch")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	// now() is fixed for the whole transaction, so the batch shares one ingestion instant.
	batch := &pgx.Batch{}
	for _, v := range videos {
		batch.Queue(insertVideoQuery,
			v.VideoID,
			v.ChannelID,
			v.Title,
			v.ThumbnailURL,
			v.DurationRaw,
			v.DurationSeconds,
			v.CreatorUsername,
			v.CreatorAvatar,
			v.IsVerified,
			v.Likes,
			v.Comments,
			v.IsAI,
			v.RunID,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for _, v := range videos {
		if err := results.QueryRow().Scan(&v.IngestedAt); err != nil {
			results.Close()
			return db.WrapError(err, "insert video "+v.VideoID)
		}
	}
	if err := results.Close(); err != nil {
		return db.WrapError(err, "close insert batch")
	}

	if err := tx.Commit(ctx); err != nil {
		return db.WrapError(err, "commit insert batch")
	}

	return nil
}

func (r *videoRepository) GetVideoByID(ctx context.Context, videoID string) (*models.Video, error) {
	query := `
		SELECT video_id, channel_id, title, thumbnail_url, duration_raw, duration_seconds,
		       creator_username, creator_avatar, is_verified, likes, comments, is_ai, run_id, ingested_at
		FROM videos
		WHERE video_id = $1
	`

	video := &models.Video{}
	err := r.pool.QueryRow(ctx, query, videoID).Scan(
		&video.VideoID,
		&video.ChannelID,
		&video.Title,
		&video.ThumbnailURL,
		&video.DurationRaw,
		&video.DurationSeconds,
		&video.CreatorUsername,
		&video.CreatorAvatar,
		&video.IsVerified,
		&video.Likes,
		&video.Comments,
		&video.IsAI,
		&video.RunID,
		&video.IngestedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "get video by id")
	}

	return video, nil
}
