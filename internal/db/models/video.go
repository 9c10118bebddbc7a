package models

import (
	"time"

	"github.com/google/uuid"
)

// Video is one short-form video committed to the catalog.
// Creator fields are a snapshot of the channel at ingestion time and are never refreshed.
type Video struct {
	VideoID         string    `db:"video_id" json:"videoId"`
	ChannelID       string    `db:"channel_id" json:"channelId"`
	Title           string    `db:"title" json:"title"`
	ThumbnailURL    string    `db:"thumbnail_url" json:"thumbnail"`
	DurationRaw     string    `db:"duration_raw" json:"duration"`
	DurationSeconds int       `db:"duration_seconds" json:"durationSeconds"`
	CreatorUsername string    `db:"creator_username" json:"creatorUsername"`
	CreatorAvatar   string    `db:"creator_avatar" json:"creatorAvatar"`
	IsVerified      bool      `db:"is_verified" json:"isVerified"`
	Likes           int64     `db:"likes" json:"likes"`
	Comments        int64     `db:"comments" json:"comments"`
	IsAI            bool      `db:"is_ai" json:"isAI"`
	RunID           uuid.UUID `db:"run_id" json:"runId"`
	IngestedAt      time.Time `db:"ingested_at" json:"timestamp"`
}
