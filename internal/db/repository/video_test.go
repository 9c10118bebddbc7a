//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db/models"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVideo(videoID string, runID uuid.UUID) *models.Video {
	return &models.Video{
		VideoID:         videoID,
		ChannelID:       "UC123",
		Title:           "Test Short " + videoID,
		ThumbnailURL:    "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg",
		DurationRaw:     "PT45S",
		DurationSeconds: 45,
		CreatorUsername: "Test Channel",
		CreatorAvatar:   "https://yt3.ggpht.com/avatar",
		IsVerified:      true,
		Likes:           12,
		Comments:        3,
		IsAI:            true,
		RunID:           runID,
	}
}

func TestVideoRepository_InsertBatch(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewVideoRepository(td.Pool)
	ctx := context.Background()

	t.Run("all videos share one ingestion instant", func(t *testing.T) {
		td.TruncateTables(t)

		runID := uuid.New()
		videos := []*models.Video{newTestVideo("vid1", runID), newTestVideo("vid2", runID), newTestVideo("vid3", runID)}

		require.NoError(t, repo.InsertBatch(ctx, videos))

		assert.False(t, videos[0].IngestedAt.IsZero())
		assert.True(t, videos[0].IngestedAt.Equal(videos[1].IngestedAt))
		assert.True(t, videos[1].IngestedAt.Equal(videos[2].IngestedAt))

		stored, err := repo.GetVideoByID(ctx, "vid2")
		require.NoError(t, err)
		assert.Equal(t, "Test Short vid2", stored.Title)
		assert.Equal(t, 45, stored.DurationSeconds)
		assert.True(t, stored.IsAI)
		assert.Equal(t, runID, stored.RunID)
	})

	t.Run("duplicate id rolls back the whole batch", func(t *testing.T) {
		td.TruncateTables(t)

		runID := uuid.New()
		require.NoError(t, repo.InsertBatch(ctx, []*models.Video{newTestVideo("existing", runID)}))

		err := repo.InsertBatch(ctx, []*models.Video{newTestVideo("fresh", runID), newTestVideo("existing", runID)})
		require.Error(t, err)
		assert.True(t, db.IsDuplicateKey(err))

		exists, err := repo.Exists(ctx, "fresh")
		require.NoError(t, err)
		assert.False(t, exists, "partial batch must not be visible")
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		td.TruncateTables(t)
		require.NoError(t, repo.InsertBatch(ctx, nil))
	})

	t.Run("stored videos cannot be updated", func(t *testing.T) {
		td.TruncateTables(t)
		require.NoError(t, repo.InsertBatch(ctx, []*models.Video{newTestVideo("locked", uuid.New())}))

		_, err := td.Pool.Exec(ctx, `UPDATE videos SET title = 'changed' WHERE video_id = 'locked'`)
		require.Error(t, err)
		wrapped := db.WrapError(err, "update video")
		assert.True(t, db.IsImmutableRecord(wrapped))
		assert.Contains(t, wrapped.Error(), "video_id=locked")

		stored, err := repo.GetVideoByID(ctx, "locked")
		require.NoError(t, err)
		assert.NotEqual(t, "changed", stored.Title)
	})
}

func TestVideoRepository_Exists(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewVideoRepository(td.Pool)
	ctx := context.Background()
	td.TruncateTables(t)

	td.SeedVideo(t, "seen", time.Now())

	exists, err := repo.Exists(ctx, "seen")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "unseen")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestVideoRepository_CountSince(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewVideoRepository(td.Pool)
	ctx := context.Background()
	td.TruncateTables(t)

	dayStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	td.SeedVideo(t, "yesterday", dayStart.Add(-time.Minute))
	td.SeedVideo(t, "midnight", dayStart)
	td.SeedVideo(t, "morning", dayStart.Add(10*time.Hour))

	count, err := repo.CountSince(ctx, dayStart)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVideoRepository_GetVideoByID_NotFound(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewVideoRepository(td.Pool)
	td.TruncateTables(t)

	_, err := repo.GetVideoByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, db.IsNotFound(err))
}
