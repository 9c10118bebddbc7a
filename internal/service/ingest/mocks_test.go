package ingest

import (
	"context"

	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db/models"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/service/youtube"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) LatestVideoID(ctx context.Context, channelID string) (string, error) {
	args := m.Called(ctx, channelID)
	return args.String(0), args.Error(1)
}

func (m *mockCatalog) VideoDetails(ctx context.Context, videoID string) (*youtube.VideoDetails, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*youtube.VideoDetails), args.Error(1)
}

func (m *mockCatalog) ChannelDetails(ctx context.Context, channelID string) (*youtube.ChannelDetails, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*youtube.ChannelDetails), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Exists(ctx context.Context, videoID string) (bool, error) {
	args := m.Called(ctx, videoID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) InsertBatch(ctx context.Context, videos []*models.Video) error {
	args := m.Called(ctx, videos)
	return args.Error(0)
}

type mockRunLog struct {
	mock.Mock
}

func (m *mockRunLog) AppendExecution(ctx context.Context, entry *models.ExecutionLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockRunLog) AppendError(ctx context.Context, entry *models.ErrorLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type mockGate struct {
	mock.Mock
}

func (m *mockGate) ShouldRun() bool {
	return m.Called().Bool(0)
}

func (m *mockGate) RemainingToday(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishVideos(ctx context.Context, runID uuid.UUID, videos []*models.Video) error {
	args := m.Called(ctx, runID, videos)
	return args.Error(0)
}

func shortVideo(videoID, channelID, duration string) *youtube.VideoDetails {
	return &youtube.VideoDetails{
		VideoID:      videoID,
		Title:        "Short " + videoID,
		ThumbnailURL: "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg",
		DurationRaw:  duration,
		ChannelID:    channelID,
		Likes:        10,
		Comments:     2,
	}
}

func channelMeta(channelID string) *youtube.ChannelDetails {
	return &youtube.ChannelDetails{
		ChannelID:  channelID,
		Title:      "Creator " + channelID,
		AvatarURL:  "https://yt3.ggpht.com/" + channelID,
		IsVerified: true,
	}
}
