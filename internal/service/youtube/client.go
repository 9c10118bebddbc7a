// Package youtube is the read-only client for the YouTube Data API v3 used by the ingestion job.
package youtube

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// ErrMalformedResponse is returned when the API answered but a field the job depends on is missing.
var ErrMalformedResponse = errors.New("malformed youtube response")

// ErrChannelNotFound is returned when a channel id does not resolve.
var ErrChannelNotFound = errors.New("channel not found")

// longUploadsEligible is the only channel signal the API exposes that tracks verification.
// It marks channels allowed to upload long videos, which needs phone verification,
// so it approximates a verified badge rather than reporting one.
const longUploadsEligible = "eligible"

// VideoDetails is the projection of videos.list the catalog needs.
type VideoDetails struct {
	VideoID      string
	Title        string
	ThumbnailURL string
	DurationRaw  string
	ChannelID    string
	Likes        int64
	Comments     int64
}

// ChannelDetails is the projection of channels.list the catalog needs.
type ChannelDetails struct {
	ChannelID  string
	Title      string
	AvatarURL  string
	IsVerified bool
}

// Client wraps the YouTube Data API v3 client
type Client struct {
	service *youtube.Service
}

// NewClient creates a new YouTube API client. Extra options are appended after the API key,
// which lets callers point the client at another endpoint or HTTP client.
func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{service: service}, nil
}

// LatestVideoID returns the id of the most recent short video uploaded by channelID.
// It returns "" and no error when the channel has no qualifying video.
func (c *Client) LatestVideoID(ctx context.Context, channelID string) (string, error) {
	response, err := c.service.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		Order("date").
		MaxResults(1).
		Type("video").
		VideoDuration("short").
		Fields("items(id(videoId))").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("search latest video for channel %s: %w", channelID, err)
	}

	if len(response.Items) == 0 {
		return "", nil
	}

	item := response.Items[0]
	if item.Id == nil || item.Id.VideoId == "" {
		return "", fmt.Errorf("%w: search result for channel %s has no video id", ErrMalformedResponse, channelID)
	}

	return item.Id.VideoId, nil
}

// VideoDetails fetches the title, thumbnail, duration, owner and counters of a video.
// It returns nil and no error when the id no longer resolves.
func (c *Client) VideoDetails(ctx context.Context, videoID string) (*VideoDetails, error) {
	response, err := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Fields("items(snippet(title,thumbnails/high,channelId),contentDetails/duration,statistics)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("fetch video %s: %w", videoID, err)
	}

	if len(response.Items) == 0 {
		return nil, nil
	}

	return mapVideo(videoID, response.Items[0])
}

// ChannelDetails fetches the display name, avatar and verification approximation of a channel.
func (c *Client) ChannelDetails(ctx context.Context, channelID string) (*ChannelDetails, error) {
	response, err := c.service.Channels.List([]string{"snippet", "status"}).
		Id(channelID).
		Fields("items(snippet(title,thumbnails/high/url),status)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}

	if len(response.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}

	return mapChannel(channelID, response.Items[0])
}

func mapVideo(videoID string, video *youtube.Video) (*VideoDetails, error) {
	snippet := video.Snippet
	if snippet == nil || snippet.ChannelId == "" {
		return nil, fmt.Errorf("%w: video %s has no snippet", ErrMalformedResponse, videoID)
	}
	if snippet.Thumbnails == nil || snippet.Thumbnails.High == nil || snippet.Thumbnails.High.Url == "" {
		return nil, fmt.Errorf("%w: video %s has no high thumbnail", ErrMalformedResponse, videoID)
	}
	if video.ContentDetails == nil || video.ContentDetails.Duration == "" {
		return nil, fmt.Errorf("%w: video %s has no duration", ErrMalformedResponse, videoID)
	}

	details := &VideoDetails{
		VideoID:      videoID,
		Title:        snippet.Title,
		ThumbnailURL: snippet.Thumbnails.High.Url,
		DurationRaw:  video.ContentDetails.Duration,
		ChannelID:    snippet.ChannelId,
	}

	// Hidden counters are simply absent, they default to zero.
	if video.Statistics != nil {
		details.Likes = int64(video.Statistics.LikeCount)
		details.Comments = int64(video.Statistics.CommentCount)
	}

	return details, nil
}

func mapChannel(channelID string, channel *youtube.Channel) (*ChannelDetails, error) {
	snippet := channel.Snippet
	if snippet == nil {
		return nil, fmt.Errorf("%w: channel %s has no snippet", ErrMalformedResponse, channelID)
	}
	if snippet.Thumbnails == nil || snippet.Thumbnails.High == nil {
		return nil, fmt.Errorf("%w: channel %s has no avatar", ErrMalformedResponse, channelID)
	}

	return &ChannelDetails{
		ChannelID:  channelID,
		Title:      snippet.Title,
		AvatarURL:  snippet.Thumbnails.High.Url,
		IsVerified: channel.Status != nil && channel.Status.LongUploadsStatus == longUploadsEligible,
	}, nil
}
