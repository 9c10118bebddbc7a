package ingest

import (
	"context"

	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/service/youtube"
)

// ChannelSource resolves channel metadata from the remote catalog.
type ChannelSource interface {
	ChannelDetails(ctx context.Context, channelID string) (*youtube.ChannelDetails, error)
}

// ChannelCache memoizes channel metadata for the lifetime of one run.
// Failed lookups are not cached. Not safe for concurrent use.
type ChannelCache struct {
	source  ChannelSource
	entries map[string]*youtube.ChannelDetails
}

// NewChannelCache creates an empty cache in front of source.
func NewChannelCache(source ChannelSource) *ChannelCache {
	return &ChannelCache{
		source:  source,
		entries: make(map[string]*youtube.ChannelDetails),
	}
}

// Get returns the metadata of channelID, calling the source only on a miss.
func (c *ChannelCache) Get(ctx context.Context, channelID string) (*youtube.ChannelDetails, error) {
	if details, ok := c.entries[channelID]; ok {
		return details, nil
	}

	details, err := c.source.ChannelDetails(ctx, channelID)
	if err != nil {
		return nil, err
	}

	c.entries[channelID] = details
	return details, nil
}

// Len returns the number of cached channels.
func (c *ChannelCache) Len() int {
	return len(c.entries)
}
