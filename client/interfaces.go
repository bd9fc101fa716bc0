// Package client provides access to the external video-platform metadata
// source: per-account video listings and per-video detail pages.
package client

import (
	"context"

	"github.com/trackwatch/campaign-scraper/model"
)

// VideoPage is the product of one video detail page fetch.
type VideoPage struct {
	// SoundID is the platform's canonical identifier for the video's audio
	// track. Empty when the page carried no usable music object.
	SoundID string

	// SongTitle is the track title as shown on the page, if present.
	SongTitle string
}

// Client represents a metadata source for one video platform
type Client interface {
	// ListVideos retrieves an account's videos, newest first, up to limit
	ListVideos(ctx context.Context, handle string, limit int) ([]model.Video, error)

	// FetchVideoPage retrieves a video's detail page and extracts the
	// authoritative sound identifier
	FetchVideoPage(ctx context.Context, videoURL string) (VideoPage, error)

	// Platform returns the platform name ("tiktok")
	Platform() string
}
