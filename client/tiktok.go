package client

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/trackwatch/campaign-scraper/model"
)

const tiktokBaseURL = "https://www.tiktok.com"

// TikTokClient implements Client against the TikTok web pages. Profile pages
// and video detail pages both embed a hydration JSON blob that carries the
// metadata this pipeline needs; no authenticated API access is required.
type TikTokClient struct {
	http      *http.Client
	userAgent string
}

// NewTikTokClient wires an HTTP client with the given per-request timeout.
// The user agent should look like a browser or TikTok serves a bot page.
func NewTikTokClient(timeout time.Duration, userAgent string) *TikTokClient {
	return &TikTokClient{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Platform implements Client
func (c *TikTokClient) Platform() string {
	return "tiktok"
}

// ListVideos fetches the account's profile page and returns its videos,
// newest first, up to limit.
func (c *TikTokClient) ListVideos(ctx context.Context, handle string, limit int) ([]model.Video, error) {
	profileURL := fmt.Sprintf("%s/@%s", tiktokBaseURL, handle)

	doc, err := c.fetchDocument(ctx, "list_videos", handle, profileURL)
	if err != nil {
		return nil, err
	}

	videos, err := parseProfileDocument(doc, handle)
	if err != nil {
		return nil, Transient("list_videos", handle, "profile page missing video data", err)
	}

	sort.Slice(videos, func(i, j int) bool {
		return videos[i].UploadedAt.After(videos[j].UploadedAt)
	})
	if limit > 0 && len(videos) > limit {
		videos = videos[:limit]
	}

	log.Debug().Str("handle", handle).Int("count", len(videos)).Msg("Listed profile videos")
	return videos, nil
}

// FetchVideoPage fetches the video's detail page and extracts the sound
// identifier and title from its hydration JSON.
func (c *TikTokClient) FetchVideoPage(ctx context.Context, videoURL string) (VideoPage, error) {
	doc, err := c.fetchDocument(ctx, "fetch_video_page", videoURL, videoURL)
	if err != nil {
		return VideoPage{}, err
	}

	page, err := parseVideoDocument(doc)
	if err != nil {
		return VideoPage{}, Transient("fetch_video_page", videoURL, "video page missing music data", err)
	}
	return page, nil
}

func (c *TikTokClient) fetchDocument(ctx context.Context, op, target, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, Permanent(op, target, "invalid url", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, Transient(op, target, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, Permanent(op, target, "not found", nil)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnavailableForLegalReasons:
		return nil, Permanent(op, target, "private or blocked", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, Transient(op, target, "rate limited", nil)
	case resp.StatusCode >= 500:
		return nil, Transient(op, target, fmt.Sprintf("server error %d", resp.StatusCode), nil)
	default:
		return nil, Transient(op, target, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, Transient(op, target, "unreadable page body", err)
	}
	return doc, nil
}
