package client

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/trackwatch/campaign-scraper/model"
)

// Script element IDs of the hydration JSON on TikTok web pages.
const (
	sigiStateScriptID     = "SIGI_STATE"
	universalDataScriptID = "__UNIVERSAL_DATA_FOR_REHYDRATION__"
)

type sigiState struct {
	ItemModule map[string]sigiItem `json:"ItemModule"`
}

type sigiItem struct {
	ID         string    `json:"id"`
	Desc       string    `json:"desc"`
	CreateTime string    `json:"createTime"`
	Author     string    `json:"author"`
	Music      musicInfo `json:"music"`
	Stats      sigiStats `json:"stats"`
}

type musicInfo struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	AuthorName string `json:"authorName"`
}

type sigiStats struct {
	PlayCount    int64 `json:"playCount"`
	DiggCount    int64 `json:"diggCount"`
	CommentCount int64 `json:"commentCount"`
	ShareCount   int64 `json:"shareCount"`
}

type videoDetail struct {
	ItemInfo struct {
		ItemStruct struct {
			Music musicInfo `json:"music"`
		} `json:"itemStruct"`
	} `json:"itemInfo"`
}

// parseProfileDocument extracts the account's videos from the SIGI_STATE
// hydration blob of a profile page.
func parseProfileDocument(doc *goquery.Document, handle string) ([]model.Video, error) {
	raw := doc.Find("script#" + sigiStateScriptID).First().Text()
	if raw == "" {
		return nil, fmt.Errorf("no %s script in page", sigiStateScriptID)
	}

	var state sigiState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", sigiStateScriptID, err)
	}
	if len(state.ItemModule) == 0 {
		return nil, fmt.Errorf("empty item module for @%s", handle)
	}

	videos := make([]model.Video, 0, len(state.ItemModule))
	for id, item := range state.ItemModule {
		if item.ID == "" {
			item.ID = id
		}
		videos = append(videos, itemToVideo(item, handle))
	}
	return videos, nil
}

func itemToVideo(item sigiItem, handle string) model.Video {
	var uploaded time.Time
	if ts, err := strconv.ParseInt(item.CreateTime, 10, 64); err == nil && ts > 0 {
		uploaded = time.Unix(ts, 0).UTC()
	} else if item.CreateTime != "" {
		log.Warn().Str("video_id", item.ID).Str("create_time", item.CreateTime).Msg("Unparsable upload timestamp")
	}

	owner := item.Author
	if owner == "" {
		owner = handle
	}

	return model.Video{
		ID:              item.ID,
		AccountHandle:   owner,
		URL:             fmt.Sprintf("%s/@%s/video/%s", tiktokBaseURL, owner, item.ID),
		UploadedAt:      uploaded,
		Views:           item.Stats.PlayCount,
		Likes:           item.Stats.DiggCount,
		Comments:        item.Stats.CommentCount,
		Shares:          item.Stats.ShareCount,
		Caption:         item.Desc,
		Song:            item.Music.Title,
		Artist:          item.Music.AuthorName,
		EmbeddedMusicID: item.Music.ID,
	}
}

// parseVideoDocument extracts the music object from a video detail page. A
// non-numeric sound ID is discarded but the title is kept, since the title
// still feeds the lower-priority matching strategies.
func parseVideoDocument(doc *goquery.Document) (VideoPage, error) {
	raw := doc.Find("script#" + universalDataScriptID).First().Text()
	if raw == "" {
		return VideoPage{}, fmt.Errorf("no %s script in page", universalDataScriptID)
	}

	var envelope struct {
		DefaultScope map[string]json.RawMessage `json:"__DEFAULT_SCOPE__"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return VideoPage{}, fmt.Errorf("decode %s: %w", universalDataScriptID, err)
	}

	rawDetail, ok := envelope.DefaultScope["webapp.video-detail"]
	if !ok {
		return VideoPage{}, fmt.Errorf("no video detail scope in page")
	}

	var detail videoDetail
	if err := json.Unmarshal(rawDetail, &detail); err != nil {
		return VideoPage{}, fmt.Errorf("decode video detail: %w", err)
	}

	music := detail.ItemInfo.ItemStruct.Music
	page := VideoPage{SongTitle: music.Title}
	if music.ID != "" && isDigits(music.ID) {
		page.SoundID = music.ID
	} else if music.ID != "" {
		log.Warn().Str("sound_id", music.ID).Msg("Discarding non-numeric sound ID")
	}
	return page, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
