// Package report renders campaign results: per-sound aggregates, the
// matched-video CSV, and an optional SQLite run snapshot.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/trackwatch/campaign-scraper/model"
)

// AggregateBySound groups the matched videos by target entry and computes
// per-sound totals. Sounds are ordered by use count, then average engagement
// rate, both descending; each sound's videos are ordered by engagement rate
// descending. Ordering is deterministic for identical inputs.
func AggregateBySound(matches []model.MatchResult) []model.SoundStats {
	index := make(map[string]int)
	var stats []model.SoundStats

	for _, m := range matches {
		key := targetKey(m.Target)
		i, ok := index[key]
		if !ok {
			i = len(stats)
			index[key] = i
			stats = append(stats, model.SoundStats{Target: m.Target})
		}
		s := &stats[i]
		s.Uses++
		s.TotalViews += m.Video.Views
		s.TotalLikes += m.Video.Likes
		s.TotalComments += m.Video.Comments
		s.TotalShares += m.Video.Shares
		s.Videos = append(s.Videos, m.Video)
	}

	for i := range stats {
		s := &stats[i]
		var sum float64
		for _, v := range s.Videos {
			sum += v.EngagementRate
		}
		if s.Uses > 0 {
			s.AvgEngagementRate = sum / float64(s.Uses)
		}
		sort.SliceStable(s.Videos, func(a, b int) bool {
			return s.Videos[a].EngagementRate > s.Videos[b].EngagementRate
		})
	}

	sort.SliceStable(stats, func(a, b int) bool {
		if stats[a].Uses != stats[b].Uses {
			return stats[a].Uses > stats[b].Uses
		}
		return stats[a].AvgEngagementRate > stats[b].AvgEngagementRate
	})
	return stats
}

func targetKey(t model.TargetSound) string {
	if t.SoundID != "" {
		return "id:" + t.SoundID
	}
	return "title:" + strings.ToLower(strings.TrimSpace(t.Song)) + " - " + strings.ToLower(strings.TrimSpace(t.Artist))
}

var csvHeader = []string{
	"url", "account", "song", "artist", "views", "likes", "comments", "shares",
	"uploaded_at", "engagement_rate", "sound_id", "strategy",
}

// WriteCSV writes the matched videos to path, creating parent directories as
// needed.
func WriteCSV(path string, result *model.CampaignResult) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := writeRows(w, result); err != nil {
		f.Close()
		return err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush report: %w", err)
	}
	// A short write on a full disk can surface only at close.
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}

	log.Info().Str("file", path).Int("videos", len(result.Matches)).Msg("Wrote matched-video report")
	return nil
}

func writeRows(w *csv.Writer, result *model.CampaignResult) error {
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, m := range result.Matches {
		soundID := m.Target.SoundID
		if soundID == "" {
			soundID = m.Video.ExtractedSoundID
		}
		row := []string{
			m.Video.URL,
			"@" + m.Video.AccountHandle,
			targetSong(m),
			m.Target.Artist,
			strconv.FormatInt(m.Video.Views, 10),
			strconv.FormatInt(m.Video.Likes, 10),
			strconv.FormatInt(m.Video.Comments, 10),
			strconv.FormatInt(m.Video.Shares, 10),
			m.Video.UploadedAt.Format("2006-01-02"),
			strconv.FormatFloat(m.Video.EngagementRate, 'f', 4, 64),
			soundID,
			m.Strategy.String(),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}

func targetSong(m model.MatchResult) string {
	if m.Target.Song != "" {
		return m.Target.Song
	}
	return m.Video.Song
}
