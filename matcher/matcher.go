// Package matcher decides whether a video corresponds to an entry of the
// campaign's target-sound list.
package matcher

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/trackwatch/campaign-scraper/model"
)

// Matcher applies a priority-ordered cascade of four strategies, in
// decreasing order of confidence:
//
//  1. extracted sound identifier, exact
//  2. embedded music identifier, exact
//  3. title + artist, case-insensitive exact
//  4. fuzzy title similarity above a threshold
//
// The first satisfied strategy wins. When several target entries satisfy the
// same strategy, the first-listed entry wins, so results are deterministic
// for a fixed target list ordering.
type Matcher struct {
	targets   []model.TargetSound
	byID      map[string]int
	threshold float64
}

// New builds a matcher over the campaign's target list. Entries carrying
// neither a sound identifier nor a title are skipped and logged; they can
// never match anything.
func New(targets []model.TargetSound, threshold float64) *Matcher {
	m := &Matcher{
		byID:      make(map[string]int),
		threshold: threshold,
	}
	for _, tgt := range targets {
		if tgt.SoundID == "" && tgt.Song == "" {
			log.Warn().Str("artist", tgt.Artist).Str("source_url", tgt.SourceURL).
				Msg("Skipping malformed target entry without identifier or title")
			continue
		}
		idx := len(m.targets)
		m.targets = append(m.targets, tgt)
		if tgt.SoundID != "" {
			if _, dup := m.byID[tgt.SoundID]; !dup {
				m.byID[tgt.SoundID] = idx
			}
		}
	}
	return m
}

// Targets returns the usable target entries, in list order.
func (m *Matcher) Targets() []model.TargetSound {
	return m.targets
}

// Match runs the cascade for one video. The boolean is false when no
// strategy is satisfied; such videos are counted as scanned-but-unmatched by
// the caller.
func (m *Matcher) Match(v model.Video) (model.MatchResult, bool) {
	if v.ExtractedSoundID != "" {
		if idx, ok := m.byID[v.ExtractedSoundID]; ok {
			return m.result(v, idx, model.StrategyExtractedID), true
		}
	}

	// An embedded identifier exactly equal to a target's identifier cannot
	// be noise, so the lookup is not gated on the identifier's shape.
	if v.EmbeddedMusicID != "" {
		if idx, ok := m.byID[v.EmbeddedMusicID]; ok {
			return m.result(v, idx, model.StrategyEmbeddedID), true
		}
	}

	if v.Song != "" && v.Artist != "" {
		for idx, tgt := range m.targets {
			if strings.EqualFold(strings.TrimSpace(v.Song), strings.TrimSpace(tgt.Song)) &&
				strings.EqualFold(strings.TrimSpace(v.Artist), strings.TrimSpace(tgt.Artist)) {
				return m.result(v, idx, model.StrategyTitleArtist), true
			}
		}
	}

	if title := titleSignal(v); title != "" {
		for idx, tgt := range m.targets {
			if tgt.Song == "" {
				continue
			}
			if TitleSimilarity(title, tgt.Song) >= m.threshold {
				return m.result(v, idx, model.StrategyFuzzyTitle), true
			}
		}
	}

	return model.MatchResult{}, false
}

func (m *Matcher) result(v model.Video, idx int, strategy model.Strategy) model.MatchResult {
	return model.MatchResult{Video: v, Target: m.targets[idx], Strategy: strategy}
}

// titleSignal picks the best available title for fuzzy matching: the one
// extracted from the video page beats the listing metadata.
func titleSignal(v model.Video) string {
	if v.ExtractedTitle != "" {
		return v.ExtractedTitle
	}
	return v.Song
}
