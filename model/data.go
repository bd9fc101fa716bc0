// Package model defines the data types shared across the campaign pipeline.
package model

import "time"

// Video is one short-form video collected for a tracked account. Engagement
// fields default to zero when the source omits them. ExtractedSoundID and
// ExtractedTitle are filled in by the extractor after collection; everything
// else is immutable once the record passes validation.
type Video struct {
	ID               string    `json:"id"`
	AccountHandle    string    `json:"account_handle"`
	URL              string    `json:"url"`
	UploadedAt       time.Time `json:"uploaded_at"`
	Views            int64     `json:"views"`
	Likes            int64     `json:"likes"`
	Comments         int64     `json:"comments"`
	Shares           int64     `json:"shares"`
	Caption          string    `json:"caption,omitempty"`
	Song             string    `json:"song,omitempty"`
	Artist           string    `json:"artist,omitempty"`
	EmbeddedMusicID  string    `json:"embedded_music_id,omitempty"`
	ExtractedSoundID string    `json:"extracted_sound_id,omitempty"`
	ExtractedTitle   string    `json:"extracted_title,omitempty"`
	EngagementRate   float64   `json:"engagement_rate"`
}

// ComputeEngagementRate derives (likes+comments+shares)/views for the video.
// A video with zero views gets rate zero, never a division error.
func (v *Video) ComputeEngagementRate() {
	if v.Views <= 0 {
		v.EngagementRate = 0
		return
	}
	v.EngagementRate = float64(v.Likes+v.Comments+v.Shares) / float64(v.Views)
}

// MetricsEqual reports whether the engagement counters of two snapshots of
// the same video are identical. Used by the collector to decide whether a
// cached video needs re-processing.
func (v *Video) MetricsEqual(other Video) bool {
	return v.Views == other.Views &&
		v.Likes == other.Likes &&
		v.Comments == other.Comments &&
		v.Shares == other.Shares
}

// TargetSound is one entry of a campaign's target list. SoundID may be empty
// when the campaign sheet only carries a title/artist pair.
type TargetSound struct {
	SoundID   string `json:"sound_id,omitempty"`
	Song      string `json:"song"`
	Artist    string `json:"artist"`
	SourceURL string `json:"source_url,omitempty"`
}

// Strategy identifies which matching strategy produced a match, in decreasing
// order of confidence.
type Strategy int

const (
	StrategyExtractedID Strategy = iota + 1
	StrategyEmbeddedID
	StrategyTitleArtist
	StrategyFuzzyTitle
)

func (s Strategy) String() string {
	switch s {
	case StrategyExtractedID:
		return "extracted_id"
	case StrategyEmbeddedID:
		return "embedded_id"
	case StrategyTitleArtist:
		return "title_artist"
	case StrategyFuzzyTitle:
		return "fuzzy_title"
	default:
		return "unknown"
	}
}

// MatchResult ties a video to the target entry it was attributed to. Produced
// at most once per video and never mutated afterwards.
type MatchResult struct {
	Video    Video       `json:"video"`
	Target   TargetSound `json:"target"`
	Strategy Strategy    `json:"strategy"`
}

// SoundStats aggregates all matched videos of one target sound.
type SoundStats struct {
	Target            TargetSound `json:"target"`
	Uses              int         `json:"uses"`
	TotalViews        int64       `json:"total_views"`
	TotalLikes        int64       `json:"total_likes"`
	TotalComments     int64       `json:"total_comments"`
	TotalShares       int64       `json:"total_shares"`
	AvgEngagementRate float64     `json:"avg_engagement_rate"`
	Videos            []Video     `json:"videos"`
}

// AccountFailure records one account that could not be processed, with the
// reason surfaced in the run summary.
type AccountFailure struct {
	Handle string `json:"handle"`
	Reason string `json:"reason"`
}

// RunSummary carries the campaign-level counters a human needs to judge data
// completeness after a run.
type RunSummary struct {
	RunID             string           `json:"run_id"`
	AccountsAttempted int              `json:"accounts_attempted"`
	AccountsSucceeded int              `json:"accounts_succeeded"`
	AccountsFailed    int              `json:"accounts_failed"`
	FailedAccounts    []AccountFailure `json:"failed_accounts,omitempty"`
	VideosScanned     int              `json:"videos_scanned"`
	VideosMatched     int              `json:"videos_matched"`
	VideosUnresolved  int              `json:"videos_unresolved"`
	VideosQuarantined int              `json:"videos_quarantined"`
	StartedAt         time.Time        `json:"started_at"`
	Duration          time.Duration    `json:"duration"`
}

// CampaignResult is the full output of one campaign run, handed to the
// report layer.
type CampaignResult struct {
	Summary RunSummary    `json:"summary"`
	Matches []MatchResult `json:"matches"`
}
