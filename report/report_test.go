package report

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackwatch/campaign-scraper/model"
)

func matchFixture(videoID, handle, soundID string, views, likes int64) model.MatchResult {
	v := model.Video{
		ID:            videoID,
		AccountHandle: handle,
		URL:           "https://www.tiktok.com/@" + handle + "/video/" + videoID,
		UploadedAt:    time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		Views:         views,
		Likes:         likes,
		Comments:      10,
		Shares:        5,
	}
	v.ComputeEngagementRate()
	return model.MatchResult{
		Video:    v,
		Target:   model.TargetSound{SoundID: soundID, Song: "Song " + soundID, Artist: "Artist"},
		Strategy: model.StrategyExtractedID,
	}
}

func TestAggregateBySoundOrdering(t *testing.T) {
	matches := []model.MatchResult{
		matchFixture("v1", "alpha", "100", 1000, 100),
		matchFixture("v2", "beta", "200", 1000, 50),
		matchFixture("v3", "gamma", "100", 1000, 300),
		matchFixture("v4", "delta", "100", 1000, 10),
	}

	stats := AggregateBySound(matches)
	require.Len(t, stats, 2)

	assert.Equal(t, "100", stats[0].Target.SoundID)
	assert.Equal(t, 3, stats[0].Uses)
	assert.Equal(t, int64(3000), stats[0].TotalViews)
	assert.Equal(t, "200", stats[1].Target.SoundID)
	assert.Equal(t, 1, stats[1].Uses)

	// Within a sound, videos come back highest engagement first.
	require.Len(t, stats[0].Videos, 3)
	assert.Equal(t, "v3", stats[0].Videos[0].ID)
	assert.Equal(t, "v1", stats[0].Videos[1].ID)
	assert.Equal(t, "v4", stats[0].Videos[2].ID)
}

func TestAggregateBySoundTiesBreakOnEngagement(t *testing.T) {
	matches := []model.MatchResult{
		matchFixture("v1", "alpha", "100", 1000, 10),
		matchFixture("v2", "beta", "200", 1000, 500),
	}

	stats := AggregateBySound(matches)
	require.Len(t, stats, 2)
	assert.Equal(t, "200", stats[0].Target.SoundID)
	assert.Equal(t, "100", stats[1].Target.SoundID)
}

func TestAggregateBySoundGroupsTitleOnlyTargets(t *testing.T) {
	m1 := matchFixture("v1", "alpha", "", 1000, 10)
	m1.Target = model.TargetSound{Song: "Hold On", Artist: "Fauna"}
	m2 := matchFixture("v2", "beta", "", 1000, 10)
	m2.Target = model.TargetSound{Song: "hold on", Artist: "FAUNA"}

	stats := AggregateBySound([]model.MatchResult{m1, m2})
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].Uses)
}

func TestAggregateBySoundEmptyInput(t *testing.T) {
	assert.Empty(t, AggregateBySound(nil))
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "results.csv")

	result := &model.CampaignResult{
		Matches: []model.MatchResult{
			matchFixture("v1", "alpha", "7012", 1000, 100),
		},
	}
	require.NoError(t, WriteCSV(path, result))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])

	row := rows[1]
	assert.Equal(t, "https://www.tiktok.com/@alpha/video/v1", row[0])
	assert.Equal(t, "@alpha", row[1])
	assert.Equal(t, "Song 7012", row[2])
	assert.Equal(t, "1000", row[4])
	assert.Equal(t, "100", row[5])
	assert.Equal(t, "2026-05-10", row[8])
	assert.Equal(t, "0.1150", row[9])
	assert.Equal(t, "7012", row[10])
	assert.Equal(t, "extracted_id", row[11])
}

func TestWriteCSVFallsBackToExtractedSoundID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.csv")

	m := matchFixture("v1", "alpha", "", 1000, 100)
	m.Target = model.TargetSound{Song: "Hold On", Artist: "Fauna"}
	m.Video.ExtractedSoundID = "9955"
	m.Strategy = model.StrategyFuzzyTitle

	require.NoError(t, WriteCSV(path, &model.CampaignResult{Matches: []model.MatchResult{m}}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "9955", rows[1][10])
	assert.Equal(t, "fuzzy_title", rows[1][11])
}

func TestWriteCSVPropagatesFileErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.csv")
	require.NoError(t, os.Mkdir(path, 0o755))

	err := WriteCSV(path, &model.CampaignResult{})
	require.Error(t, err)
}

func TestSnapshotStoreSaveRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")
	store, err := OpenSnapshotStore(path)
	require.NoError(t, err)
	defer store.Close()

	result := &model.CampaignResult{
		Summary: model.RunSummary{
			RunID:             "20260510120000",
			AccountsAttempted: 3,
			AccountsSucceeded: 2,
			AccountsFailed:    1,
			VideosScanned:     10,
			VideosMatched:     2,
			StartedAt:         time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
			Duration:          90 * time.Second,
		},
		Matches: []model.MatchResult{
			matchFixture("v1", "alpha", "7012", 1000, 100),
			matchFixture("v2", "beta", "7012", 2000, 50),
		},
	}

	id, err := store.SaveRun(context.Background(), result)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var runID string
	var durationMS int64
	row := store.db.QueryRow(`SELECT run_id, duration_ms FROM runs WHERE id = ?`, id)
	require.NoError(t, row.Scan(&runID, &durationMS))
	assert.Equal(t, "20260510120000", runID)
	assert.Equal(t, int64(90000), durationMS)

	var videos int
	row = store.db.QueryRow(`SELECT COUNT(*) FROM matched_videos WHERE snapshot_id = ?`, id)
	require.NoError(t, row.Scan(&videos))
	assert.Equal(t, 2, videos)
}

func TestSnapshotStoreReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")

	store, err := OpenSnapshotStore(path)
	require.NoError(t, err)
	result := &model.CampaignResult{Summary: model.RunSummary{RunID: "run-a", StartedAt: time.Now()}}
	_, err = store.SaveRun(context.Background(), result)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = OpenSnapshotStore(path)
	require.NoError(t, err)
	defer store.Close()
	result.Summary.RunID = "run-b"
	_, err = store.SaveRun(context.Background(), result)
	require.NoError(t, err)

	var runs int
	row := store.db.QueryRow(`SELECT COUNT(*) FROM runs`)
	require.NoError(t, row.Scan(&runs))
	assert.Equal(t, 2, runs)
}
