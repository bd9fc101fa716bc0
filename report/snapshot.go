package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/trackwatch/campaign-scraper/model"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id                 TEXT PRIMARY KEY,
    run_id             TEXT NOT NULL,
    started_at         TEXT NOT NULL,
    duration_ms        INTEGER NOT NULL,
    accounts_attempted INTEGER NOT NULL,
    accounts_succeeded INTEGER NOT NULL,
    accounts_failed    INTEGER NOT NULL,
    videos_scanned     INTEGER NOT NULL,
    videos_matched     INTEGER NOT NULL,
    videos_unresolved  INTEGER NOT NULL,
    videos_quarantined INTEGER NOT NULL,
    created_at         TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS matched_videos (
    snapshot_id     TEXT NOT NULL REFERENCES runs(id),
    video_id        TEXT NOT NULL,
    account_handle  TEXT NOT NULL,
    url             TEXT NOT NULL,
    uploaded_at     TEXT NOT NULL,
    views           INTEGER NOT NULL,
    likes           INTEGER NOT NULL,
    comments        INTEGER NOT NULL,
    shares          INTEGER NOT NULL,
    engagement_rate REAL NOT NULL,
    sound_id        TEXT NOT NULL,
    song            TEXT NOT NULL,
    artist          TEXT NOT NULL,
    strategy        TEXT NOT NULL,
    PRIMARY KEY (snapshot_id, video_id)
);
CREATE INDEX IF NOT EXISTS idx_matched_videos_sound ON matched_videos(sound_id);
`

// SnapshotStore persists run summaries and matched videos to a local SQLite
// database so runs can be compared over time.
type SnapshotStore struct {
	db *sql.DB
}

// OpenSnapshotStore opens (or creates) the snapshot database at path and
// ensures the schema exists.
func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	// modernc.org/sqlite serializes access through a single connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init snapshot schema: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// SaveRun writes one campaign result as a new snapshot and returns the
// snapshot ID. The run row and its matched videos commit atomically.
func (s *SnapshotStore) SaveRun(ctx context.Context, result *model.CampaignResult) (string, error) {
	snapshotID := uuid.NewString()
	sum := result.Summary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, run_id, started_at, duration_ms,
			accounts_attempted, accounts_succeeded, accounts_failed,
			videos_scanned, videos_matched, videos_unresolved, videos_quarantined,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snapshotID, sum.RunID, sum.StartedAt.UTC().Format(time.RFC3339),
		sum.Duration.Milliseconds(),
		sum.AccountsAttempted, sum.AccountsSucceeded, sum.AccountsFailed,
		sum.VideosScanned, sum.VideosMatched, sum.VideosUnresolved, sum.VideosQuarantined,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert run row: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO matched_videos (
			snapshot_id, video_id, account_handle, url, uploaded_at,
			views, likes, comments, shares, engagement_rate,
			sound_id, song, artist, strategy
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare video insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range result.Matches {
		soundID := m.Target.SoundID
		if soundID == "" {
			soundID = m.Video.ExtractedSoundID
		}
		_, err := stmt.ExecContext(ctx,
			snapshotID, m.Video.ID, m.Video.AccountHandle, m.Video.URL,
			m.Video.UploadedAt.UTC().Format(time.RFC3339),
			m.Video.Views, m.Video.Likes, m.Video.Comments, m.Video.Shares,
			m.Video.EngagementRate,
			soundID, targetSong(m), m.Target.Artist, m.Strategy.String(),
		)
		if err != nil {
			return "", fmt.Errorf("insert matched video %s: %w", m.Video.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit snapshot: %w", err)
	}

	log.Info().
		Str("snapshotId", snapshotID).
		Str("runId", sum.RunID).
		Int("videos", len(result.Matches)).
		Msg("Saved run snapshot")
	return snapshotID, nil
}
