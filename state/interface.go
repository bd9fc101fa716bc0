// Package state persists per-account cache snapshots between runs so the
// collector can compute the delta of videos not yet processed.
package state

import (
	"time"

	"github.com/trackwatch/campaign-scraper/model"
)

// CacheEntry is one account's persisted snapshot: every video identifier seen
// in prior runs together with its last-known metadata.
type CacheEntry struct {
	Handle    string                 `json:"handle"`
	Platform  string                 `json:"platform"`
	Videos    map[string]model.Video `json:"videos"`
	LastRunID string                 `json:"last_run_id"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// NewCacheEntry returns an empty snapshot for the account.
func NewCacheEntry(handle, platform string) CacheEntry {
	return CacheEntry{
		Handle:   handle,
		Platform: platform,
		Videos:   make(map[string]model.Video),
	}
}

// Store defines the cache contract regardless of the underlying storage
// implementation. Load returns an empty entry when the account has no prior
// snapshot or the stored snapshot is unreadable. Save must replace the prior
// snapshot atomically so a crash mid-write never corrupts it.
//
// The campaign runner guarantees a single writer per account; different
// accounts may be read and written concurrently.
type Store interface {
	Load(handle string) (CacheEntry, error)
	Save(handle string, entry CacheEntry) error
}
