package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/trackwatch/campaign-scraper/model"
)

// FileStore keeps one JSON snapshot file per account under a root directory.
type FileStore struct {
	root     string
	platform string
}

// NewFileStore creates the cache directory if needed.
func NewFileStore(root, platform string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{root: root, platform: platform}, nil
}

func (s *FileStore) path(handle string) string {
	return filepath.Join(s.root, fmt.Sprintf("%s_%s_cache.json", s.platform, handle))
}

// Load reads the account's snapshot. A missing or unreadable snapshot is
// treated as an empty cache so the account gets a full re-collection rather
// than failing the run.
func (s *FileStore) Load(handle string) (CacheEntry, error) {
	data, err := os.ReadFile(s.path(handle))
	if err != nil {
		if os.IsNotExist(err) {
			return NewCacheEntry(handle, s.platform), nil
		}
		log.Warn().Err(err).Str("handle", handle).Msg("Unreadable cache snapshot, starting fresh")
		return NewCacheEntry(handle, s.platform), nil
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Warn().Err(err).Str("handle", handle).Msg("Corrupt cache snapshot, starting fresh")
		return NewCacheEntry(handle, s.platform), nil
	}
	if entry.Videos == nil {
		entry.Videos = make(map[string]model.Video)
	}
	return entry, nil
}

// Save atomically replaces the account's snapshot: the entry is written to a
// temp file in the same directory and renamed over the previous snapshot.
func (s *FileStore) Save(handle string, entry CacheEntry) error {
	entry.Handle = handle
	entry.Platform = s.platform
	entry.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, fmt.Sprintf(".%s_%s_*.tmp", s.platform, handle))
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path(handle)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	log.Debug().Str("handle", handle).Int("videos", len(entry.Videos)).Msg("Saved cache snapshot")
	return nil
}
