package state

import (
	"sync"

	"github.com/trackwatch/campaign-scraper/model"
)

// MemoryStore is an in-memory Store used in tests and dry runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]CacheEntry)}
}

// Load implements Store.
func (s *MemoryStore) Load(handle string) (CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[handle]
	if !ok {
		return NewCacheEntry(handle, ""), nil
	}
	// Copy the video map so callers cannot mutate the stored snapshot.
	videos := make(map[string]model.Video, len(entry.Videos))
	for id, v := range entry.Videos {
		videos[id] = v
	}
	entry.Videos = videos
	return entry, nil
}

// Save implements Store.
func (s *MemoryStore) Save(handle string, entry CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	videos := make(map[string]model.Video, len(entry.Videos))
	for id, v := range entry.Videos {
		videos[id] = v
	}
	entry.Videos = videos
	entry.Handle = handle
	s.entries[handle] = entry
	return nil
}
