package store

import (
	"context"
	"slices"
	"sync"
)

// HistoryKey is the key the search history is stored under.
const HistoryKey = "searchHistory"

// MemoryStore is a concurrency-safe in-memory history store. Nothing
// survives a restart; it is the default when no backend is configured.
type MemoryStore struct {
	mu sync.RWMutex

	entries []string

	// retention configuration
	maxEntries int // max number of entries kept (0 = unlimited)
}

// NewMemoryStore creates a new MemoryStore.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{maxEntries: maxEntries}
}

// LoadHistory returns a copy of the stored entries.
func (s *MemoryStore) LoadHistory(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries), nil
}

// SaveHistory replaces the stored entries and enforces retention.
func (s *MemoryStore) SaveHistory(_ context.Context, entries []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = slices.Clone(entries)
	if s.maxEntries > 0 && len(s.entries) > s.maxEntries {
		s.entries = s.entries[:s.maxEntries]
	}
	return nil
}

// ClearHistory removes the stored entries.
func (s *MemoryStore) ClearHistory(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}
