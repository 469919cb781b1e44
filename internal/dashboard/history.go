package dashboard

import (
	"context"
	"log"
	"slices"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// HistoryLimit is the maximum number of remembered searches.
const HistoryLimit = 5

// PushRecent returns entries with place moved (or inserted) at the front,
// duplicates removed and the result truncated to limit. entries is not modified.
func PushRecent(entries []string, place string, limit int) []string {
	out := make([]string, 0, limit)
	out = append(out, place)
	for _, e := range entries {
		if len(out) >= limit {
			break
		}
		if e == place {
			continue
		}
		out = append(out, e)
	}
	return out
}

// History is the in-memory search history, flushed to a HistoryStore on
// every change. If the store fails the history keeps working in memory.
//
// Readers only wait on mu; writes to the store are serialized by saveMu so
// the persisted order matches the in-memory order.
type History struct {
	mu      sync.RWMutex
	saveMu  sync.Mutex
	entries []string
	store   weather.HistoryStore
	metrics *metrics.Collector
}

// NewHistory loads the persisted history once. store may be nil for a
// purely in-memory history.
func NewHistory(ctx context.Context, store weather.HistoryStore, collector *metrics.Collector) *History {
	h := &History{store: store, metrics: collector}
	if store == nil {
		return h
	}

	entries, err := store.LoadHistory(ctx)
	if err != nil {
		log.Printf("WARN: search history not loaded, starting empty: %v", err)
		collector.IncStorageError("load")
		return h
	}

	// Persisted data may predate the current rules; re-apply them.
	for i := len(entries) - 1; i >= 0; i-- {
		if e := common.NormalizePlace(entries[i]); e != "" {
			h.entries = PushRecent(h.entries, e, HistoryLimit)
		}
	}
	collector.SetHistoryEntries(len(h.entries))
	return h
}

// Record moves place to the front of the history and persists the result.
func (h *History) Record(ctx context.Context, place string) {
	place = common.NormalizePlace(place)
	if place == "" {
		return
	}

	h.saveMu.Lock()
	defer h.saveMu.Unlock()

	h.mu.Lock()
	h.entries = PushRecent(h.entries, place, HistoryLimit)
	snapshot := slices.Clone(h.entries)
	h.mu.Unlock()
	h.metrics.SetHistoryEntries(len(snapshot))

	if h.store == nil {
		return
	}
	if err := h.store.SaveHistory(ctx, snapshot); err != nil {
		log.Printf("WARN: search history not persisted: %v", err)
		h.metrics.IncStorageError("save")
	}
}

// Entries returns a copy of the history, most recent first.
func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string{}, h.entries...)
}

// Clear empties the history and its persisted copy.
func (h *History) Clear(ctx context.Context) {
	h.saveMu.Lock()
	defer h.saveMu.Unlock()

	h.mu.Lock()
	h.entries = nil
	h.mu.Unlock()
	h.metrics.SetHistoryEntries(0)

	if h.store == nil {
		return
	}
	if err := h.store.ClearHistory(ctx); err != nil {
		log.Printf("WARN: persisted search history not cleared: %v", err)
		h.metrics.IncStorageError("clear")
	}
}
