// Package dashboard holds the state the presentation layer renders: the
// current snapshot, the error message, the loading flag and the search
// history. All mutations go through Dashboard methods.
package dashboard

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// NotFoundMessage is shown for every failed search.
const NotFoundMessage = "City not found. Please try again."

// Phase is the externally visible lifecycle of the dashboard.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseError   Phase = "error"
)

// SnapshotFetcher is satisfied by *weather.Service.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, place string) (weather.WeatherSnapshot, error)
}

// State is an immutable view of the dashboard. While loading, Snapshot and
// Error are suppressed.
type State struct {
	Phase    Phase                    `json:"phase"`
	Snapshot *weather.WeatherSnapshot `json:"snapshot"`
	Error    string                   `json:"error"`
	Loading  bool                     `json:"loading"`
	History  []string                 `json:"history"`
}

// Dashboard owns the current snapshot, error and loading flag.
//
// Each Search takes a generation token; a settled search is applied only if
// its token is still the newest, so the most recently issued search wins
// regardless of the order in which responses arrive. Refresh never takes a
// token of its own.
//
// epoch counts logouts. History writes happen outside mu and are serialized
// by historyMu; a search records its place only if no logout happened since
// it was applied.
type Dashboard struct {
	mu         sync.RWMutex
	snapshot   *weather.WeatherSnapshot
	errMsg     string
	loading    bool
	generation uint64
	epoch      uint64

	historyMu sync.Mutex

	fetcher SnapshotFetcher
	history *History
	metrics *metrics.Collector

	subMu       sync.Mutex
	subscribers map[uint64]chan State
	nextSubID   uint64
}

// New creates a Dashboard in the idle phase.
func New(fetcher SnapshotFetcher, history *History, collector *metrics.Collector) *Dashboard {
	if history == nil {
		history = NewHistory(context.Background(), nil, collector)
	}
	return &Dashboard{
		fetcher:     fetcher,
		history:     history,
		metrics:     collector,
		subscribers: make(map[uint64]chan State),
	}
}

// Search fetches a snapshot for place and applies the result.
// It blocks until the lookup settles and returns the state at that point.
// The returned error is the lookup error, or nil when the search succeeded
// or was superseded.
func (d *Dashboard) Search(ctx context.Context, place string) (State, error) {
	place = common.NormalizePlace(place)
	if place == "" {
		return d.State(), weather.ErrEmptyPlace
	}

	searchID := uuid.NewString()

	d.mu.Lock()
	d.generation++
	token := d.generation
	d.loading = true
	d.errMsg = ""
	d.mu.Unlock()
	d.publish()

	log.Printf("INFO: search %s started for %q (generation %d)", searchID, place, token)

	snap, err := d.fetcher.FetchSnapshot(ctx, place)

	d.mu.Lock()
	if token != d.generation {
		d.mu.Unlock()
		log.Printf("INFO: search %s for %q superseded; result discarded", searchID, place)
		d.metrics.IncStaleResult()
		return d.State(), nil
	}

	d.loading = false
	if err != nil {
		d.snapshot = nil
		d.errMsg = NotFoundMessage
		d.mu.Unlock()
		log.Printf("WARN: search %s for %q failed: %v", searchID, place, err)
		d.publish()
		return d.State(), err
	}

	d.snapshot = &snap
	d.errMsg = ""
	epoch := d.epoch
	d.mu.Unlock()

	d.recordIfCurrent(ctx, place, epoch)

	log.Printf("INFO: search %s for %q succeeded", searchID, place)
	d.publish()
	return d.State(), nil
}

// recordIfCurrent adds place to the history unless a logout happened after
// the search was applied.
func (d *Dashboard) recordIfCurrent(ctx context.Context, place string, epoch uint64) {
	d.historyMu.Lock()
	defer d.historyMu.Unlock()

	d.mu.RLock()
	current := d.epoch == epoch
	d.mu.RUnlock()
	if !current {
		return
	}
	d.history.Record(ctx, place)
}

// SelectHistoryEntry re-runs a search for a remembered place.
func (d *Dashboard) SelectHistoryEntry(ctx context.Context, place string) (State, error) {
	return d.Search(ctx, place)
}

// Logout returns the dashboard to idle and forgets the search history.
// Searches still in flight are discarded when they settle.
func (d *Dashboard) Logout(ctx context.Context) State {
	d.mu.Lock()
	d.generation++
	d.epoch++
	d.snapshot = nil
	d.errMsg = ""
	d.loading = false
	d.mu.Unlock()

	d.historyMu.Lock()
	d.history.Clear(ctx)
	d.historyMu.Unlock()

	log.Printf("INFO: logout; dashboard state and search history cleared")
	d.publish()
	return d.State()
}

// State returns the current state.
func (d *Dashboard) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()

	st := State{
		Loading: d.loading,
		History: d.history.Entries(),
	}

	switch {
	case d.loading:
		st.Phase = PhaseLoading
	case d.errMsg != "":
		st.Phase = PhaseError
		st.Error = d.errMsg
	case d.snapshot != nil:
		st.Phase = PhaseReady
		snap := *d.snapshot
		st.Snapshot = &snap
	default:
		st.Phase = PhaseIdle
	}

	return st
}

// Snapshot returns the displayed snapshot, if any.
func (d *Dashboard) Snapshot() (weather.WeatherSnapshot, bool) {
	st := d.State()
	if st.Snapshot == nil {
		return weather.WeatherSnapshot{}, false
	}
	return *st.Snapshot, true
}

// CurrentPlace returns the place of the displayed snapshot, or "".
func (d *Dashboard) CurrentPlace() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.snapshot == nil {
		return ""
	}
	return d.snapshot.Place
}

// History returns the search history, most recent first.
func (d *Dashboard) History() []string {
	return d.history.Entries()
}

// Subscribe returns a channel receiving the state after every change.
// Slow subscribers only see the newest state. cancel closes the channel.
func (d *Dashboard) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	d.subMu.Lock()
	id := d.nextSubID
	d.nextSubID++
	d.subscribers[id] = ch
	d.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			d.subMu.Lock()
			delete(d.subscribers, id)
			d.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (d *Dashboard) publish() {
	d.subMu.Lock()
	defer d.subMu.Unlock()

	st := d.State()

	for _, ch := range d.subscribers {
		// Drop the pending state, if any, in favour of the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}

// Refresh re-fetches the displayed place in the background. It does
// nothing when no snapshot is displayed or a search is loading, and its
// result is dropped if any search or logout was issued meanwhile. A failed
// refresh keeps the displayed snapshot.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.RLock()
	if d.loading || d.snapshot == nil {
		d.mu.RUnlock()
		return nil
	}
	place := d.snapshot.Place
	token := d.generation
	d.mu.RUnlock()

	snap, err := d.fetcher.FetchSnapshot(ctx, place)

	d.mu.Lock()
	if token != d.generation || d.loading {
		d.mu.Unlock()
		log.Printf("INFO: refresh for %q superseded; result discarded", place)
		d.metrics.IncStaleResult()
		return nil
	}
	if err != nil {
		d.mu.Unlock()
		log.Printf("WARN: refresh for %q failed, keeping displayed snapshot: %v", place, err)
		return err
	}
	d.snapshot = &snap
	d.mu.Unlock()

	log.Printf("INFO: refresh for %q applied", place)
	d.publish()
	return nil
}
