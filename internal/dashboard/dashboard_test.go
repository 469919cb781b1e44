package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// stubFetcher resolves known places immediately unless a gate is set for
// the place, in which case it waits for the gate to be closed.
type stubFetcher struct {
	mu      sync.Mutex
	known   map[string]bool
	gates   map[string]chan struct{}
	started chan string
}

func newStubFetcher(known ...string) *stubFetcher {
	f := &stubFetcher{
		known:   make(map[string]bool),
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 16),
	}
	for _, k := range known {
		f.known[k] = true
	}
	return f
}

func (f *stubFetcher) gate(place string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[place] = ch
	return ch
}

func (f *stubFetcher) FetchSnapshot(ctx context.Context, place string) (weather.WeatherSnapshot, error) {
	f.mu.Lock()
	gate := f.gates[place]
	known := f.known[place]
	f.mu.Unlock()

	f.started <- place
	if gate != nil {
		<-gate
	}
	if !known {
		return weather.WeatherSnapshot{}, fmt.Errorf("%w: %s", weather.ErrLookupFailed, place)
	}
	return weather.WeatherSnapshot{
		Place:      place,
		Current:    weather.CurrentConditions{Name: place},
		Forecast:   weather.ForecastSeries{{TemperatureC: 10}},
		AirQuality: weather.AirQualitySample{AQI: 1},
		UV:         weather.UVSample{Value: 2},
	}, nil
}

func waitStarted(t *testing.T, f *stubFetcher, place string) {
	t.Helper()
	select {
	case got := <-f.started:
		require.Equal(t, place, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("search for %q never started", place)
	}
}

func TestSearchSuccess(t *testing.T) {
	d := New(newStubFetcher("Paris"), nil, nil)
	assert.Equal(t, PhaseIdle, d.State().Phase)

	st, err := d.Search(context.Background(), " Paris ")
	require.NoError(t, err)

	assert.Equal(t, PhaseReady, st.Phase)
	require.NotNil(t, st.Snapshot)
	assert.Equal(t, "Paris", st.Snapshot.Place)
	assert.Empty(t, st.Error)
	assert.False(t, st.Loading)
	assert.Equal(t, []string{"Paris"}, st.History)
	assert.Equal(t, "Paris", d.CurrentPlace())
}

func TestSearchFailureClearsSnapshot(t *testing.T) {
	d := New(newStubFetcher("Paris"), nil, nil)

	_, err := d.Search(context.Background(), "Paris")
	require.NoError(t, err)

	st, err := d.Search(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.True(t, errors.Is(err, weather.ErrLookupFailed))

	assert.Equal(t, PhaseError, st.Phase)
	assert.Nil(t, st.Snapshot)
	assert.Equal(t, NotFoundMessage, st.Error)
	assert.False(t, st.Loading)
	// Failed searches are not remembered.
	assert.Equal(t, []string{"Paris"}, st.History)

	_, ok := d.Snapshot()
	assert.False(t, ok)
	assert.Empty(t, d.CurrentPlace())
}

func TestSearchRejectsEmptyPlace(t *testing.T) {
	f := newStubFetcher("Paris")
	d := New(f, nil, nil)

	st, err := d.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, weather.ErrEmptyPlace)
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Empty(t, f.started)
}

func TestSearchHistoryOrder(t *testing.T) {
	d := New(newStubFetcher("Paris", "Tokyo", "A", "B", "C", "D", "E", "F"), nil, nil)
	ctx := context.Background()

	for _, p := range []string{"Paris", "Tokyo", "Paris"} {
		_, err := d.Search(ctx, p)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"Paris", "Tokyo"}, d.History())

	for _, p := range []string{"A", "B", "C", "D", "E", "F"} {
		_, err := d.Search(ctx, p)
		require.NoError(t, err)
	}
	assert.Len(t, d.History(), HistoryLimit)
	assert.Equal(t, []string{"F", "E", "D", "C", "B"}, d.History())
}

func TestSelectHistoryEntry(t *testing.T) {
	d := New(newStubFetcher("Paris", "Tokyo"), nil, nil)
	ctx := context.Background()

	_, _ = d.Search(ctx, "Paris")
	_, _ = d.Search(ctx, "Tokyo")

	st, err := d.SelectHistoryEntry(ctx, "Paris")
	require.NoError(t, err)
	assert.Equal(t, "Paris", st.Snapshot.Place)
	assert.Equal(t, []string{"Paris", "Tokyo"}, st.History)
}

func TestLoadingSuppressesSnapshotAndError(t *testing.T) {
	f := newStubFetcher("Paris", "Tokyo")
	d := New(f, nil, nil)
	ctx := context.Background()

	_, err := d.Search(ctx, "Paris")
	require.NoError(t, err)
	<-f.started

	release := f.gate("Tokyo")
	done := make(chan State)
	go func() {
		st, _ := d.Search(ctx, "Tokyo")
		done <- st
	}()
	waitStarted(t, f, "Tokyo")

	st := d.State()
	assert.Equal(t, PhaseLoading, st.Phase)
	assert.True(t, st.Loading)
	assert.Nil(t, st.Snapshot)
	assert.Empty(t, st.Error)

	close(release)
	st = <-done
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Equal(t, "Tokyo", st.Snapshot.Place)
}

func TestStaleSearchIsDiscarded(t *testing.T) {
	f := newStubFetcher("Paris", "Tokyo")
	collector := metrics.NewCollector("test", prometheus.NewRegistry())
	d := New(f, nil, collector)
	ctx := context.Background()

	releaseParis := f.gate("Paris")
	releaseTokyo := f.gate("Tokyo")

	parisDone := make(chan struct{})
	go func() {
		defer close(parisDone)
		_, _ = d.Search(ctx, "Paris")
	}()
	waitStarted(t, f, "Paris")

	tokyoDone := make(chan struct{})
	go func() {
		defer close(tokyoDone)
		_, _ = d.Search(ctx, "Tokyo")
	}()
	waitStarted(t, f, "Tokyo")

	// Tokyo settles first, Paris last: Paris was issued earlier so it must not win.
	close(releaseTokyo)
	<-tokyoDone
	close(releaseParis)
	<-parisDone

	st := d.State()
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Equal(t, "Tokyo", st.Snapshot.Place)
	assert.Equal(t, []string{"Tokyo"}, st.History)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.StaleResultsTotal))
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("LoadHistory", ctx).Return([]string{}, nil)
	store.On("SaveHistory", ctx, []string{"Paris"}).Return(nil)
	store.On("ClearHistory", ctx).Return(nil).Once()

	d := New(newStubFetcher("Paris"), NewHistory(ctx, store, nil), nil)

	_, err := d.Search(ctx, "Paris")
	require.NoError(t, err)

	st := d.Logout(ctx)
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Nil(t, st.Snapshot)
	assert.Empty(t, st.Error)
	assert.False(t, st.Loading)
	assert.Empty(t, st.History)
	store.AssertExpectations(t)
}

func TestLogoutDiscardsInFlightSearch(t *testing.T) {
	f := newStubFetcher("Paris")
	d := New(f, nil, nil)
	ctx := context.Background()

	release := f.gate("Paris")
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = d.Search(ctx, "Paris")
	}()
	waitStarted(t, f, "Paris")

	d.Logout(ctx)
	close(release)
	<-done

	st := d.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Nil(t, st.Snapshot)
	assert.Empty(t, st.History)
}

func TestSearchSurvivesStorageFailure(t *testing.T) {
	ctx := context.Background()
	failure := fmt.Errorf("%w: read-only", weather.ErrStorageUnavailable)
	store := &mockStore{}
	store.On("LoadHistory", ctx).Return(nil, failure)
	store.On("SaveHistory", ctx, []string{"Paris"}).Return(failure)

	collector := metrics.NewCollector("test", prometheus.NewRegistry())
	d := New(newStubFetcher("Paris"), NewHistory(ctx, store, collector), collector)

	st, err := d.Search(ctx, "Paris")
	require.NoError(t, err)
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Equal(t, []string{"Paris"}, st.History)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.StorageErrorsTotal.WithLabelValues("load")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.StorageErrorsTotal.WithLabelValues("save")))
}

func TestSubscribeReceivesLatestState(t *testing.T) {
	d := New(newStubFetcher("Paris"), nil, nil)
	updates, cancel := d.Subscribe()
	defer cancel()

	_, err := d.Search(context.Background(), "Paris")
	require.NoError(t, err)

	// Loading and ready were both published; only the newest is buffered.
	select {
	case st := <-updates:
		assert.Equal(t, PhaseReady, st.Phase)
	case <-time.After(time.Second):
		t.Fatal("no state published")
	}

	cancel()
	_, open := <-updates
	assert.False(t, open)
}

func TestSnapshotAllOrNothing(t *testing.T) {
	d := New(newStubFetcher("Paris"), nil, nil)
	ctx := context.Background()

	for _, place := range []string{"Paris", "Nowhere", "Paris"} {
		st, _ := d.Search(ctx, place)
		if st.Snapshot != nil {
			assert.NotEmpty(t, st.Snapshot.Current.Name)
			assert.NotEmpty(t, st.Snapshot.Forecast)
			assert.NotZero(t, st.Snapshot.AirQuality.AQI)
			assert.NotZero(t, st.Snapshot.UV.Value)
			assert.Empty(t, st.Error)
		} else {
			assert.Equal(t, NotFoundMessage, st.Error)
		}
	}
}

func TestRefresh(t *testing.T) {
	f := newStubFetcher("Paris")
	d := New(f, nil, nil)
	ctx := context.Background()

	// Nothing displayed: no lookup.
	require.NoError(t, d.Refresh(ctx))
	assert.Empty(t, f.started)

	_, err := d.Search(ctx, "Paris")
	require.NoError(t, err)
	<-f.started

	require.NoError(t, d.Refresh(ctx))
	waitStarted(t, f, "Paris")
	assert.Equal(t, PhaseReady, d.State().Phase)
}

func TestRefreshSkippedWhileSearchLoading(t *testing.T) {
	f := newStubFetcher("Paris", "Tokyo")
	d := New(f, nil, nil)
	ctx := context.Background()

	_, err := d.Search(ctx, "Paris")
	require.NoError(t, err)
	<-f.started

	release := f.gate("Tokyo")
	done := make(chan State)
	go func() {
		st, _ := d.Search(ctx, "Tokyo")
		done <- st
	}()
	waitStarted(t, f, "Tokyo")

	require.NoError(t, d.Refresh(ctx))
	assert.Empty(t, f.started)

	close(release)
	st := <-done
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Equal(t, "Tokyo", st.Snapshot.Place)
	assert.Equal(t, []string{"Tokyo", "Paris"}, st.History)
	assert.Equal(t, "Tokyo", d.CurrentPlace())
}

func TestRefreshInFlightYieldsToUserSearch(t *testing.T) {
	f := newStubFetcher("Paris", "Tokyo")
	collector := metrics.NewCollector("test", prometheus.NewRegistry())
	d := New(f, nil, collector)
	ctx := context.Background()

	_, err := d.Search(ctx, "Paris")
	require.NoError(t, err)
	<-f.started

	release := f.gate("Paris")
	refreshed := make(chan error, 1)
	go func() {
		refreshed <- d.Refresh(ctx)
	}()
	waitStarted(t, f, "Paris")

	st, err := d.Search(ctx, "Tokyo")
	require.NoError(t, err)
	<-f.started
	assert.Equal(t, "Tokyo", st.Snapshot.Place)

	close(release)
	require.NoError(t, <-refreshed)

	st = d.State()
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Equal(t, "Tokyo", st.Snapshot.Place)
	assert.Equal(t, []string{"Tokyo", "Paris"}, st.History)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.StaleResultsTotal))
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	f := newStubFetcher("Paris")
	d := New(f, nil, nil)
	ctx := context.Background()

	_, err := d.Search(ctx, "Paris")
	require.NoError(t, err)
	<-f.started

	f.mu.Lock()
	f.known["Paris"] = false
	f.mu.Unlock()

	err = d.Refresh(ctx)
	assert.ErrorIs(t, err, weather.ErrLookupFailed)
	<-f.started

	st := d.State()
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Equal(t, "Paris", st.Snapshot.Place)
	assert.Empty(t, st.Error)
}

// slowStore blocks SaveHistory until released.
type slowStore struct {
	saving  chan struct{}
	release chan struct{}
}

func (s *slowStore) LoadHistory(context.Context) ([]string, error) { return nil, nil }

func (s *slowStore) SaveHistory(context.Context, []string) error {
	s.saving <- struct{}{}
	<-s.release
	return nil
}

func (s *slowStore) ClearHistory(context.Context) error { return nil }

func TestStateReadableWhileHistorySaves(t *testing.T) {
	ctx := context.Background()
	store := &slowStore{saving: make(chan struct{}, 1), release: make(chan struct{})}
	d := New(newStubFetcher("Paris"), NewHistory(ctx, store, nil), nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = d.Search(ctx, "Paris")
	}()

	select {
	case <-store.saving:
	case <-time.After(2 * time.Second):
		t.Fatal("history was never saved")
	}

	read := make(chan State, 1)
	go func() { read <- d.State() }()

	select {
	case st := <-read:
		assert.Equal(t, PhaseReady, st.Phase)
		assert.Equal(t, []string{"Paris"}, st.History)
	case <-time.After(time.Second):
		t.Fatal("State blocked on a history save")
	}

	close(store.release)
	<-done
}

func TestLogoutDuringHistorySaveLeavesHistoryEmpty(t *testing.T) {
	ctx := context.Background()
	store := &slowStore{saving: make(chan struct{}, 1), release: make(chan struct{})}
	d := New(newStubFetcher("Paris"), NewHistory(ctx, store, nil), nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = d.Search(ctx, "Paris")
	}()
	<-store.saving

	loggedOut := make(chan State, 1)
	go func() { loggedOut <- d.Logout(ctx) }()

	close(store.release)
	<-done
	st := <-loggedOut

	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Empty(t, st.History)
	assert.Empty(t, d.History())
}
