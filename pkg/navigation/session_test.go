package navigation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeWatcher delivers samples only when the test pushes them. Cancel is
// synchronous: after it returns, push is a no-op.
type fakeWatcher struct {
	mu            sync.Mutex
	granted       bool
	permissionErr error
	watchErr      error

	watchCalls  int
	cancelCalls int
	onSample    func(datastructure.Coordinate)
}

func (w *fakeWatcher) RequestPermission(ctx context.Context) (bool, error) {
	return w.granted, w.permissionErr
}

func (w *fakeWatcher) WatchPosition(minIntervalMs int, minDistanceMeters float64,
	onSample func(datastructure.Coordinate)) (Subscription, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watchErr != nil {
		return nil, w.watchErr
	}
	w.watchCalls++
	w.onSample = onSample
	return &fakeSubscription{watcher: w}, nil
}

func (w *fakeWatcher) push(loc datastructure.Coordinate) {
	w.mu.Lock()
	onSample := w.onSample
	w.mu.Unlock()
	if onSample != nil {
		onSample(loc)
	}
}

type fakeSubscription struct {
	watcher *fakeWatcher
}

func (s *fakeSubscription) Cancel() {
	s.watcher.mu.Lock()
	defer s.watcher.mu.Unlock()
	s.watcher.onSample = nil
	s.watcher.cancelCalls++
}

// straight west-to-east line at lat 59, vertices ~114 m apart
func testRoute() *datastructure.Route {
	coords := []datastructure.Coordinate{
		datastructure.NewCoordinate(59.0, 18.000),
		datastructure.NewCoordinate(59.0, 18.002),
		datastructure.NewCoordinate(59.0, 18.004),
		datastructure.NewCoordinate(59.0, 18.006),
		datastructure.NewCoordinate(59.0, 18.008),
	}
	return datastructure.NewRoute(coords, 456, 360, nil, nil)
}

func receiveState(t *testing.T, states chan datastructure.NavigationState) datastructure.NavigationState {
	t.Helper()
	select {
	case st := <-states:
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a state snapshot")
		return datastructure.NavigationState{}
	}
}

func requireNoState(t *testing.T, states chan datastructure.NavigationState) {
	t.Helper()
	select {
	case st := <-states:
		t.Fatalf("unexpected state snapshot emitted: %+v", st)
	case <-time.After(100 * time.Millisecond):
	}
}

func startedSession(t *testing.T, watcher *fakeWatcher,
	onRecalculate func()) (*Session, chan datastructure.NavigationState) {
	t.Helper()

	session := NewSession(zap.NewNop(), watcher, DefaultConfig())
	states := make(chan datastructure.NavigationState, 100)

	ok := session.Start(context.Background(), testRoute(),
		func(st datastructure.NavigationState) { states <- st }, onRecalculate)
	require.True(t, ok)
	t.Cleanup(session.Stop)

	initial := receiveState(t, states)
	require.True(t, initial.IsNavigating())
	require.Nil(t, initial.GetCurrentLocation())
	require.False(t, initial.IsOffRoute())
	require.Empty(t, initial.GetCompletedCoordinates())

	return session, states
}

func TestStartPermissionDenied(t *testing.T) {
	watcher := &fakeWatcher{granted: false}
	session := NewSession(zap.NewNop(), watcher, DefaultConfig())

	ok := session.Start(context.Background(), testRoute(),
		func(datastructure.NavigationState) {}, nil)
	require.False(t, ok)
	require.Zero(t, watcher.watchCalls, "denied permission must not open a subscription")
	require.False(t, session.State().IsNavigating())
}

func TestOnRouteSampleAdvancesCompletedPrefix(t *testing.T) {
	watcher := &fakeWatcher{granted: true}
	session, states := startedSession(t, watcher, nil)

	// ~33 m north of vertex 2, well within the 50 m threshold
	watcher.push(datastructure.NewCoordinate(59.0003, 18.004))

	st := receiveState(t, states)
	require.False(t, st.IsOffRoute())
	require.NotNil(t, st.GetCurrentLocation())

	completed := st.GetCompletedCoordinates()
	require.Len(t, completed, 3)
	route := testRoute()
	for i, c := range completed {
		require.Equal(t, route.GetCoordinates()[i], c)
	}

	completedMeters, totalMeters := session.Progress()
	require.Greater(t, completedMeters, 0.0)
	require.Greater(t, totalMeters, completedMeters)
}

func TestOffRouteEpisodeRecalculatesOnce(t *testing.T) {
	var (
		mu      sync.Mutex
		recalcs int
	)
	watcher := &fakeWatcher{granted: true}
	_, states := startedSession(t, watcher, func() {
		mu.Lock()
		recalcs++
		mu.Unlock()
	})

	// put the session on route first
	watcher.push(datastructure.NewCoordinate(59.0, 18.002))
	onRoute := receiveState(t, states)
	require.False(t, onRoute.IsOffRoute())
	require.Len(t, onRoute.GetCompletedCoordinates(), 2)

	// a contiguous run of off-route samples, ~1.1 km north of the route
	for i := 0; i < 3; i++ {
		watcher.push(datastructure.NewCoordinate(59.01, 18.002))
		st := receiveState(t, states)
		require.True(t, st.IsOffRoute())
		require.Len(t, st.GetCompletedCoordinates(), 2,
			"completed prefix must not change while off route")
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return recalcs == 1
	}, 2*time.Second, 10*time.Millisecond, "edge-triggered: one recalculation per episode")

	// back on route clears the flag and resumes progress
	watcher.push(datastructure.NewCoordinate(59.0, 18.006))
	back := receiveState(t, states)
	require.False(t, back.IsOffRoute())
	require.Len(t, back.GetCompletedCoordinates(), 4)

	// a second episode triggers a second recalculation
	watcher.push(datastructure.NewCoordinate(59.01, 18.006))
	st := receiveState(t, states)
	require.True(t, st.IsOffRoute())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return recalcs == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestInFlightRecalculationSuppressesSecondEpisode(t *testing.T) {
	var (
		mu      sync.Mutex
		recalcs int
	)
	release := make(chan struct{})

	watcher := &fakeWatcher{granted: true}
	_, states := startedSession(t, watcher, func() {
		mu.Lock()
		recalcs++
		mu.Unlock()
		<-release
	})

	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return recalcs
	}

	// first episode starts the (blocked) recalculation
	watcher.push(datastructure.NewCoordinate(59.0, 18.002))
	receiveState(t, states)
	watcher.push(datastructure.NewCoordinate(59.01, 18.002))
	receiveState(t, states)
	require.Eventually(t, func() bool { return count() == 1 }, 2*time.Second, 10*time.Millisecond)

	// back on route, then a second episode while the first recalculation is
	// still in flight: suppressed
	watcher.push(datastructure.NewCoordinate(59.0, 18.004))
	receiveState(t, states)
	watcher.push(datastructure.NewCoordinate(59.01, 18.004))
	receiveState(t, states)

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, count(), "overlapping recalculation must be suppressed")

	close(release)

	// once the guard clears, the next on->off transition recalculates again.
	// each iteration is a fresh transition in case the guard has not cleared
	// yet when the off-route sample lands.
	require.Eventually(t, func() bool {
		watcher.push(datastructure.NewCoordinate(59.0, 18.006))
		receiveState(t, states)
		watcher.push(datastructure.NewCoordinate(59.01, 18.006))
		receiveState(t, states)
		return count() == 2
	}, 2*time.Second, 50*time.Millisecond)
}

func TestStopSilencesFurtherSamples(t *testing.T) {
	watcher := &fakeWatcher{granted: true}
	session, states := startedSession(t, watcher, nil)

	watcher.push(datastructure.NewCoordinate(59.0, 18.002))
	receiveState(t, states)

	session.Stop()
	require.Equal(t, 1, watcher.cancelCalls)
	require.False(t, session.State().IsNavigating())

	watcher.push(datastructure.NewCoordinate(59.0, 18.004))
	watcher.push(datastructure.NewCoordinate(59.0, 18.006))
	requireNoState(t, states)

	// idempotent: a second stop is a no-op
	session.Stop()
	require.Equal(t, 1, watcher.cancelCalls)
}

func TestRestartTearsDownPreviousSubscription(t *testing.T) {
	watcher := &fakeWatcher{granted: true}
	session, states := startedSession(t, watcher, nil)

	ok := session.Start(context.Background(), testRoute(),
		func(st datastructure.NavigationState) { states <- st }, nil)
	require.True(t, ok)

	require.Equal(t, 2, watcher.watchCalls)
	require.Equal(t, 1, watcher.cancelCalls, "previous subscription must be torn down")

	// fresh initial snapshot of the new session
	initial := receiveState(t, states)
	require.True(t, initial.IsNavigating())
	require.Empty(t, initial.GetCompletedCoordinates())

	session.Stop()
}

func TestSnappedLocationAndBearing(t *testing.T) {
	watcher := &fakeWatcher{granted: true}
	session, states := startedSession(t, watcher, nil)

	// no sample yet: nothing to snap
	_, ok := session.SnappedLocation()
	require.False(t, ok)

	// ~33 m north of the midpoint of segment 1-2
	watcher.push(datastructure.NewCoordinate(59.0003, 18.003))
	receiveState(t, states)

	snapped, ok := session.SnappedLocation()
	require.True(t, ok)
	require.InDelta(t, 59.0, snapped.GetLat(), 1e-3)
	require.InDelta(t, 18.003, snapped.GetLon(), 1e-3)

	bearing, ok := session.Bearing()
	require.True(t, ok)
	// the route runs due east
	require.InDelta(t, 90.0, bearing, 5.0)
}

func TestSequentialStartStopNeverHangs(t *testing.T) {
	watcher := &fakeWatcher{granted: true}
	session := NewSession(zap.NewNop(), watcher, DefaultConfig())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			if !session.Start(context.Background(), testRoute(), nil, nil) {
				t.Error("start refused")
				return
			}
			session.Stop()
		}
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("a Start/Stop cycle hung")
	}
	require.False(t, session.State().IsNavigating())
}

func TestNoRecalculationAfterStop(t *testing.T) {
	watcher := &fakeWatcher{granted: true}

	for i := 0; i < 200; i++ {
		var (
			mu      sync.Mutex
			stopped bool
		)
		session := NewSession(zap.NewNop(), watcher, DefaultConfig())
		ok := session.Start(context.Background(), testRoute(), nil, func() {
			mu.Lock()
			if stopped {
				t.Errorf("iteration %d: recalculation entered after Stop returned", i)
			}
			mu.Unlock()
		})
		require.True(t, ok)

		// straight off route, the first processed sample starts an episode
		watcher.push(datastructure.NewCoordinate(59.01, 18.002))

		session.Stop()
		mu.Lock()
		stopped = true
		mu.Unlock()
	}

	// let any leaked callback goroutine report before the test ends
	time.Sleep(100 * time.Millisecond)
}

func TestStopWaitsForInFlightRecalculation(t *testing.T) {
	var (
		mu       sync.Mutex
		finished bool
	)
	entered := make(chan struct{})
	release := make(chan struct{})

	watcher := &fakeWatcher{granted: true}
	session, states := startedSession(t, watcher, func() {
		close(entered)
		<-release
		mu.Lock()
		finished = true
		mu.Unlock()
	})

	watcher.push(datastructure.NewCoordinate(59.01, 18.002))
	receiveState(t, states)

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("recalculation never started")
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()

	session.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.True(t, finished, "Stop must not return while a recalculation is running")
}

func TestConcurrentStopIsSafe(t *testing.T) {
	watcher := &fakeWatcher{granted: true}
	session := NewSession(zap.NewNop(), watcher, DefaultConfig())

	for i := 0; i < 100; i++ {
		require.True(t, session.Start(context.Background(), testRoute(), nil, nil))

		var wg sync.WaitGroup
		for j := 0; j < 8; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				session.Stop()
			}()
		}
		wg.Wait()
		require.False(t, session.State().IsNavigating())
	}
}

// eagerWatcher delivers one sample synchronously inside WatchPosition, before
// the subscription is even handed back.
type eagerWatcher struct {
	loc datastructure.Coordinate
}

func (w *eagerWatcher) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}

func (w *eagerWatcher) WatchPosition(minIntervalMs int, minDistanceMeters float64,
	onSample func(datastructure.Coordinate)) (Subscription, error) {
	onSample(w.loc)
	return nopSubscription{}, nil
}

type nopSubscription struct{}

func (nopSubscription) Cancel() {}

func TestInitialSnapshotPrecedesEagerSamples(t *testing.T) {
	watcher := &eagerWatcher{loc: datastructure.NewCoordinate(59.0, 18.002)}
	session := NewSession(zap.NewNop(), watcher, DefaultConfig())
	states := make(chan datastructure.NavigationState, 10)

	ok := session.Start(context.Background(), testRoute(),
		func(st datastructure.NavigationState) { states <- st }, nil)
	require.True(t, ok)
	defer session.Stop()

	first := receiveState(t, states)
	require.Nil(t, first.GetCurrentLocation(), "the empty initial snapshot must come first")
	require.False(t, first.IsOffRoute())

	second := receiveState(t, states)
	require.NotNil(t, second.GetCurrentLocation())
	require.Len(t, second.GetCompletedCoordinates(), 2)
}
