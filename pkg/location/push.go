package location

import (
	"context"
	"sync"

	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/navigation"
)

// PushWatcher is a LocationWatcher whose samples the caller pushes by hand.
// It bridges positions arriving over another transport (websocket messages,
// tests) into a navigation session.
type PushWatcher struct {
	mu       sync.Mutex
	onSample func(datastructure.Coordinate)
	lastLoc  *datastructure.Coordinate
}

func NewPushWatcher() *PushWatcher {
	return &PushWatcher{}
}

func (w *PushWatcher) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}

func (w *PushWatcher) WatchPosition(minIntervalMs int, minDistanceMeters float64,
	onSample func(datastructure.Coordinate)) (navigation.Subscription, error) {
	w.mu.Lock()
	w.onSample = onSample
	w.mu.Unlock()
	return &pushSubscription{watcher: w}, nil
}

// Push delivers one sample to the active subscription, if any. Delivery holds
// the watcher lock, so it is serialized against Cancel.
func (w *PushWatcher) Push(loc datastructure.Coordinate) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastLoc = &loc
	if w.onSample != nil {
		w.onSample(loc)
	}
}

// GetCurrentLocation returns the last pushed position, so a PushWatcher also
// serves as the planner's location lookup during recalculation.
func (w *PushWatcher) GetCurrentLocation(ctx context.Context) (datastructure.Coordinate, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastLoc == nil {
		return datastructure.Coordinate{}, ErrUnavailable
	}
	return *w.lastLoc, nil
}

type pushSubscription struct {
	watcher *PushWatcher
}

func (s *pushSubscription) Cancel() {
	s.watcher.mu.Lock()
	s.watcher.onSample = nil
	s.watcher.mu.Unlock()
}
