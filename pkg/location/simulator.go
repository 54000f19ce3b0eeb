// Package location provides the location collaborators consumed by the
// planner and the navigation session: a deterministic jittered GPS simulator,
// a track-log replay source and fixed-position getters.
package location

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/geo"
	"github.com/lintang-b-s/navigo/pkg/navigation"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

// SimulatedWatcher replays a coordinate path as a live GPS stream. Each
// emitted sample is the next path point displaced by gaussian noise of
// jitterMeters standard deviation, in a uniformly random direction. speedup
// scales the configured update interval down, so tests and demos do not run
// in real time.
type SimulatedWatcher struct {
	log          *zap.Logger
	path         []datastructure.Coordinate
	jitterMeters float64
	speedup      float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedWatcher(log *zap.Logger, path []datastructure.Coordinate,
	jitterMeters, speedup float64, seed uint64) *SimulatedWatcher {
	if speedup <= 0 {
		speedup = 1
	}
	return &SimulatedWatcher{
		log:          log,
		path:         path,
		jitterMeters: jitterMeters,
		speedup:      speedup,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

func (w *SimulatedWatcher) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}

func (w *SimulatedWatcher) WatchPosition(minIntervalMs int, minDistanceMeters float64,
	onSample func(datastructure.Coordinate)) (navigation.Subscription, error) {
	sub := newSubscription()

	interval := time.Duration(float64(minIntervalMs)/w.speedup) * time.Millisecond
	if interval <= 0 {
		interval = time.Millisecond
	}

	go w.run(sub, interval, minDistanceMeters, onSample)
	return sub, nil
}

func (w *SimulatedWatcher) run(sub *subscription, interval time.Duration,
	minDistanceMeters float64, onSample func(datastructure.Coordinate)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *datastructure.Coordinate
	for _, point := range w.path {
		<-ticker.C

		loc := w.jittered(point)
		if last != nil && geo.HaversineDistance(last.ToGeoCoordinate(), loc.ToGeoCoordinate()) < minDistanceMeters {
			// displacement filter: the receiver asked not to be woken for
			// samples this close to the previous one
			continue
		}

		if !sub.deliver(onSample, loc) {
			return
		}
		last = &loc
	}

	w.log.Debug("simulated gps stream exhausted", zap.Int("points", len(w.path)))
}

func (w *SimulatedWatcher) jittered(point datastructure.Coordinate) datastructure.Coordinate {
	if w.jitterMeters <= 0 {
		return point
	}

	w.mu.Lock()
	bearing := w.rng.Float64() * 360.0
	dist := math.Abs(w.rng.NormFloat64()) * w.jitterMeters
	w.mu.Unlock()

	lat, lon := geo.GetDestinationPoint(point.GetLat(), point.GetLon(), bearing, dist)
	return datastructure.NewCoordinate(lat, lon)
}

// subscription serializes delivery against Cancel: delivery holds the same
// lock Cancel takes, so once Cancel returns no further onSample call begins.
type subscription struct {
	mu        sync.Mutex
	cancelled bool
}

func newSubscription() *subscription {
	return &subscription{}
}

func (s *subscription) Cancel() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
}

func (s *subscription) deliver(onSample func(datastructure.Coordinate),
	loc datastructure.Coordinate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return false
	}
	onSample(loc)
	return true
}
