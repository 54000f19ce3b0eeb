// Package navigation tracks a live position stream against a planned route.
// Each sample is matched to the nearest route vertex, deviation beyond the
// threshold flips the session off-route and raises one recalculation signal
// per episode.
package navigation

import (
	"context"
	"sync"
	"time"

	"github.com/lintang-b-s/navigo/pkg"
	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/geo"
	"github.com/lintang-b-s/navigo/pkg/spatialindex"
	"github.com/lintang-b-s/navigo/pkg/tracklog"
	"go.uber.org/zap"
)

type Config struct {
	OffRouteThresholdMeters float64
	UpdateIntervalMs        int
	MinDisplacementMeters   float64
	SnapSearchRadiusMeters  float64
}

func DefaultConfig() Config {
	return Config{
		OffRouteThresholdMeters: pkg.DEFAULT_OFF_ROUTE_THRESHOLD_METERS,
		UpdateIntervalMs:        pkg.DEFAULT_UPDATE_INTERVAL_MS,
		MinDisplacementMeters:   pkg.DEFAULT_MIN_DISPLACEMENT_METERS,
		SnapSearchRadiusMeters:  pkg.DEFAULT_SNAP_SEARCH_RADIUS_METERS,
	}
}

// Session is the navigation state machine: Idle -> Active(on route) <->
// Active(off route) -> Idle. One session tracks at most one route at a time,
// all sample processing is serialized in a single goroutine.
type Session struct {
	log     *zap.Logger
	watcher LocationWatcher
	config  Config

	mu             sync.Mutex
	route          *datastructure.Route
	path           []geo.Coordinate // route geometry, converted once at Start
	pathLength     []float64        // cumulative meters up to each vertex
	snapIndex      *spatialindex.Rtree
	state          datastructure.NavigationState
	onStateChange  func(datastructure.NavigationState)
	onRecalculate  func()
	recalcInFlight bool
	trackWriter    *tracklog.Writer

	subscription Subscription
	quit         chan struct{} // doubles as the subscription generation marker
	loopDone     chan struct{}
	stopping     bool

	recalcWG sync.WaitGroup
}

func NewSession(log *zap.Logger, watcher LocationWatcher, config Config) *Session {
	return &Session{
		log:     log,
		watcher: watcher,
		config:  config,
		state:   datastructure.NewNavigationState(false, nil, false, nil),
	}
}

// SetTrackWriter attaches a track log that records every processed sample.
// The log is flushed and closed when the session stops. Must be called while
// the session is idle.
func (s *Session) SetTrackWriter(w *tracklog.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackWriter = w
}

// Start binds the route and opens the location subscription. It returns false
// and stays idle when the watcher denies permission. Starting while already
// active first fully tears down the previous subscription, so callbacks of a
// replaced route never leak into the new one.
func (s *Session) Start(ctx context.Context, route *datastructure.Route,
	onStateChange func(datastructure.NavigationState), onRecalculate func()) bool {
	s.Stop()

	granted, err := s.watcher.RequestPermission(ctx)
	if err != nil {
		s.log.Warn("location permission request failed", zap.Error(err))
		return false
	}
	if !granted {
		s.log.Info("location permission denied, navigation not started")
		return false
	}

	samples := make(chan datastructure.Coordinate, 64)
	quit := make(chan struct{})

	subscription, err := s.watcher.WatchPosition(s.config.UpdateIntervalMs,
		s.config.MinDisplacementMeters, func(loc datastructure.Coordinate) {
			select {
			case samples <- loc:
			case <-quit:
			}
		})
	if err != nil {
		s.log.Warn("opening location subscription failed", zap.Error(err))
		return false
	}

	snapIndex := spatialindex.NewRtree()
	snapIndex.Build(route.GetCoordinates(), s.config.SnapSearchRadiusMeters)

	path := datastructure.NewGeoCoordinates(route.GetCoordinates())

	loopDone := make(chan struct{})

	s.mu.Lock()
	s.route = route
	s.path = path
	s.pathLength = geo.PathLength(path)
	s.snapIndex = snapIndex
	s.subscription = subscription
	s.quit = quit
	s.loopDone = loopDone
	s.onStateChange = onStateChange
	s.onRecalculate = onRecalculate
	s.recalcInFlight = false
	s.state = datastructure.NewNavigationState(true, nil, false, []datastructure.Coordinate{})
	initial := s.state
	s.mu.Unlock()

	// the initial snapshot goes out before the loop starts consuming, so no
	// sample snapshot can ever precede it
	if onStateChange != nil {
		onStateChange(initial)
	}

	go s.loop(samples, quit, loopDone)

	s.log.Info("navigation session started",
		zap.Int("route vertices", len(route.GetCoordinates())),
		zap.Int("stops", len(route.GetWaypoints())))
	return true
}

// Stop cancels the subscription and resets the session to idle. It is
// idempotent, safe for concurrent use and emits nothing. Once it returns,
// neither onStateChange nor onRecalculate is invoked again for the stopped
// route. Stop waits for an in-flight onRecalculate, so the callback must not
// call Stop (or Start) on the same session synchronously; detach the restart
// instead.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.state.IsNavigating() || s.stopping {
		// idle, or another Stop already owns the teardown
		s.mu.Unlock()
		return
	}
	s.stopping = true

	subscription := s.subscription
	quit := s.quit
	loopDone := s.loopDone
	trackWriter := s.trackWriter

	s.subscription = nil
	s.quit = nil
	s.loopDone = nil
	s.trackWriter = nil
	s.mu.Unlock()

	// close quit first so a watcher callback blocked on a full sample
	// channel unblocks and can release the lock Cancel may need. Cancel is
	// synchronous wrt subsequent delivery, after it returns the watcher
	// pushes no new sample.
	close(quit)
	subscription.Cancel()
	<-loopDone

	// a recalculation spawned by the drained loop must not begin, or keep
	// running, past this point
	s.recalcWG.Wait()

	s.mu.Lock()
	if s.quit == nil {
		// no Start slipped in while the loop drained, reset to idle
		s.route = nil
		s.path = nil
		s.pathLength = nil
		s.snapIndex = nil
		s.onStateChange = nil
		s.onRecalculate = nil
		s.state = datastructure.NewNavigationState(false, nil, false, nil)
	}
	s.stopping = false
	s.mu.Unlock()

	if trackWriter != nil {
		if err := trackWriter.Close(); err != nil {
			s.log.Warn("closing track log failed", zap.Error(err))
		}
	}

	s.log.Info("navigation session stopped")
}

// State returns the latest emitted snapshot.
func (s *Session) State() datastructure.NavigationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Progress returns completed and total route length in meter, derived from
// the completed coordinate prefix.
func (s *Session) Progress() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pathLength) == 0 {
		return 0, 0
	}

	completed := 0.0
	if n := len(s.state.GetCompletedCoordinates()); n > 0 {
		completed = s.pathLength[n-1]
	}
	return completed, s.pathLength[len(s.pathLength)-1]
}

// SnappedLocation projects the current location onto the nearest route
// segment within the snap search radius. Display only: the off-route decision
// always uses the nearest vertex, not the projection.
func (s *Session) SnappedLocation() (datastructure.Coordinate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.state.GetCurrentLocation()
	if !s.state.IsNavigating() || current == nil {
		return datastructure.Coordinate{}, false
	}

	segments := s.snapIndex.SearchWithinRadius(current.GetLat(), current.GetLon(),
		s.config.SnapSearchRadiusMeters)
	if len(segments) == 0 {
		return datastructure.Coordinate{}, false
	}

	loc := current.ToGeoCoordinate()
	bestDist := -1.0
	var best geo.Coordinate
	for _, segment := range segments {
		dist := geo.PointLinePerpendicularDistance(segment.GetStart(), segment.GetEnd(), loc)
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = geo.ProjectPointToLineCoord(segment.GetStart(), segment.GetEnd(), loc)
		}
	}

	return datastructure.FromGeoCoordinate(best), true
}

// Bearing returns the heading of the route at the last completed vertex, for
// the live feed payload.
func (s *Session) Bearing() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.state.GetCompletedCoordinates())
	if n == 0 || n >= len(s.path) {
		return 0, false
	}

	from := s.path[n-1]
	to := s.path[n]
	return geo.BearingTo(from.GetLat(), from.GetLon(), to.GetLat(), to.GetLon()), true
}

// loop owns sample processing for one subscription. Its channels arrive as
// arguments: Stop nils the struct fields before draining, so the loop must
// never read them back.
func (s *Session) loop(samples chan datastructure.Coordinate, quit, loopDone chan struct{}) {
	defer close(loopDone)
	for {
		select {
		case <-quit:
			return
		case loc := <-samples:
			select {
			case <-quit:
				return
			default:
			}
			s.processSample(loc)
		}
	}
}

// processSample runs steps 1-5 of the tracking contract for one sample:
// update current location, match the nearest route vertex, flip the off-route
// flag edge-triggered, advance the completed prefix when on route and emit
// one snapshot.
func (s *Session) processSample(loc datastructure.Coordinate) {
	s.mu.Lock()
	if !s.state.IsNavigating() {
		s.mu.Unlock()
		return
	}

	idx, _, dist := geo.NearestVertex(loc.ToGeoCoordinate(), s.path)

	offRoute := datastructure.Gt(dist, s.config.OffRouteThresholdMeters)
	wasOffRoute := s.state.IsOffRoute()

	completed := s.state.GetCompletedCoordinates()
	if !offRoute {
		completed = s.route.GetCoordinates()[:idx+1]
	}

	current := loc
	newState := datastructure.NewNavigationState(true, &current, offRoute, completed)
	s.state = newState

	emit := s.onStateChange
	trackWriter := s.trackWriter

	var recalculate func()
	var gen chan struct{}
	if offRoute && !wasOffRoute {
		s.log.Info("went off route, requesting recalculation",
			zap.Float64("deviation meters", dist), zap.Int("nearest vertex", idx))
		if s.onRecalculate != nil && !s.recalcInFlight {
			s.recalcInFlight = true
			recalculate = s.onRecalculate
			gen = s.quit
			s.recalcWG.Add(1)
		}
	}
	s.mu.Unlock()

	if trackWriter != nil {
		if err := trackWriter.Write(loc, time.Now()); err != nil {
			s.log.Warn("writing track log record failed", zap.Error(err))
		}
	}

	if recalculate != nil {
		// fire and forget: sample processing keeps going while the caller
		// replans. the in-flight flag suppresses a second episode until the
		// invocation returns. Stop waits on recalcWG, and the generation
		// check below means the callback never begins once Stop has torn the
		// subscription down.
		go func() {
			defer s.recalcWG.Done()

			s.mu.Lock()
			if gen == nil || s.quit != gen {
				s.recalcInFlight = false
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()

			recalculate()

			s.mu.Lock()
			s.recalcInFlight = false
			s.mu.Unlock()
		}()
	}

	if emit != nil {
		emit(newState)
	}
}
