package location

import (
	"context"
	"time"

	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/navigation"
	"github.com/lintang-b-s/navigo/pkg/tracklog"
	"go.uber.org/zap"
)

// ReplayWatcher replays a recorded track log as a live position stream,
// honoring the recorded inter-sample gaps scaled down by speedup.
type ReplayWatcher struct {
	log     *zap.Logger
	track   []datastructure.TrackPoint
	speedup float64
}

func NewReplayWatcher(log *zap.Logger, track []datastructure.TrackPoint, speedup float64) *ReplayWatcher {
	if speedup <= 0 {
		speedup = 1
	}
	return &ReplayWatcher{
		log:     log,
		track:   track,
		speedup: speedup,
	}
}

// NewReplayWatcherFromFile reads a .trk.bz2 track log and replays it.
func NewReplayWatcherFromFile(log *zap.Logger, filename string, speedup float64) (*ReplayWatcher, error) {
	track, err := tracklog.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewReplayWatcher(log, track, speedup), nil
}

func (w *ReplayWatcher) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}

func (w *ReplayWatcher) WatchPosition(minIntervalMs int, minDistanceMeters float64,
	onSample func(datastructure.Coordinate)) (navigation.Subscription, error) {
	sub := newSubscription()
	go w.run(sub, onSample)
	return sub, nil
}

func (w *ReplayWatcher) run(sub *subscription, onSample func(datastructure.Coordinate)) {
	for i, tp := range w.track {
		if i > 0 {
			gap := tp.Time().Sub(w.track[i-1].Time())
			if gap > 0 {
				time.Sleep(time.Duration(float64(gap) / w.speedup))
			}
		}

		if !sub.deliver(onSample, tp.ToCoordinate()) {
			return
		}
	}

	w.log.Debug("track replay finished", zap.Int("points", len(w.track)))
}
