package navigation

import (
	"context"

	"github.com/lintang-b-s/navigo/pkg/datastructure"
)

// LocationWatcher is the live position source of a session. Cancel of the
// returned Subscription is synchronous: once it returns, onSample is not
// invoked again.
type LocationWatcher interface {
	RequestPermission(ctx context.Context) (bool, error)
	WatchPosition(minIntervalMs int, minDistanceMeters float64,
		onSample func(datastructure.Coordinate)) (Subscription, error)
}

type Subscription interface {
	Cancel()
}
