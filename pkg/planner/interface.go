package planner

import (
	"context"

	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/directions"
)

type DirectionsAPI interface {
	Directions(ctx context.Context, request directions.Request) (*directions.Response, error)
}

// LocationGetter resolves the current device location. An error means the
// location is unavailable, the planner then falls back to the first waypoint.
type LocationGetter interface {
	GetCurrentLocation(ctx context.Context) (datastructure.Coordinate, error)
}
