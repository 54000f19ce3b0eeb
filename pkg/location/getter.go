package location

import (
	"context"
	"errors"

	"github.com/lintang-b-s/navigo/pkg/datastructure"
)

var ErrUnavailable = errors.New("current location unavailable")

// StaticGetter always reports the same position, the way a desktop caller or
// a test stands in for a device location service.
type StaticGetter struct {
	loc datastructure.Coordinate
}

func NewStaticGetter(loc datastructure.Coordinate) *StaticGetter {
	return &StaticGetter{loc: loc}
}

func (g *StaticGetter) GetCurrentLocation(ctx context.Context) (datastructure.Coordinate, error) {
	return g.loc, nil
}

// UnavailableGetter always fails, forcing the planner's first-waypoint
// fallback.
type UnavailableGetter struct{}

func NewUnavailableGetter() *UnavailableGetter {
	return &UnavailableGetter{}
}

func (g *UnavailableGetter) GetCurrentLocation(ctx context.Context) (datastructure.Coordinate, error) {
	return datastructure.Coordinate{}, ErrUnavailable
}
