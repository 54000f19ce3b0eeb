package usecases

import (
	"context"

	"github.com/lintang-b-s/navigo/pkg"
	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/planner"
)

type Planner interface {
	PlanRoute(ctx context.Context, waypoints []datastructure.RouteWaypoint,
		opts planner.PlanOptions) (*datastructure.Route, error)
	RouteInfo(ctx context.Context, start, end datastructure.Coordinate,
		mode pkg.TravelMode) (planner.RouteInfo, error)
	RouteInfoMatrix(ctx context.Context, origins, destinations []datastructure.Coordinate,
		mode pkg.TravelMode) ([][]planner.RouteInfo, error)
}
