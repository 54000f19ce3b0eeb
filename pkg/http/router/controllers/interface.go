package controllers

import (
	"context"

	"github.com/lintang-b-s/navigo/pkg"
	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/navigation"
	"github.com/lintang-b-s/navigo/pkg/planner"
)

type NavigationService interface {
	PlanRoute(ctx context.Context, waypoints []datastructure.RouteWaypoint,
		includeUserLocation bool, mode pkg.TravelMode) (*datastructure.Route, error)
	RouteInfo(ctx context.Context, start, end datastructure.Coordinate,
		mode pkg.TravelMode) (planner.RouteInfo, error)
	RouteInfoMatrix(ctx context.Context, origins, destinations []datastructure.Coordinate,
		mode pkg.TravelMode) ([][]planner.RouteInfo, error)
	NewSession(watcher navigation.LocationWatcher) *navigation.Session
}
