package usecases

import (
	"context"

	"github.com/lintang-b-s/navigo/pkg"
	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/navigation"
	"github.com/lintang-b-s/navigo/pkg/planner"
	"go.uber.org/zap"
)

// NavigationService fronts the planner and session factory for the transport
// layer.
type NavigationService struct {
	log           *zap.Logger
	planner       Planner
	sessionConfig navigation.Config
}

func NewNavigationService(log *zap.Logger, routePlanner Planner,
	sessionConfig navigation.Config) *NavigationService {
	return &NavigationService{
		log:           log,
		planner:       routePlanner,
		sessionConfig: sessionConfig,
	}
}

func (ns *NavigationService) PlanRoute(ctx context.Context, waypoints []datastructure.RouteWaypoint,
	includeUserLocation bool, mode pkg.TravelMode) (*datastructure.Route, error) {
	route, err := ns.planner.PlanRoute(ctx, waypoints, planner.PlanOptions{
		IncludeUserLocation: includeUserLocation,
		TravelMode:          mode,
	})
	if err != nil {
		return nil, err
	}

	ns.log.Info("route planned",
		zap.Int("stops", len(route.GetWaypoints())),
		zap.Int("distance meters", route.GetDistanceMeters()),
		zap.Int("duration seconds", route.GetDurationSeconds()))
	return route, nil
}

func (ns *NavigationService) RouteInfo(ctx context.Context, start, end datastructure.Coordinate,
	mode pkg.TravelMode) (planner.RouteInfo, error) {
	return ns.planner.RouteInfo(ctx, start, end, mode)
}

func (ns *NavigationService) RouteInfoMatrix(ctx context.Context, origins, destinations []datastructure.Coordinate,
	mode pkg.TravelMode) ([][]planner.RouteInfo, error) {
	return ns.planner.RouteInfoMatrix(ctx, origins, destinations, mode)
}

// NewSession hands out a session bound to the given location source. One
// handle, one active session: the caller owns the returned value.
func (ns *NavigationService) NewSession(watcher navigation.LocationWatcher) *navigation.Session {
	return navigation.NewSession(ns.log, watcher, ns.sessionConfig)
}
