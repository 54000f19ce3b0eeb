// Package planner turns a list of stops into a drivable/walkable Route by
// querying the external directions provider with an optimize-order request
// and decoding the returned polyline geometry.
package planner

import (
	"context"

	"github.com/lintang-b-s/navigo/pkg"
	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/directions"
	"github.com/lintang-b-s/navigo/pkg/polyline"
	"github.com/lintang-b-s/navigo/pkg/util"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

type PlanOptions struct {
	IncludeUserLocation bool
	TravelMode          pkg.TravelMode
}

func DefaultPlanOptions() PlanOptions {
	return PlanOptions{
		IncludeUserLocation: true,
		TravelMode:          pkg.WALKING,
	}
}

type RoutePlanner struct {
	log     *zap.Logger
	client  DirectionsAPI
	locator LocationGetter

	routeInfoCache *lru.Cache[routeInfoKey, RouteInfo]
}

func NewRoutePlanner(log *zap.Logger, client DirectionsAPI, locator LocationGetter,
	routeInfoCacheSize int) *RoutePlanner {
	if routeInfoCacheSize <= 0 {
		routeInfoCacheSize = pkg.DEFAULT_ROUTE_INFO_CACHE_SIZE
	}
	routeInfoCache, _ := lru.New[routeInfoKey, RouteInfo](routeInfoCacheSize)

	return &RoutePlanner{
		log:            log,
		client:         client,
		locator:        locator,
		routeInfoCache: routeInfoCache,
	}
}

// PlanRoute plans one multi-stop route visiting every waypoint. The provider
// is asked to optimize the visiting order of the intermediate stops, the
// origin and destination are never reordered. A single failed attempt
// surfaces immediately, there is no retry.
func (p *RoutePlanner) PlanRoute(ctx context.Context, waypoints []datastructure.RouteWaypoint,
	opts PlanOptions) (*datastructure.Route, error) {
	if len(waypoints) < 2 {
		return nil, util.WrapErrorf(nil, util.ErrInsufficientWaypoints,
			"plan route needs at least 2 waypoints, got %d", len(waypoints))
	}

	if len(waypoints) > pkg.MAX_PROVIDER_WAYPOINTS {
		p.log.Warn("truncating waypoint list to the provider limit",
			zap.Int("requested", len(waypoints)),
			zap.Int("limit", pkg.MAX_PROVIDER_WAYPOINTS))
		waypoints = waypoints[:pkg.MAX_PROVIDER_WAYPOINTS]
	}

	origin, originIsFirstWaypoint := p.resolveOrigin(ctx, waypoints, opts)

	// every waypoint not consumed as origin or destination is an
	// intermediate stop submitted for order optimization
	intermediateStart := 0
	if originIsFirstWaypoint {
		intermediateStart = 1
	}
	intermediates := waypoints[intermediateStart : len(waypoints)-1]

	intermediateCoords := make([]datastructure.Coordinate, len(intermediates))
	for i, wp := range intermediates {
		intermediateCoords[i] = wp.GetCoordinate()
	}

	destination := waypoints[len(waypoints)-1]

	response, err := p.client.Directions(ctx, directions.NewRequest(
		origin, destination.GetCoordinate(), intermediateCoords, true, opts.TravelMode))
	if err != nil {
		return nil, err
	}

	candidate := response.Routes[0]

	coords, err := polyline.Decode(candidate.OverviewPolyline.Points)
	if err != nil {
		return nil, err
	}

	totalDistance, totalDuration := 0, 0
	segments := make([]datastructure.RouteSegment, 0, len(candidate.Legs))
	for _, leg := range candidate.Legs {
		totalDistance += leg.Distance.Value
		totalDuration += leg.Duration.Value

		steps := make([]datastructure.RouteStep, 0, len(leg.Steps))
		for _, step := range leg.Steps {
			steps = append(steps, datastructure.NewRouteStep(
				step.Distance.Value, step.Duration.Value,
				stripHTML(step.HTMLInstructions), step.Maneuver))
		}
		segments = append(segments, datastructure.NewRouteSegment(
			leg.Distance.Value, leg.Duration.Value, steps))
	}

	orderedWaypoints, err := reorderWaypoints(waypoints, intermediateStart, candidate.WaypointOrder)
	if err != nil {
		return nil, err
	}

	return datastructure.NewRoute(coords, totalDistance, totalDuration,
		segments, orderedWaypoints), nil
}

// resolveOrigin. the route starts from the current device location when asked
// for and available, otherwise silently from the first waypoint.
func (p *RoutePlanner) resolveOrigin(ctx context.Context, waypoints []datastructure.RouteWaypoint,
	opts PlanOptions) (datastructure.Coordinate, bool) {
	if opts.IncludeUserLocation && p.locator != nil {
		loc, err := p.locator.GetCurrentLocation(ctx)
		if err == nil {
			return loc, false
		}
		p.log.Debug("current location unavailable, falling back to first waypoint",
			zap.Error(err))
	}
	return waypoints[0].GetCoordinate(), true
}

// reorderWaypoints applies the provider's optimized visiting order to the
// intermediate portion of the waypoint list. Origin and destination keep
// their positions. An order that is not a permutation of the submitted
// intermediates is a malformed provider reply.
func reorderWaypoints(waypoints []datastructure.RouteWaypoint, intermediateStart int,
	order []int) ([]datastructure.RouteWaypoint, error) {
	intermediates := waypoints[intermediateStart : len(waypoints)-1]

	if len(order) == 0 {
		return waypoints, nil
	}
	if len(order) != len(intermediates) {
		return nil, util.WrapErrorf(nil, util.ErrProviderUnavailable,
			"waypoint_order has %d entries for %d intermediate stops", len(order), len(intermediates))
	}

	ordered := make([]datastructure.RouteWaypoint, 0, len(waypoints))
	ordered = append(ordered, waypoints[:intermediateStart]...)

	seen := make([]bool, len(intermediates))
	for _, idx := range order {
		if idx < 0 || idx >= len(intermediates) || seen[idx] {
			return nil, util.WrapErrorf(nil, util.ErrProviderUnavailable,
				"waypoint_order index %d is not a valid permutation entry", idx)
		}
		seen[idx] = true
		ordered = append(ordered, intermediates[idx])
	}

	return append(ordered, waypoints[len(waypoints)-1]), nil
}
