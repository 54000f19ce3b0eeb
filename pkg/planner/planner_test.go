package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/lintang-b-s/navigo/pkg"
	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/directions"
	"github.com/lintang-b-s/navigo/pkg/polyline"
	"github.com/lintang-b-s/navigo/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDirections struct {
	mu       sync.Mutex
	calls    int
	requests []directions.Request
	response *directions.Response
	err      error
}

func (f *fakeDirections) Directions(ctx context.Context, request directions.Request) (*directions.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requests = append(f.requests, request)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeLocator struct {
	loc datastructure.Coordinate
	err error
}

func (f *fakeLocator) GetCurrentLocation(ctx context.Context) (datastructure.Coordinate, error) {
	return f.loc, f.err
}

func makeWaypoints(n int) []datastructure.RouteWaypoint {
	wps := make([]datastructure.RouteWaypoint, n)
	for i := range wps {
		wps[i] = datastructure.NewRouteWaypoint(
			datastructure.NewCoordinate(59.0+float64(i)*0.01, 18.0+float64(i)*0.01),
			fmt.Sprintf("stop-%d", i), fmt.Sprintf("ext-%d", i))
	}
	return wps
}

func singleRouteResponse(path []datastructure.Coordinate, order []int) *directions.Response {
	return &directions.Response{
		Status: pkg.DIRECTIONS_STATUS_OK,
		Routes: []directions.RouteCandidate{
			{
				Legs: []directions.Leg{
					{
						Distance: directions.TextValue{Value: 1200},
						Duration: directions.TextValue{Value: 900},
						Steps: []directions.Step{
							{
								Distance:         directions.TextValue{Value: 700},
								Duration:         directions.TextValue{Value: 500},
								HTMLInstructions: "Turn <b>left</b> onto <div style=\"font-size:0.9em\">Drottninggatan</div>",
								Maneuver:         "turn-left",
							},
							{
								Distance:         directions.TextValue{Value: 500},
								Duration:         directions.TextValue{Value: 400},
								HTMLInstructions: "Continue straight",
							},
						},
					},
					{
						Distance: directions.TextValue{Value: 800},
						Duration: directions.TextValue{Value: 600},
					},
				},
				OverviewPolyline: directions.Polyline{Points: polyline.Encode(path)},
				WaypointOrder:    order,
			},
		},
	}
}

func TestPlanRouteInsufficientWaypoints(t *testing.T) {
	client := &fakeDirections{}
	p := NewRoutePlanner(zap.NewNop(), client, nil, 0)

	route, err := p.PlanRoute(context.Background(), makeWaypoints(1), DefaultPlanOptions())
	require.Nil(t, route)
	require.Error(t, err)

	var navErr *util.Error
	require.True(t, errors.As(err, &navErr))
	require.Equal(t, util.ErrInsufficientWaypoints, navErr.Code())
	require.Zero(t, client.calls, "no network call may happen before validation")
}

func TestPlanRouteTruncatesToProviderLimit(t *testing.T) {
	path := []datastructure.Coordinate{
		datastructure.NewCoordinate(59.0, 18.0),
		datastructure.NewCoordinate(59.1, 18.1),
	}
	client := &fakeDirections{response: singleRouteResponse(path, nil)}
	p := NewRoutePlanner(zap.NewNop(), client, nil, 0)

	wps := makeWaypoints(30)
	route, err := p.PlanRoute(context.Background(), wps,
		PlanOptions{IncludeUserLocation: false, TravelMode: pkg.WALKING})
	require.NoError(t, err)
	require.Equal(t, 1, client.calls)

	// first of the 25 surviving stops is the origin, last is the destination,
	// the 23 in between are submitted in their original relative order
	sent := client.requests[0]
	require.Equal(t, wps[0].GetCoordinate(), sent.GetOrigin())
	require.Equal(t, wps[24].GetCoordinate(), sent.GetDestination())
	require.Len(t, sent.GetIntermediates(), 23)
	for i, c := range sent.GetIntermediates() {
		require.Equal(t, wps[i+1].GetCoordinate(), c)
	}
	require.True(t, sent.IsOptimize())
	require.Len(t, route.GetWaypoints(), 25)
}

func TestPlanRouteProviderUnavailable(t *testing.T) {
	client := &fakeDirections{err: util.WrapErrorf(nil, util.ErrProviderUnavailable,
		"directions provider status %q", "REQUEST_DENIED")}
	p := NewRoutePlanner(zap.NewNop(), client, nil, 0)

	route, err := p.PlanRoute(context.Background(), makeWaypoints(3), DefaultPlanOptions())
	require.Nil(t, route)

	var navErr *util.Error
	require.True(t, errors.As(err, &navErr))
	require.Equal(t, util.ErrProviderUnavailable, navErr.Code())
}

func TestPlanRouteAssemblesRoute(t *testing.T) {
	path := []datastructure.Coordinate{
		datastructure.NewCoordinate(59.0, 18.0),
		datastructure.NewCoordinate(59.05, 18.05),
		datastructure.NewCoordinate(59.1, 18.1),
	}
	client := &fakeDirections{response: singleRouteResponse(path, nil)}
	p := NewRoutePlanner(zap.NewNop(), client, nil, 0)

	route, err := p.PlanRoute(context.Background(), makeWaypoints(3),
		PlanOptions{IncludeUserLocation: false, TravelMode: pkg.WALKING})
	require.NoError(t, err)

	require.Equal(t, 2000, route.GetDistanceMeters())
	require.Equal(t, 1500, route.GetDurationSeconds())
	require.Len(t, route.GetCoordinates(), len(path))
	require.Len(t, route.GetSegments(), 2)

	steps := route.GetSegments()[0].GetSteps()
	require.Len(t, steps, 2)
	require.Equal(t, "Turn left onto Drottninggatan", steps[0].GetInstruction())
	require.Equal(t, "turn-left", steps[0].GetManeuver())
	require.Equal(t, "Continue straight", steps[1].GetInstruction())
	require.Empty(t, steps[1].GetManeuver())
}

func TestPlanRouteAppliesWaypointOrder(t *testing.T) {
	path := []datastructure.Coordinate{
		datastructure.NewCoordinate(59.0, 18.0),
		datastructure.NewCoordinate(59.1, 18.1),
	}
	client := &fakeDirections{response: singleRouteResponse(path, []int{2, 0, 1})}
	p := NewRoutePlanner(zap.NewNop(), client, nil, 0)

	wps := makeWaypoints(5)
	route, err := p.PlanRoute(context.Background(), wps,
		PlanOptions{IncludeUserLocation: false, TravelMode: pkg.WALKING})
	require.NoError(t, err)

	got := route.GetWaypoints()
	require.Len(t, got, 5)
	require.Equal(t, wps[0], got[0], "origin keeps its position")
	require.Equal(t, wps[4], got[4], "destination keeps its position")
	require.Equal(t, wps[3], got[1])
	require.Equal(t, wps[1], got[2])
	require.Equal(t, wps[2], got[3])
}

func TestPlanRouteRejectsMalformedWaypointOrder(t *testing.T) {
	path := []datastructure.Coordinate{
		datastructure.NewCoordinate(59.0, 18.0),
		datastructure.NewCoordinate(59.1, 18.1),
	}
	client := &fakeDirections{response: singleRouteResponse(path, []int{0, 5, 1})}
	p := NewRoutePlanner(zap.NewNop(), client, nil, 0)

	route, err := p.PlanRoute(context.Background(), makeWaypoints(5),
		PlanOptions{IncludeUserLocation: false, TravelMode: pkg.WALKING})
	require.Nil(t, route)

	var navErr *util.Error
	require.True(t, errors.As(err, &navErr))
	require.Equal(t, util.ErrProviderUnavailable, navErr.Code())
}

func TestPlanRouteUsesUserLocationOrigin(t *testing.T) {
	path := []datastructure.Coordinate{
		datastructure.NewCoordinate(59.0, 18.0),
		datastructure.NewCoordinate(59.1, 18.1),
	}
	userLoc := datastructure.NewCoordinate(59.333, 18.055)

	client := &fakeDirections{response: singleRouteResponse(path, nil)}
	p := NewRoutePlanner(zap.NewNop(), client, &fakeLocator{loc: userLoc}, 0)

	wps := makeWaypoints(3)
	_, err := p.PlanRoute(context.Background(), wps, DefaultPlanOptions())
	require.NoError(t, err)

	sent := client.requests[0]
	require.Equal(t, userLoc, sent.GetOrigin())
	// the first waypoint was not consumed as origin, so it is submitted as an
	// intermediate stop together with the middle one
	require.Len(t, sent.GetIntermediates(), 2)
	require.Equal(t, wps[0].GetCoordinate(), sent.GetIntermediates()[0])
	require.Equal(t, wps[1].GetCoordinate(), sent.GetIntermediates()[1])
}

func TestPlanRouteFallsBackWhenLocationUnavailable(t *testing.T) {
	path := []datastructure.Coordinate{
		datastructure.NewCoordinate(59.0, 18.0),
		datastructure.NewCoordinate(59.1, 18.1),
	}
	client := &fakeDirections{response: singleRouteResponse(path, nil)}
	p := NewRoutePlanner(zap.NewNop(), client,
		&fakeLocator{err: errors.New("gps cold start")}, 0)

	wps := makeWaypoints(3)
	_, err := p.PlanRoute(context.Background(), wps, DefaultPlanOptions())
	require.NoError(t, err)

	sent := client.requests[0]
	require.Equal(t, wps[0].GetCoordinate(), sent.GetOrigin())
	require.Len(t, sent.GetIntermediates(), 1)
}

func TestRouteInfoCacheHitSkipsProvider(t *testing.T) {
	client := &fakeDirections{response: &directions.Response{
		Status: pkg.DIRECTIONS_STATUS_OK,
		Routes: []directions.RouteCandidate{
			{Legs: []directions.Leg{{
				Distance: directions.TextValue{Value: 4200},
				Duration: directions.TextValue{Value: 1800},
			}}},
		},
	}}
	p := NewRoutePlanner(zap.NewNop(), client, nil, 16)

	start := datastructure.NewCoordinate(59.3293, 18.0686)
	end := datastructure.NewCoordinate(59.8586, 17.6389)

	first, err := p.RouteInfo(context.Background(), start, end, pkg.DRIVING)
	require.NoError(t, err)
	require.Equal(t, 4200, first.GetDistanceMeters())
	require.Equal(t, 1800, first.GetDurationSeconds())
	require.Equal(t, 1, client.calls)

	second, err := p.RouteInfo(context.Background(), start, end, pkg.DRIVING)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, client.calls, "second identical query must hit the cache")

	// a different travel mode is a different query
	_, err = p.RouteInfo(context.Background(), start, end, pkg.WALKING)
	require.NoError(t, err)
	require.Equal(t, 2, client.calls)
}

func TestRouteInfoMatrix(t *testing.T) {
	client := &fakeDirections{response: &directions.Response{
		Status: pkg.DIRECTIONS_STATUS_OK,
		Routes: []directions.RouteCandidate{
			{Legs: []directions.Leg{{
				Distance: directions.TextValue{Value: 1000},
				Duration: directions.TextValue{Value: 600},
			}}},
		},
	}}
	p := NewRoutePlanner(zap.NewNop(), client, nil, 64)

	origins := []datastructure.Coordinate{
		datastructure.NewCoordinate(59.0, 18.0),
		datastructure.NewCoordinate(59.5, 18.5),
	}
	destinations := []datastructure.Coordinate{
		datastructure.NewCoordinate(60.0, 19.0),
		datastructure.NewCoordinate(60.5, 19.5),
		datastructure.NewCoordinate(61.0, 20.0),
	}

	matrix, err := p.RouteInfoMatrix(context.Background(), origins, destinations, pkg.DRIVING)
	require.NoError(t, err)
	require.Len(t, matrix, 2)
	for _, row := range matrix {
		require.Len(t, row, 3)
		for _, info := range row {
			require.Equal(t, 1000, info.GetDistanceMeters())
			require.Equal(t, 600, info.GetDurationSeconds())
		}
	}
}
