package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/lintang-b-s/navigo/pkg"
	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/directions"
	"github.com/lintang-b-s/navigo/pkg/geo"
	"github.com/lintang-b-s/navigo/pkg/location"
	"github.com/lintang-b-s/navigo/pkg/logger"
	"github.com/lintang-b-s/navigo/pkg/navigation"
	"github.com/lintang-b-s/navigo/pkg/planner"
	"github.com/lintang-b-s/navigo/pkg/tracklog"
	"go.uber.org/zap"
)

var (
	apiKey    = flag.String("api_key", "", "directions provider api key")
	waypoints = flag.String("waypoints", "", `stops to visit, "lat,lon;lat,lon;..." (at least 2)`)
	mode      = flag.String("mode", "driving", "travel mode: walking, driving or cycling")

	jitterMeters = flag.Float64("jitter", 8.0, "gps noise standard deviation in meters")
	speedup      = flag.Float64("speedup", 20.0, "replay the route this many times faster than real time")
	seed         = flag.Uint64("seed", 42, "gps noise seed")

	detourMeters = flag.Float64("detour", 0.0, "displace the middle third of the driven path sideways by this many meters, to demo off-route recovery")

	trackFile = flag.String("track", "", "write the driven positions to this compressed track log")
	timeout   = flag.Duration("timeout", 5*time.Minute, "give up after this long")
)

func main() {
	flag.Parse()
	logger, err := logger.NewDevelopment()
	if err != nil {
		panic(err)
	}

	stops, err := parseWaypoints(*waypoints)
	if err != nil {
		logger.Fatal("bad -waypoints", zap.Error(err))
	}

	client := directions.NewClient(*apiKey, "", 0, 0, logger)
	routePlanner := planner.NewRoutePlanner(logger, client, nil, 0)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	route, err := routePlanner.PlanRoute(ctx, stops, planner.PlanOptions{
		IncludeUserLocation: false,
		TravelMode:          pkg.GetTravelMode(*mode),
	})
	if err != nil {
		logger.Fatal("planning the route failed", zap.Error(err))
	}
	logger.Info("route planned",
		zap.Int("distance meters", route.GetDistanceMeters()),
		zap.Int("duration seconds", route.GetDurationSeconds()),
		zap.Int("vertices", len(route.GetCoordinates())))

	drivenPath := route.GetCoordinates()
	if *detourMeters > 0 {
		drivenPath = injectDetour(drivenPath, *detourMeters)
	}

	watcher := location.NewSimulatedWatcher(logger, drivenPath, *jitterMeters, *speedup, *seed)
	session := navigation.NewSession(logger, watcher, navigation.DefaultConfig())

	if *trackFile != "" {
		writer, err := tracklog.NewWriter(*trackFile)
		if err != nil {
			logger.Fatal("opening the track log failed", zap.Error(err))
		}
		session.SetTrackWriter(writer)
	}

	done := make(chan struct{})
	total := float64(len(route.GetCoordinates()))
	started := session.Start(ctx, route,
		func(state datastructure.NavigationState) {
			completed := float64(len(state.GetCompletedCoordinates()))
			logger.Info("navigation state",
				zap.Bool("off route", state.IsOffRoute()),
				zap.Float64("progress", completed/total))
			if completed >= total {
				select {
				case <-done:
				default:
					close(done)
				}
			}
		},
		func() {
			logger.Info("off route, a real client would replan here")
		})
	if !started {
		logger.Fatal("navigation session refused to start")
	}

	select {
	case <-done:
		logger.Info("destination reached")
	case <-ctx.Done():
		logger.Warn("simulation timed out before reaching the destination")
	}
	session.Stop()
}

// parseWaypoints splits "lat,lon;lat,lon;..." into route waypoints.
func parseWaypoints(arg string) ([]datastructure.RouteWaypoint, error) {
	parts := strings.Split(arg, ";")
	if arg == "" || len(parts) < 2 {
		return nil, fmt.Errorf("need at least 2 stops separated by ';', got %q", arg)
	}

	stops := make([]datastructure.RouteWaypoint, 0, len(parts))
	for i, part := range parts {
		var lat, lon float64
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%f,%f", &lat, &lon); err != nil {
			return nil, fmt.Errorf("stop %d %q: %w", i, part, err)
		}
		stops = append(stops, datastructure.NewRouteWaypoint(
			datastructure.NewCoordinate(lat, lon), fmt.Sprintf("stop-%d", i), ""))
	}
	return stops, nil
}

// injectDetour shifts the middle third of the path sideways, perpendicular to
// the local direction of travel, so the simulated vehicle leaves the planned
// route and comes back.
func injectDetour(path []datastructure.Coordinate, meters float64) []datastructure.Coordinate {
	if len(path) < 3 {
		return path
	}

	detoured := make([]datastructure.Coordinate, len(path))
	copy(detoured, path)

	from, to := len(path)/3, 2*len(path)/3
	for i := from; i < to; i++ {
		prev, next := path[i-1], path[i]
		bearing := geo.BearingTo(prev.GetLat(), prev.GetLon(), next.GetLat(), next.GetLon())
		lat, lon := geo.GetDestinationPoint(next.GetLat(), next.GetLon(), bearing+90.0, meters)
		detoured[i] = datastructure.NewCoordinate(lat, lon)
	}
	return detoured
}
