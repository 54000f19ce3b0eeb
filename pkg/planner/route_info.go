package planner

import (
	"context"

	"github.com/lintang-b-s/navigo/pkg"
	"github.com/lintang-b-s/navigo/pkg/concurrent"
	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/directions"
	"github.com/lintang-b-s/navigo/pkg/util"
)

// RouteInfo is the reduced single-leg planning result: totals only, no
// geometry.
type RouteInfo struct {
	distanceMeters  int
	durationSeconds int
}

func NewRouteInfo(distanceMeters, durationSeconds int) RouteInfo {
	return RouteInfo{
		distanceMeters:  distanceMeters,
		durationSeconds: durationSeconds,
	}
}

func (ri RouteInfo) GetDistanceMeters() int {
	return ri.distanceMeters
}

func (ri RouteInfo) GetDurationSeconds() int {
	return ri.durationSeconds
}

// cache key at 1e-5 degree precision, the same resolution the polyline
// geometry carries. two queries closer than that are the same query.
type routeInfoKey struct {
	startLat, startLon float64
	endLat, endLon     float64
	mode               pkg.TravelMode
}

func newRouteInfoKey(start, end datastructure.Coordinate, mode pkg.TravelMode) routeInfoKey {
	return routeInfoKey{
		startLat: util.RoundFloat(start.GetLat(), 5),
		startLon: util.RoundFloat(start.GetLon(), 5),
		endLat:   util.RoundFloat(end.GetLat(), 5),
		endLon:   util.RoundFloat(end.GetLon(), 5),
		mode:     mode,
	}
}

// RouteInfo returns distance and duration of the single leg start->end.
// Results are served from the lru cache when the same pair was asked before.
func (p *RoutePlanner) RouteInfo(ctx context.Context, start, end datastructure.Coordinate,
	mode pkg.TravelMode) (RouteInfo, error) {
	key := newRouteInfoKey(start, end, mode)
	if info, ok := p.routeInfoCache.Get(key); ok {
		return info, nil
	}

	response, err := p.client.Directions(ctx, directions.NewRequest(
		start, end, nil, false, mode))
	if err != nil {
		return RouteInfo{}, err
	}

	totalDistance, totalDuration := 0, 0
	for _, leg := range response.Routes[0].Legs {
		totalDistance += leg.Distance.Value
		totalDuration += leg.Duration.Value
	}

	info := NewRouteInfo(totalDistance, totalDuration)
	p.routeInfoCache.Add(key, info)
	return info, nil
}

const matrixWorkers = 8

type matrixJob struct {
	row, col int
}

type matrixResult struct {
	row, col int
	info     RouteInfo
	err      error
}

// RouteInfoMatrix computes RouteInfo for every (origin, destination) pair.
// Pairs are fanned out over a bounded worker pool, the first provider error
// fails the whole matrix.
func (p *RoutePlanner) RouteInfoMatrix(ctx context.Context, origins, destinations []datastructure.Coordinate,
	mode pkg.TravelMode) ([][]RouteInfo, error) {
	numJobs := len(origins) * len(destinations)
	if numJobs == 0 {
		return [][]RouteInfo{}, nil
	}

	numWorkers := util.MinInt(matrixWorkers, numJobs)
	pool := concurrent.NewWorkerPool[matrixJob, matrixResult](numWorkers, numJobs)

	pool.Start(func(job matrixJob) matrixResult {
		info, err := p.RouteInfo(ctx, origins[job.row], destinations[job.col], mode)
		return matrixResult{row: job.row, col: job.col, info: info, err: err}
	})

	for i := range origins {
		for j := range destinations {
			pool.AddJob(matrixJob{row: i, col: j})
		}
	}
	pool.Close()
	pool.Wait()

	matrix := make([][]RouteInfo, len(origins))
	for i := range matrix {
		matrix[i] = make([]RouteInfo, len(destinations))
	}

	for res := range pool.CollectResults() {
		if res.err != nil {
			return nil, res.err
		}
		matrix[res.row][res.col] = res.info
	}

	return matrix, nil
}
