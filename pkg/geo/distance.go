package geo

import (
	"math"

	"github.com/lintang-b-s/navigo/pkg/util"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) GetLat() float64 {
	return c.Lat
}

func (c Coordinate) GetLon() float64 {
	return c.Lon
}

// 16 byte (128bit)

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

const (
	earthRadiusMeters = 6371000.0
)

// CalculateHaversineDistance. calculate haversine great-circle distance in meter
// https://www.movable-type.co.uk/scripts/latlong.html
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOneRad := util.DegreeToRadians(latOne)
	latTwoRad := util.DegreeToRadians(latTwo)
	deltaLat := util.DegreeToRadians(latTwo - latOne)
	deltaLon := util.DegreeToRadians(longTwo - longOne)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(latOneRad)*math.Cos(latTwoRad)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2.0 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

func HaversineDistance(from, to Coordinate) float64 {
	return CalculateHaversineDistance(from.GetLat(), from.GetLon(), to.GetLat(), to.GetLon())
}

// NearestVertex. linear scan for the path vertex closest to loc. ties keep the
// lowest index. path must not be empty, an empty path is a programmer error.
func NearestVertex(loc Coordinate, path []Coordinate) (int, Coordinate, float64) {
	util.AssertPanic(len(path) > 0, "NearestVertex: path must not be empty")

	bestIdx := 0
	bestDist := HaversineDistance(loc, path[0])
	for i := 1; i < len(path); i++ {
		dist := HaversineDistance(loc, path[i])
		if dist < bestDist {
			bestDist = dist
			bestIdx = i
		}
	}
	return bestIdx, path[bestIdx], bestDist
}

// PathLength. cumulative haversine length of path in meter. out[i] is the
// length of the prefix path[0..=i], so out[len(path)-1] is the total length.
func PathLength(path []Coordinate) []float64 {
	cum := make([]float64, len(path))
	for i := 1; i < len(path); i++ {
		cum[i] = cum[i-1] + HaversineDistance(path[i-1], path[i])
	}
	return cum
}

func radToDeg(r float64) float64 {
	return 180.0 * r / math.Pi
}

// GetDestinationPoint returns the destination point given the starting point, bearing and distance
// dist in meter
func GetDestinationPoint(lat1, lon1 float64, bearing float64, dist float64) (float64, float64) {

	dr := dist / earthRadiusMeters

	bearing = util.DegreeToRadians(bearing)

	lat1 = util.DegreeToRadians(lat1)
	lon1 = util.DegreeToRadians(lon1)

	lat2Part1 := math.Sin(lat1) * math.Cos(dr)
	lat2Part2 := math.Cos(lat1) * math.Sin(dr) * math.Cos(bearing)

	lat2 := math.Asin(lat2Part1 + lat2Part2)

	lon2Part1 := math.Sin(bearing) * math.Sin(dr) * math.Cos(lat1)
	lon2Part2 := math.Cos(dr) - (math.Sin(lat1) * math.Sin(lat2))

	lon2 := lon1 + math.Atan2(lon2Part1, lon2Part2)

	return radToDeg(lat2), normalizeLongitude(radToDeg(lon2))
}

// normalizeLongitude. long in degree
func normalizeLongitude(long float64) float64 {
	return math.Mod((long+540), 360) - 180.0
}
