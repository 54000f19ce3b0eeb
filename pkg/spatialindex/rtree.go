package spatialindex

import (
	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/geo"
	"github.com/tidwall/rtree"
)

type Rtree struct {
	tr *rtree.RTreeG[RouteSegment]
}

// RouteSegment is one segment of the route polyline stored in a leaf.
// firstIndex is the index of the segment start vertex in the route
// coordinates, the segment ends at firstIndex+1.
type RouteSegment struct {
	firstIndex int
	start      geo.Coordinate
	end        geo.Coordinate
}

func (rs RouteSegment) GetFirstIndex() int {
	return rs.firstIndex
}

func (rs RouteSegment) GetStart() geo.Coordinate {
	return rs.start
}

func (rs RouteSegment) GetEnd() geo.Coordinate {
	return rs.end
}

func newRouteSegment(firstIndex int, start, end geo.Coordinate) RouteSegment {
	return RouteSegment{
		firstIndex: firstIndex,
		start:      start,
		end:        end,
	}
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[RouteSegment]
	return &Rtree{
		tr: &tr,
	}
}

// Build. build r-tree over the route polyline, with each leaf having bounding box
// padded by boundingBoxRadius (in meter) around the segment endpoints.
func (rt *Rtree) Build(path []datastructure.Coordinate, boundingBoxRadius float64) {
	for i := 0; i+1 < len(path); i++ {
		from := path[i].ToGeoCoordinate()
		to := path[i+1].ToGeoCoordinate()

		bb := datastructure.NewBoundingBoxFromPath(path[i : i+2])

		lowerLat, lowerLon := geo.GetDestinationPoint(bb.GetMinLat(), bb.GetMinLon(), 225, boundingBoxRadius)
		upperLat, upperLon := geo.GetDestinationPoint(bb.GetMaxLat(), bb.GetMaxLon(), 45, boundingBoxRadius)

		rt.tr.Insert([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
			newRouteSegment(i, from, to))
	}
}

// SearchWithinRadius search for all route segments within radius (in meter) from the query point (qLat, qLon)
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64) []RouteSegment {
	lowerLat, lowerLon := geo.GetDestinationPoint(qLat, qLon, 225, radius)
	upperLat, upperLon := geo.GetDestinationPoint(qLat, qLon, 45, radius)

	results := make([]RouteSegment, 0, 10)
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, data RouteSegment) bool {
			results = append(results, data)
			if len(results) >= 20 {
				return false
			}
			return true
		})
	return results
}
