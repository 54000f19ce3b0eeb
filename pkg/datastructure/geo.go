package datastructure

import "math"

type BoundingBox struct {
	minLat, minLon float64
	maxLat, maxLon float64
}

func NewBoundingBox(minLat, minLon, maxLat, maxLon float64) *BoundingBox {
	return &BoundingBox{minLat: minLat,
		minLon: minLon,
		maxLat: maxLat,
		maxLon: maxLon}
}

func NewBoundingBoxFromPath(path []Coordinate) *BoundingBox {
	bb := &BoundingBox{
		minLat: math.MaxFloat64, minLon: math.MaxFloat64,
		maxLat: -math.MaxFloat64, maxLon: -math.MaxFloat64,
	}
	for _, c := range path {
		bb.minLat = math.Min(bb.minLat, c.GetLat())
		bb.minLon = math.Min(bb.minLon, c.GetLon())
		bb.maxLat = math.Max(bb.maxLat, c.GetLat())
		bb.maxLon = math.Max(bb.maxLon, c.GetLon())
	}
	return bb
}

func (b *BoundingBox) GetMinCoord() (float64, float64) {
	return b.minLat, b.minLon
}

func (b *BoundingBox) GetMaxCoord() (float64, float64) {
	return b.maxLat, b.maxLon
}

func (b *BoundingBox) GetMinLat() float64 {
	return b.minLat
}

func (b *BoundingBox) GetMinLon() float64 {
	return b.minLon
}

func (b *BoundingBox) GetMaxLat() float64 {
	return b.maxLat
}

func (b *BoundingBox) GetMaxLon() float64 {
	return b.maxLon
}
