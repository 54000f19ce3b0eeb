package geo

import (
	"math"
	"testing"
)

func TestHaversineDistanceZeroForSamePoint(t *testing.T) {
	testCases := []struct {
		name  string
		point Coordinate
	}{
		{
			name:  "stockholm",
			point: NewCoordinate(59.3293, 18.0686),
		},
		{
			name:  "equator prime meridian",
			point: NewCoordinate(0, 0),
		},
		{
			name:  "southern hemisphere",
			point: NewCoordinate(-6.1751, 106.8650),
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			if got := HaversineDistance(tt.point, tt.point); got != 0 {
				t.Errorf("HaversineDistance(p, p) = %v, want 0", got)
			}
		})
	}
}

func TestHaversineDistanceSymmetric(t *testing.T) {
	testCases := []struct {
		name string
		a, b Coordinate
	}{
		{
			name: "stockholm gothenburg",
			a:    NewCoordinate(59.3293, 18.0686),
			b:    NewCoordinate(57.7089, 11.9746),
		},
		{
			name: "across the antimeridian",
			a:    NewCoordinate(52.0, 179.9),
			b:    NewCoordinate(52.0, -179.9),
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			ab := HaversineDistance(tt.a, tt.b)
			ba := HaversineDistance(tt.b, tt.a)
			if ab != ba {
				t.Errorf("HaversineDistance not symmetric: %v != %v", ab, ba)
			}
		})
	}
}

func TestHaversineDistanceStockholmGothenburg(t *testing.T) {
	stockholm := NewCoordinate(59.3293, 18.0686)
	gothenburg := NewCoordinate(57.7089, 11.9746)

	got := HaversineDistance(stockholm, gothenburg)
	want := 398000.0

	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("HaversineDistance(stockholm, gothenburg) = %v, want %v within 1%%", got, want)
	}
}

func TestNearestVertex(t *testing.T) {
	path := []Coordinate{
		NewCoordinate(59.3293, 18.0686),
		NewCoordinate(59.3300, 18.0700),
		NewCoordinate(59.3310, 18.0720),
		NewCoordinate(59.3320, 18.0740),
	}

	t.Run("first vertex wins for its own location", func(t *testing.T) {
		idx, vertex, dist := NearestVertex(path[0], path)
		if idx != 0 {
			t.Errorf("NearestVertex(path[0], path) index = %d, want 0", idx)
		}
		if vertex != path[0] {
			t.Errorf("NearestVertex(path[0], path) vertex = %v, want %v", vertex, path[0])
		}
		if dist != 0 {
			t.Errorf("NearestVertex(path[0], path) dist = %v, want 0", dist)
		}
	})

	t.Run("interior vertex", func(t *testing.T) {
		near := NewCoordinate(59.3311, 18.0721)
		idx, _, _ := NearestVertex(near, path)
		if idx != 2 {
			t.Errorf("NearestVertex index = %d, want 2", idx)
		}
	})

	t.Run("tie resolved by lowest index", func(t *testing.T) {
		duplicated := []Coordinate{
			NewCoordinate(59.3293, 18.0686),
			NewCoordinate(59.4000, 18.2000),
			NewCoordinate(59.3293, 18.0686),
		}
		idx, _, _ := NearestVertex(duplicated[0], duplicated)
		if idx != 0 {
			t.Errorf("NearestVertex index = %d, want 0 on tie", idx)
		}
	})

	t.Run("empty path panics", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("NearestVertex on empty path should panic")
			}
		}()
		NearestVertex(path[0], nil)
	})
}

func TestPathLength(t *testing.T) {
	path := []Coordinate{
		NewCoordinate(59.3293, 18.0686),
		NewCoordinate(59.3300, 18.0700),
		NewCoordinate(59.3310, 18.0720),
	}

	cum := PathLength(path)
	if len(cum) != len(path) {
		t.Fatalf("PathLength returned %d entries, want %d", len(cum), len(path))
	}
	if cum[0] != 0 {
		t.Errorf("cum[0] = %v, want 0", cum[0])
	}

	want := HaversineDistance(path[0], path[1]) + HaversineDistance(path[1], path[2])
	if math.Abs(cum[2]-want) > 1e-9 {
		t.Errorf("cum[2] = %v, want %v", cum[2], want)
	}
}

func TestGetDestinationPoint(t *testing.T) {
	lat, lon := 59.3293, 18.0686
	dist := 1000.0

	dstLat, dstLon := GetDestinationPoint(lat, lon, 45, dist)
	got := CalculateHaversineDistance(lat, lon, dstLat, dstLon)

	if math.Abs(got-dist) > 1.0 {
		t.Errorf("distance to destination point = %v, want %v within 1m", got, dist)
	}
}

func TestBearingTo(t *testing.T) {
	testCases := []struct {
		name           string
		p1Lat, p1Lon   float64
		p2Lat, p2Lon   float64
		want           float64
		toleranceInDeg float64
	}{
		{
			name:  "due north",
			p1Lat: 0, p1Lon: 0,
			p2Lat: 1, p2Lon: 0,
			want:           0,
			toleranceInDeg: 0.01,
		},
		{
			name:  "due east at equator",
			p1Lat: 0, p1Lon: 0,
			p2Lat: 0, p2Lon: 1,
			want:           90,
			toleranceInDeg: 0.01,
		},
		{
			name:  "due south",
			p1Lat: 1, p1Lon: 0,
			p2Lat: 0, p2Lon: 0,
			want:           180,
			toleranceInDeg: 0.01,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := BearingTo(tt.p1Lat, tt.p1Lon, tt.p2Lat, tt.p2Lon)
			if math.Abs(got-tt.want) > tt.toleranceInDeg {
				t.Errorf("BearingTo = %v, want %v", got, tt.want)
			}
		})
	}
}
