package datastructure

import "time"

type TrackPoint struct {
	lon   float64
	lat   float64
	time  time.Time
	speed float64 // meter/second, 0 for the first point of a track
}

func NewTrackPoint(lat, lon float64, t time.Time, speed float64) TrackPoint {
	return TrackPoint{
		lon:   lon,
		lat:   lat,
		time:  t,
		speed: speed,
	}
}

func (tp TrackPoint) Lon() float64 {
	return tp.lon
}

func (tp TrackPoint) Lat() float64 {
	return tp.lat
}

func (tp TrackPoint) Time() time.Time {
	return tp.time
}

func (tp TrackPoint) Speed() float64 {
	return tp.speed
}

func (tp TrackPoint) ToCoordinate() Coordinate {
	return NewCoordinate(tp.lat, tp.lon)
}
