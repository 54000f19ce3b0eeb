package controllers

import (
	"github.com/lintang-b-s/navigo/pkg/datastructure"
	"github.com/lintang-b-s/navigo/pkg/planner"
	"github.com/lintang-b-s/navigo/pkg/polyline"
)

type coordinateDTO struct {
	Lat float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon float64 `json:"lon" validate:"required,min=-180,max=180"`
}

func (c coordinateDTO) toCoordinate() datastructure.Coordinate {
	return datastructure.NewCoordinate(c.Lat, c.Lon)
}

type waypointDTO struct {
	Coordinate coordinateDTO `json:"coordinate" validate:"required"`
	Name       string        `json:"name"`
	ExternalId string        `json:"external_id"`
}

type planRouteRequest struct {
	Waypoints           []waypointDTO `json:"waypoints" validate:"required,min=2,dive"`
	IncludeUserLocation *bool         `json:"include_user_location"`
	Mode                string        `json:"mode" validate:"omitempty,oneof=walking driving cycling"`
}

func (req planRouteRequest) toWaypoints() []datastructure.RouteWaypoint {
	wps := make([]datastructure.RouteWaypoint, len(req.Waypoints))
	for i, wp := range req.Waypoints {
		wps[i] = datastructure.NewRouteWaypoint(wp.Coordinate.toCoordinate(), wp.Name, wp.ExternalId)
	}
	return wps
}

func (req planRouteRequest) includeUserLocation() bool {
	if req.IncludeUserLocation == nil {
		return true
	}
	return *req.IncludeUserLocation
}

type routeStepResponse struct {
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
	Instruction     string `json:"instruction"`
	Maneuver        string `json:"maneuver,omitempty"`
}

type routeSegmentResponse struct {
	DistanceMeters  int                 `json:"distance_meters"`
	DurationSeconds int                 `json:"duration_seconds"`
	Steps           []routeStepResponse `json:"steps"`
}

type routeWaypointResponse struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Name       string  `json:"name,omitempty"`
	ExternalId string  `json:"external_id,omitempty"`
}

type routeResponse struct {
	Polyline          string                  `json:"polyline"`
	DistanceMeters    int                     `json:"distance_meters"`
	DurationSeconds   int                     `json:"duration_seconds"`
	DistanceFormatted string                  `json:"distance"`
	DurationFormatted string                  `json:"duration"`
	Segments          []routeSegmentResponse  `json:"segments"`
	Waypoints         []routeWaypointResponse `json:"waypoints"`
}

func NewRouteResponse(route *datastructure.Route) routeResponse {
	segments := make([]routeSegmentResponse, 0, len(route.GetSegments()))
	for _, segment := range route.GetSegments() {
		steps := make([]routeStepResponse, 0, len(segment.GetSteps()))
		for _, step := range segment.GetSteps() {
			steps = append(steps, routeStepResponse{
				DistanceMeters:  step.GetDistanceMeters(),
				DurationSeconds: step.GetDurationSeconds(),
				Instruction:     step.GetInstruction(),
				Maneuver:        step.GetManeuver(),
			})
		}
		segments = append(segments, routeSegmentResponse{
			DistanceMeters:  segment.GetDistanceMeters(),
			DurationSeconds: segment.GetDurationSeconds(),
			Steps:           steps,
		})
	}

	waypoints := make([]routeWaypointResponse, 0, len(route.GetWaypoints()))
	for _, wp := range route.GetWaypoints() {
		waypoints = append(waypoints, routeWaypointResponse{
			Lat:        wp.GetCoordinate().GetLat(),
			Lon:        wp.GetCoordinate().GetLon(),
			Name:       wp.GetName(),
			ExternalId: wp.GetExternalId(),
		})
	}

	return routeResponse{
		Polyline:          polyline.Encode(route.GetCoordinates()),
		DistanceMeters:    route.GetDistanceMeters(),
		DurationSeconds:   route.GetDurationSeconds(),
		DistanceFormatted: planner.FormatDistance(route.GetDistanceMeters()),
		DurationFormatted: planner.FormatDuration(route.GetDurationSeconds()),
		Segments:          segments,
		Waypoints:         waypoints,
	}
}

type routeInfoRequest struct {
	Start coordinateDTO `json:"start" validate:"required"`
	End   coordinateDTO `json:"end" validate:"required"`
	Mode  string        `json:"mode" validate:"omitempty,oneof=walking driving cycling"`
}

type routeInfoResponse struct {
	DistanceMeters    int    `json:"distance_meters"`
	DurationSeconds   int    `json:"duration_seconds"`
	DistanceFormatted string `json:"distance"`
	DurationFormatted string `json:"duration"`
}

func NewRouteInfoResponse(info planner.RouteInfo) routeInfoResponse {
	return routeInfoResponse{
		DistanceMeters:    info.GetDistanceMeters(),
		DurationSeconds:   info.GetDurationSeconds(),
		DistanceFormatted: planner.FormatDistance(info.GetDistanceMeters()),
		DurationFormatted: planner.FormatDuration(info.GetDurationSeconds()),
	}
}

type routeInfoMatrixRequest struct {
	Origins      []coordinateDTO `json:"origins" validate:"required,min=1,dive"`
	Destinations []coordinateDTO `json:"destinations" validate:"required,min=1,dive"`
	Mode         string          `json:"mode" validate:"omitempty,oneof=walking driving cycling"`
}

func toCoordinates(dtos []coordinateDTO) []datastructure.Coordinate {
	coords := make([]datastructure.Coordinate, len(dtos))
	for i, dto := range dtos {
		coords[i] = dto.toCoordinate()
	}
	return coords
}

func NewRouteInfoMatrixResponse(matrix [][]planner.RouteInfo) [][]routeInfoResponse {
	rows := make([][]routeInfoResponse, len(matrix))
	for i, row := range matrix {
		rows[i] = make([]routeInfoResponse, len(row))
		for j, info := range row {
			rows[i][j] = NewRouteInfoResponse(info)
		}
	}
	return rows
}

// websocket live navigation messages

type navigationClientMessage struct {
	Type      string         `json:"type" validate:"required,oneof=start location stop"`
	Waypoints []waypointDTO  `json:"waypoints,omitempty" validate:"omitempty,min=2,dive"`
	Mode      string         `json:"mode,omitempty" validate:"omitempty,oneof=walking driving cycling"`
	Location  *coordinateDTO `json:"location,omitempty"`
}

type navigationStateResponse struct {
	IsNavigating    bool           `json:"is_navigating"`
	IsOffRoute      bool           `json:"is_off_route"`
	CurrentLocation *coordinateDTO `json:"current_location,omitempty"`
	SnappedLocation *coordinateDTO `json:"snapped_location,omitempty"`
	BearingDegrees  *float64       `json:"bearing_degrees,omitempty"`
	CompletedCount  int            `json:"completed_count"`
	CompletedMeters float64        `json:"completed_meters"`
	TotalMeters     float64        `json:"total_meters"`
}
