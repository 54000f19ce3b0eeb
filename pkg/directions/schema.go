package directions

// response schema of the directions provider. only the fields this engine
// consumes are modeled, everything else in the provider payload is ignored by
// the json decoder. optional fields (waypoint_order, maneuver) decode to their
// zero value when absent, never to a silent null dereference.

type Response struct {
	Status string           `json:"status"`
	Routes []RouteCandidate `json:"routes"`
}

type RouteCandidate struct {
	Legs             []Leg    `json:"legs"`
	OverviewPolyline Polyline `json:"overview_polyline"`
	WaypointOrder    []int    `json:"waypoint_order"`
}

type Leg struct {
	Distance TextValue `json:"distance"`
	Duration TextValue `json:"duration"`
	Steps    []Step    `json:"steps"`
}

type Step struct {
	Distance         TextValue `json:"distance"`
	Duration         TextValue `json:"duration"`
	HTMLInstructions string    `json:"html_instructions"`
	Maneuver         string    `json:"maneuver"` // empty when the provider sent none
}

type TextValue struct {
	Value int `json:"value"` // meter for distance, second for duration
}

type Polyline struct {
	Points string `json:"points"`
}
