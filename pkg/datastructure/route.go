package datastructure

// RouteWaypoint is one stop the route must pass through. externalId links the
// stop back to whatever entity the caller tracks (a seller, a customer, ...)
// without this package knowing its type.
type RouteWaypoint struct {
	coordinate Coordinate
	name       string
	externalId string
}

func NewRouteWaypoint(coordinate Coordinate, name, externalId string) RouteWaypoint {
	return RouteWaypoint{
		coordinate: coordinate,
		name:       name,
		externalId: externalId,
	}
}

func (w RouteWaypoint) GetCoordinate() Coordinate {
	return w.coordinate
}

func (w RouteWaypoint) GetName() string {
	return w.name
}

func (w RouteWaypoint) GetExternalId() string {
	return w.externalId
}

type RouteStep struct {
	distanceMeters  int
	durationSeconds int
	instruction     string
	maneuver        string // empty when the provider sent none
}

func NewRouteStep(distanceMeters, durationSeconds int, instruction, maneuver string) RouteStep {
	return RouteStep{
		distanceMeters:  distanceMeters,
		durationSeconds: durationSeconds,
		instruction:     instruction,
		maneuver:        maneuver,
	}
}

func (s RouteStep) GetDistanceMeters() int {
	return s.distanceMeters
}

func (s RouteStep) GetDurationSeconds() int {
	return s.durationSeconds
}

func (s RouteStep) GetInstruction() string {
	return s.instruction
}

func (s RouteStep) GetManeuver() string {
	return s.maneuver
}

// RouteSegment is one leg between two consecutive stops
// (origin->wp1, wp1->wp2, ..., last wp->destination).
type RouteSegment struct {
	distanceMeters  int
	durationSeconds int
	steps           []RouteStep
}

func NewRouteSegment(distanceMeters, durationSeconds int, steps []RouteStep) RouteSegment {
	return RouteSegment{
		distanceMeters:  distanceMeters,
		durationSeconds: durationSeconds,
		steps:           steps,
	}
}

func (seg RouteSegment) GetDistanceMeters() int {
	return seg.distanceMeters
}

func (seg RouteSegment) GetDurationSeconds() int {
	return seg.durationSeconds
}

func (seg RouteSegment) GetSteps() []RouteStep {
	return seg.steps
}

// Route is the planner output. coordinates hold the dense decoded polyline,
// not just the stops. A route is built once and never mutated afterwards; the
// navigation session that consumes it owns it exclusively until the session
// stops or the route is replaced by a recalculation.
type Route struct {
	coordinates     []Coordinate
	distanceMeters  int
	durationSeconds int
	segments        []RouteSegment
	waypoints       []RouteWaypoint // possibly reordered by the provider optimization
}

func NewRoute(coordinates []Coordinate, distanceMeters, durationSeconds int,
	segments []RouteSegment, waypoints []RouteWaypoint) *Route {
	return &Route{
		coordinates:     coordinates,
		distanceMeters:  distanceMeters,
		durationSeconds: durationSeconds,
		segments:        segments,
		waypoints:       waypoints,
	}
}

func (r *Route) GetCoordinates() []Coordinate {
	return r.coordinates
}

func (r *Route) GetDistanceMeters() int {
	return r.distanceMeters
}

func (r *Route) GetDurationSeconds() int {
	return r.durationSeconds
}

func (r *Route) GetSegments() []RouteSegment {
	return r.segments
}

func (r *Route) GetWaypoints() []RouteWaypoint {
	return r.waypoints
}
