package datastructure

// NavigationState is the read-only snapshot a navigation session hands to its
// caller after every processed location sample.
//
// completedCoordinates is always a contiguous prefix of the owning route's
// coordinates, starting at index 0.
type NavigationState struct {
	isNavigating         bool
	currentLocation      *Coordinate // nil until the first sample arrives
	isOffRoute           bool
	completedCoordinates []Coordinate
}

func NewNavigationState(isNavigating bool, currentLocation *Coordinate,
	isOffRoute bool, completedCoordinates []Coordinate) NavigationState {
	return NavigationState{
		isNavigating:         isNavigating,
		currentLocation:      currentLocation,
		isOffRoute:           isOffRoute,
		completedCoordinates: completedCoordinates,
	}
}

func (ns NavigationState) IsNavigating() bool {
	return ns.isNavigating
}

func (ns NavigationState) GetCurrentLocation() *Coordinate {
	return ns.currentLocation
}

func (ns NavigationState) IsOffRoute() bool {
	return ns.isOffRoute
}

func (ns NavigationState) GetCompletedCoordinates() []Coordinate {
	return ns.completedCoordinates
}
