package pkg

// enum of travel_mode
type TravelMode uint8

const (
	WALKING TravelMode = iota
	DRIVING
	CYCLING
)

func (m TravelMode) String() string {
	switch m {
	case DRIVING:
		return "driving"
	case CYCLING:
		return "cycling"
	default:
		return "walking"
	}
}

func GetTravelMode(mode string) TravelMode {
	switch mode {
	case "driving":
		return DRIVING
	case "cycling":
		return CYCLING
	default:
		return WALKING
	}
}

const (
	// the directions provider rejects requests with more than 25 stops
	MAX_PROVIDER_WAYPOINTS = 25

	DIRECTIONS_STATUS_OK = "OK"

	DEFAULT_OFF_ROUTE_THRESHOLD_METERS = 50.0
	DEFAULT_UPDATE_INTERVAL_MS         = 2000
	DEFAULT_MIN_DISPLACEMENT_METERS    = 5.0
	DEFAULT_SNAP_SEARCH_RADIUS_METERS  = 100.0

	DEFAULT_ROUTE_INFO_CACHE_SIZE = 1 << 12

	POLYLINE_PRECISION = 1e5
)

const (
	DEBUG = false
)
