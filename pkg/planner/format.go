package planner

import "fmt"

// FormatDuration renders seconds as hours+minutes, e.g. "1h 5m" or "45m".
func FormatDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatDistance renders meters as integer meters below one kilometer,
// otherwise kilometers to one decimal, e.g. "750 m" or "12.3 km".
func FormatDistance(meters int) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", meters)
	}
	return fmt.Sprintf("%.1f km", float64(meters)/1000.0)
}
