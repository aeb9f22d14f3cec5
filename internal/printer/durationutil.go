package printer

import "fmt"

// FormatSeconds returns a human-readable duration for a number of seconds.
// Examples: "0s", "45s", "5m", "1h 30m", "26h 0m".
func FormatSeconds(seconds int) string {
	if seconds <= 0 {
		return "0s"
	}

	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0 && s == 0:
		return fmt.Sprintf("%dm", m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
