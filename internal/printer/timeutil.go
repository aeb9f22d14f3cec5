package printer

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// RelativeTime returns how far t is from now in the largest whole unit,
// e.g. "5 minutes ago" or "in 3 days".
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d > -time.Second && d < time.Second:
		return "now"
	case d < 0:
		return "in " + span(-d)
	}
	return span(d) + " ago"
}

func span(d time.Duration) string {
	switch {
	case d < time.Minute:
		return plural(int(d/time.Second), "second")
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < day:
		return plural(int(d/time.Hour), "hour")
	}
	return plural(int(d/day), "day")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatTimestamp formats t in UTC with second precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// FormatDue formats a due date followed by its distance to now. Due dates
// without time of day only show the date.
func FormatDue(due, now time.Time) string {
	due = due.UTC()
	layout := "2006-01-02 15:04"
	if due.Hour() == 0 && due.Minute() == 0 && due.Second() == 0 {
		layout = time.DateOnly
	}
	return fmt.Sprintf("%s (%s)", due.Format(layout), RelativeTime(due, now))
}
