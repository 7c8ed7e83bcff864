// Package window derives the start instants of the day, week and month
// reporting buckets.
package window

import (
	"time"

	"github.com/rxtech-lab/argo-pnl/internal/types"
)

// Windows holds the start of each reporting bucket. A trade belongs to a
// bucket when its timestamp is on or after the bucket's start.
type Windows struct {
	Day   time.Time
	Week  time.Time
	Month time.Time
}

// Starts returns the bucket starts for now, in now's location.
// Convert now with In(loc) to pick the calendar timezone.
//
// With WeekStartMonday, Sunday is the seventh day of the week that began the
// previous Monday. With WeekStartSunday, the week begins on the Sunday on or
// before now. Any other value is treated as WeekStartMonday.
func Starts(now time.Time, weekStartsOn types.WeekStart) Windows {
	loc := now.Location()
	year, month, day := now.Date()

	dayStart := time.Date(year, month, day, 0, 0, 0, 0, loc)

	return Windows{
		Day:   dayStart,
		Week:  time.Date(year, month, day-daysSinceWeekStart(now.Weekday(), weekStartsOn), 0, 0, 0, 0, loc),
		Month: time.Date(year, month, 1, 0, 0, 0, 0, loc),
	}
}

// daysSinceWeekStart is the number of calendar days between the first day of
// the week and weekday.
func daysSinceWeekStart(weekday time.Weekday, weekStartsOn types.WeekStart) int {
	if weekStartsOn == types.WeekStartSunday {
		return int(weekday)
	}

	// Sunday is 0 in time.Weekday; move it to the end of the week.
	return (int(weekday) + 6) % 7
}

// NextBoundary returns the first instant after now at which any bucket start
// changes. Every bucket starts at a local midnight, so this is the next
// midnight in now's location.
func NextBoundary(now time.Time) time.Time {
	year, month, day := now.Date()

	return time.Date(year, month, day+1, 0, 0, 0, 0, now.Location())
}
