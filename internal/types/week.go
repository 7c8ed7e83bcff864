package types

import (
	"fmt"
	"strings"
)

// WeekStart is the first day of a reporting week.
type WeekStart string

const (
	// WeekStartMonday is the ISO convention: Sunday is the last day of the week.
	WeekStartMonday WeekStart = "monday"
	// WeekStartSunday makes Sunday day 0 of the week.
	WeekStartSunday WeekStart = "sunday"
)

// DefaultWeekStart is used when no week start is configured.
const DefaultWeekStart = WeekStartMonday

// AllWeekStarts lists the supported conventions.
var AllWeekStarts = []any{
	WeekStartMonday,
	WeekStartSunday,
}

// ParseWeekStart parses a case-insensitive week start name.
// An empty string yields DefaultWeekStart.
func ParseWeekStart(s string) (WeekStart, error) {
	switch WeekStart(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultWeekStart, nil
	case WeekStartMonday:
		return WeekStartMonday, nil
	case WeekStartSunday:
		return WeekStartSunday, nil
	default:
		return "", fmt.Errorf("unknown week start %q (expected monday or sunday)", s)
	}
}

// IsValid reports whether w is one of the supported conventions.
func (w WeekStart) IsValid() bool {
	return w == WeekStartMonday || w == WeekStartSunday
}
