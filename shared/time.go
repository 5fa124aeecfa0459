package shared

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the format layout for parsing timestamps.
	DateLayout = "2006-01-02 15:04:05"
	// DayLayout is the format layout for parsing dates.
	DayLayout = "2006-01-02"
	// RunTimeLayout is the format layout for parsing the daily run time.
	RunTimeLayout = "15:04"

	// locality is the locale used for fetching time.
	locality = "America/New_York"
)

// NewYorkTime returns the current time in new york (EST/EDT adjusted automatically).
func NewYorkTime() (time.Time, *time.Location, error) {
	loc, err := time.LoadLocation(locality)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("loading new york timezone: %w", err)
	}

	now := time.Now().In(loc)
	return now, loc, nil
}

// DayWindow returns the [00:00, 24:00) window of the day containing the
// provided time, in the provided time's location.
func DayWindow(asOf time.Time) (time.Time, time.Time) {
	start := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
	return start, start.AddDate(0, 0, 1)
}

// IsWeekend asserts whether the provided time falls on a weekend.
func IsWeekend(t time.Time) bool {
	day := t.Weekday()
	return day == time.Saturday || day == time.Sunday
}
