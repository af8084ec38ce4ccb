// Package timeframe resolves symbolic reporting periods into concrete
// calendar date ranges and supports stepping between adjacent periods.
package timeframe

import (
	"fmt"
	"strings"
)

// Period is the symbolic granularity used for filtering and budget scaling.
type Period string

const (
	// Day covers a single calendar day.
	Day Period = "day"
	// Week covers Monday through Sunday.
	Week Period = "week"
	// Month covers the first through the last day of a calendar month.
	Month Period = "month"
	// Year covers January 1 through December 31.
	Year Period = "year"
)

// ParsePeriod parses a user-supplied period name.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case Day:
		return Day, nil
	case Week:
		return Week, nil
	case Month:
		return Month, nil
	case Year:
		return Year, nil
	default:
		return "", fmt.Errorf("invalid period %q (expected day, week, month or year)", s)
	}
}

// Valid reports whether the period is one of the known values.
func (p Period) Valid() bool {
	switch p {
	case Day, Week, Month, Year:
		return true
	default:
		return false
	}
}

func (p Period) String() string {
	return string(p)
}
