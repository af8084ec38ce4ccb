package timeframe

import (
	"time"

	"github.com/halewood/envl/internal/model"
)

// Range is an inclusive date range, normalized to start-of-day on Start and
// end-of-day on End.
type Range struct {
	Start time.Time
	End   time.Time
}

// Resolve computes the concrete date range for a period anchored at the
// given reference date.
func Resolve(period Period, anchor time.Time) Range {
	day := model.Midnight(anchor)

	switch period {
	case Week:
		// Weeks start on Monday. A Sunday anchor belongs to the week that
		// started six days earlier.
		offset := int(day.Weekday()) - 1
		if day.Weekday() == time.Sunday {
			offset = 6
		}
		start := day.AddDate(0, 0, -offset)
		return Range{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}
	case Month:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		// Day 0 of the next month is the last day of this one, which keeps
		// variable month lengths and leap years correct.
		end := time.Date(day.Year(), day.Month()+1, 0, 0, 0, 0, 0, day.Location())
		return Range{Start: start, End: endOfDay(end)}
	case Year:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
		end := time.Date(day.Year(), time.December, 31, 0, 0, 0, 0, day.Location())
		return Range{Start: start, End: endOfDay(end)}
	default: // Day
		return Range{Start: day, End: endOfDay(day)}
	}
}

// Step moves the anchor by one unit of the given period. Direction is +1
// for forward, -1 for backward.
func Step(period Period, anchor time.Time, direction int) time.Time {
	day := model.Midnight(anchor)

	switch period {
	case Week:
		return day.AddDate(0, 0, 7*direction)
	case Month:
		// Pin to the first of the month before stepping so that a day-31
		// anchor cannot overflow past a short month.
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return first.AddDate(0, direction, 0)
	case Year:
		return day.AddDate(direction, 0, 0)
	default: // Day
		return day.AddDate(0, 0, direction)
	}
}

// Contains reports whether a date falls within the range, inclusive.
func (r Range) Contains(date time.Time) bool {
	d := model.Midnight(date)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Filter returns the transactions whose dates fall within the range.
func (r Range) Filter(txns []model.Transaction) []model.Transaction {
	var in []model.Transaction
	for _, t := range txns {
		if r.Contains(t.Date) {
			in = append(in, t)
		}
	}
	return in
}

// Label renders the range the way the dashboard header displays it.
func (r Range) Label(period Period) string {
	switch period {
	case Day:
		return r.Start.Format("Jan 2, 2006")
	case Month:
		return r.Start.Format("January 2006")
	case Year:
		return r.Start.Format("2006")
	default: // Week
		if r.Start.Year() != r.End.Year() {
			return r.Start.Format("Jan 2, 2006") + " - " + r.End.Format("Jan 2, 2006")
		}
		return r.Start.Format("Jan 2") + " - " + r.End.Format("Jan 2, 2006")
	}
}

// LatestDate returns the date of the newest transaction, which the dashboard
// uses as its default anchor. Falls back to today for an empty ledger.
func LatestDate(txns []model.Transaction) time.Time {
	if len(txns) == 0 {
		return model.Midnight(time.Now())
	}
	latest := txns[0].Date
	for _, t := range txns[1:] {
		if t.Date.After(latest) {
			latest = t.Date
		}
	}
	return model.Midnight(latest)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
