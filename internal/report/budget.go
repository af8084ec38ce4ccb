package report

import (
	"time"

	"github.com/halewood/envl/internal/timeframe"
)

// DaysInMonth returns the actual number of days in the date's calendar
// month (28-31).
func DaysInMonth(date time.Time) int {
	return time.Date(date.Year(), date.Month()+1, 0, 0, 0, 0, 0, date.Location()).Day()
}

// ScaleMonthlyBudget rescales a monthly budget figure to the equivalent
// amount for the given period. Daily and weekly budgets are tied to the
// length of the month the range starts in, so the same weekly budget
// differs slightly between a 28-day and a 31-day month.
func ScaleMonthlyBudget(monthly float64, period timeframe.Period, rangeStart time.Time) float64 {
	switch period {
	case timeframe.Day:
		return monthly / float64(DaysInMonth(rangeStart))
	case timeframe.Week:
		return monthly / float64(DaysInMonth(rangeStart)) * 7
	case timeframe.Year:
		return monthly * 12
	default:
		return monthly
	}
}
