package csvfile

import (
	"fmt"
	"time"

	"github.com/halewood/envl/internal/model"
)

// dateLayouts are tried in order when parsing CSV date cells. Bank exports
// most commonly use ISO or US-style dates.
var dateLayouts = []string{
	model.DateLayout, // 2006-01-02
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02.01.2006",
}

// parseFlexibleDate parses a date cell against the known layouts and
// normalizes the result to local midnight.
func parseFlexibleDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return model.Midnight(d), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}
