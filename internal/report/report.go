// Package report derives all displayed statistics from the ledger: period
// totals, per-category spend, envelope budget consumption, goal progress,
// weekday/weekend splits, income allocation, and trend groupings. Every
// function here is a pure, deterministic transformation of its inputs;
// callers re-run them whenever the ledger, categories, envelopes, or the
// selected period change.
package report

import (
	"math"

	"github.com/halewood/envl/internal/model"
)

const (
	// UncategorizedName labels transactions whose category no longer exists.
	UncategorizedName = "Uncategorized"
	// UncategorizedColor is the fallback display color for those entries.
	UncategorizedColor = "#78716c"
)

// categoryIndex builds an id lookup over the category set.
func categoryIndex(categories []model.Category) map[string]model.Category {
	idx := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		idx[c.ID] = c
	}
	return idx
}

// roundCents rounds to two decimal places.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ratio returns a/b*100 or 0 when b is not positive. Percentage math must
// never produce NaN or Inf.
func ratio(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	return a / b * 100
}
