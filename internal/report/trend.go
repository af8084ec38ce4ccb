package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/halewood/envl/internal/model"
	"github.com/halewood/envl/internal/rules"
	"github.com/halewood/envl/internal/timeframe"
)

// Dimension selects what each trend series represents.
type Dimension string

const (
	// DimensionTotal produces a single "Spending" series.
	DimensionTotal Dimension = "total"
	// DimensionCategory produces one series per category name.
	DimensionCategory Dimension = "category"
	// DimensionEnvelope produces one series per spending envelope name.
	DimensionEnvelope Dimension = "envelope"
)

// ParseDimension parses a user-supplied trend dimension.
func ParseDimension(s string) (Dimension, error) {
	switch Dimension(strings.ToLower(strings.TrimSpace(s))) {
	case DimensionTotal:
		return DimensionTotal, nil
	case DimensionCategory:
		return DimensionCategory, nil
	case DimensionEnvelope:
		return DimensionEnvelope, nil
	default:
		return "", fmt.Errorf("invalid trend dimension %q (expected total, category or envelope)", s)
	}
}

// NoEnvelopeSeries labels spend whose category maps to no spending envelope.
const NoEnvelopeSeries = "No Envelope"

// spendingSeries is the single series key used in total mode and in the
// degenerate single-day breakdowns.
const spendingSeries = "Spending"

// TrendGroup is one labeled bucket of the trend chart.
type TrendGroup struct {
	Label  string
	Values map[string]float64
}

// TrendResult is the stacked-series trend data: chronologically ordered
// groups plus the union of series keys across all groups, in the order
// they were first seen. A renderer uses Keys to build consistent series.
type TrendResult struct {
	Groups []TrendGroup
	Keys   []string
}

// Trend buckets expense transactions for the trend chart. The bucket axis
// depends on the period: months within a year, Sunday-to-Saturday weeks
// within a month, days within a week. For a single day the time axis
// degenerates, so category and envelope dimensions break the day down by
// name instead, and total mode collapses to one "Today" bucket.
func Trend(periodTxns []model.Transaction, categories []model.Category, envelopes []model.Envelope, period timeframe.Period, dim Dimension) TrendResult {
	cls := rules.NewClassifier(categories)
	idx := categoryIndex(categories)

	var expenses []model.Transaction
	for _, t := range periodTxns {
		if cls.IsExpense(&t) {
			expenses = append(expenses, t)
		}
	}
	if len(expenses) == 0 {
		return TrendResult{}
	}

	var spendingEnvelopes []model.Envelope
	for _, env := range envelopes {
		if env.Type == model.EnvelopeSpending {
			spendingEnvelopes = append(spendingEnvelopes, env)
		}
	}

	b := newTrendBuilder()

	if period == timeframe.Day {
		buildDayTrend(b, expenses, idx, spendingEnvelopes, dim)
		return b.result(false)
	}

	for i := range expenses {
		t := &expenses[i]
		label, sortKey := trendBucket(period, t.Date)

		switch dim {
		case DimensionCategory:
			b.add(label, sortKey, categoryName(idx, t.CategoryID), t.Amount)
		case DimensionEnvelope:
			for _, series := range envelopeSeries(spendingEnvelopes, t.CategoryID) {
				b.add(label, sortKey, series, t.Amount)
			}
		default:
			b.add(label, sortKey, spendingSeries, t.Amount)
		}
	}

	return b.result(true)
}

// buildDayTrend handles the degenerate single-day case: the grouping axis
// becomes the category or envelope name, with a single Spending series.
func buildDayTrend(b *trendBuilder, expenses []model.Transaction, idx map[string]model.Category, spendingEnvelopes []model.Envelope, dim Dimension) {
	for i := range expenses {
		t := &expenses[i]
		switch dim {
		case DimensionCategory:
			b.add(categoryName(idx, t.CategoryID), time.Time{}, spendingSeries, t.Amount)
		case DimensionEnvelope:
			for _, series := range envelopeSeries(spendingEnvelopes, t.CategoryID) {
				b.add(series, time.Time{}, spendingSeries, t.Amount)
			}
		default:
			b.add("Today", time.Time{}, spendingSeries, t.Amount)
		}
	}
}

// trendBucket maps a transaction date to its bucket label and chronological
// sort key for the given period.
func trendBucket(period timeframe.Period, date time.Time) (string, time.Time) {
	switch period {
	case timeframe.Year:
		monthStart := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
		return date.Format("Jan"), monthStart
	case timeframe.Month:
		// Sunday-to-Saturday windows, labeled by their date span.
		weekStart := date.AddDate(0, 0, -int(date.Weekday()))
		weekEnd := weekStart.AddDate(0, 0, 6)
		return weekStart.Format("Jan 2") + " - " + weekEnd.Format("Jan 2"), weekStart
	default: // timeframe.Week
		return date.Format("Mon, Jan 2"), date
	}
}

func categoryName(idx map[string]model.Category, id string) string {
	if cat, ok := idx[id]; ok {
		return cat.Name
	}
	return UncategorizedName
}

// envelopeSeries returns the series names a category's spend contributes
// to: every spending envelope holding the category, or the synthetic
// "No Envelope" series when none does.
func envelopeSeries(spendingEnvelopes []model.Envelope, categoryID string) []string {
	var names []string
	for _, env := range spendingEnvelopes {
		if env.HasCategory(categoryID) {
			names = append(names, env.Name)
		}
	}
	if len(names) == 0 {
		return []string{NoEnvelopeSeries}
	}
	return names
}

// trendBuilder accumulates groups in insertion order with an explicit key
// set, so series ordering never depends on map iteration order.
type trendBuilder struct {
	index map[string]*trendGroup
	seen  map[string]struct{}
	order []*trendGroup
	keys  []string
}

type trendGroup struct {
	values  map[string]float64
	label   string
	sortKey time.Time
}

func newTrendBuilder() *trendBuilder {
	return &trendBuilder{
		index: make(map[string]*trendGroup),
		seen:  make(map[string]struct{}),
	}
}

func (b *trendBuilder) add(label string, sortKey time.Time, key string, amount float64) {
	g, ok := b.index[label]
	if !ok {
		g = &trendGroup{label: label, sortKey: sortKey, values: make(map[string]float64)}
		b.index[label] = g
		b.order = append(b.order, g)
	}
	g.values[key] += amount

	if _, ok := b.seen[key]; !ok {
		b.seen[key] = struct{}{}
		b.keys = append(b.keys, key)
	}
}

func (b *trendBuilder) result(chronological bool) TrendResult {
	if chronological {
		sort.SliceStable(b.order, func(i, j int) bool {
			return b.order[i].sortKey.Before(b.order[j].sortKey)
		})
	}

	groups := make([]TrendGroup, len(b.order))
	for i, g := range b.order {
		groups[i] = TrendGroup{Label: g.label, Values: g.values}
	}
	return TrendResult{Groups: groups, Keys: b.keys}
}
