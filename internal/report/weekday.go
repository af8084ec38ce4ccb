package report

import (
	"time"

	"github.com/halewood/envl/internal/model"
	"github.com/halewood/envl/internal/rules"
	"github.com/halewood/envl/internal/timeframe"
)

// EnvelopeSpend is one envelope's share of a weekday or weekend bucket.
type EnvelopeSpend struct {
	EnvelopeID string
	Name       string
	Spent      float64
	WeekBudget float64
}

// BucketSpend is the aggregate for one side of the weekday/weekend split.
type BucketSpend struct {
	Total     float64
	Envelopes []EnvelopeSpend
}

// WeekdaySplit separates spending-envelope debits into weekday and weekend
// buckets. Budgets are always scaled to a week regardless of the globally
// selected period.
type WeekdaySplit struct {
	Weekday BucketSpend
	Weekend BucketSpend
}

// SplitWeekdayWeekend buckets each expense by the day of week it occurred
// on (Saturday and Sunday form the weekend). A category shared by several
// spending envelopes contributes its full amount to each envelope's bucket.
func SplitWeekdayWeekend(periodTxns []model.Transaction, categories []model.Category, envelopes []model.Envelope, rangeStart time.Time) WeekdaySplit {
	cls := rules.NewClassifier(categories)

	var spendingEnvelopes []model.Envelope
	for _, env := range envelopes {
		if env.Type == model.EnvelopeSpending {
			spendingEnvelopes = append(spendingEnvelopes, env)
		}
	}

	weekday := make(map[string]float64)
	weekend := make(map[string]float64)

	for i := range periodTxns {
		t := &periodTxns[i]
		if !cls.IsExpense(t) {
			continue
		}
		dow := t.Date.Weekday()
		isWeekend := dow == time.Sunday || dow == time.Saturday

		for _, env := range spendingEnvelopes {
			if !env.HasCategory(t.CategoryID) {
				continue
			}
			if isWeekend {
				weekend[env.ID] += t.Amount
			} else {
				weekday[env.ID] += t.Amount
			}
		}
	}

	return WeekdaySplit{
		Weekday: bucketFor(spendingEnvelopes, weekday, rangeStart),
		Weekend: bucketFor(spendingEnvelopes, weekend, rangeStart),
	}
}

func bucketFor(envelopes []model.Envelope, spend map[string]float64, rangeStart time.Time) BucketSpend {
	var bucket BucketSpend
	for _, env := range envelopes {
		spent := spend[env.ID]
		if spent < 0.01 {
			continue
		}
		bucket.Envelopes = append(bucket.Envelopes, EnvelopeSpend{
			EnvelopeID: env.ID,
			Name:       env.Name,
			Spent:      spent,
			WeekBudget: ScaleMonthlyBudget(env.Budget, timeframe.Week, rangeStart),
		})
		bucket.Total += spent
	}
	return bucket
}
