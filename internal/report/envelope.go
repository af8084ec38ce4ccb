package report

import (
	"math"
	"time"

	"github.com/halewood/envl/internal/model"
	"github.com/halewood/envl/internal/rules"
	"github.com/halewood/envl/internal/timeframe"
)

// PoolStatus is the period-scoped budget consumption of a spending envelope.
type PoolStatus struct {
	Envelope     model.Envelope
	Spent        float64
	Budget       float64 // monthly budget scaled to the active period
	Remaining    float64
	Progress     float64 // 0-100, capped
	SpentPercent int
	OverBudget   bool
}

// GoalStatus is the contribution progress of a goal envelope. All-time
// progress ignores the active period; period progress is measured against
// the monthly contribution target scaled to the period.
type GoalStatus struct {
	Envelope            model.Envelope
	ContributedAllTime  float64
	ContributedInPeriod float64
	PeriodGoal          float64
	PeriodProgress      float64 // 0-100, capped
	OverallProgress     float64 // against FinalTarget, 0-100, capped
	PeriodGoalMet       bool
	FinalGoalMet        bool
}

// SpendingPools computes budget consumption for every spending envelope
// from the period's transactions. A category shared by several envelopes
// counts its full spend toward each of them.
func SpendingPools(periodTxns []model.Transaction, categories []model.Category, envelopes []model.Envelope, period timeframe.Period, rangeStart time.Time) []PoolStatus {
	cls := rules.NewClassifier(categories)

	spendByCategory := make(map[string]float64)
	for i := range periodTxns {
		t := &periodTxns[i]
		if cls.IsExpense(t) {
			spendByCategory[t.CategoryID] += t.Amount
		}
	}

	var pools []PoolStatus
	for _, env := range envelopes {
		if env.Type != model.EnvelopeSpending {
			continue
		}

		var spent float64
		for _, catID := range env.CategoryIDs {
			spent += spendByCategory[catID]
		}

		budget := ScaleMonthlyBudget(env.Budget, period, rangeStart)
		remaining := budget - spent

		pools = append(pools, PoolStatus{
			Envelope:     env,
			Spent:        spent,
			Budget:       budget,
			Remaining:    remaining,
			Progress:     math.Min(ratio(spent, budget), 100),
			SpentPercent: int(math.Round(ratio(spent, budget))),
			OverBudget:   remaining < 0,
		})
	}
	return pools
}

// GoalProgress computes contribution progress for every goal envelope.
// It needs two independently scoped sums over the same ledger: all-time
// contributions feed lifetime progress, while period contributions are
// compared against the scaled monthly target.
func GoalProgress(allTxns, periodTxns []model.Transaction, categories []model.Category, envelopes []model.Envelope, period timeframe.Period, rangeStart time.Time) []GoalStatus {
	cls := rules.NewClassifier(categories)

	allTime := contributionsByCategory(allTxns, cls)
	inPeriod := contributionsByCategory(periodTxns, cls)

	var goals []GoalStatus
	for _, env := range envelopes {
		if env.Type != model.EnvelopeGoal {
			continue
		}

		contributedAllTime := env.StartingAmount
		var contributedInPeriod float64
		for _, catID := range env.CategoryIDs {
			contributedAllTime += allTime[catID]
			contributedInPeriod += inPeriod[catID]
		}

		periodGoal := ScaleMonthlyBudget(env.Budget, period, rangeStart)

		status := GoalStatus{
			Envelope:            env,
			ContributedAllTime:  contributedAllTime,
			ContributedInPeriod: contributedInPeriod,
			PeriodGoal:          periodGoal,
			PeriodProgress:      math.Min(ratio(contributedInPeriod, periodGoal), 100),
			PeriodGoalMet:       contributedInPeriod >= periodGoal,
		}
		if env.FinalTarget > 0 {
			status.OverallProgress = math.Min(ratio(contributedAllTime, env.FinalTarget), 100)
			status.FinalGoalMet = contributedAllTime >= env.FinalTarget
		}
		goals = append(goals, status)
	}
	return goals
}

func contributionsByCategory(txns []model.Transaction, cls *rules.Classifier) map[string]float64 {
	sums := make(map[string]float64)
	for i := range txns {
		t := &txns[i]
		if cls.IsContribution(t) {
			sums[t.CategoryID] += t.Amount
		}
	}
	return sums
}
