package report

import (
	"github.com/halewood/envl/internal/model"
	"github.com/halewood/envl/internal/rules"
)

// Totals is the Key Insights summary for a set of in-period transactions.
type Totals struct {
	Income   float64
	Expenses float64
	Net      float64

	// Count covers every transaction in scope, including transfers and
	// income, even though transfers are excluded from the money totals.
	Count int
}

// ComputeTotals derives income, expenses, and net from the given
// transactions. Transfers are skipped entirely; credits into spending
// categories are refunds and reduce expenses rather than adding to income.
func ComputeTotals(txns []model.Transaction, categories []model.Category) Totals {
	cls := rules.NewClassifier(categories)

	var totals Totals
	totals.Count = len(txns)

	for i := range txns {
		t := &txns[i]
		if cls.IsTransfer(t) {
			continue
		}
		switch {
		case cls.IsIncome(t):
			totals.Income += t.Amount
		case t.Type == model.Credit:
			totals.Expenses -= t.Amount
		default:
			totals.Expenses += t.Amount
		}
	}

	totals.Net = totals.Income - totals.Expenses
	return totals
}
