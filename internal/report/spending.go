package report

import (
	"sort"

	"github.com/halewood/envl/internal/model"
	"github.com/halewood/envl/internal/rules"
)

// CategorySpend is one slice of the spending-by-category breakdown.
type CategorySpend struct {
	CategoryID string
	Name       string
	Color      string
	Amount     float64
}

// SpendingByCategory sums debit spending per category for the given
// transactions. Transfers and income are excluded; refunds do not appear
// here (they only reduce the Key Insights expense total). Each category's
// running subtotal is rounded to cents after every addition, which keeps
// displayed figures stable against float accumulation drift. Transactions
// referencing a deleted category are folded into the uncategorized bucket.
func SpendingByCategory(txns []model.Transaction, categories []model.Category) []CategorySpend {
	cls := rules.NewClassifier(categories)
	idx := categoryIndex(categories)

	sums := make(map[string]float64)
	for i := range txns {
		t := &txns[i]
		if !cls.IsExpense(t) {
			continue
		}
		id := t.CategoryID
		if _, ok := idx[id]; !ok {
			id = model.UncategorizedID
		}
		sums[id] = roundCents(sums[id] + t.Amount)
	}

	spends := make([]CategorySpend, 0, len(sums))
	for id, amount := range sums {
		if amount <= 0 {
			continue
		}
		entry := CategorySpend{CategoryID: id, Amount: amount}
		if cat, ok := idx[id]; ok {
			entry.Name = cat.Name
			entry.Color = cat.Color
		} else {
			entry.Name = UncategorizedName
			entry.Color = UncategorizedColor
		}
		spends = append(spends, entry)
	}

	sort.Slice(spends, func(i, j int) bool {
		if spends[i].Amount != spends[j].Amount {
			return spends[i].Amount > spends[j].Amount
		}
		return spends[i].Name < spends[j].Name
	})
	return spends
}
