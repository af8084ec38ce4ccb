// Package rules holds the pure predicates that classify transactions as
// income, transfers, spending, refunds, or goal contributions. Every
// aggregator in the report package applies these rules inline.
package rules

import (
	"strings"

	"github.com/halewood/envl/internal/model"
)

// Classifier answers classification questions against a fixed category set.
// Build one per aggregation pass; it never mutates the categories.
type Classifier struct {
	incomeID    string
	transferIDs map[string]struct{}
}

// NewClassifier indexes the category set for classification. The income
// category is located via the IsIncome flag, falling back to the legacy
// "Income" name convention for data restored from old backups.
func NewClassifier(categories []model.Category) *Classifier {
	c := &Classifier{transferIDs: make(map[string]struct{})}
	for _, cat := range categories {
		if cat.IsTransfer {
			c.transferIDs[cat.ID] = struct{}{}
		}
		if cat.IsIncome && c.incomeID == "" {
			c.incomeID = cat.ID
		}
	}
	if c.incomeID == "" {
		for _, cat := range categories {
			if strings.EqualFold(cat.Name, "Income") {
				c.incomeID = cat.ID
				break
			}
		}
	}
	return c
}

// IncomeCategoryID returns the id of the income category, or "" when the
// ledger has none. All income-dependent aggregations degrade to zero income
// in that case.
func (c *Classifier) IncomeCategoryID() string {
	return c.incomeID
}

// IsIncome reports whether the transaction belongs to the income category.
func (c *Classifier) IsIncome(t *model.Transaction) bool {
	return c.incomeID != "" && t.CategoryID == c.incomeID
}

// IsTransfer reports whether the transaction's category is flagged as a
// transfer between the user's own accounts. Transfers are excluded from
// income and expense totals entirely.
func (c *Classifier) IsTransfer(t *model.Transaction) bool {
	_, ok := c.transferIDs[t.CategoryID]
	return ok
}

// IsExpense reports whether the transaction is ordinary spending: a debit
// that is neither income nor a transfer.
func (c *Classifier) IsExpense(t *model.Transaction) bool {
	return !c.IsIncome(t) && !c.IsTransfer(t) && t.Type == model.Debit
}

// IsRefund reports whether the transaction is a credit into a spending
// category. Refunds reduce net expense; they never count as income.
func (c *Classifier) IsRefund(t *model.Transaction) bool {
	return !c.IsIncome(t) && !c.IsTransfer(t) && t.Type == model.Credit
}

// IsContribution reports whether the transaction counts toward a savings
// goal: either a debit into a transfer category (moving money to savings)
// or a non-income credit (a refund saved into a linked category).
func (c *Classifier) IsContribution(t *model.Transaction) bool {
	if c.IsTransfer(t) {
		return t.Type == model.Debit
	}
	return t.Type == model.Credit && !c.IsIncome(t)
}
