package rules

import (
	"testing"

	"github.com/halewood/envl/internal/model"
	"github.com/stretchr/testify/assert"
)

func testCategories() []model.Category {
	return []model.Category{
		{ID: "income", Name: "Income", IsIncome: true},
		{ID: "groceries", Name: "Groceries"},
		{ID: "savings", Name: "To Savings", IsTransfer: true},
		{ID: model.UncategorizedID, Name: "Uncategorized"},
	}
}

func TestClassifierPredicates(t *testing.T) {
	c := NewClassifier(testCategories())

	tests := []struct {
		name           string
		tx             model.Transaction
		income         bool
		transfer       bool
		expense        bool
		refund         bool
		contribution   bool
	}{
		{
			name:   "salary credit is income",
			tx:     model.Transaction{CategoryID: "income", Type: model.Credit, Amount: 3000},
			income: true,
		},
		{
			name:    "grocery debit is an expense",
			tx:      model.Transaction{CategoryID: "groceries", Type: model.Debit, Amount: 50},
			expense: true,
		},
		{
			name:         "grocery credit is a refund and a contribution",
			tx:           model.Transaction{CategoryID: "groceries", Type: model.Credit, Amount: 20},
			refund:       true,
			contribution: true,
		},
		{
			name:         "debit into a transfer category is a contribution, not an expense",
			tx:           model.Transaction{CategoryID: "savings", Type: model.Debit, Amount: 100},
			transfer:     true,
			contribution: true,
		},
		{
			name:     "credit into a transfer category is nothing but a transfer",
			tx:       model.Transaction{CategoryID: "savings", Type: model.Credit, Amount: 100},
			transfer: true,
		},
		{
			name:    "dangling category id behaves like ordinary spending",
			tx:      model.Transaction{CategoryID: "deleted-cat", Type: model.Debit, Amount: 10},
			expense: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.income, c.IsIncome(&tt.tx), "IsIncome")
			assert.Equal(t, tt.transfer, c.IsTransfer(&tt.tx), "IsTransfer")
			assert.Equal(t, tt.expense, c.IsExpense(&tt.tx), "IsExpense")
			assert.Equal(t, tt.refund, c.IsRefund(&tt.tx), "IsRefund")
			assert.Equal(t, tt.contribution, c.IsContribution(&tt.tx), "IsContribution")
		})
	}
}

func TestClassifierWithoutIncomeCategory(t *testing.T) {
	c := NewClassifier([]model.Category{
		{ID: "groceries", Name: "Groceries"},
	})

	assert.Empty(t, c.IncomeCategoryID())
	tx := model.Transaction{CategoryID: "groceries", Type: model.Credit, Amount: 5}
	assert.False(t, c.IsIncome(&tx))
	assert.True(t, c.IsRefund(&tx))
}

func TestClassifierLegacyIncomeNameFallback(t *testing.T) {
	c := NewClassifier([]model.Category{
		{ID: "cat-8", Name: "Income"}, // no IsIncome flag, as in old backups
		{ID: "groceries", Name: "Groceries"},
	})

	assert.Equal(t, "cat-8", c.IncomeCategoryID())
	tx := model.Transaction{CategoryID: "cat-8", Type: model.Credit, Amount: 100}
	assert.True(t, c.IsIncome(&tx))
}
