package report

import (
	"testing"
	"time"

	"github.com/halewood/envl/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	cats := fixtureCategories()
	march := date(2024, time.March, 5)

	tests := []struct {
		name string
		txns []model.Transaction
		want Totals
	}{
		{
			name: "income, spend, and a refund",
			txns: []model.Transaction{
				credit("t1", "income", 3000, march),
				debit("t2", "groceries", 200, march),
				credit("t3", "groceries", 20, march),
			},
			want: Totals{Income: 3000, Expenses: 180, Net: 2820, Count: 3},
		},
		{
			name: "transfers are excluded from money totals but included in the count",
			txns: []model.Transaction{
				credit("t1", "income", 1000, march),
				debit("t2", "savings", 500, march),
				credit("t3", "savings", 500, march),
			},
			want: Totals{Income: 1000, Expenses: 0, Net: 1000, Count: 3},
		},
		{
			name: "all-transfer ledger yields zero totals",
			txns: []model.Transaction{
				debit("t1", "savings", 100, march),
				credit("t2", "savings", 250, march),
				debit("t3", "savings", 75, march),
			},
			want: Totals{Income: 0, Expenses: 0, Net: 0, Count: 3},
		},
		{
			name: "refund larger than spend drives expenses negative",
			txns: []model.Transaction{
				debit("t1", "dining", 30, march),
				credit("t2", "dining", 50, march),
			},
			want: Totals{Income: 0, Expenses: -20, Net: 20, Count: 2},
		},
		{
			name: "empty ledger",
			txns: nil,
			want: Totals{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.txns, cats)
			assert.InDelta(t, tt.want.Income, got.Income, 1e-9)
			assert.InDelta(t, tt.want.Expenses, got.Expenses, 1e-9)
			assert.InDelta(t, tt.want.Net, got.Net, 1e-9)
			assert.Equal(t, tt.want.Count, got.Count)
		})
	}
}

func TestComputeTotalsWithoutIncomeCategory(t *testing.T) {
	cats := []model.Category{{ID: "groceries", Name: "Groceries"}}
	txns := []model.Transaction{
		credit("t1", "groceries", 100, date(2024, time.March, 5)),
	}

	got := ComputeTotals(txns, cats)
	assert.Zero(t, got.Income, "no income category means no income, never a panic")
	assert.InDelta(t, -100.0, got.Expenses, 1e-9)
}
