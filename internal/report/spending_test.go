package report

import (
	"testing"
	"time"

	"github.com/halewood/envl/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpendingByCategory(t *testing.T) {
	cats := fixtureCategories()
	march := date(2024, time.March, 5)

	txns := []model.Transaction{
		debit("t1", "groceries", 120.50, march),
		debit("t2", "groceries", 30.25, march),
		debit("t3", "dining", 45, march),
		credit("t4", "dining", 10, march),    // refund, not spend
		debit("t5", "savings", 500, march),   // transfer, excluded
		credit("t6", "income", 3000, march),  // income, excluded
	}

	spends := SpendingByCategory(txns, cats)
	require.Len(t, spends, 2)

	assert.Equal(t, "Groceries", spends[0].Name)
	assert.InDelta(t, 150.75, spends[0].Amount, 1e-9)
	assert.Equal(t, "#22c55e", spends[0].Color)

	assert.Equal(t, "Dining Out", spends[1].Name)
	assert.InDelta(t, 45.0, spends[1].Amount, 1e-9)
}

func TestSpendingByCategoryRoundsPerStep(t *testing.T) {
	// Each addition rounds the running subtotal to cents, so a pile of
	// 0.1 amounts sums exactly rather than accumulating float drift.
	cats := fixtureCategories()
	march := date(2024, time.March, 5)

	var txns []model.Transaction
	for i := 0; i < 10; i++ {
		txns = append(txns, debit("t", "groceries", 0.1, march))
	}

	spends := SpendingByCategory(txns, cats)
	require.Len(t, spends, 1)
	assert.Equal(t, 1.0, spends[0].Amount)
}

func TestSpendingByCategoryDanglingReference(t *testing.T) {
	cats := fixtureCategories()
	march := date(2024, time.March, 5)

	txns := []model.Transaction{
		debit("t1", "deleted-cat", 40, march),
		debit("t2", "another-gone", 10, march),
		debit("t3", model.UncategorizedID, 5, march),
	}

	spends := SpendingByCategory(txns, cats)
	require.Len(t, spends, 1, "all dangling ids fold into one uncategorized bucket")
	assert.Equal(t, model.UncategorizedID, spends[0].CategoryID)
	assert.Equal(t, UncategorizedName, spends[0].Name)
	assert.InDelta(t, 55.0, spends[0].Amount, 1e-9)
}

func TestSpendingByCategorySortsDescending(t *testing.T) {
	cats := fixtureCategories()
	march := date(2024, time.March, 5)

	txns := []model.Transaction{
		debit("t1", "dining", 200, march),
		debit("t2", "groceries", 50, march),
	}

	spends := SpendingByCategory(txns, cats)
	require.Len(t, spends, 2)
	assert.Equal(t, "Dining Out", spends[0].Name)
	assert.Equal(t, "Groceries", spends[1].Name)
}

func TestSpendingByCategoryEmpty(t *testing.T) {
	spends := SpendingByCategory(nil, fixtureCategories())
	assert.Empty(t, spends)
}
