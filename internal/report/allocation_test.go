package report

import (
	"testing"
	"time"

	"github.com/halewood/envl/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomeAllocation(t *testing.T) {
	cats := fixtureCategories()
	march := date(2024, time.March, 5)
	envelopes := []model.Envelope{
		{ID: "e1", Name: "Food", Type: model.EnvelopeSpending, Budget: 500, CategoryIDs: []string{"groceries", "dining"}},
		{ID: "g1", Name: "House Fund", Type: model.EnvelopeGoal, Budget: 200, CategoryIDs: []string{"savings"}},
	}

	txns := []model.Transaction{
		credit("t1", "income", 2000, march),
		debit("t2", "groceries", 300, march),
		debit("t3", "dining", 100, march),
		debit("t4", "savings", 500, march), // contribution to the goal
	}

	alloc := IncomeAllocation(txns, cats, envelopes)
	assert.InDelta(t, 2000.0, alloc.TotalIncome, 1e-9)
	require.Len(t, alloc.Slices, 3)

	assert.Equal(t, "Food", alloc.Slices[0].Name)
	assert.InDelta(t, 400.0, alloc.Slices[0].Value, 1e-9)
	assert.InDelta(t, 20.0, alloc.Slices[0].Share, 1e-9)
	assert.True(t, alloc.Slices[0].Significant)

	assert.Equal(t, "House Fund", alloc.Slices[1].Name)
	assert.InDelta(t, 500.0, alloc.Slices[1].Value, 1e-9)

	unallocated := alloc.Slices[2]
	assert.True(t, unallocated.Unallocated)
	assert.InDelta(t, 1100.0, unallocated.Value, 1e-9)
}

func TestIncomeAllocationClosure(t *testing.T) {
	// Envelope values plus the unallocated remainder always recover total
	// income within the floating-point guard.
	cats := fixtureCategories()
	march := date(2024, time.March, 5)
	envelopes := []model.Envelope{
		{ID: "e1", Name: "Food", Type: model.EnvelopeSpending, Budget: 500, CategoryIDs: []string{"groceries"}},
		{ID: "e2", Name: "Fun", Type: model.EnvelopeSpending, Budget: 100, CategoryIDs: []string{"dining"}},
	}

	txns := []model.Transaction{
		credit("t1", "income", 1234.56, march),
		debit("t2", "groceries", 333.33, march),
		debit("t3", "dining", 101.01, march),
	}

	alloc := IncomeAllocation(txns, cats, envelopes)

	var sum float64
	for _, s := range alloc.Slices {
		sum += s.Value
	}
	assert.InDelta(t, alloc.TotalIncome, sum, unallocatedTolerance)
}

func TestIncomeAllocationNoIncome(t *testing.T) {
	cats := fixtureCategories()
	txns := []model.Transaction{
		debit("t1", "groceries", 50, date(2024, time.March, 5)),
	}

	alloc := IncomeAllocation(txns, cats, nil)
	assert.Zero(t, alloc.TotalIncome)
	assert.Empty(t, alloc.Slices)
}

func TestIncomeAllocationSmallSliceNotSignificant(t *testing.T) {
	cats := fixtureCategories()
	march := date(2024, time.March, 5)
	envelopes := []model.Envelope{
		{ID: "e1", Name: "Coffee", Type: model.EnvelopeSpending, Budget: 50, CategoryIDs: []string{"dining"}},
	}

	txns := []model.Transaction{
		credit("t1", "income", 1000, march),
		debit("t2", "dining", 30, march), // 3% of income
	}

	alloc := IncomeAllocation(txns, cats, envelopes)
	require.NotEmpty(t, alloc.Slices)
	assert.Equal(t, "Coffee", alloc.Slices[0].Name)
	assert.False(t, alloc.Slices[0].Significant)
}

func TestIncomeAllocationFullyAllocatedHasNoRemainder(t *testing.T) {
	cats := fixtureCategories()
	march := date(2024, time.March, 5)
	envelopes := []model.Envelope{
		{ID: "e1", Name: "Everything", Type: model.EnvelopeSpending, Budget: 1000, CategoryIDs: []string{"groceries"}},
	}

	txns := []model.Transaction{
		credit("t1", "income", 500, march),
		debit("t2", "groceries", 500, march),
	}

	alloc := IncomeAllocation(txns, cats, envelopes)
	require.Len(t, alloc.Slices, 1)
	assert.False(t, alloc.Slices[0].Unallocated)
}
