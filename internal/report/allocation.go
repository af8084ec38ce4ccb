package report

import (
	"github.com/halewood/envl/internal/model"
	"github.com/halewood/envl/internal/rules"
)

// significantShare is the display threshold below which a slice's inline
// label is suppressed.
const significantShare = 5.0

// unallocatedTolerance guards the unallocated pseudo-slice against
// floating-point noise.
const unallocatedTolerance = 0.01

// AllocationSlice is one envelope's share of the income allocation.
type AllocationSlice struct {
	Name        string
	Value       float64
	Share       float64 // percent of total income
	Significant bool
	Unallocated bool
}

// Allocation shows how the period's income maps onto envelope activity.
type Allocation struct {
	TotalIncome float64
	Slices      []AllocationSlice
}

// IncomeAllocation computes each envelope's "value" against total income:
// debit spend for spending envelopes, contributions for goal envelopes.
// Income not covered by any envelope appears as an Unallocated slice.
func IncomeAllocation(txns []model.Transaction, categories []model.Category, envelopes []model.Envelope) Allocation {
	cls := rules.NewClassifier(categories)

	var totalIncome float64
	for i := range txns {
		if cls.IsIncome(&txns[i]) {
			totalIncome += txns[i].Amount
		}
	}
	if totalIncome == 0 {
		return Allocation{}
	}

	var totalAllocated float64
	var slices []AllocationSlice

	for _, env := range envelopes {
		var value float64
		for i := range txns {
			t := &txns[i]
			if !env.HasCategory(t.CategoryID) {
				continue
			}
			if env.Type == model.EnvelopeSpending {
				if t.Type == model.Debit && !cls.IsTransfer(t) {
					value += t.Amount
				}
			} else if cls.IsContribution(t) {
				value += t.Amount
			}
		}

		totalAllocated += value
		if value > 0 {
			slices = append(slices, AllocationSlice{Name: env.Name, Value: value})
		}
	}

	if unallocated := totalIncome - totalAllocated; unallocated > unallocatedTolerance {
		slices = append(slices, AllocationSlice{Name: "Unallocated", Value: unallocated, Unallocated: true})
	}

	for i := range slices {
		slices[i].Share = ratio(slices[i].Value, totalIncome)
		slices[i].Significant = slices[i].Share >= significantShare
	}

	return Allocation{TotalIncome: totalIncome, Slices: slices}
}
