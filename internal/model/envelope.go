package model

// EnvelopeType distinguishes recurring budget pools from savings goals.
type EnvelopeType string

const (
	// EnvelopeSpending is a recurring budget pool with a monthly ceiling.
	EnvelopeSpending EnvelopeType = "spending"
	// EnvelopeGoal is a savings target with a monthly contribution goal.
	EnvelopeGoal EnvelopeType = "goal"
)

// Valid reports whether the envelope type is one of the known values.
func (t EnvelopeType) Valid() bool {
	return t == EnvelopeSpending || t == EnvelopeGoal
}

// Envelope links one or more categories to either a spending budget or a
// savings goal. A category may belong to any number of envelopes; activity
// in a shared category counts in full toward every envelope that holds it.
type Envelope struct {
	ID   string
	Name string
	Type EnvelopeType

	// Budget is the monthly budget ceiling for spending envelopes, or the
	// monthly contribution target for goal envelopes.
	Budget float64

	// StartingAmount is money already saved before tracking began.
	// Goal envelopes only; counted toward all-time contributions.
	StartingAmount float64

	// FinalTarget is the optional overall target sum for a goal envelope,
	// tracked independently of the monthly contribution target. Zero means
	// no final target is set.
	FinalTarget float64

	CategoryIDs []string
}

// HasCategory reports whether the envelope tracks the given category.
func (e *Envelope) HasCategory(categoryID string) bool {
	for _, id := range e.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}
