package core

import "errors"

// ErrZeroDelta is returned when a contribution would not change the
// saved amount at all.
var ErrZeroDelta = errors.New("zero contribution delta")

// CompletionPercent returns the displayed progress of a savings
// challenge, clamped to [0, 100]. A non-positive goal yields 0 rather
// than dividing by zero. The stored amount itself is never clamped:
// over-saved and over-withdrawn states are valid, only the display is
// bounded.
func CompletionPercent(current, goal Money) float64 {
	if goal.Cents <= 0 {
		return 0
	}
	ratio := float64(current.Cents) / float64(goal.Cents)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return ratio * 100
}

// ApplyContribution returns the saved amount after a signed delta.
// A withdrawal is a negative delta supplied by the caller; the result
// may exceed the goal or go negative, both are legitimate stored
// states. Persisted updates must go through the store's atomic
// increment so racing contributions cannot lose each other.
func ApplyContribution(current, delta Money) (Money, error) {
	if delta.Cents == 0 {
		return current, ErrZeroDelta
	}
	return current.Add(delta), nil
}

// Percent reports the challenge's displayed completion.
func (c Challenge) Percent() float64 {
	return CompletionPercent(c.Current, c.Goal)
}
