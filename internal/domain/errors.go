package domain

import "fmt"

// InvalidProbabilityError reports a classifier probability outside [0, 1]
// (or non-numeric in the source). Callers reject the offending row; the
// batch continues.
type InvalidProbabilityError struct {
	Value float64
}

func (e InvalidProbabilityError) Error() string {
	return fmt.Sprintf("invalid probability: %v (must be within [0, 1])", e.Value)
}

// MissingFieldError reports an absent column required by an operation that
// was attempted anyway. This is a per-entity skip, never fatal to a batch.
type MissingFieldError struct {
	Field string
}

func (e MissingFieldError) Error() string {
	return fmt.Sprintf("required field missing: %s", e.Field)
}
