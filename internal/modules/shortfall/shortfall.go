// Package shortfall compares projected reserve shortfalls against realized
// ones.
package shortfall

import (
	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
)

// Compare returns the deviation of the realized shortfall from the projected
// one and its classification. Pure function, display values only.
func Compare(expected, actual float64) (float64, domain.ComparisonResult) {
	delta := actual - expected
	switch {
	case delta > 0:
		return delta, domain.ComparisonExceeds
	case delta < 0:
		return delta, domain.ComparisonBelow
	default:
		return delta, domain.ComparisonEqual
	}
}

// ComparePrediction runs the comparison for one classifier output row.
// Both shortfall columns must be present on the row; a missing column is
// reported as MissingFieldError and the caller skips the step for that
// entity (no zero substitution).
func ComparePrediction(pred domain.EntityPrediction) (domain.ShortfallComparison, error) {
	if pred.ExpectedShortfall == nil {
		return domain.ShortfallComparison{}, domain.MissingFieldError{Field: "expected_shortfall"}
	}
	if pred.ActualShortfall == nil {
		return domain.ShortfallComparison{}, domain.MissingFieldError{Field: "actual_shortfall"}
	}

	delta, result := Compare(*pred.ExpectedShortfall, *pred.ActualShortfall)
	return domain.ShortfallComparison{
		Expected: *pred.ExpectedShortfall,
		Actual:   *pred.ActualShortfall,
		Delta:    delta,
		Result:   result,
	}, nil
}
