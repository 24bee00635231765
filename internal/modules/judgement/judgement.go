// Package judgement implements the risk judgement rule applied to
// classifier output probabilities.
package judgement

import (
	"math"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
)

// RiskThreshold is the fixed policy cutoff: a risk probability at or above
// this value classifies the entity as at risk. Not configurable at runtime.
const RiskThreshold = 0.70

// Judge maps a risk probability to a final verdict.
// The input must be within [0, 1]; anything else (including NaN) is a
// contract violation on the source row and returns InvalidProbabilityError.
func Judge(pRisk float64) (domain.Verdict, error) {
	if math.IsNaN(pRisk) || pRisk < 0.0 || pRisk > 1.0 {
		return "", domain.InvalidProbabilityError{Value: pRisk}
	}
	if pRisk >= RiskThreshold {
		return domain.VerdictRisk, nil
	}
	return domain.VerdictNormal, nil
}

// ValidateProbabilityPair checks the loader precondition that the two
// classifier probabilities sum to one within tolerance.
func ValidateProbabilityPair(pRisk, pNormal float64) bool {
	if math.IsNaN(pRisk) || math.IsNaN(pNormal) {
		return false
	}
	return math.Abs(pRisk+pNormal-1.0) < domain.ProbabilitySumTolerance
}
