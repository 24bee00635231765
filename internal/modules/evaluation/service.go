// Package evaluation runs the full per-entity risk evaluation pipeline:
// judgement, shortfall comparison, rebalancing projection and trend series,
// combined into one synchronous call for the presentation layer.
package evaluation

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
	"github.com/chumjikim/retirement-risk-prediction/internal/modules/judgement"
	"github.com/chumjikim/retirement-risk-prediction/internal/modules/rebalancing"
	"github.com/chumjikim/retirement-risk-prediction/internal/modules/shortfall"
	"github.com/chumjikim/retirement-risk-prediction/internal/modules/trend"
)

// explanationSeparator delimits the human-readable contributing factors in
// the classifier's explanation column.
const explanationSeparator = " / "

// Result is the combined evaluation payload for one entity. Optional steps
// that were skipped (missing shortfall columns, non-positive expected
// shortfall, no historical rows) are nil or empty rather than errors.
type Result struct {
	BizRegNo           string                      `json:"biz_reg_no"`
	CompanyName        string                      `json:"company_name"`
	PRisk              float64                     `json:"p_risk"`
	PNormal            float64                     `json:"p_normal"`
	Verdict            domain.Verdict              `json:"verdict"`
	ExplanationFactors []string                    `json:"explanation_factors,omitempty"`
	Shortfall          *domain.ShortfallComparison `json:"shortfall,omitempty"`
	Projection         *domain.MonthlyProjection   `json:"projection,omitempty"`
	Trend              []domain.TrendPoint         `json:"trend"`
	TrendSummary       trend.Summary               `json:"trend_summary"`
}

// Service orchestrates the evaluation pipeline
type Service struct {
	log zerolog.Logger
}

// NewService creates a new evaluation service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "evaluation").Logger(),
	}
}

// Evaluate runs the pipeline for one prediction row and its historical
// indicator rows.
//
// Gates, in order:
//   - the verdict is re-derived from p_risk (an out-of-range probability
//     rejects the entity, not the batch);
//   - the shortfall comparison runs only when both shortfall columns are
//     present on the row;
//   - the projection runs only when the expected shortfall is positive;
//   - an empty history yields an empty trend series, not an error.
func (s *Service) Evaluate(pred domain.EntityPrediction, history []domain.YearlyIndicator) (Result, error) {
	verdict, err := judgement.Judge(pred.PRisk)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		BizRegNo:    pred.BizRegNo,
		CompanyName: pred.CompanyName,
		PRisk:       pred.PRisk,
		PNormal:     pred.PNormal,
		Verdict:     verdict,
	}

	if verdict == domain.VerdictRisk {
		result.ExplanationFactors = splitExplanation(pred.Explanation)
	}

	if pred.ExpectedShortfall != nil && pred.ActualShortfall != nil {
		comparison, err := shortfall.ComparePrediction(pred)
		if err != nil {
			// Presence was checked above; treat as a per-entity skip.
			s.log.Warn().Err(err).Str("entity", pred.LookupKey()).Msg("Shortfall comparison skipped")
		} else {
			result.Shortfall = &comparison
		}

		if *pred.ExpectedShortfall > 0 {
			projection := rebalancing.Project(*pred.ExpectedShortfall)
			result.Projection = &projection
		}
	}

	result.Trend = trend.Aggregate(history)
	result.TrendSummary = trend.Summarize(result.Trend)

	return result, nil
}

// splitExplanation splits the delimiter-separated factor list, trimming
// whitespace and dropping blanks.
func splitExplanation(explanation string) []string {
	if strings.TrimSpace(explanation) == "" {
		return nil
	}

	var factors []string
	for _, part := range strings.Split(explanation, explanationSeparator) {
		part = strings.TrimSpace(part)
		if part != "" {
			factors = append(factors, part)
		}
	}
	return factors
}
