// Package domain provides core domain models and types.
package domain

import (
	"encoding/json"
	"time"
)

// Verdict is the final risk classification for an entity.
type Verdict string

const (
	// VerdictRisk - the classifier probability crossed the risk threshold
	VerdictRisk Verdict = "RISK"
	// VerdictNormal - below the risk threshold
	VerdictNormal Verdict = "NORMAL"
)

// ComparisonResult classifies the deviation between the projected and the
// realized shortfall.
type ComparisonResult string

const (
	// ComparisonExceeds - the realized shortfall is larger than projected
	ComparisonExceeds ComparisonResult = "ACTUAL_EXCEEDS_EXPECTED"
	// ComparisonBelow - the realized shortfall is smaller than projected
	ComparisonBelow ComparisonResult = "ACTUAL_BELOW_EXPECTED"
	// ComparisonEqual - projected and realized shortfall match exactly
	ComparisonEqual ComparisonResult = "EQUAL"
)

// ProbabilitySumTolerance is the epsilon used by the loader to validate the
// p_risk + p_normal ≈ 1 invariant on classifier output rows.
const ProbabilitySumTolerance = 1e-6

// EntityPrediction is one classifier output row for the current evaluation
// year. The shortfall columns are optional in the source data; nil means the
// column was absent, which is distinct from a zero amount.
type EntityPrediction struct {
	BizRegNo          string   `json:"biz_reg_no" msgpack:"biz_reg_no"`
	CompanyName       string   `json:"company_name" msgpack:"company_name"`
	PRisk             float64  `json:"p_risk" msgpack:"p_risk"`
	PNormal           float64  `json:"p_normal" msgpack:"p_normal"`
	ExpectedShortfall *float64 `json:"expected_shortfall,omitempty" msgpack:"expected_shortfall"`
	ActualShortfall   *float64 `json:"actual_shortfall,omitempty" msgpack:"actual_shortfall"`
	Explanation       string   `json:"explanation,omitempty" msgpack:"explanation"`
	FinalJudgement    Verdict  `json:"final_judgement" msgpack:"final_judgement"`
}

// LookupKey returns the identifier used for historical lookups: the business
// registration number when present and non-blank, the company name otherwise.
func (p EntityPrediction) LookupKey() string {
	if p.BizRegNo != "" {
		return p.BizRegNo
	}
	return p.CompanyName
}

// YearlyIndicator is one (entity, year) row of raw pension funding figures.
type YearlyIndicator struct {
	BizRegNo                   string  `json:"biz_reg_no" msgpack:"biz_reg_no"`
	CompanyName                string  `json:"company_name" msgpack:"company_name"`
	Year                       int     `json:"year" msgpack:"year"`
	ReserveAmount              float64 `json:"reserve_amount" msgpack:"reserve_amount"`
	MinRequiredReserve         float64 `json:"min_required_reserve" msgpack:"min_required_reserve"`
	TotalEvaluatedReserve      float64 `json:"total_evaluated_reserve" msgpack:"total_evaluated_reserve"`
	ContinuingLiabilityReserve float64 `json:"continuing_liability_reserve" msgpack:"continuing_liability_reserve"`
	ContributionPaid           float64 `json:"contribution_paid" msgpack:"contribution_paid"`
	ContributionAssessed       float64 `json:"contribution_assessed" msgpack:"contribution_assessed"`
}

// Ratio is a derived yearly indicator value. Valid is false when the
// denominator was zero or missing; an indeterminate ratio is surfaced to the
// caller as null, never coerced to zero.
type Ratio struct {
	Value float64
	Valid bool
}

// NewRatio computes numerator/denominator, marking the result indeterminate
// when the denominator is zero.
func NewRatio(numerator, denominator float64) Ratio {
	if denominator == 0 {
		return Ratio{}
	}
	return Ratio{Value: numerator / denominator, Valid: true}
}

// MarshalJSON renders indeterminate ratios as null.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts null for an indeterminate ratio.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Ratio{}
		return nil
	}
	if err := json.Unmarshal(data, &r.Value); err != nil {
		return err
	}
	r.Valid = true
	return nil
}

// TrendPoint is one year of derived funding adequacy indicators.
type TrendPoint struct {
	Year             int   `json:"year"`
	ReserveRatio     Ratio `json:"reserve_ratio"`
	ComplianceRatio  Ratio `json:"compliance_ratio"`
	FulfillmentRatio Ratio `json:"fulfillment_ratio"`
}

// ShortfallComparison is the result of comparing the projected shortfall
// against the realized one.
type ShortfallComparison struct {
	Expected float64          `json:"expected"`
	Actual   float64          `json:"actual"`
	Delta    float64          `json:"delta"`
	Result   ComparisonResult `json:"result"`
}

// ScenarioBalance is one scenario cell of the monthly projection table,
// truncated toward zero to whole currency units.
type ScenarioBalance struct {
	Scenario string `json:"scenario"`
	Balance  int64  `json:"balance"`
}

// ProjectionRow is one month of the rebalancing projection.
type ProjectionRow struct {
	Month    int               `json:"month"`
	Balances []ScenarioBalance `json:"balances"`
}

// MonthlyProjection is the 12-month x 3-scenario rebalancing projection for
// an expected shortfall amount.
type MonthlyProjection struct {
	TotalShortfall float64         `json:"total_shortfall"`
	Rows           []ProjectionRow `json:"rows"`
}

// PredictionStats are the aggregate counts shown above the results table.
type PredictionStats struct {
	Total  int `json:"total"`
	Risk   int `json:"risk"`
	Normal int `json:"normal"`
}

// SessionInfo describes one immutable load of the source data. A refresh
// produces a new handle; consumers never observe partial state.
type SessionInfo struct {
	ID                string    `json:"id"`
	LoadedAt          time.Time `json:"loaded_at"`
	PredictionsSource string    `json:"predictions_source"`
	HistorySource     string    `json:"history_source"`
	PredictionRows    int       `json:"prediction_rows"`
	IndicatorRows     int       `json:"indicator_rows"`
	RejectedRows      int       `json:"rejected_rows"`
	FromSnapshot      bool      `json:"from_snapshot"`
}
