package trend

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
)

// stableSlopeEpsilon separates a flat series from a real drift. Ratios move
// in hundredths per year, so anything below a thousandth is noise.
const stableSlopeEpsilon = 0.001

// Trend directions for an indicator series.
const (
	DirectionImproving     = "improving"
	DirectionDeteriorating = "deteriorating"
	DirectionStable        = "stable"
)

// IndicatorSummary describes one indicator series across the available
// years: mean level, least-squares slope per year, and a coarse direction.
type IndicatorSummary struct {
	Mean        float64 `json:"mean"`
	Slope       float64 `json:"slope"`
	Direction   string  `json:"direction"`
	ValidPoints int     `json:"valid_points"`
}

// Summary holds per-indicator summaries. An indicator with fewer than two
// determinate points has no summary (nil).
type Summary struct {
	ReserveRatio     *IndicatorSummary `json:"reserve_ratio,omitempty"`
	ComplianceRatio  *IndicatorSummary `json:"compliance_ratio,omitempty"`
	FulfillmentRatio *IndicatorSummary `json:"fulfillment_ratio,omitempty"`
}

// Summarize computes the per-indicator summaries for a trend series.
// Indeterminate points are excluded from the regression rather than being
// substituted with zero.
func Summarize(points []domain.TrendPoint) Summary {
	return Summary{
		ReserveRatio:     summarizeIndicator(points, func(p domain.TrendPoint) domain.Ratio { return p.ReserveRatio }),
		ComplianceRatio:  summarizeIndicator(points, func(p domain.TrendPoint) domain.Ratio { return p.ComplianceRatio }),
		FulfillmentRatio: summarizeIndicator(points, func(p domain.TrendPoint) domain.Ratio { return p.FulfillmentRatio }),
	}
}

func summarizeIndicator(points []domain.TrendPoint, pick func(domain.TrendPoint) domain.Ratio) *IndicatorSummary {
	var years, values []float64
	for _, p := range points {
		ratio := pick(p)
		if !ratio.Valid {
			continue
		}
		years = append(years, float64(p.Year))
		values = append(values, ratio.Value)
	}

	if len(values) < 2 {
		return nil
	}

	_, slope := stat.LinearRegression(years, values, nil, false)

	direction := DirectionStable
	switch {
	case slope > stableSlopeEpsilon:
		direction = DirectionImproving
	case slope < -stableSlopeEpsilon:
		direction = DirectionDeteriorating
	}

	// A constant series has zero variance and a degenerate regression; keep
	// the summary but report a flat slope.
	if math.IsNaN(slope) {
		slope = 0
		direction = DirectionStable
	}

	return &IndicatorSummary{
		Mean:        stat.Mean(values, nil),
		Slope:       slope,
		Direction:   direction,
		ValidPoints: len(values),
	}
}
