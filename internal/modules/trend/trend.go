// Package trend derives yearly funding adequacy indicators from raw pension
// figures for one entity and summarizes their direction over time.
package trend

import (
	"sort"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
)

// Aggregate computes the three derived ratios for each yearly row and
// returns the series ordered by year ascending (the natural sort key for
// charting). An empty input yields an empty series, not an error - the
// caller renders it as "no historical data available".
//
// A zero denominator marks the ratio indeterminate; it is surfaced to the
// caller as an invalid Ratio, never coerced to zero.
func Aggregate(rows []domain.YearlyIndicator) []domain.TrendPoint {
	points := make([]domain.TrendPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, domain.TrendPoint{
			Year:             row.Year,
			ReserveRatio:     domain.NewRatio(row.ReserveAmount, row.MinRequiredReserve),
			ComplianceRatio:  domain.NewRatio(row.TotalEvaluatedReserve, row.ContinuingLiabilityReserve),
			FulfillmentRatio: domain.NewRatio(row.ContributionPaid, row.ContributionAssessed),
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Year < points[j].Year
	})

	return points
}
