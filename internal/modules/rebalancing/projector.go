// Package rebalancing projects how a reserve shortfall would grow over a
// one-year horizon when split between principal-guaranteed and non-principal
// products under three fixed allocation scenarios.
package rebalancing

import (
	"math"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
)

// Assumed annual rates: 5% for principal-guaranteed products, 10% for
// non-principal products, both compounded monthly over a one-year term.
const (
	PrincipalAnnualRate    = 0.05
	NonPrincipalAnnualRate = 0.10

	// ProjectionMonths is the projection horizon (one-year term).
	ProjectionMonths = 12
)

// Scenario is a fixed allocation of the shortfall between the
// principal-guaranteed and non-principal buckets.
type Scenario struct {
	Name                 string
	PrincipalFraction    float64
	NonPrincipalFraction float64
}

// Scenarios are the three allocation scenarios presented to the analyst.
// Names and fractions are fixed policy, not configurable.
var Scenarios = []Scenario{
	{Name: "Conservative", PrincipalFraction: 0.70, NonPrincipalFraction: 0.30},
	{Name: "Balanced", PrincipalFraction: 0.50, NonPrincipalFraction: 0.50},
	{Name: "Aggressive", PrincipalFraction: 0.30, NonPrincipalFraction: 0.70},
}

// Project builds the 12-month balance table for a shortfall amount.
// Callers must gate on expected shortfall > 0; zero or negative amounts mean
// no rebalancing is needed and no projection is shown.
//
// Balance at month m = principal*(1+0.05/12)^m + nonPrincipal*(1+0.10/12)^m.
// Cells are truncated toward zero to whole currency units (sub-unit
// precision is discarded, not rounded).
func Project(totalShortfall float64) domain.MonthlyProjection {
	projection := domain.MonthlyProjection{
		TotalShortfall: totalShortfall,
		Rows:           make([]domain.ProjectionRow, 0, ProjectionMonths),
	}

	for month := 1; month <= ProjectionMonths; month++ {
		row := domain.ProjectionRow{
			Month:    month,
			Balances: make([]domain.ScenarioBalance, 0, len(Scenarios)),
		}
		for _, scenario := range Scenarios {
			principalAmt := totalShortfall * scenario.PrincipalFraction
			nonPrincipalAmt := totalShortfall * scenario.NonPrincipalFraction
			balance := compound(principalAmt, PrincipalAnnualRate, month) +
				compound(nonPrincipalAmt, NonPrincipalAnnualRate, month)
			row.Balances = append(row.Balances, domain.ScenarioBalance{
				Scenario: scenario.Name,
				Balance:  int64(balance),
			})
		}
		projection.Rows = append(projection.Rows, row)
	}

	return projection
}

// compound applies monthly compounding at an annual rate for m months.
func compound(amount, annualRate float64, months int) float64 {
	return amount * math.Pow(1+annualRate/12, float64(months))
}
