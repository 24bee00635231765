package evaluation

import (
	"testing"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
	"github.com/chumjikim/retirement-risk-prediction/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(logger.New(logger.Config{Level: "error", Pretty: false}))
}

func floatPtr(v float64) *float64 { return &v }

func TestEvaluateNormalEntity(t *testing.T) {
	svc := newTestService()

	pred := domain.EntityPrediction{
		BizRegNo:    "123-45-67890",
		CompanyName: "Hanbit Industries",
		PRisk:       0.25,
		PNormal:     0.75,
		Explanation: "reserve ratio below peers / payment delays",
	}

	result, err := svc.Evaluate(pred, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.VerdictNormal, result.Verdict)
	// Explanation factors are only surfaced for at-risk entities.
	assert.Empty(t, result.ExplanationFactors)
	assert.Nil(t, result.Shortfall)
	assert.Nil(t, result.Projection)
	assert.Empty(t, result.Trend)
}

func TestEvaluateRiskEntityFullPipeline(t *testing.T) {
	svc := newTestService()

	pred := domain.EntityPrediction{
		BizRegNo:          "123-45-67890",
		CompanyName:       "Hanbit Industries",
		PRisk:             0.82,
		PNormal:           0.18,
		ExpectedShortfall: floatPtr(1_000_000),
		ActualShortfall:   floatPtr(1_500_000),
		Explanation:       "reserve ratio below minimum / contribution arrears /  ",
	}

	history := []domain.YearlyIndicator{
		{BizRegNo: "123-45-67890", Year: 2023, ReserveAmount: 90, MinRequiredReserve: 100,
			TotalEvaluatedReserve: 95, ContinuingLiabilityReserve: 100, ContributionPaid: 80, ContributionAssessed: 100},
		{BizRegNo: "123-45-67890", Year: 2022, ReserveAmount: 95, MinRequiredReserve: 100,
			TotalEvaluatedReserve: 97, ContinuingLiabilityReserve: 100, ContributionPaid: 85, ContributionAssessed: 100},
	}

	result, err := svc.Evaluate(pred, history)
	require.NoError(t, err)

	assert.Equal(t, domain.VerdictRisk, result.Verdict)
	assert.Equal(t, []string{"reserve ratio below minimum", "contribution arrears"}, result.ExplanationFactors)

	require.NotNil(t, result.Shortfall)
	assert.Equal(t, 500_000.0, result.Shortfall.Delta)
	assert.Equal(t, domain.ComparisonExceeds, result.Shortfall.Result)

	require.NotNil(t, result.Projection)
	assert.Len(t, result.Projection.Rows, 12)

	require.Len(t, result.Trend, 2)
	assert.Equal(t, 2022, result.Trend[0].Year)
	assert.Equal(t, 2023, result.Trend[1].Year)
	require.NotNil(t, result.TrendSummary.ReserveRatio)
}

func TestEvaluateSkipsShortfallWhenColumnsAbsent(t *testing.T) {
	svc := newTestService()

	result, err := svc.Evaluate(domain.EntityPrediction{
		CompanyName: "Daeho Metals",
		PRisk:       0.9,
		PNormal:     0.1,
	}, nil)
	require.NoError(t, err)

	assert.Nil(t, result.Shortfall)
	assert.Nil(t, result.Projection)
}

func TestEvaluateProjectionGateOnNonPositiveShortfall(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name     string
		expected float64
	}{
		{name: "zero expected shortfall", expected: 0},
		{name: "negative expected shortfall", expected: -500_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Evaluate(domain.EntityPrediction{
				CompanyName:       "Daeho Metals",
				PRisk:             0.75,
				PNormal:           0.25,
				ExpectedShortfall: floatPtr(tt.expected),
				ActualShortfall:   floatPtr(100_000),
			}, nil)
			require.NoError(t, err)

			// Comparison still runs, projection must not.
			require.NotNil(t, result.Shortfall)
			assert.Nil(t, result.Projection)
		})
	}
}

func TestEvaluateRejectsInvalidProbability(t *testing.T) {
	svc := newTestService()

	_, err := svc.Evaluate(domain.EntityPrediction{PRisk: 1.5}, nil)
	require.Error(t, err)
	assert.ErrorAs(t, err, &domain.InvalidProbabilityError{})
}

func TestSplitExplanation(t *testing.T) {
	assert.Nil(t, splitExplanation(""))
	assert.Nil(t, splitExplanation("   "))
	assert.Equal(t, []string{"a", "b"}, splitExplanation("a / b"))
	assert.Equal(t, []string{"only factor"}, splitExplanation("only factor"))
	assert.Equal(t, []string{"a", "b"}, splitExplanation(" a /  / b "))
}
