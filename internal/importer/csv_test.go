package importer

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
	"github.com/chumjikim/retirement-risk-prediction/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog() zerolog.Logger {
	return logger.New(logger.Config{Level: "error"})
}

func TestParsePredictions(t *testing.T) {
	csvData := strings.Join([]string{
		" 사업자번호 ,업체명, p_risk ,p_normal,부족액_예상,부족액_실제,explanation",
		"123-45-67890, Hanbit Industries ,0.82,0.18,1000000,1500000,reserve ratio below minimum / contribution arrears",
		"987-65-43210,Daeho Metals,0.12,0.88,,,",
	}, "\n")

	preds, rejected, err := ParsePredictions(strings.NewReader(csvData), testLog())
	require.NoError(t, err)
	assert.Equal(t, 0, rejected)
	require.Len(t, preds, 2)

	hanbit := preds[0]
	assert.Equal(t, "123-45-67890", hanbit.BizRegNo)
	// Cell whitespace is trimmed before use.
	assert.Equal(t, "Hanbit Industries", hanbit.CompanyName)
	assert.Equal(t, 0.82, hanbit.PRisk)
	assert.Equal(t, domain.VerdictRisk, hanbit.FinalJudgement)
	require.NotNil(t, hanbit.ExpectedShortfall)
	assert.Equal(t, 1_000_000.0, *hanbit.ExpectedShortfall)
	require.NotNil(t, hanbit.ActualShortfall)
	assert.Equal(t, 1_500_000.0, *hanbit.ActualShortfall)

	daeho := preds[1]
	assert.Equal(t, domain.VerdictNormal, daeho.FinalJudgement)
	// Blank shortfall cells stay absent, not zero.
	assert.Nil(t, daeho.ExpectedShortfall)
	assert.Nil(t, daeho.ActualShortfall)
}

func TestParsePredictionsWithoutShortfallColumns(t *testing.T) {
	csvData := strings.Join([]string{
		"사업자번호,업체명,p_risk,p_normal",
		"123-45-67890,Hanbit Industries,0.75,0.25",
	}, "\n")

	preds, rejected, err := ParsePredictions(strings.NewReader(csvData), testLog())
	require.NoError(t, err)
	assert.Equal(t, 0, rejected)
	require.Len(t, preds, 1)
	assert.Nil(t, preds[0].ExpectedShortfall)
	assert.Nil(t, preds[0].ActualShortfall)
}

func TestParsePredictionsRejectsBadRows(t *testing.T) {
	csvData := strings.Join([]string{
		"사업자번호,업체명,p_risk,p_normal",
		"111-11-11111,Good Co,0.5,0.5",
		"222-22-22222,Sum Broken Co,0.5,0.4",
		"333-33-33333,Not Numeric Co,abc,0.5",
		"444-44-44444,Out Of Range Co,1.5,-0.5",
		",,0.5,0.5",
	}, "\n")

	preds, rejected, err := ParsePredictions(strings.NewReader(csvData), testLog())
	require.NoError(t, err)
	assert.Equal(t, 4, rejected)
	require.Len(t, preds, 1)
	assert.Equal(t, "Good Co", preds[0].CompanyName)
}

func TestParsePredictionsMissingRequiredColumns(t *testing.T) {
	_, _, err := ParsePredictions(strings.NewReader("p_risk,p_normal\n0.5,0.5"), testLog())
	require.Error(t, err)

	_, _, err = ParsePredictions(strings.NewReader("사업자번호,업체명\n1,Co"), testLog())
	require.Error(t, err)
}

func TestParseIndicators(t *testing.T) {
	csvData := strings.Join([]string{
		"사업자번호,업체명, 기준연도 ,적립금,최소적립금(적립기준액),평가적립금합계,계속기준책임준비금,부담금납입액,부담금산정액",
		"123-45-67890,Hanbit Industries,2014-12-31,90,100,95,100,80,100",
		"123-45-67890,Hanbit Industries,2015,95,100,97,100,85,100",
	}, "\n")

	rows, rejected, err := ParseIndicators(strings.NewReader(csvData), testLog())
	require.NoError(t, err)
	assert.Equal(t, 0, rejected)
	require.Len(t, rows, 2)

	// The year is the first four characters of the date-like string.
	assert.Equal(t, 2014, rows[0].Year)
	assert.Equal(t, 2015, rows[1].Year)
	assert.Equal(t, 90.0, rows[0].ReserveAmount)
	assert.Equal(t, 100.0, rows[0].MinRequiredReserve)
}

func TestParseIndicatorsMissingDenominatorStaysZero(t *testing.T) {
	csvData := strings.Join([]string{
		"사업자번호,업체명,기준연도,적립금,최소적립금(적립기준액),평가적립금합계,계속기준책임준비금,부담금납입액,부담금산정액",
		"123-45-67890,Hanbit Industries,2020,90,,95,100,80,100",
	}, "\n")

	rows, rejected, err := ParseIndicators(strings.NewReader(csvData), testLog())
	require.NoError(t, err)
	assert.Equal(t, 0, rejected)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].MinRequiredReserve)
}

func TestParseIndicatorsRejectsBadRows(t *testing.T) {
	csvData := strings.Join([]string{
		"사업자번호,업체명,기준연도,적립금,최소적립금(적립기준액),평가적립금합계,계속기준책임준비금,부담금납입액,부담금산정액",
		"123-45-67890,Hanbit Industries,20,90,100,95,100,80,100",
		"123-45-67890,Hanbit Industries,2020,bad,100,95,100,80,100",
	}, "\n")

	rows, rejected, err := ParseIndicators(strings.NewReader(csvData), testLog())
	require.NoError(t, err)
	assert.Equal(t, 2, rejected)
	assert.Empty(t, rows)
}

func TestParseIndicatorsMissingColumn(t *testing.T) {
	_, _, err := ParseIndicators(strings.NewReader("사업자번호,업체명,기준연도\n1,Co,2020"), testLog())
	require.Error(t, err)
}
