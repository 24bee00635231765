// Package importer materializes the two static data sources (classifier
// output and yearly indicator history) into the session store.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
	"github.com/chumjikim/retirement-risk-prediction/internal/modules/judgement"
)

// Source column headers. The upstream files come out of the pension fund
// verification pipeline with Korean headers; they are matched after
// whitespace trimming.
const (
	colBizRegNo          = "사업자번호"
	colCompanyName       = "업체명"
	colPRisk             = "p_risk"
	colPNormal           = "p_normal"
	colExpectedShortfall = "부족액_예상"
	colActualShortfall   = "부족액_실제"
	colExplanation       = "explanation"

	colYear                  = "기준연도"
	colReserveAmount         = "적립금"
	colMinRequiredReserve    = "최소적립금(적립기준액)"
	colTotalEvaluatedReserve = "평가적립금합계"
	colContinuingLiability   = "계속기준책임준비금"
	colContributionPaid      = "부담금납입액"
	colContributionAssessed  = "부담금산정액"
)

// header maps trimmed column names to their index in a record.
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	record, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	h := make(header, len(record))
	for i, name := range record {
		h[strings.TrimSpace(name)] = i
	}
	return h, nil
}

func (h header) get(record []string, name string) (string, bool) {
	idx, ok := h[name]
	if !ok || idx >= len(record) {
		return "", false
	}
	return strings.TrimSpace(record[idx]), true
}

// ParsePredictions reads the classifier output CSV. Rows violating the
// probability contract (out of range, non-numeric, pair not summing to one)
// are rejected individually; the batch continues.
func ParsePredictions(r io.Reader, log zerolog.Logger) ([]domain.EntityPrediction, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	h, err := readHeader(reader)
	if err != nil {
		return nil, 0, err
	}

	_, hasRegNo := h[colBizRegNo]
	_, hasName := h[colCompanyName]
	if !hasRegNo && !hasName {
		return nil, 0, fmt.Errorf("predictions source has neither %q nor %q column", colBizRegNo, colCompanyName)
	}
	if _, ok := h[colPRisk]; !ok {
		return nil, 0, fmt.Errorf("predictions source is missing the %q column", colPRisk)
	}
	if _, ok := h[colPNormal]; !ok {
		return nil, 0, fmt.Errorf("predictions source is missing the %q column", colPNormal)
	}

	var (
		preds    []domain.EntityPrediction
		rejected int
		line     = 1
	)
	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read predictions row %d: %w", line, err)
		}

		pred, err := parsePredictionRecord(h, record)
		if err != nil {
			rejected++
			log.Warn().Err(err).Int("line", line).Msg("Rejected prediction row")
			continue
		}
		preds = append(preds, pred)
	}

	return preds, rejected, nil
}

func parsePredictionRecord(h header, record []string) (domain.EntityPrediction, error) {
	var pred domain.EntityPrediction

	pred.BizRegNo, _ = h.get(record, colBizRegNo)
	pred.CompanyName, _ = h.get(record, colCompanyName)
	if pred.BizRegNo == "" && pred.CompanyName == "" {
		return pred, fmt.Errorf("row has no usable identity")
	}

	raw, _ := h.get(record, colPRisk)
	pRisk, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return pred, fmt.Errorf("p_risk is not numeric: %q", raw)
	}
	raw, _ = h.get(record, colPNormal)
	pNormal, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return pred, fmt.Errorf("p_normal is not numeric: %q", raw)
	}

	if !judgement.ValidateProbabilityPair(pRisk, pNormal) {
		return pred, fmt.Errorf("probabilities do not sum to one: p_risk=%v p_normal=%v", pRisk, pNormal)
	}

	verdict, err := judgement.Judge(pRisk)
	if err != nil {
		return pred, err
	}

	pred.PRisk = pRisk
	pred.PNormal = pNormal
	pred.FinalJudgement = verdict

	if raw, ok := h.get(record, colExpectedShortfall); ok && raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return pred, fmt.Errorf("expected shortfall is not numeric: %q", raw)
		}
		pred.ExpectedShortfall = &v
	}
	if raw, ok := h.get(record, colActualShortfall); ok && raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return pred, fmt.Errorf("actual shortfall is not numeric: %q", raw)
		}
		pred.ActualShortfall = &v
	}

	pred.Explanation, _ = h.get(record, colExplanation)

	return pred, nil
}

// ParseIndicators reads the yearly indicator history CSV. The year column is
// a date-like string whose first four characters are the calendar year.
func ParseIndicators(r io.Reader, log zerolog.Logger) ([]domain.YearlyIndicator, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	h, err := readHeader(reader)
	if err != nil {
		return nil, 0, err
	}

	required := []string{
		colYear, colReserveAmount, colMinRequiredReserve,
		colTotalEvaluatedReserve, colContinuingLiability,
		colContributionPaid, colContributionAssessed,
	}
	for _, name := range required {
		if _, ok := h[name]; !ok {
			return nil, 0, fmt.Errorf("history source is missing the %q column", name)
		}
	}

	var (
		rows     []domain.YearlyIndicator
		rejected int
		line     = 1
	)
	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read history row %d: %w", line, err)
		}

		row, err := parseIndicatorRecord(h, record)
		if err != nil {
			rejected++
			log.Warn().Err(err).Int("line", line).Msg("Rejected history row")
			continue
		}
		rows = append(rows, row)
	}

	return rows, rejected, nil
}

func parseIndicatorRecord(h header, record []string) (domain.YearlyIndicator, error) {
	var row domain.YearlyIndicator

	row.BizRegNo, _ = h.get(record, colBizRegNo)
	row.CompanyName, _ = h.get(record, colCompanyName)
	if row.BizRegNo == "" && row.CompanyName == "" {
		return row, fmt.Errorf("row has no usable identity")
	}

	rawYear, _ := h.get(record, colYear)
	if len(rawYear) < 4 {
		return row, fmt.Errorf("year value too short: %q", rawYear)
	}
	year, err := strconv.Atoi(rawYear[:4])
	if err != nil {
		return row, fmt.Errorf("year is not numeric: %q", rawYear)
	}
	row.Year = year

	amounts := []struct {
		col  string
		dest *float64
	}{
		{colReserveAmount, &row.ReserveAmount},
		{colMinRequiredReserve, &row.MinRequiredReserve},
		{colTotalEvaluatedReserve, &row.TotalEvaluatedReserve},
		{colContinuingLiability, &row.ContinuingLiabilityReserve},
		{colContributionPaid, &row.ContributionPaid},
		{colContributionAssessed, &row.ContributionAssessed},
	}
	for _, a := range amounts {
		raw, _ := h.get(record, a.col)
		if raw == "" {
			// Missing amount stays zero; a zero denominator surfaces as an
			// indeterminate ratio downstream, never a silent zero ratio.
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return row, fmt.Errorf("%s is not numeric: %q", a.col, raw)
		}
		*a.dest = v
	}

	return row, nil
}
