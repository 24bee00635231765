// Package predictions provides access to the current-year classifier output
// rows held in the session store.
package predictions

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
)

// Repository handles prediction row database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new predictions repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "predictions").Logger(),
	}
}

const selectColumns = `biz_reg_no, company_name, p_risk, p_normal,
	expected_shortfall, actual_shortfall, explanation, final_judgement`

// ReplaceAll replaces the whole table with a new load within one
// transaction. Readers never observe a partially loaded table.
func (r *Repository) ReplaceAll(tx *sql.Tx, preds []domain.EntityPrediction) error {
	if _, err := tx.Exec(`DELETE FROM predictions`); err != nil {
		return fmt.Errorf("failed to clear predictions: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO predictions
		(biz_reg_no, company_name, p_risk, p_normal, expected_shortfall, actual_shortfall, explanation, final_judgement)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare prediction insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range preds {
		if _, err := stmt.Exec(
			p.BizRegNo,
			p.CompanyName,
			p.PRisk,
			p.PNormal,
			nullableFloat(p.ExpectedShortfall),
			nullableFloat(p.ActualShortfall),
			p.Explanation,
			string(p.FinalJudgement),
		); err != nil {
			return fmt.Errorf("failed to insert prediction for %s: %w", p.CompanyName, err)
		}
	}

	return nil
}

// GetAll returns all prediction rows.
func (r *Repository) GetAll() ([]domain.EntityPrediction, error) {
	return r.query(`SELECT ` + selectColumns + ` FROM predictions ORDER BY company_name`)
}

// Search returns rows whose registration number or company name contains the
// query substring. An empty query matches everything. riskOnly narrows the
// result to entities judged at risk.
func (r *Repository) Search(query string, riskOnly bool) ([]domain.EntityPrediction, error) {
	sqlQuery := `SELECT ` + selectColumns + ` FROM predictions WHERE 1=1`
	var args []interface{}

	if query != "" {
		sqlQuery += ` AND (INSTR(biz_reg_no, ?) > 0 OR INSTR(company_name, ?) > 0)`
		args = append(args, query, query)
	}
	if riskOnly {
		sqlQuery += ` AND final_judgement = ?`
		args = append(args, string(domain.VerdictRisk))
	}
	sqlQuery += ` ORDER BY company_name`

	return r.query(sqlQuery, args...)
}

// GetByKey returns the row whose registration number matches exactly,
// falling back to an exact company name match. A miss returns (nil, nil) -
// it is an empty-result state, not an error.
func (r *Repository) GetByKey(key string) (*domain.EntityPrediction, error) {
	rows, err := r.query(`SELECT `+selectColumns+` FROM predictions WHERE biz_reg_no = ? AND biz_reg_no != '' LIMIT 1`, key)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		rows, err = r.query(`SELECT `+selectColumns+` FROM predictions WHERE company_name = ? LIMIT 1`, key)
		if err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Stats returns the aggregate counts shown above the results table.
func (r *Repository) Stats() (domain.PredictionStats, error) {
	var stats domain.PredictionStats
	err := r.db.QueryRow(`SELECT
		COUNT(*),
		COALESCE(SUM(final_judgement = ?), 0),
		COALESCE(SUM(final_judgement = ?), 0)
		FROM predictions`,
		string(domain.VerdictRisk), string(domain.VerdictNormal),
	).Scan(&stats.Total, &stats.Risk, &stats.Normal)
	if err != nil {
		return domain.PredictionStats{}, fmt.Errorf("failed to query prediction stats: %w", err)
	}
	return stats, nil
}

func (r *Repository) query(sqlQuery string, args ...interface{}) ([]domain.EntityPrediction, error) {
	rows, err := r.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var preds []domain.EntityPrediction
	for rows.Next() {
		var p domain.EntityPrediction
		var expected, actual sql.NullFloat64
		var judgement string
		if err := rows.Scan(
			&p.BizRegNo,
			&p.CompanyName,
			&p.PRisk,
			&p.PNormal,
			&expected,
			&actual,
			&p.Explanation,
			&judgement,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		if expected.Valid {
			v := expected.Float64
			p.ExpectedShortfall = &v
		}
		if actual.Valid {
			v := actual.Float64
			p.ActualShortfall = &v
		}
		p.FinalJudgement = domain.Verdict(judgement)
		preds = append(preds, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}

	return preds, nil
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
