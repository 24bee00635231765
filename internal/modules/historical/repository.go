// Package historical provides access to the yearly indicator rows held in
// the session store.
package historical

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
)

// Repository handles yearly indicator database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new historical repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "historical").Logger(),
	}
}

const selectColumns = `biz_reg_no, company_name, year, reserve_amount,
	min_required_reserve, total_evaluated_reserve, continuing_liability_reserve,
	contribution_paid, contribution_assessed`

// ReplaceAll replaces the whole table with a new load within one
// transaction.
func (r *Repository) ReplaceAll(tx *sql.Tx, rows []domain.YearlyIndicator) error {
	if _, err := tx.Exec(`DELETE FROM yearly_indicators`); err != nil {
		return fmt.Errorf("failed to clear yearly indicators: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO yearly_indicators
		(biz_reg_no, company_name, year, reserve_amount, min_required_reserve,
		total_evaluated_reserve, continuing_liability_reserve, contribution_paid, contribution_assessed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare indicator insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(
			row.BizRegNo,
			row.CompanyName,
			row.Year,
			row.ReserveAmount,
			row.MinRequiredReserve,
			row.TotalEvaluatedReserve,
			row.ContinuingLiabilityReserve,
			row.ContributionPaid,
			row.ContributionAssessed,
		); err != nil {
			return fmt.Errorf("failed to insert indicator row for %s/%d: %w", row.CompanyName, row.Year, err)
		}
	}

	return nil
}

// GetForEntity returns the rows for one entity ordered by year ascending.
// The registration number is preferred when non-blank; otherwise rows are
// matched by exact company name. Zero matching rows yield an empty result,
// which the caller treats as "no historical data available".
func (r *Repository) GetForEntity(bizRegNo, companyName string) ([]domain.YearlyIndicator, error) {
	var (
		sqlQuery string
		arg      string
	)
	if bizRegNo != "" {
		sqlQuery = `SELECT ` + selectColumns + ` FROM yearly_indicators WHERE biz_reg_no = ? ORDER BY year ASC`
		arg = bizRegNo
	} else {
		sqlQuery = `SELECT ` + selectColumns + ` FROM yearly_indicators WHERE company_name = ? ORDER BY year ASC`
		arg = companyName
	}

	rows, err := r.db.Query(sqlQuery, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query yearly indicators: %w", err)
	}
	defer rows.Close()

	var indicators []domain.YearlyIndicator
	for rows.Next() {
		var row domain.YearlyIndicator
		if err := rows.Scan(
			&row.BizRegNo,
			&row.CompanyName,
			&row.Year,
			&row.ReserveAmount,
			&row.MinRequiredReserve,
			&row.TotalEvaluatedReserve,
			&row.ContinuingLiabilityReserve,
			&row.ContributionPaid,
			&row.ContributionAssessed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan indicator row: %w", err)
		}
		indicators = append(indicators, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating yearly indicators: %w", err)
	}

	return indicators, nil
}

// Count returns the total number of indicator rows in the session store.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM yearly_indicators`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count yearly indicators: %w", err)
	}
	return count, nil
}
