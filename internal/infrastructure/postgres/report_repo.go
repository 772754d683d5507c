package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zedfin/arrears/internal/domain/service"
	"github.com/zedfin/arrears/internal/domain/valueobject"
)

// ReportRepo implements port.ReportRepository with read-only snapshot
// queries for the reporting projections.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepo creates a PostgreSQL-backed report repository.
func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// LoanBalances returns a delinquency snapshot of every loan with principal
// outstanding.
func (r *ReportRepo) LoanBalances(ctx context.Context) ([]service.LoanBalanceRow, error) {
	query := `
		SELECT id, category, dpd, outstanding_principal
		FROM loan_accounts
		WHERE outstanding_principal > 0
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query loan balances: %w", err)
	}
	defer rows.Close()

	var out []service.LoanBalanceRow
	for rows.Next() {
		var (
			row      service.LoanBalanceRow
			category string
		)
		if err := rows.Scan(&row.LoanID, &category, &row.DPD, &row.Outstanding); err != nil {
			return nil, fmt.Errorf("scan loan balance: %w", err)
		}
		if row.Category, err = valueobject.NewCategory(category); err != nil {
			return nil, fmt.Errorf("loan %s: %w", row.LoanID, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// LatestProvisions returns the most recent classification record per loan.
func (r *ReportRepo) LatestProvisions(ctx context.Context) ([]service.ProvisionRow, error) {
	query := `
		SELECT DISTINCT ON (loan_id) loan_id, new_category, provision_amount
		FROM classification_records
		ORDER BY loan_id, recorded_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query latest provisions: %w", err)
	}
	defer rows.Close()

	var out []service.ProvisionRow
	for rows.Next() {
		var (
			row      service.ProvisionRow
			category string
		)
		if err := rows.Scan(&row.LoanID, &category, &row.ProvisionAmount); err != nil {
			return nil, fmt.Errorf("scan provision: %w", err)
		}
		if row.Category, err = valueobject.NewCategory(category); err != nil {
			return nil, fmt.Errorf("loan %s: %w", row.LoanID, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Transitions returns the classification changes recorded inside the window.
func (r *ReportRepo) Transitions(ctx context.Context, from, to time.Time) ([]service.TransitionRow, error) {
	query := `
		SELECT loan_id, previous_category, new_category, recorded_at
		FROM classification_records
		WHERE recorded_at >= $1 AND recorded_at < $2
		ORDER BY recorded_at
	`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []service.TransitionRow
	for rows.Next() {
		var (
			row            service.TransitionRow
			previous, next string
		)
		if err := rows.Scan(&row.LoanID, &previous, &next, &row.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		if row.Previous, err = valueobject.NewCategory(previous); err != nil {
			return nil, fmt.Errorf("loan %s: %w", row.LoanID, err)
		}
		if row.New, err = valueobject.NewCategory(next); err != nil {
			return nil, fmt.Errorf("loan %s: %w", row.LoanID, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DelinquentPayments returns payments collected inside the window against
// loans that were classified worse than NORMAL when the payment arrived.
func (r *ReportRepo) DelinquentPayments(ctx context.Context, from, to time.Time) ([]service.DelinquentPaymentRow, error) {
	query := `
		SELECT p.loan_id, p.amount, p.transaction_date
		FROM payment_transactions p
		JOIN LATERAL (
			SELECT new_category
			FROM classification_records c
			WHERE c.loan_id = p.loan_id AND c.recorded_at <= p.transaction_date
			ORDER BY c.recorded_at DESC
			LIMIT 1
		) latest ON latest.new_category <> 'NORMAL'
		WHERE p.transaction_date >= $1 AND p.transaction_date < $2
		ORDER BY p.transaction_date
	`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query delinquent payments: %w", err)
	}
	defer rows.Close()

	var out []service.DelinquentPaymentRow
	for rows.Next() {
		var row service.DelinquentPaymentRow
		if err := rows.Scan(&row.LoanID, &row.Amount, &row.Date); err != nil {
			return nil, fmt.Errorf("scan delinquent payment: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
