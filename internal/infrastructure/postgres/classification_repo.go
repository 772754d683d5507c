package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/valueobject"
	pg "github.com/zedfin/arrears/pkg/postgres"
)

// ClassificationRepo implements port.ClassificationRepository over the
// append-only classification_records table.
type ClassificationRepo struct {
	pool *pgxpool.Pool
}

// NewClassificationRepo creates a PostgreSQL-backed classification repository.
func NewClassificationRepo(pool *pgxpool.Pool) *ClassificationRepo {
	return &ClassificationRepo{pool: pool}
}

// HistoryByLoan returns one page of the loan's audit trail, newest first.
func (r *ClassificationRepo) HistoryByLoan(ctx context.Context, loanID string, page, pageSize int) ([]model.ClassificationRecord, error) {
	query := `
		SELECT id, loan_id, previous_category, new_category, dpd,
		       outstanding_balance, provision_rate, provision_amount,
		       non_accrual, reason, recorded_at
		FROM classification_records
		WHERE loan_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, loanID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("query classification records: %w", err)
	}
	defer rows.Close()

	var records []model.ClassificationRecord
	for rows.Next() {
		var (
			rec            model.ClassificationRecord
			previous, next string
		)
		err := rows.Scan(
			&rec.ID, &rec.LoanID, &previous, &next, &rec.DPD,
			&rec.OutstandingBalance, &rec.ProvisionRate, &rec.ProvisionAmount,
			&rec.NonAccrual, &rec.Reason, &rec.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan classification record: %w", err)
		}
		if rec.PreviousCategory, err = valueobject.NewCategory(previous); err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		if rec.NewCategory, err = valueobject.NewCategory(next); err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// insertClassification appends one audit-trail record. Records are never
// updated or deleted.
func insertClassification(ctx context.Context, q pg.Querier, rec model.ClassificationRecord) error {
	query := `
		INSERT INTO classification_records (
			id, loan_id, previous_category, new_category, dpd,
			outstanding_balance, provision_rate, provision_amount,
			non_accrual, reason, recorded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	_, err := q.Exec(ctx, query,
		rec.ID, rec.LoanID, rec.PreviousCategory.String(), rec.NewCategory.String(), rec.DPD,
		rec.OutstandingBalance, rec.ProvisionRate, rec.ProvisionAmount,
		rec.NonAccrual, rec.Reason, rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert classification record: %w", err)
	}
	return nil
}
