package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/valueobject"
	pg "github.com/zedfin/arrears/pkg/postgres"
)

const uniqueViolation = "23505"

// PaymentRepo implements port.PaymentRepository.
type PaymentRepo struct {
	pool *pgxpool.Pool
}

// NewPaymentRepo creates a PostgreSQL-backed payment repository.
func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

const paymentColumns = `
	id, loan_id, client_id, reference, method, source,
	amount, principal_portion, interest_portion, unapplied,
	transaction_date, status, reconciled, reconciled_by, reconciled_at,
	notes, created_at
`

// FindByID retrieves one payment.
func (r *PaymentRepo) FindByID(ctx context.Context, id string) (model.PaymentTransaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment_transactions WHERE id = $1`, id)
	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PaymentTransaction{}, valueobject.ErrPaymentNotFound
		}
		return model.PaymentTransaction{}, err
	}
	return payment, nil
}

// HistoryByLoan returns one page of the loan's payments, newest first.
func (r *PaymentRepo) HistoryByLoan(ctx context.Context, loanID string, page, pageSize int) ([]model.PaymentTransaction, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payment_transactions
		WHERE loan_id = $1
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $2 OFFSET $3`
	return r.queryPayments(ctx, query, loanID, pageSize, (page-1)*pageSize)
}

// ListUnreconciled returns posted payments not yet matched to a statement.
func (r *PaymentRepo) ListUnreconciled(ctx context.Context, page, pageSize int) ([]model.PaymentTransaction, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payment_transactions
		WHERE NOT reconciled
		ORDER BY transaction_date, created_at
		LIMIT $1 OFFSET $2`
	return r.queryPayments(ctx, query, pageSize, (page-1)*pageSize)
}

// ReferenceExists reports whether a payment with this external reference has
// already been posted against the loan.
func (r *PaymentRepo) ReferenceExists(ctx context.Context, loanID, reference string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payment_transactions WHERE loan_id = $1 AND reference = $2)`,
		loanID, reference,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check payment reference: %w", err)
	}
	return exists, nil
}

// Update persists reconciliation state changes. The row-level NOT reconciled
// guard makes the flip once-only even when two callers loaded the payment
// unreconciled; the loser of the race gets ErrAlreadyReconciled.
func (r *PaymentRepo) Update(ctx context.Context, payment model.PaymentTransaction) error {
	query := `
		UPDATE payment_transactions
		SET status = $2, reconciled = $3, reconciled_by = $4, reconciled_at = $5, notes = $6
		WHERE id = $1 AND NOT reconciled
	`
	tag, err := r.pool.Exec(ctx, query,
		payment.ID(), payment.Status().String(),
		payment.Reconciled(), payment.ReconciledBy(), payment.ReconciledAt(), payment.Notes(),
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM payment_transactions WHERE id = $1)`,
			payment.ID(),
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check payment %s: %w", payment.ID(), err)
		}
		if exists {
			return fmt.Errorf("%w: payment %s", valueobject.ErrAlreadyReconciled, payment.ID())
		}
		return valueobject.ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepo) queryPayments(ctx context.Context, query string, args ...any) ([]model.PaymentTransaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []model.PaymentTransaction
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func scanPayment(row pgx.Row) (model.PaymentTransaction, error) {
	var (
		id, loanID, clientID, reference, method, source string
		amount, principalPortion, interestPortion       decimal.Decimal
		unapplied                                       decimal.Decimal
		transactionDate, createdAt                      time.Time
		status, reconciledBy, notes                     string
		reconciled                                      bool
		reconciledAt                                    *time.Time
	)
	err := row.Scan(
		&id, &loanID, &clientID, &reference, &method, &source,
		&amount, &principalPortion, &interestPortion, &unapplied,
		&transactionDate, &status, &reconciled, &reconciledBy, &reconciledAt,
		&notes, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PaymentTransaction{}, err
		}
		return model.PaymentTransaction{}, fmt.Errorf("scan payment: %w", err)
	}

	paymentStatus, err := valueobject.NewPaymentStatus(status)
	if err != nil {
		return model.PaymentTransaction{}, fmt.Errorf("payment %s: %w", id, err)
	}

	return model.ReconstructPaymentTransaction(
		id, loanID, clientID, reference, method, source,
		amount, principalPortion, interestPortion, unapplied,
		transactionDate, paymentStatus,
		reconciled, reconciledBy, reconciledAt, notes, createdAt,
	), nil
}

// insertPayment writes one payment row. The unique (loan_id, reference)
// index backs the idempotency guard under concurrency.
func insertPayment(ctx context.Context, q pg.Querier, payment model.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (` + paymentColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`
	_, err := q.Exec(ctx, query,
		payment.ID(), payment.LoanID(), payment.ClientID(),
		payment.Reference(), payment.Method(), payment.Source(),
		payment.Amount(), payment.PrincipalPortion(), payment.InterestPortion(), payment.Unapplied(),
		payment.TransactionDate(), payment.Status().String(),
		payment.Reconciled(), payment.ReconciledBy(), payment.ReconciledAt(),
		payment.Notes(), payment.CreatedAt(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: reference %q on loan %s", valueobject.ErrDuplicatePaymentReference, payment.Reference(), payment.LoanID())
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}
