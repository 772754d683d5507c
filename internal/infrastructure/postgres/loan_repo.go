package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/valueobject"
	pg "github.com/zedfin/arrears/pkg/postgres"
)

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	pool *pgxpool.Pool
}

// NewLoanRepo creates a PostgreSQL-backed loan repository.
func NewLoanRepo(pool *pgxpool.Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

// FindByID retrieves a loan account and its installment ledger.
func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.LoanAccount, error) {
	query := `
		SELECT id, client_id, product_code, principal, annual_rate_bps, term_months,
		       category, non_accrual, provision_rate, provision_amount, dpd,
		       outstanding_principal, credit_balance, version, created_at, updated_at
		FROM loan_accounts
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	var (
		loanID, clientID, productCode, category   string
		principal, provisionRate, provisionAmount decimal.Decimal
		outstandingPrincipal, creditBalance       decimal.Decimal
		annualRateBps, termMonths, dpd, version   int
		nonAccrual                                bool
		createdAt, updatedAt                      time.Time
	)
	err := row.Scan(
		&loanID, &clientID, &productCode, &principal, &annualRateBps, &termMonths,
		&category, &nonAccrual, &provisionRate, &provisionAmount, &dpd,
		&outstandingPrincipal, &creditBalance, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.LoanAccount{}, valueobject.ErrLoanNotFound
		}
		return model.LoanAccount{}, fmt.Errorf("scan loan: %w", err)
	}

	cat, err := valueobject.NewCategory(category)
	if err != nil {
		return model.LoanAccount{}, fmt.Errorf("loan %s: %w", loanID, err)
	}

	schedule, err := loadSchedule(ctx, r.pool, loanID)
	if err != nil {
		return model.LoanAccount{}, err
	}

	return model.ReconstructLoanAccount(
		loanID, clientID, productCode,
		principal, annualRateBps, termMonths,
		cat, nonAccrual, provisionRate, provisionAmount, dpd,
		outstandingPrincipal, creditBalance,
		schedule, version, createdAt, updatedAt,
	), nil
}

// ListOpenIDs returns the IDs of every loan that still carries principal.
func (r *LoanRepo) ListOpenIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM loan_accounts WHERE outstanding_principal > 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query open loans: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan loan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func loadSchedule(ctx context.Context, q pg.Querier, loanID string) ([]model.Installment, error) {
	query := `
		SELECT seq, due_date, principal_due, interest_due, total_due,
		       principal_paid, interest_paid, remaining_principal, balance_after, status
		FROM installments
		WHERE loan_id = $1
		ORDER BY seq
	`
	rows, err := q.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("query installments: %w", err)
	}
	defer rows.Close()

	var schedule []model.Installment
	for rows.Next() {
		var (
			inst   model.Installment
			status string
		)
		err := rows.Scan(
			&inst.Sequence, &inst.DueDate, &inst.PrincipalDue, &inst.InterestDue, &inst.TotalDue,
			&inst.PrincipalPaid, &inst.InterestPaid, &inst.RemainingPrincipal, &inst.BalanceAfter, &status,
		)
		if err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		inst.Status, err = valueobject.NewInstallmentStatus(status)
		if err != nil {
			return nil, fmt.Errorf("installment %d of loan %s: %w", inst.Sequence, loanID, err)
		}
		schedule = append(schedule, inst)
	}
	return schedule, rows.Err()
}

// saveLoan upserts the loan row with an optimistic version guard and syncs
// the installment ledger. The caller supplies the transaction.
func saveLoan(ctx context.Context, q pg.Querier, loan model.LoanAccount) error {
	query := `
		INSERT INTO loan_accounts (
			id, client_id, product_code, principal, annual_rate_bps, term_months,
			category, non_accrual, provision_rate, provision_amount, dpd,
			outstanding_principal, credit_balance, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (id) DO UPDATE SET
			category              = EXCLUDED.category,
			non_accrual           = EXCLUDED.non_accrual,
			provision_rate        = EXCLUDED.provision_rate,
			provision_amount      = EXCLUDED.provision_amount,
			dpd                   = EXCLUDED.dpd,
			outstanding_principal = EXCLUDED.outstanding_principal,
			credit_balance        = EXCLUDED.credit_balance,
			version               = loan_accounts.version + 1,
			updated_at            = EXCLUDED.updated_at
		WHERE loan_accounts.version = $14
	`
	tag, err := q.Exec(ctx, query,
		loan.ID(), loan.ClientID(), loan.ProductCode(),
		loan.Principal(), loan.AnnualRateBps(), loan.TermMonths(),
		loan.Category().String(), loan.NonAccrual(),
		loan.ProvisionRate(), loan.ProvisionAmount(), loan.DPD(),
		loan.OutstandingPrincipal(), loan.CreditBalance(),
		loan.Version(), loan.CreatedAt(), loan.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: loan %s version %d", valueobject.ErrConcurrencyConflict, loan.ID(), loan.Version())
	}

	for _, inst := range loan.Schedule() {
		instQuery := `
			INSERT INTO installments (
				loan_id, seq, due_date, principal_due, interest_due, total_due,
				principal_paid, interest_paid, remaining_principal, balance_after, status
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (loan_id, seq) DO UPDATE SET
				principal_paid      = EXCLUDED.principal_paid,
				interest_paid       = EXCLUDED.interest_paid,
				remaining_principal = EXCLUDED.remaining_principal,
				status              = EXCLUDED.status
		`
		_, err := q.Exec(ctx, instQuery,
			loan.ID(), inst.Sequence, inst.DueDate,
			inst.PrincipalDue, inst.InterestDue, inst.TotalDue,
			inst.PrincipalPaid, inst.InterestPaid, inst.RemainingPrincipal, inst.BalanceAfter,
			inst.Status.String(),
		)
		if err != nil {
			return fmt.Errorf("save installment %d: %w", inst.Sequence, err)
		}
	}

	return nil
}
