package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zedfin/arrears/internal/application/dto"
	"github.com/zedfin/arrears/internal/application/usecase"
	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/service"
	"github.com/zedfin/arrears/internal/domain/valueobject"
	"github.com/zedfin/arrears/pkg/events"
)

var testAsOf = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// loanDaysLate builds a loan whose first installment fell due daysLate days
// before testAsOf and has never been paid.
func loanDaysLate(t *testing.T, daysLate int) model.LoanAccount {
	t.Helper()
	firstDue := testAsOf.AddDate(0, 0, -daysLate)
	loan, err := model.NewLoanAccount(
		"client-001", "PL-STD",
		decimal.NewFromInt(120000), 2400, 12,
		firstDue, firstDue.AddDate(0, -1, 0), "corr-fixture",
	)
	require.NoError(t, err)
	return loan.ClearEvents()
}

func newEvaluateUseCase(loanRepo *mockLoanRepository, caseRepo *mockCaseRepository, store *mockArrearsStore) *usecase.EvaluateLoanUseCase {
	return usecase.NewEvaluateLoanUseCase(
		loanRepo, caseRepo, store,
		service.NewClassifier(service.DefaultClassificationPolicy()),
		service.NewEscalator(service.DefaultEscalationPolicy()),
	)
}

func TestEvaluateLoan_Execute(t *testing.T) {
	t.Run("reclassifies and escalates a delinquent loan", func(t *testing.T) {
		loan := loanDaysLate(t, 45)
		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, id string) (model.LoanAccount, error) {
				return loan, nil
			},
		}
		store := &mockArrearsStore{}

		uc := newEvaluateUseCase(loanRepo, &mockCaseRepository{}, store)
		resp, err := uc.Execute(context.Background(), dto.EvaluateLoanRequest{LoanID: loan.ID(), AsOf: testAsOf})

		require.NoError(t, err)
		assert.Equal(t, 45, resp.DPD)
		assert.Equal(t, "SPECIAL_MENTION", resp.Category)
		assert.True(t, decimal.NewFromInt(6000).Equal(resp.ProvisionAmount), resp.ProvisionAmount.String())
		assert.False(t, resp.NonAccrual)
		assert.True(t, resp.Reclassified)
		assert.Equal(t, "CALL_TASK_CREATED", resp.EscalatedTo)

		require.Len(t, store.savedEvaluations, 1)
		saved := store.savedEvaluations[0]
		require.NotNil(t, saved.record)
		assert.Equal(t, valueobject.CategoryNormal, saved.record.PreviousCategory)
		assert.Equal(t, valueobject.CategorySpecialMention, saved.record.NewCategory)
		require.NotNil(t, saved.theCase)
		assert.Equal(t, valueobject.StageCallTaskCreated, saved.theCase.Stage())
		assert.Len(t, saved.entries, 2)
	})

	t.Run("crossing a milestone by several stages lands once on the highest", func(t *testing.T) {
		loan := loanDaysLate(t, 65)
		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, id string) (model.LoanAccount, error) {
				return loan, nil
			},
		}
		store := &mockArrearsStore{}

		uc := newEvaluateUseCase(loanRepo, &mockCaseRepository{}, store)
		resp, err := uc.Execute(context.Background(), dto.EvaluateLoanRequest{LoanID: loan.ID(), AsOf: testAsOf})

		require.NoError(t, err)
		assert.Equal(t, "MANAGER_ESCALATED", resp.EscalatedTo)

		saved := store.savedEvaluations[0]
		require.NotNil(t, saved.theCase)
		entries := saved.theCase.StageEntries()
		assert.Contains(t, entries, "MANAGER_ESCALATED")
		assert.NotContains(t, entries, "REMINDER_SENT")
		assert.NotContains(t, entries, "CALL_TASK_CREATED")
	})

	t.Run("re-running an unchanged loan appends nothing", func(t *testing.T) {
		loan := loanDaysLate(t, 45)
		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, id string) (model.LoanAccount, error) {
				return loan, nil
			},
		}
		store := &mockArrearsStore{}
		caseRepo := &mockCaseRepository{}

		uc := newEvaluateUseCase(loanRepo, caseRepo, store)
		_, err := uc.Execute(context.Background(), dto.EvaluateLoanRequest{LoanID: loan.ID(), AsOf: testAsOf})
		require.NoError(t, err)

		// Feed the persisted state back and evaluate again.
		first := store.savedEvaluations[0]
		loanRepo.findByIDFunc = func(ctx context.Context, id string) (model.LoanAccount, error) {
			return first.loan, nil
		}
		caseRepo.findByLoanIDFunc = func(ctx context.Context, loanID string) (model.CollectionsCase, error) {
			return *first.theCase, nil
		}

		resp, err := uc.Execute(context.Background(), dto.EvaluateLoanRequest{LoanID: loan.ID(), AsOf: testAsOf})
		require.NoError(t, err)
		assert.False(t, resp.Reclassified)
		assert.Empty(t, resp.EscalatedTo)

		require.Len(t, store.savedEvaluations, 2)
		second := store.savedEvaluations[1]
		assert.Nil(t, second.record)
		assert.Nil(t, second.theCase)
		assert.Empty(t, second.entries)
	})

	t.Run("performing loan gets a provision but no case", func(t *testing.T) {
		loan := loanDaysLate(t, 0)
		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, id string) (model.LoanAccount, error) {
				return loan, nil
			},
		}
		store := &mockArrearsStore{}

		uc := newEvaluateUseCase(loanRepo, &mockCaseRepository{}, store)
		resp, err := uc.Execute(context.Background(), dto.EvaluateLoanRequest{LoanID: loan.ID(), AsOf: testAsOf})

		require.NoError(t, err)
		assert.Equal(t, 0, resp.DPD)
		assert.Equal(t, "NORMAL", resp.Category)
		assert.True(t, resp.Reclassified) // opening provision at 1%
		assert.True(t, decimal.NewFromInt(1200).Equal(resp.ProvisionAmount), resp.ProvisionAmount.String())
		assert.Empty(t, resp.EscalatedTo)
		assert.Nil(t, store.savedEvaluations[0].theCase)
	})

	t.Run("retries a lost race and succeeds", func(t *testing.T) {
		loan := loanDaysLate(t, 10)
		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, id string) (model.LoanAccount, error) {
				return loan, nil
			},
		}
		attempts := 0
		store := &mockArrearsStore{
			saveEvaluationFunc: func(ctx context.Context, l model.LoanAccount, r *model.ClassificationRecord, c *model.CollectionsCase, e []events.OutboxEntry) error {
				attempts++
				if attempts < 3 {
					return valueobject.ErrConcurrencyConflict
				}
				return nil
			},
		}

		uc := newEvaluateUseCase(loanRepo, &mockCaseRepository{}, store)
		_, err := uc.Execute(context.Background(), dto.EvaluateLoanRequest{LoanID: loan.ID(), AsOf: testAsOf})

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after bounded retries", func(t *testing.T) {
		loan := loanDaysLate(t, 10)
		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, id string) (model.LoanAccount, error) {
				return loan, nil
			},
		}
		store := &mockArrearsStore{
			saveEvaluationFunc: func(ctx context.Context, l model.LoanAccount, r *model.ClassificationRecord, c *model.CollectionsCase, e []events.OutboxEntry) error {
				return valueobject.ErrConcurrencyConflict
			},
		}

		uc := newEvaluateUseCase(loanRepo, &mockCaseRepository{}, store)
		_, err := uc.Execute(context.Background(), dto.EvaluateLoanRequest{LoanID: loan.ID(), AsOf: testAsOf})

		require.ErrorIs(t, err, valueobject.ErrConcurrencyConflict)
	})

	t.Run("fails when loan not found", func(t *testing.T) {
		uc := newEvaluateUseCase(&mockLoanRepository{}, &mockCaseRepository{}, &mockArrearsStore{})
		_, err := uc.Execute(context.Background(), dto.EvaluateLoanRequest{LoanID: "missing", AsOf: testAsOf})

		require.ErrorIs(t, err, valueobject.ErrLoanNotFound)
	})
}
