package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zedfin/arrears/internal/application/dto"
	"github.com/zedfin/arrears/internal/application/usecase"
	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/valueobject"
)

func TestSweepPortfolio_Execute(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("one failing loan does not abort the run", func(t *testing.T) {
		healthy := loanDaysLate(t, 45)
		loanRepo := &mockLoanRepository{
			listOpenIDsFunc: func(ctx context.Context) ([]string, error) {
				return []string{healthy.ID(), "loan-broken"}, nil
			},
			findByIDFunc: func(ctx context.Context, id string) (model.LoanAccount, error) {
				if id == healthy.ID() {
					return healthy, nil
				}
				return model.LoanAccount{}, valueobject.ErrLoanNotFound
			},
		}
		store := &mockArrearsStore{}
		evaluate := newEvaluateUseCase(loanRepo, &mockCaseRepository{}, store)

		uc := usecase.NewSweepPortfolioUseCase(loanRepo, evaluate, 4, logger)
		resp, err := uc.Execute(context.Background(), dto.SweepRequest{AsOf: testAsOf})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Evaluated)
		assert.Equal(t, 1, resp.Failed)
		assert.Equal(t, 1, resp.Reclassified)
		assert.Equal(t, 1, resp.Escalated)
		assert.False(t, resp.FinishedAt.Before(resp.StartedAt))
	})

	t.Run("empty portfolio yields an empty summary", func(t *testing.T) {
		loanRepo := &mockLoanRepository{}
		evaluate := newEvaluateUseCase(loanRepo, &mockCaseRepository{}, &mockArrearsStore{})

		uc := usecase.NewSweepPortfolioUseCase(loanRepo, evaluate, 0, logger)
		resp, err := uc.Execute(context.Background(), dto.SweepRequest{AsOf: testAsOf})

		require.NoError(t, err)
		assert.Zero(t, resp.Evaluated)
		assert.Zero(t, resp.Failed)
	})
}
