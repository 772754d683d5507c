package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zedfin/arrears/internal/application/dto"
	"github.com/zedfin/arrears/internal/domain/port"
)

const defaultSweepWorkers = 8

// SweepPortfolioUseCase evaluates every open loan with a bounded worker
// pool. One failing loan never aborts the run; failures are counted and
// logged.
type SweepPortfolioUseCase struct {
	loanRepo port.LoanRepository
	evaluate *EvaluateLoanUseCase
	workers  int
	logger   *slog.Logger
}

// NewSweepPortfolioUseCase wires dependencies. workers <= 0 falls back to
// the default pool size.
func NewSweepPortfolioUseCase(
	loanRepo port.LoanRepository,
	evaluate *EvaluateLoanUseCase,
	workers int,
	logger *slog.Logger,
) *SweepPortfolioUseCase {
	if workers <= 0 {
		workers = defaultSweepWorkers
	}
	return &SweepPortfolioUseCase{
		loanRepo: loanRepo,
		evaluate: evaluate,
		workers:  workers,
		logger:   logger,
	}
}

// Execute runs one portfolio sweep as of req.AsOf (defaults to now).
func (uc *SweepPortfolioUseCase) Execute(
	ctx context.Context,
	req dto.SweepRequest,
) (dto.SweepResponse, error) {
	startedAt := time.Now().UTC()
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = startedAt
	}

	ids, err := uc.loanRepo.ListOpenIDs(ctx)
	if err != nil {
		return dto.SweepResponse{}, err
	}

	var evaluated, reclassified, escalated, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			resp, err := uc.evaluate.Execute(gctx, dto.EvaluateLoanRequest{LoanID: id, AsOf: asOf})
			if err != nil {
				failed.Add(1)
				uc.logger.Error("loan evaluation failed",
					slog.String("loan_id", id),
					slog.String("error", err.Error()),
				)
				return nil
			}
			evaluated.Add(1)
			if resp.Reclassified {
				reclassified.Add(1)
			}
			if resp.EscalatedTo != "" {
				escalated.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return dto.SweepResponse{}, err
	}

	resp := dto.SweepResponse{
		Evaluated:    int(evaluated.Load()),
		Reclassified: int(reclassified.Load()),
		Escalated:    int(escalated.Load()),
		Failed:       int(failed.Load()),
		StartedAt:    startedAt,
		FinishedAt:   time.Now().UTC(),
	}
	uc.logger.Info("portfolio sweep finished",
		slog.Int("evaluated", resp.Evaluated),
		slog.Int("reclassified", resp.Reclassified),
		slog.Int("escalated", resp.Escalated),
		slog.Int("failed", resp.Failed),
		slog.Duration("took", resp.FinishedAt.Sub(resp.StartedAt)),
	)
	return resp, nil
}
