package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zedfin/arrears/internal/application/dto"
	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/port"
	"github.com/zedfin/arrears/internal/domain/service"
	"github.com/zedfin/arrears/internal/domain/valueobject"
)

// EvaluateLoanUseCase runs the daily pipeline for one loan: recompute DPD,
// reclassify when the change is material, escalate the collections case when
// a milestone is crossed. Re-running with unchanged inputs appends nothing.
type EvaluateLoanUseCase struct {
	loanRepo   port.LoanRepository
	caseRepo   port.CaseRepository
	store      port.ArrearsStore
	classifier *service.Classifier
	escalator  *service.Escalator
}

// NewEvaluateLoanUseCase wires dependencies.
func NewEvaluateLoanUseCase(
	loanRepo port.LoanRepository,
	caseRepo port.CaseRepository,
	store port.ArrearsStore,
	classifier *service.Classifier,
	escalator *service.Escalator,
) *EvaluateLoanUseCase {
	return &EvaluateLoanUseCase{
		loanRepo:   loanRepo,
		caseRepo:   caseRepo,
		store:      store,
		classifier: classifier,
		escalator:  escalator,
	}
}

// Execute evaluates one loan as of req.AsOf (defaults to now). A lost race
// against a concurrent writer reloads the loan and retries a bounded number
// of times.
func (uc *EvaluateLoanUseCase) Execute(
	ctx context.Context,
	req dto.EvaluateLoanRequest,
) (dto.EvaluationResponse, error) {
	now := time.Now().UTC()
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = now
	}
	correlationID := uuid.New().String()

	var lastErr error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		resp, err := uc.evaluateOnce(ctx, req.LoanID, asOf, now, correlationID)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, valueobject.ErrConcurrencyConflict) {
			return dto.EvaluationResponse{}, err
		}
		lastErr = err
	}
	return dto.EvaluationResponse{}, lastErr
}

func (uc *EvaluateLoanUseCase) evaluateOnce(
	ctx context.Context,
	loanID string,
	asOf, now time.Time,
	correlationID string,
) (dto.EvaluationResponse, error) {
	// 1. Retrieve the loan.
	loan, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return dto.EvaluationResponse{}, fmt.Errorf("find loan: %w", err)
	}

	// 2. Retrieve the collections case, if one exists.
	collectionsCase, haveCase := model.CollectionsCase{}, true
	collectionsCase, err = uc.caseRepo.FindByLoanID(ctx, loanID)
	if err != nil {
		if !errors.Is(err, valueobject.ErrCaseNotFound) {
			return dto.EvaluationResponse{}, fmt.Errorf("find collections case: %w", err)
		}
		haveCase = false
	}

	// 3. Run the DPD / classification / escalation pipeline.
	outcome, err := runEvaluation(loan, collectionsCase, haveCase, uc.classifier, uc.escalator, asOf, now, correlationID)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	// 4. Persist loan, record, case and outbox entries atomically.
	entries, err := outboxEntries(outcome.loan, outcome.collectionsCase)
	if err != nil {
		return dto.EvaluationResponse{}, fmt.Errorf("build outbox entries: %w", err)
	}
	savedCase := outcome.collectionsCase
	if savedCase != nil {
		cleared := savedCase.ClearEvents()
		savedCase = &cleared
	}
	if err := uc.store.SaveEvaluation(ctx, outcome.loan.ClearEvents(), outcome.record, savedCase, entries); err != nil {
		return dto.EvaluationResponse{}, fmt.Errorf("save evaluation: %w", err)
	}

	resp := dto.EvaluationResponse{
		LoanID:          outcome.loan.ID(),
		DPD:             outcome.loan.DPD(),
		Category:        outcome.loan.Category().String(),
		ProvisionAmount: outcome.loan.ProvisionAmount(),
		NonAccrual:      outcome.loan.NonAccrual(),
		Reclassified:    outcome.reclassified,
	}
	if outcome.escalated {
		resp.EscalatedTo = outcome.escalatedTo.String()
	}
	return resp, nil
}
