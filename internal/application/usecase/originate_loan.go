package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zedfin/arrears/internal/application/dto"
	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/port"
)

// OriginateLoanUseCase creates a loan account at disbursement and generates
// its repayment schedule.
type OriginateLoanUseCase struct {
	store port.ArrearsStore
}

// NewOriginateLoanUseCase wires dependencies.
func NewOriginateLoanUseCase(store port.ArrearsStore) *OriginateLoanUseCase {
	return &OriginateLoanUseCase{store: store}
}

// Execute creates the loan and persists it with its schedule and the
// origination event in one transaction.
func (uc *OriginateLoanUseCase) Execute(
	ctx context.Context,
	req dto.OriginateLoanRequest,
) (dto.LoanResponse, error) {
	now := time.Now().UTC()
	correlationID := uuid.New().String()

	// 1. Build the aggregate; schedule generation validates the terms.
	loan, err := model.NewLoanAccount(
		req.ClientID, req.ProductCode,
		req.Principal, req.AnnualRateBps, req.TermMonths,
		req.FirstPaymentDate, now, correlationID,
	)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("originate loan: %w", err)
	}

	// 2. Persist loan, schedule and outbox entries atomically.
	entries, err := outboxEntries(loan, nil)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("build outbox entries: %w", err)
	}
	if err := uc.store.SaveEvaluation(ctx, loan.ClearEvents(), nil, nil, entries); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	return toLoanResponse(loan, true), nil
}
