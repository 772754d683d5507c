package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zedfin/arrears/internal/application/dto"
	"github.com/zedfin/arrears/internal/domain/port"
	"github.com/zedfin/arrears/pkg/events"
)

// CloseCaseUseCase closes a loan's collections case. Cases never regress
// through stages; a settled or restructured loan gets its case closed
// explicitly instead.
type CloseCaseUseCase struct {
	caseRepo port.CaseRepository
	store    port.ArrearsStore
}

// NewCloseCaseUseCase wires dependencies.
func NewCloseCaseUseCase(caseRepo port.CaseRepository, store port.ArrearsStore) *CloseCaseUseCase {
	return &CloseCaseUseCase{caseRepo: caseRepo, store: store}
}

// Execute closes the case for req.LoanID.
func (uc *CloseCaseUseCase) Execute(
	ctx context.Context,
	req dto.CloseCaseRequest,
) (dto.CaseResponse, error) {
	now := time.Now().UTC()
	correlationID := uuid.New().String()

	// 1. Retrieve the case.
	collectionsCase, err := uc.caseRepo.FindByLoanID(ctx, req.LoanID)
	if err != nil {
		return dto.CaseResponse{}, fmt.Errorf("find collections case: %w", err)
	}

	// 2. Close it.
	collectionsCase, err = collectionsCase.Close(req.Reason, correlationID, now)
	if err != nil {
		return dto.CaseResponse{}, fmt.Errorf("close collections case: %w", err)
	}

	// 3. Persist case and outbox entries atomically.
	entries, err := events.Entries(collectionsCase.DomainEvents()...)
	if err != nil {
		return dto.CaseResponse{}, fmt.Errorf("build outbox entries: %w", err)
	}
	if err := uc.store.SaveCase(ctx, collectionsCase.ClearEvents(), entries); err != nil {
		return dto.CaseResponse{}, fmt.Errorf("save collections case: %w", err)
	}

	return toCaseResponse(collectionsCase), nil
}
