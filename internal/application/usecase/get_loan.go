package usecase

import (
	"context"
	"fmt"

	"github.com/zedfin/arrears/internal/application/dto"
	"github.com/zedfin/arrears/internal/domain/port"
)

// GetLoanUseCase reads one loan with its full repayment schedule.
type GetLoanUseCase struct {
	loanRepo port.LoanRepository
}

// NewGetLoanUseCase wires dependencies.
func NewGetLoanUseCase(loanRepo port.LoanRepository) *GetLoanUseCase {
	return &GetLoanUseCase{loanRepo: loanRepo}
}

// Execute returns the loan identified by loanID.
func (uc *GetLoanUseCase) Execute(ctx context.Context, loanID string) (dto.LoanResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}
	return toLoanResponse(loan, true), nil
}

// GetCaseUseCase reads the collections case attached to a loan.
type GetCaseUseCase struct {
	caseRepo port.CaseRepository
}

// NewGetCaseUseCase wires dependencies.
func NewGetCaseUseCase(caseRepo port.CaseRepository) *GetCaseUseCase {
	return &GetCaseUseCase{caseRepo: caseRepo}
}

// Execute returns the case for loanID.
func (uc *GetCaseUseCase) Execute(ctx context.Context, loanID string) (dto.CaseResponse, error) {
	collectionsCase, err := uc.caseRepo.FindByLoanID(ctx, loanID)
	if err != nil {
		return dto.CaseResponse{}, fmt.Errorf("find collections case: %w", err)
	}
	return toCaseResponse(collectionsCase), nil
}
