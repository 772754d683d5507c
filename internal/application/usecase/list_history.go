package usecase

import (
	"context"
	"fmt"

	"github.com/zedfin/arrears/internal/application/dto"
	"github.com/zedfin/arrears/internal/domain/port"
)

// ListClassificationsUseCase pages through a loan's classification audit
// trail, newest first.
type ListClassificationsUseCase struct {
	classificationRepo port.ClassificationRepository
}

// NewListClassificationsUseCase wires dependencies.
func NewListClassificationsUseCase(classificationRepo port.ClassificationRepository) *ListClassificationsUseCase {
	return &ListClassificationsUseCase{classificationRepo: classificationRepo}
}

// Execute returns one page of the trail.
func (uc *ListClassificationsUseCase) Execute(
	ctx context.Context,
	loanID string,
	page dto.PageRequest,
) ([]dto.ClassificationRecordResponse, error) {
	p, size := normalizePage(page.Page, page.PageSize)
	records, err := uc.classificationRepo.HistoryByLoan(ctx, loanID, p, size)
	if err != nil {
		return nil, fmt.Errorf("list classifications: %w", err)
	}
	return toClassificationResponses(records), nil
}

// ListPaymentsUseCase pages through a loan's payment history.
type ListPaymentsUseCase struct {
	paymentRepo port.PaymentRepository
}

// NewListPaymentsUseCase wires dependencies.
func NewListPaymentsUseCase(paymentRepo port.PaymentRepository) *ListPaymentsUseCase {
	return &ListPaymentsUseCase{paymentRepo: paymentRepo}
}

// Execute returns one page of payments for loanID.
func (uc *ListPaymentsUseCase) Execute(
	ctx context.Context,
	loanID string,
	page dto.PageRequest,
) ([]dto.PaymentResponse, error) {
	p, size := normalizePage(page.Page, page.PageSize)
	payments, err := uc.paymentRepo.HistoryByLoan(ctx, loanID, p, size)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return toPaymentResponses(payments), nil
}

// ListUnreconciledUseCase pages through payments awaiting reconciliation
// across the whole portfolio.
type ListUnreconciledUseCase struct {
	paymentRepo port.PaymentRepository
}

// NewListUnreconciledUseCase wires dependencies.
func NewListUnreconciledUseCase(paymentRepo port.PaymentRepository) *ListUnreconciledUseCase {
	return &ListUnreconciledUseCase{paymentRepo: paymentRepo}
}

// Execute returns one page of unreconciled payments.
func (uc *ListUnreconciledUseCase) Execute(
	ctx context.Context,
	page dto.PageRequest,
) ([]dto.PaymentResponse, error) {
	p, size := normalizePage(page.Page, page.PageSize)
	payments, err := uc.paymentRepo.ListUnreconciled(ctx, p, size)
	if err != nil {
		return nil, fmt.Errorf("list unreconciled payments: %w", err)
	}
	return toPaymentResponses(payments), nil
}
