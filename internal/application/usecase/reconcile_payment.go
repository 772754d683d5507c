package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/zedfin/arrears/internal/application/dto"
	"github.com/zedfin/arrears/internal/domain/port"
)

// ReconcilePaymentUseCase marks a posted payment as matched against an
// external statement. Reconciling twice is an error.
type ReconcilePaymentUseCase struct {
	paymentRepo port.PaymentRepository
}

// NewReconcilePaymentUseCase wires dependencies.
func NewReconcilePaymentUseCase(paymentRepo port.PaymentRepository) *ReconcilePaymentUseCase {
	return &ReconcilePaymentUseCase{paymentRepo: paymentRepo}
}

// Execute reconciles one payment.
func (uc *ReconcilePaymentUseCase) Execute(
	ctx context.Context,
	req dto.ReconcilePaymentRequest,
) (dto.PaymentResponse, error) {
	now := time.Now().UTC()

	// 1. Retrieve the payment.
	payment, err := uc.paymentRepo.FindByID(ctx, req.PaymentID)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("find payment: %w", err)
	}

	// 2. Flip to reconciled.
	payment, err = payment.Reconcile(req.ReconciledBy, req.Notes, now)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("reconcile payment: %w", err)
	}

	// 3. Persist.
	if err := uc.paymentRepo.Update(ctx, payment); err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("save payment: %w", err)
	}

	return toPaymentResponse(payment), nil
}
