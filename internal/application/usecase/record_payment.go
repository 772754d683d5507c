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

// RecordPaymentUseCase posts one incoming payment: allocate through the
// waterfall, then re-evaluate the loan synchronously so a curing payment
// reclassifies in the same transaction.
type RecordPaymentUseCase struct {
	loanRepo    port.LoanRepository
	paymentRepo port.PaymentRepository
	caseRepo    port.CaseRepository
	store       port.ArrearsStore
	classifier  *service.Classifier
	escalator   *service.Escalator
}

// NewRecordPaymentUseCase wires dependencies.
func NewRecordPaymentUseCase(
	loanRepo port.LoanRepository,
	paymentRepo port.PaymentRepository,
	caseRepo port.CaseRepository,
	store port.ArrearsStore,
	classifier *service.Classifier,
	escalator *service.Escalator,
) *RecordPaymentUseCase {
	return &RecordPaymentUseCase{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		caseRepo:    caseRepo,
		store:       store,
		classifier:  classifier,
		escalator:   escalator,
	}
}

// Execute posts the payment. A duplicate (loan, reference) pair is rejected
// before any state changes.
func (uc *RecordPaymentUseCase) Execute(
	ctx context.Context,
	req dto.RecordPaymentRequest,
) (dto.PaymentResponse, error) {
	now := time.Now().UTC()
	asOf := req.TransactionDate
	if asOf.IsZero() {
		asOf = now
	}
	correlationID := uuid.New().String()

	// 1. Idempotency guard on the external reference.
	exists, err := uc.paymentRepo.ReferenceExists(ctx, req.LoanID, req.Reference)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("check payment reference: %w", err)
	}
	if exists {
		return dto.PaymentResponse{}, fmt.Errorf("%w: reference %q already posted for loan %s",
			valueobject.ErrDuplicatePaymentReference, req.Reference, req.LoanID)
	}

	var lastErr error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		resp, err := uc.postOnce(ctx, req, asOf, now, correlationID)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, valueobject.ErrConcurrencyConflict) {
			return dto.PaymentResponse{}, err
		}
		lastErr = err
	}
	return dto.PaymentResponse{}, lastErr
}

func (uc *RecordPaymentUseCase) postOnce(
	ctx context.Context,
	req dto.RecordPaymentRequest,
	asOf, now time.Time,
	correlationID string,
) (dto.PaymentResponse, error) {
	// 1. Retrieve the loan.
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("find loan: %w", err)
	}

	// 2. Create the payment transaction.
	payment, err := model.NewPaymentTransaction(
		loan.ID(), loan.ClientID(), req.Reference, req.Method, req.Source,
		req.Amount, asOf, now,
	)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("create payment: %w", err)
	}

	// 3. Run the waterfall.
	loan, alloc, err := loan.ApplyPayment(payment.ID(), payment.Reference(), correlationID, req.Amount, now)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("apply payment: %w", err)
	}
	payment = payment.WithAllocation(alloc)

	// 4. Re-evaluate as of the transaction date; a payment that clears the
	// arrears cures the classification in the same pass.
	collectionsCase, haveCase := model.CollectionsCase{}, true
	collectionsCase, err = uc.caseRepo.FindByLoanID(ctx, req.LoanID)
	if err != nil {
		if !errors.Is(err, valueobject.ErrCaseNotFound) {
			return dto.PaymentResponse{}, fmt.Errorf("find collections case: %w", err)
		}
		haveCase = false
	}
	outcome, err := runEvaluation(loan, collectionsCase, haveCase, uc.classifier, uc.escalator, asOf, now, correlationID)
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	// 5. Persist ledger, payment, record, case and outbox atomically.
	entries, err := outboxEntries(outcome.loan, outcome.collectionsCase)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("build outbox entries: %w", err)
	}
	savedCase := outcome.collectionsCase
	if savedCase != nil {
		cleared := savedCase.ClearEvents()
		savedCase = &cleared
	}
	if err := uc.store.SavePayment(ctx, outcome.loan.ClearEvents(), payment, outcome.record, savedCase, entries); err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("save payment: %w", err)
	}

	return toPaymentResponse(payment), nil
}
