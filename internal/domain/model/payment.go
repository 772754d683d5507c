package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zedfin/arrears/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// PaymentTransaction entity
// ---------------------------------------------------------------------------

// PaymentTransaction records one incoming payment and how it was allocated.
// The external reference is unique per loan; the reconciled flag flips
// exactly once.
type PaymentTransaction struct {
	id               string
	loanID           string
	clientID         string
	reference        string
	method           string
	source           string
	amount           decimal.Decimal
	principalPortion decimal.Decimal
	interestPortion  decimal.Decimal
	unapplied        decimal.Decimal
	transactionDate  time.Time
	status           valueobject.PaymentStatus
	reconciled       bool
	reconciledBy     string
	reconciledAt     *time.Time
	notes            string
	createdAt        time.Time
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewPaymentTransaction creates a payment in POSTED status, before allocation.
func NewPaymentTransaction(
	loanID, clientID, reference, method, source string,
	amount decimal.Decimal,
	transactionDate, now time.Time,
) (PaymentTransaction, error) {
	if loanID == "" {
		return PaymentTransaction{}, fmt.Errorf("%w: loan ID is required", valueobject.ErrValidation)
	}
	if reference == "" {
		return PaymentTransaction{}, fmt.Errorf("%w: payment reference is required", valueobject.ErrValidation)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return PaymentTransaction{}, fmt.Errorf("%w: payment amount must be positive, got %s", valueobject.ErrValidation, amount)
	}

	return PaymentTransaction{
		id:               uuid.New().String(),
		loanID:           loanID,
		clientID:         clientID,
		reference:        reference,
		method:           method,
		source:           source,
		amount:           amount,
		principalPortion: decimal.Zero,
		interestPortion:  decimal.Zero,
		unapplied:        decimal.Zero,
		transactionDate:  transactionDate,
		status:           valueobject.PaymentStatusPosted,
		createdAt:        now,
	}, nil
}

// ReconstructPaymentTransaction rebuilds from persistence.
func ReconstructPaymentTransaction(
	id, loanID, clientID, reference, method, source string,
	amount, principalPortion, interestPortion, unapplied decimal.Decimal,
	transactionDate time.Time,
	status valueobject.PaymentStatus,
	reconciled bool,
	reconciledBy string,
	reconciledAt *time.Time,
	notes string,
	createdAt time.Time,
) PaymentTransaction {
	return PaymentTransaction{
		id:               id,
		loanID:           loanID,
		clientID:         clientID,
		reference:        reference,
		method:           method,
		source:           source,
		amount:           amount,
		principalPortion: principalPortion,
		interestPortion:  interestPortion,
		unapplied:        unapplied,
		transactionDate:  transactionDate,
		status:           status,
		reconciled:       reconciled,
		reconciledBy:     reconciledBy,
		reconciledAt:     reconciledAt,
		notes:            notes,
		createdAt:        createdAt,
	}
}

// ---------------------------------------------------------------------------
// Mutations (return new copies)
// ---------------------------------------------------------------------------

// WithAllocation records the waterfall split on the payment.
func (p PaymentTransaction) WithAllocation(alloc PaymentAllocation) PaymentTransaction {
	next := p
	next.principalPortion = alloc.Principal
	next.interestPortion = alloc.Interest
	next.unapplied = alloc.Unapplied
	return next
}

// Reconcile flips the reconciled flag once, recording actor and time.
func (p PaymentTransaction) Reconcile(by, notes string, now time.Time) (PaymentTransaction, error) {
	if p.reconciled {
		return p, valueobject.ErrAlreadyReconciled
	}
	if by == "" {
		return p, fmt.Errorf("%w: reconciled-by is required", valueobject.ErrValidation)
	}

	next := p
	next.reconciled = true
	next.reconciledBy = by
	next.reconciledAt = &now
	next.status = valueobject.PaymentStatusReconciled
	if notes != "" {
		next.notes = notes
	}
	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (p PaymentTransaction) ID() string                          { return p.id }
func (p PaymentTransaction) LoanID() string                      { return p.loanID }
func (p PaymentTransaction) ClientID() string                    { return p.clientID }
func (p PaymentTransaction) Reference() string                   { return p.reference }
func (p PaymentTransaction) Method() string                      { return p.method }
func (p PaymentTransaction) Source() string                      { return p.source }
func (p PaymentTransaction) Amount() decimal.Decimal             { return p.amount }
func (p PaymentTransaction) PrincipalPortion() decimal.Decimal   { return p.principalPortion }
func (p PaymentTransaction) InterestPortion() decimal.Decimal    { return p.interestPortion }
func (p PaymentTransaction) Unapplied() decimal.Decimal          { return p.unapplied }
func (p PaymentTransaction) TransactionDate() time.Time          { return p.transactionDate }
func (p PaymentTransaction) Status() valueobject.PaymentStatus   { return p.status }
func (p PaymentTransaction) Reconciled() bool                    { return p.reconciled }
func (p PaymentTransaction) ReconciledBy() string                { return p.reconciledBy }
func (p PaymentTransaction) ReconciledAt() *time.Time            { return p.reconciledAt }
func (p PaymentTransaction) Notes() string                       { return p.notes }
func (p PaymentTransaction) CreatedAt() time.Time                { return p.createdAt }
