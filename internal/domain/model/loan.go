package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zedfin/arrears/internal/domain/event"
	"github.com/zedfin/arrears/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// LoanAccount aggregate root (arrears servicing)
// ---------------------------------------------------------------------------

// LoanAccount is an immutable aggregate. Mutations return a new copy.
// The installment ledger lives inside the aggregate so that payment
// allocation, delinquency marking and classification stay one consistent unit.
type LoanAccount struct {
	id                   string
	clientID             string
	productCode          string
	principal            decimal.Decimal
	annualRateBps        int
	termMonths           int
	category             valueobject.Category
	nonAccrual           bool
	provisionRate        decimal.Decimal
	provisionAmount      decimal.Decimal
	dpd                  int
	outstandingPrincipal decimal.Decimal
	creditBalance        decimal.Decimal
	schedule             []Installment
	version              int
	createdAt            time.Time
	updatedAt            time.Time
	domainEvents         []event.DomainEvent
}

// PaymentAllocation is the result of running one payment through the
// oldest-due-first waterfall.
type PaymentAllocation struct {
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Unapplied decimal.Decimal
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoanAccount creates a loan account at disbursement and generates its
// repayment schedule. The account starts in the NORMAL category with no
// provision; the first evaluation appends the opening classification record.
func NewLoanAccount(
	clientID, productCode string,
	principal decimal.Decimal,
	annualRateBps, termMonths int,
	firstPaymentDate, now time.Time,
	correlationID string,
) (LoanAccount, error) {
	if clientID == "" {
		return LoanAccount{}, fmt.Errorf("%w: client ID is required", valueobject.ErrValidation)
	}
	if productCode == "" {
		return LoanAccount{}, fmt.Errorf("%w: product code is required", valueobject.ErrValidation)
	}

	schedule, err := GenerateSchedule(principal, annualRateBps, termMonths, firstPaymentDate)
	if err != nil {
		return LoanAccount{}, err
	}

	id := uuid.New().String()
	loan := LoanAccount{
		id:                   id,
		clientID:             clientID,
		productCode:          productCode,
		principal:            principal,
		annualRateBps:        annualRateBps,
		termMonths:           termMonths,
		category:             valueobject.CategoryNormal,
		provisionRate:        decimal.Zero,
		provisionAmount:      decimal.Zero,
		outstandingPrincipal: principal,
		creditBalance:        decimal.Zero,
		schedule:             schedule,
		version:              1,
		createdAt:            now,
		updatedAt:            now,
	}

	loan.domainEvents = append(loan.domainEvents, event.NewLoanOriginated(
		id, correlationID, clientID, productCode,
		principal, annualRateBps, termMonths, schedule[0].DueDate,
	))

	return loan, nil
}

// ReconstructLoanAccount rebuilds a LoanAccount aggregate from persistence.
func ReconstructLoanAccount(
	id, clientID, productCode string,
	principal decimal.Decimal,
	annualRateBps, termMonths int,
	category valueobject.Category,
	nonAccrual bool,
	provisionRate, provisionAmount decimal.Decimal,
	dpd int,
	outstandingPrincipal, creditBalance decimal.Decimal,
	schedule []Installment,
	version int,
	createdAt, updatedAt time.Time,
) LoanAccount {
	return LoanAccount{
		id:                   id,
		clientID:             clientID,
		productCode:          productCode,
		principal:            principal,
		annualRateBps:        annualRateBps,
		termMonths:           termMonths,
		category:             category,
		nonAccrual:           nonAccrual,
		provisionRate:        provisionRate,
		provisionAmount:      provisionAmount,
		dpd:                  dpd,
		outstandingPrincipal: outstandingPrincipal,
		creditBalance:        creditBalance,
		schedule:             schedule,
		version:              version,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// ApplyPayment runs the waterfall: walk unpaid installments in sequence
// order, satisfy outstanding interest before principal, stop when the amount
// is exhausted. Whatever survives every installment is retained as a credit
// balance on the account. Emits PaymentRecorded.
func (l LoanAccount) ApplyPayment(
	paymentID, reference, correlationID string,
	amount decimal.Decimal,
	now time.Time,
) (LoanAccount, PaymentAllocation, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return l, PaymentAllocation{}, fmt.Errorf("%w: payment amount must be positive, got %s", valueobject.ErrValidation, amount)
	}

	next := l
	next.schedule = l.Schedule()
	next.domainEvents = copyEvents(l.domainEvents)

	remaining := amount
	principalApplied := decimal.Zero
	interestApplied := decimal.Zero

	for i := range next.schedule {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		inst := &next.schedule[i]
		if inst.Settled() {
			continue
		}

		// Interest before principal within the installment.
		payInterest := decimal.Min(inst.OutstandingInterest(), remaining)
		inst.InterestPaid = inst.InterestPaid.Add(payInterest)
		remaining = remaining.Sub(payInterest)
		interestApplied = interestApplied.Add(payInterest)

		payPrincipal := decimal.Min(inst.RemainingPrincipal, remaining)
		inst.PrincipalPaid = inst.PrincipalPaid.Add(payPrincipal)
		inst.RemainingPrincipal = inst.RemainingPrincipal.Sub(payPrincipal)
		remaining = remaining.Sub(payPrincipal)
		principalApplied = principalApplied.Add(payPrincipal)

		switch {
		case inst.RemainingPrincipal.IsZero() && inst.OutstandingInterest().IsZero():
			inst.Status = valueobject.InstallmentStatusPaid
		case inst.PrincipalPaid.Add(inst.InterestPaid).IsPositive():
			inst.Status = valueobject.InstallmentStatusPartiallyPaid
		}
	}

	alloc := PaymentAllocation{
		Principal: principalApplied,
		Interest:  interestApplied,
		Unapplied: remaining,
	}

	next.outstandingPrincipal = l.outstandingPrincipal.Sub(principalApplied)
	next.creditBalance = l.creditBalance.Add(remaining)
	next.updatedAt = now

	next.domainEvents = append(next.domainEvents, event.NewPaymentRecorded(
		l.id, correlationID, paymentID, reference,
		amount, principalApplied, interestApplied, remaining, next.outstandingPrincipal,
	))

	return next, alloc, nil
}

// WithDelinquency records the days-past-due computed as of asOf and marks
// pending installments that are past due as OVERDUE. Only calendar dates
// are compared, so the status flips on the same day DPD starts counting.
// Partially paid installments keep their status; they still count toward
// DPD.
func (l LoanAccount) WithDelinquency(dpd int, asOf, now time.Time) LoanAccount {
	next := l
	next.schedule = l.Schedule()
	next.domainEvents = copyEvents(l.domainEvents)
	next.dpd = dpd
	next.updatedAt = now

	asOfDate := dateOf(asOf)
	for i := range next.schedule {
		inst := &next.schedule[i]
		if inst.Status.Equal(valueobject.InstallmentStatusPending) && dateOf(inst.DueDate).Before(asOfDate) {
			inst.Status = valueobject.InstallmentStatusOverdue
		}
	}

	return next
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Reclassify moves the account to a new regulatory category and records the
// matching provision. Emits ClassificationChanged.
func (l LoanAccount) Reclassify(
	newCategory valueobject.Category,
	nonAccrual bool,
	provisionRate, provisionAmount decimal.Decimal,
	dpd int,
	reason, correlationID string,
	now time.Time,
) LoanAccount {
	next := l
	next.domainEvents = copyEvents(l.domainEvents)
	next.category = newCategory
	next.nonAccrual = nonAccrual
	next.provisionRate = provisionRate
	next.provisionAmount = provisionAmount
	next.updatedAt = now

	next.domainEvents = append(next.domainEvents, event.NewClassificationChanged(
		l.id, correlationID, l.category.String(), newCategory.String(),
		dpd, provisionRate, provisionAmount, nonAccrual, reason,
	))

	return next
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l LoanAccount) ID() string                            { return l.id }
func (l LoanAccount) ClientID() string                      { return l.clientID }
func (l LoanAccount) ProductCode() string                   { return l.productCode }
func (l LoanAccount) Principal() decimal.Decimal            { return l.principal }
func (l LoanAccount) AnnualRateBps() int                    { return l.annualRateBps }
func (l LoanAccount) TermMonths() int                       { return l.termMonths }
func (l LoanAccount) Category() valueobject.Category        { return l.category }
func (l LoanAccount) NonAccrual() bool                      { return l.nonAccrual }
func (l LoanAccount) ProvisionRate() decimal.Decimal        { return l.provisionRate }
func (l LoanAccount) ProvisionAmount() decimal.Decimal      { return l.provisionAmount }
func (l LoanAccount) DPD() int                              { return l.dpd }
func (l LoanAccount) OutstandingPrincipal() decimal.Decimal { return l.outstandingPrincipal }
func (l LoanAccount) CreditBalance() decimal.Decimal        { return l.creditBalance }
func (l LoanAccount) Version() int                          { return l.version }
func (l LoanAccount) CreatedAt() time.Time                  { return l.createdAt }
func (l LoanAccount) UpdatedAt() time.Time                  { return l.updatedAt }
func (l LoanAccount) DomainEvents() []event.DomainEvent     { return l.domainEvents }

// Settled returns true once every installment is fully paid.
func (l LoanAccount) Settled() bool {
	for _, inst := range l.schedule {
		if !inst.Settled() {
			return false
		}
	}
	return len(l.schedule) > 0
}

// Schedule returns a defensive copy of the installment ledger.
func (l LoanAccount) Schedule() []Installment {
	if l.schedule == nil {
		return nil
	}
	out := make([]Installment, len(l.schedule))
	copy(out, l.schedule)
	return out
}

// ClearEvents returns a copy with an empty event list.
func (l LoanAccount) ClearEvents() LoanAccount {
	next := l
	next.domainEvents = nil
	return next
}

func copyEvents(evts []event.DomainEvent) []event.DomainEvent {
	if evts == nil {
		return nil
	}
	out := make([]event.DomainEvent, len(evts))
	copy(out, evts)
	return out
}
