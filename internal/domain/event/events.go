package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zedfin/arrears/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// ---------------------------------------------------------------------------
// Loan events
// ---------------------------------------------------------------------------

// LoanOriginated is raised when a loan account is created at disbursement.
type LoanOriginated struct {
	events.BaseEvent
	ClientID        string          `json:"client_id"`
	ProductCode     string          `json:"product_code"`
	Principal       decimal.Decimal `json:"principal"`
	AnnualRateBps   int             `json:"annual_rate_bps"`
	TermMonths      int             `json:"term_months"`
	FirstPaymentDue time.Time       `json:"first_payment_due"`
}

func NewLoanOriginated(
	loanID, correlationID, clientID, productCode string,
	principal decimal.Decimal,
	annualRateBps, termMonths int,
	firstPaymentDue time.Time,
) LoanOriginated {
	return LoanOriginated{
		BaseEvent:       events.NewBaseEvent("arrears.loan.originated", loanID, "LoanAccount", correlationID),
		ClientID:        clientID,
		ProductCode:     productCode,
		Principal:       principal,
		AnnualRateBps:   annualRateBps,
		TermMonths:      termMonths,
		FirstPaymentDue: firstPaymentDue,
	}
}

// PaymentRecorded is raised when a payment has been allocated to the ledger.
type PaymentRecorded struct {
	events.BaseEvent
	PaymentID          string          `json:"payment_id"`
	Reference          string          `json:"reference"`
	Amount             decimal.Decimal `json:"amount"`
	PrincipalPortion   decimal.Decimal `json:"principal_portion"`
	InterestPortion    decimal.Decimal `json:"interest_portion"`
	Unapplied          decimal.Decimal `json:"unapplied"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}

func NewPaymentRecorded(
	loanID, correlationID, paymentID, reference string,
	amount, principalPortion, interestPortion, unapplied, outstanding decimal.Decimal,
) PaymentRecorded {
	return PaymentRecorded{
		BaseEvent:          events.NewBaseEvent("arrears.loan.payment_recorded", loanID, "LoanAccount", correlationID),
		PaymentID:          paymentID,
		Reference:          reference,
		Amount:             amount,
		PrincipalPortion:   principalPortion,
		InterestPortion:    interestPortion,
		Unapplied:          unapplied,
		OutstandingBalance: outstanding,
	}
}

// ClassificationChanged is raised when a loan moves to a new regulatory
// category or its provision changes materially.
type ClassificationChanged struct {
	events.BaseEvent
	PreviousCategory string          `json:"previous_category"`
	NewCategory      string          `json:"new_category"`
	DPD              int             `json:"dpd"`
	ProvisionRate    decimal.Decimal `json:"provision_rate"`
	ProvisionAmount  decimal.Decimal `json:"provision_amount"`
	NonAccrual       bool            `json:"non_accrual"`
	Reason           string          `json:"reason"`
}

func NewClassificationChanged(
	loanID, correlationID, previousCategory, newCategory string,
	dpd int,
	provisionRate, provisionAmount decimal.Decimal,
	nonAccrual bool,
	reason string,
) ClassificationChanged {
	return ClassificationChanged{
		BaseEvent:        events.NewBaseEvent("arrears.loan.classification_changed", loanID, "LoanAccount", correlationID),
		PreviousCategory: previousCategory,
		NewCategory:      newCategory,
		DPD:              dpd,
		ProvisionRate:    provisionRate,
		ProvisionAmount:  provisionAmount,
		NonAccrual:       nonAccrual,
		Reason:           reason,
	}
}

// ---------------------------------------------------------------------------
// Collections events
// ---------------------------------------------------------------------------

// EscalationTriggered is raised when a collections case advances to a new
// stage. Exactly one event is emitted per advance, for the landing stage.
type EscalationTriggered struct {
	events.BaseEvent
	LoanID string `json:"loan_id"`
	Stage  string `json:"stage"`
	Action string `json:"action"`
	DPD    int    `json:"dpd"`
}

func NewEscalationTriggered(caseID, correlationID, loanID, stage, action string, dpd int) EscalationTriggered {
	return EscalationTriggered{
		BaseEvent: events.NewBaseEvent("arrears.case.escalation_triggered", caseID, "CollectionsCase", correlationID),
		LoanID:    loanID,
		Stage:     stage,
		Action:    action,
		DPD:       dpd,
	}
}

// CaseClosed is raised when a collections case is explicitly closed.
type CaseClosed struct {
	events.BaseEvent
	LoanID string `json:"loan_id"`
	Reason string `json:"reason"`
}

func NewCaseClosed(caseID, correlationID, loanID, reason string) CaseClosed {
	return CaseClosed{
		BaseEvent: events.NewBaseEvent("arrears.case.closed", caseID, "CollectionsCase", correlationID),
		LoanID:    loanID,
		Reason:    reason,
	}
}
