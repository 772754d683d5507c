package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// OriginateLoanRequest carries the disbursement parameters for a new loan.
type OriginateLoanRequest struct {
	ClientID         string          `json:"client_id"`
	ProductCode      string          `json:"product_code"`
	Principal        decimal.Decimal `json:"principal"`
	AnnualRateBps    int             `json:"annual_rate_bps"`
	TermMonths       int             `json:"term_months"`
	FirstPaymentDate time.Time       `json:"first_payment_date"`
}

// EvaluateLoanRequest asks for one loan to be evaluated as of a date.
type EvaluateLoanRequest struct {
	LoanID string    `json:"loan_id"`
	AsOf   time.Time `json:"as_of"`
}

// RecordPaymentRequest carries one incoming payment instruction.
type RecordPaymentRequest struct {
	LoanID          string          `json:"loan_id"`
	Reference       string          `json:"reference"`
	Method          string          `json:"method"`
	Source          string          `json:"source"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
}

// ReconcilePaymentRequest marks a payment as reconciled.
type ReconcilePaymentRequest struct {
	PaymentID    string `json:"payment_id"`
	ReconciledBy string `json:"reconciled_by"`
	Notes        string `json:"notes"`
}

// CloseCaseRequest closes a loan's collections case.
type CloseCaseRequest struct {
	LoanID string `json:"loan_id"`
	Reason string `json:"reason"`
}

// PageRequest is shared by the paginated reads.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// SweepRequest triggers a portfolio evaluation run.
type SweepRequest struct {
	AsOf time.Time `json:"as_of"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// InstallmentResponse is one row of the repayment schedule.
type InstallmentResponse struct {
	Sequence           int             `json:"sequence"`
	DueDate            time.Time       `json:"due_date"`
	PrincipalDue       decimal.Decimal `json:"principal_due"`
	InterestDue        decimal.Decimal `json:"interest_due"`
	TotalDue           decimal.Decimal `json:"total_due"`
	PrincipalPaid      decimal.Decimal `json:"principal_paid"`
	InterestPaid       decimal.Decimal `json:"interest_paid"`
	RemainingPrincipal decimal.Decimal `json:"remaining_principal"`
	Status             string          `json:"status"`
}

// LoanResponse is the external representation of a loan account.
type LoanResponse struct {
	ID                   string                `json:"id"`
	ClientID             string                `json:"client_id"`
	ProductCode          string                `json:"product_code"`
	Principal            decimal.Decimal       `json:"principal"`
	AnnualRateBps        int                   `json:"annual_rate_bps"`
	TermMonths           int                   `json:"term_months"`
	Category             string                `json:"category"`
	NonAccrual           bool                  `json:"non_accrual"`
	DPD                  int                   `json:"dpd"`
	OutstandingPrincipal decimal.Decimal       `json:"outstanding_principal"`
	CreditBalance        decimal.Decimal       `json:"credit_balance"`
	ProvisionAmount      decimal.Decimal       `json:"provision_amount"`
	Schedule             []InstallmentResponse `json:"schedule,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// EvaluationResponse is the outcome of one evaluate run for a loan.
type EvaluationResponse struct {
	LoanID          string          `json:"loan_id"`
	DPD             int             `json:"dpd"`
	Category        string          `json:"category"`
	ProvisionAmount decimal.Decimal `json:"provision_amount"`
	NonAccrual      bool            `json:"non_accrual"`
	Reclassified    bool            `json:"reclassified"`
	EscalatedTo     string          `json:"escalated_to,omitempty"`
}

// PaymentResponse is the external representation of a payment transaction.
type PaymentResponse struct {
	ID               string          `json:"id"`
	LoanID           string          `json:"loan_id"`
	ClientID         string          `json:"client_id"`
	Reference        string          `json:"reference"`
	Method           string          `json:"method"`
	Source           string          `json:"source"`
	Amount           decimal.Decimal `json:"amount"`
	PrincipalPortion decimal.Decimal `json:"principal_portion"`
	InterestPortion  decimal.Decimal `json:"interest_portion"`
	Unapplied        decimal.Decimal `json:"unapplied"`
	TransactionDate  time.Time       `json:"transaction_date"`
	Status           string          `json:"status"`
	Reconciled       bool            `json:"reconciled"`
	ReconciledBy     string          `json:"reconciled_by,omitempty"`
	ReconciledAt     *time.Time      `json:"reconciled_at,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

// ClassificationRecordResponse is one audit-trail entry.
type ClassificationRecordResponse struct {
	ID                 string          `json:"id"`
	LoanID             string          `json:"loan_id"`
	PreviousCategory   string          `json:"previous_category"`
	NewCategory        string          `json:"new_category"`
	DPD                int             `json:"dpd"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	ProvisionRate      decimal.Decimal `json:"provision_rate"`
	ProvisionAmount    decimal.Decimal `json:"provision_amount"`
	NonAccrual         bool            `json:"non_accrual"`
	Reason             string          `json:"reason"`
	RecordedAt         time.Time       `json:"recorded_at"`
}

// CaseResponse is the external representation of a collections case.
type CaseResponse struct {
	ID           string               `json:"id"`
	LoanID       string               `json:"loan_id"`
	Stage        string               `json:"stage"`
	StageEntries map[string]time.Time `json:"stage_entries"`
	Closed       bool                 `json:"closed"`
	ClosedAt     *time.Time           `json:"closed_at,omitempty"`
}

// SweepResponse summarises one portfolio evaluation run.
type SweepResponse struct {
	Evaluated    int       `json:"evaluated"`
	Reclassified int       `json:"reclassified"`
	Escalated    int       `json:"escalated"`
	Failed       int       `json:"failed"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// AgingBucketResponse is one band of the aging report.
type AgingBucketResponse struct {
	Band        string          `json:"band"`
	Loans       int             `json:"loans"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// RecoveryResponse summarises cures and collections over a window.
type RecoveryResponse struct {
	Cured           int             `json:"cured"`
	Deteriorated    int             `json:"deteriorated"`
	PaymentsCount   int             `json:"payments_count"`
	AmountCollected decimal.Decimal `json:"amount_collected"`
}

// DashboardResponse combines the portfolio views.
type DashboardResponse struct {
	Aging        []AgingBucketResponse      `json:"aging"`
	PAR30        decimal.Decimal            `json:"par30"`
	PAR90        decimal.Decimal            `json:"par90"`
	Provisioning map[string]decimal.Decimal `json:"provisioning"`
	GeneratedAt  time.Time                  `json:"generated_at"`
}
