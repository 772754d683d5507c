package port

import (
	"context"
	"time"

	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/service"
	"github.com/zedfin/arrears/pkg/events"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// LoanRepository retrieves loan accounts with their ledgers. All writes go
// through the ArrearsStore so the per-loan transaction owns them.
type LoanRepository interface {
	FindByID(ctx context.Context, id string) (model.LoanAccount, error)
	ListOpenIDs(ctx context.Context) ([]string, error)
}

// ClassificationRepository reads the append-only audit trail. Writes happen
// only through the ArrearsStore, inside the per-loan transaction.
type ClassificationRepository interface {
	HistoryByLoan(ctx context.Context, loanID string, page, pageSize int) ([]model.ClassificationRecord, error)
}

// PaymentRepository persists and retrieves payment transactions.
type PaymentRepository interface {
	FindByID(ctx context.Context, id string) (model.PaymentTransaction, error)
	HistoryByLoan(ctx context.Context, loanID string, page, pageSize int) ([]model.PaymentTransaction, error)
	ListUnreconciled(ctx context.Context, page, pageSize int) ([]model.PaymentTransaction, error)
	ReferenceExists(ctx context.Context, loanID, reference string) (bool, error)
	Update(ctx context.Context, payment model.PaymentTransaction) error
}

// CaseRepository retrieves collections cases.
type CaseRepository interface {
	FindByLoanID(ctx context.Context, loanID string) (model.CollectionsCase, error)
}

// ArrearsStore persists the per-loan atomic unit: ledger, classification,
// case state and outbox entries commit or roll back together. Escalation and
// notification delivery happen after commit, off the outbox.
type ArrearsStore interface {
	SaveEvaluation(
		ctx context.Context,
		loan model.LoanAccount,
		record *model.ClassificationRecord,
		collectionsCase *model.CollectionsCase,
		entries []events.OutboxEntry,
	) error
	SavePayment(
		ctx context.Context,
		loan model.LoanAccount,
		payment model.PaymentTransaction,
		record *model.ClassificationRecord,
		collectionsCase *model.CollectionsCase,
		entries []events.OutboxEntry,
	) error
	SaveCase(
		ctx context.Context,
		collectionsCase model.CollectionsCase,
		entries []events.OutboxEntry,
	) error
}

// ReportRepository provides the snapshots the reporting projections read.
type ReportRepository interface {
	LoanBalances(ctx context.Context) ([]service.LoanBalanceRow, error)
	LatestProvisions(ctx context.Context) ([]service.ProvisionRow, error)
	Transitions(ctx context.Context, from, to time.Time) ([]service.TransitionRow, error)
	DelinquentPayments(ctx context.Context, from, to time.Time) ([]service.DelinquentPaymentRow, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher delivers committed outbox entries to external consumers.
// Used by the outbox relay, never inside the financial transaction.
type EventPublisher interface {
	Publish(ctx context.Context, entries ...events.OutboxEntry) error
}

// OutboxRepository is re-exported from pkg/events for wiring convenience.
type OutboxRepository = events.OutboxRepository
