package usecase_test

import (
	"context"
	"time"

	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/service"
	"github.com/zedfin/arrears/internal/domain/valueobject"
	"github.com/zedfin/arrears/pkg/events"
)

// --- Mock implementations ---

type mockLoanRepository struct {
	findByIDFunc    func(ctx context.Context, id string) (model.LoanAccount, error)
	listOpenIDsFunc func(ctx context.Context) ([]string, error)
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id string) (model.LoanAccount, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.LoanAccount{}, valueobject.ErrLoanNotFound
}

func (m *mockLoanRepository) ListOpenIDs(ctx context.Context) ([]string, error) {
	if m.listOpenIDsFunc != nil {
		return m.listOpenIDsFunc(ctx)
	}
	return nil, nil
}

type mockPaymentRepository struct {
	findByIDFunc         func(ctx context.Context, id string) (model.PaymentTransaction, error)
	referenceExistsFunc  func(ctx context.Context, loanID, reference string) (bool, error)
	historyByLoanFunc    func(ctx context.Context, loanID string, page, pageSize int) ([]model.PaymentTransaction, error)
	listUnreconciledFunc func(ctx context.Context, page, pageSize int) ([]model.PaymentTransaction, error)
	updateFunc           func(ctx context.Context, payment model.PaymentTransaction) error
	updatedPayments      []model.PaymentTransaction
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id string) (model.PaymentTransaction, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.PaymentTransaction{}, valueobject.ErrPaymentNotFound
}

func (m *mockPaymentRepository) HistoryByLoan(ctx context.Context, loanID string, page, pageSize int) ([]model.PaymentTransaction, error) {
	if m.historyByLoanFunc != nil {
		return m.historyByLoanFunc(ctx, loanID, page, pageSize)
	}
	return nil, nil
}

func (m *mockPaymentRepository) ListUnreconciled(ctx context.Context, page, pageSize int) ([]model.PaymentTransaction, error) {
	if m.listUnreconciledFunc != nil {
		return m.listUnreconciledFunc(ctx, page, pageSize)
	}
	return nil, nil
}

func (m *mockPaymentRepository) ReferenceExists(ctx context.Context, loanID, reference string) (bool, error) {
	if m.referenceExistsFunc != nil {
		return m.referenceExistsFunc(ctx, loanID, reference)
	}
	return false, nil
}

func (m *mockPaymentRepository) Update(ctx context.Context, payment model.PaymentTransaction) error {
	if m.updateFunc != nil {
		if err := m.updateFunc(ctx, payment); err != nil {
			return err
		}
	}
	m.updatedPayments = append(m.updatedPayments, payment)
	return nil
}

type mockCaseRepository struct {
	findByLoanIDFunc func(ctx context.Context, loanID string) (model.CollectionsCase, error)
}

func (m *mockCaseRepository) FindByLoanID(ctx context.Context, loanID string) (model.CollectionsCase, error) {
	if m.findByLoanIDFunc != nil {
		return m.findByLoanIDFunc(ctx, loanID)
	}
	return model.CollectionsCase{}, valueobject.ErrCaseNotFound
}

type mockClassificationRepository struct {
	historyByLoanFunc func(ctx context.Context, loanID string, page, pageSize int) ([]model.ClassificationRecord, error)
}

func (m *mockClassificationRepository) HistoryByLoan(ctx context.Context, loanID string, page, pageSize int) ([]model.ClassificationRecord, error) {
	if m.historyByLoanFunc != nil {
		return m.historyByLoanFunc(ctx, loanID, page, pageSize)
	}
	return nil, nil
}

type savedEvaluation struct {
	loan    model.LoanAccount
	record  *model.ClassificationRecord
	theCase *model.CollectionsCase
	entries []events.OutboxEntry
}

type savedPayment struct {
	loan    model.LoanAccount
	payment model.PaymentTransaction
	record  *model.ClassificationRecord
	theCase *model.CollectionsCase
	entries []events.OutboxEntry
}

type mockArrearsStore struct {
	saveEvaluationFunc func(ctx context.Context, loan model.LoanAccount, record *model.ClassificationRecord, c *model.CollectionsCase, entries []events.OutboxEntry) error
	savePaymentFunc    func(ctx context.Context, loan model.LoanAccount, payment model.PaymentTransaction, record *model.ClassificationRecord, c *model.CollectionsCase, entries []events.OutboxEntry) error
	savedEvaluations   []savedEvaluation
	savedPayments      []savedPayment
	savedCases         []model.CollectionsCase
}

func (m *mockArrearsStore) SaveEvaluation(ctx context.Context, loan model.LoanAccount, record *model.ClassificationRecord, c *model.CollectionsCase, entries []events.OutboxEntry) error {
	if m.saveEvaluationFunc != nil {
		return m.saveEvaluationFunc(ctx, loan, record, c, entries)
	}
	m.savedEvaluations = append(m.savedEvaluations, savedEvaluation{loan: loan, record: record, theCase: c, entries: entries})
	return nil
}

func (m *mockArrearsStore) SavePayment(ctx context.Context, loan model.LoanAccount, payment model.PaymentTransaction, record *model.ClassificationRecord, c *model.CollectionsCase, entries []events.OutboxEntry) error {
	if m.savePaymentFunc != nil {
		return m.savePaymentFunc(ctx, loan, payment, record, c, entries)
	}
	m.savedPayments = append(m.savedPayments, savedPayment{loan: loan, payment: payment, record: record, theCase: c, entries: entries})
	return nil
}

func (m *mockArrearsStore) SaveCase(_ context.Context, c model.CollectionsCase, _ []events.OutboxEntry) error {
	m.savedCases = append(m.savedCases, c)
	return nil
}

type mockReportRepository struct {
	balances    []service.LoanBalanceRow
	provisions  []service.ProvisionRow
	transitions []service.TransitionRow
	payments    []service.DelinquentPaymentRow
}

func (m *mockReportRepository) LoanBalances(_ context.Context) ([]service.LoanBalanceRow, error) {
	return m.balances, nil
}

func (m *mockReportRepository) LatestProvisions(_ context.Context) ([]service.ProvisionRow, error) {
	return m.provisions, nil
}

func (m *mockReportRepository) Transitions(_ context.Context, _, _ time.Time) ([]service.TransitionRow, error) {
	return m.transitions, nil
}

func (m *mockReportRepository) DelinquentPayments(_ context.Context, _, _ time.Time) ([]service.DelinquentPaymentRow, error) {
	return m.payments, nil
}
