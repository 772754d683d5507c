package model_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/valueobject"
)

var loanNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testLoan(t *testing.T) model.LoanAccount {
	t.Helper()
	loan, err := model.NewLoanAccount(
		"client-001", "PL-STD",
		decimal.NewFromInt(120000), 2400, 12,
		firstDue, loanNow, "corr-001",
	)
	require.NoError(t, err)
	return loan
}

func TestNewLoanAccount_Valid(t *testing.T) {
	loan := testLoan(t)

	assert.NotEmpty(t, loan.ID())
	assert.Equal(t, "client-001", loan.ClientID())
	assert.True(t, loan.Category().Equal(valueobject.CategoryNormal))
	assert.False(t, loan.NonAccrual())
	assert.True(t, decimal.NewFromInt(120000).Equal(loan.OutstandingPrincipal()))
	assert.True(t, loan.CreditBalance().IsZero())
	assert.Equal(t, 1, loan.Version())
	assert.Len(t, loan.Schedule(), 12)

	require.Len(t, loan.DomainEvents(), 1)
	assert.Equal(t, "arrears.loan.originated", loan.DomainEvents()[0].EventType())
}

func TestNewLoanAccount_MissingClient(t *testing.T) {
	_, err := model.NewLoanAccount("", "PL-STD", decimal.NewFromInt(1000), 1200, 6, firstDue, loanNow, "corr-001")
	require.ErrorIs(t, err, valueobject.ErrValidation)
}

func TestApplyPayment_InterestBeforePrincipal(t *testing.T) {
	loan := testLoan(t).ClearEvents()

	loan, alloc, err := loan.ApplyPayment("pay-001", "PAY-0001", "corr-001", decimal.NewFromInt(1000), loanNow)

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(alloc.Interest))
	assert.True(t, alloc.Principal.IsZero())
	assert.True(t, alloc.Unapplied.IsZero())
	assert.True(t, decimal.NewFromInt(120000).Equal(loan.OutstandingPrincipal()))

	first := loan.Schedule()[0]
	assert.True(t, first.Status.Equal(valueobject.InstallmentStatusPartiallyPaid))
	assert.True(t, decimal.NewFromInt(1400).Equal(first.OutstandingInterest()))
}

func TestApplyPayment_SpansInstallmentsOldestFirst(t *testing.T) {
	loan := testLoan(t).ClearEvents()
	firstTotal := loan.Schedule()[0].TotalDue

	// First installment in full plus 100 into the second.
	amount := firstTotal.Add(decimal.NewFromInt(100))
	loan, alloc, err := loan.ApplyPayment("pay-001", "PAY-0001", "corr-001", amount, loanNow)

	require.NoError(t, err)
	assert.True(t, alloc.Unapplied.IsZero())

	schedule := loan.Schedule()
	assert.True(t, schedule[0].Settled())
	assert.True(t, schedule[0].RemainingPrincipal.IsZero())

	// The overflow lands on the second installment's interest first.
	assert.True(t, decimal.NewFromInt(100).Equal(schedule[1].InterestPaid))
	assert.True(t, schedule[1].Status.Equal(valueobject.InstallmentStatusPartiallyPaid))
	assert.True(t, schedule[2].Status.Equal(valueobject.InstallmentStatusPending))
}

func TestApplyPayment_OverpaymentBecomesCredit(t *testing.T) {
	loan := testLoan(t).ClearEvents()

	totalOwed := decimal.Zero
	for _, inst := range loan.Schedule() {
		totalOwed = totalOwed.Add(inst.TotalDue)
	}

	loan, alloc, err := loan.ApplyPayment("pay-001", "PAY-0001", "corr-001", totalOwed.Add(decimal.NewFromInt(500)), loanNow)

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(alloc.Unapplied))
	assert.True(t, decimal.NewFromInt(500).Equal(loan.CreditBalance()))
	assert.True(t, loan.OutstandingPrincipal().IsZero())
	assert.True(t, loan.Settled())
	for _, inst := range loan.Schedule() {
		assert.True(t, inst.Settled())
	}
}

func TestApplyPayment_PrincipalConservation(t *testing.T) {
	loan := testLoan(t).ClearEvents()

	payments := []int64{5000, 11347, 800, 25000}
	for i, amt := range payments {
		var err error
		loan, _, err = loan.ApplyPayment(
			fmt.Sprintf("pay-%03d", i+1), fmt.Sprintf("PAY-%04d", i+1),
			"corr-001", decimal.NewFromInt(amt), loanNow,
		)
		require.NoError(t, err)
	}

	// Paid principal plus unpaid principal always reconstructs the
	// disbursed amount.
	paid := decimal.Zero
	unpaid := decimal.Zero
	for _, inst := range loan.Schedule() {
		paid = paid.Add(inst.PrincipalPaid)
		unpaid = unpaid.Add(inst.RemainingPrincipal)
	}
	assert.True(t, decimal.NewFromInt(120000).Equal(paid.Add(unpaid)), paid.Add(unpaid).String())
	assert.True(t, loan.OutstandingPrincipal().Equal(unpaid))
}

func TestApplyPayment_OrderIndependent(t *testing.T) {
	// Two payments with distinct references settle to the same ledger in
	// either arrival order.
	first := decimal.NewFromFloat(7350.55)
	second := decimal.NewFromFloat(11283.40)

	apply := func(t *testing.T, amounts []decimal.Decimal) model.LoanAccount {
		t.Helper()
		loan := testLoan(t).ClearEvents()
		for i, amt := range amounts {
			var err error
			loan, _, err = loan.ApplyPayment(
				fmt.Sprintf("pay-%03d", i+1), fmt.Sprintf("PAY-%04d", i+1),
				"corr-001", amt, loanNow,
			)
			require.NoError(t, err)
		}
		return loan
	}

	forward := apply(t, []decimal.Decimal{first, second})
	reversed := apply(t, []decimal.Decimal{second, first})

	assert.True(t, forward.OutstandingPrincipal().Equal(reversed.OutstandingPrincipal()),
		"outstanding %s vs %s", forward.OutstandingPrincipal(), reversed.OutstandingPrincipal())
	assert.True(t, forward.CreditBalance().Equal(reversed.CreditBalance()))

	fwd, rev := forward.Schedule(), reversed.Schedule()
	require.Len(t, rev, len(fwd))
	paid := decimal.Zero
	unpaid := decimal.Zero
	for i := range fwd {
		assert.True(t, fwd[i].PrincipalPaid.Equal(rev[i].PrincipalPaid),
			"installment %d principal paid %s vs %s", fwd[i].Sequence, fwd[i].PrincipalPaid, rev[i].PrincipalPaid)
		assert.True(t, fwd[i].InterestPaid.Equal(rev[i].InterestPaid),
			"installment %d interest paid %s vs %s", fwd[i].Sequence, fwd[i].InterestPaid, rev[i].InterestPaid)
		assert.True(t, fwd[i].RemainingPrincipal.Equal(rev[i].RemainingPrincipal))
		assert.True(t, fwd[i].Status.Equal(rev[i].Status), "installment %d status", fwd[i].Sequence)
		paid = paid.Add(fwd[i].PrincipalPaid)
		unpaid = unpaid.Add(fwd[i].RemainingPrincipal)
	}
	assert.True(t, decimal.NewFromInt(120000).Equal(paid.Add(unpaid)), paid.Add(unpaid).String())
}

func TestApplyPayment_RejectsNonPositive(t *testing.T) {
	loan := testLoan(t)
	_, _, err := loan.ApplyPayment("pay-001", "PAY-0001", "corr-001", decimal.Zero, loanNow)
	require.ErrorIs(t, err, valueobject.ErrValidation)
}

func TestApplyPayment_EmitsPaymentRecorded(t *testing.T) {
	loan := testLoan(t).ClearEvents()
	loan, _, err := loan.ApplyPayment("pay-001", "PAY-0001", "corr-001", decimal.NewFromInt(1000), loanNow)

	require.NoError(t, err)
	require.Len(t, loan.DomainEvents(), 1)
	assert.Equal(t, "arrears.loan.payment_recorded", loan.DomainEvents()[0].EventType())
}

func TestWithDelinquency_MarksOverdue(t *testing.T) {
	loan := testLoan(t).ClearEvents()
	asOf := firstDue.AddDate(0, 1, 15)

	loan = loan.WithDelinquency(45, asOf, loanNow)

	assert.Equal(t, 45, loan.DPD())
	schedule := loan.Schedule()
	assert.True(t, schedule[0].Status.Equal(valueobject.InstallmentStatusOverdue))
	assert.True(t, schedule[1].Status.Equal(valueobject.InstallmentStatusOverdue))
	assert.True(t, schedule[2].Status.Equal(valueobject.InstallmentStatusPending))
}

func TestWithDelinquency_DueDateBoundaryDay(t *testing.T) {
	loan := testLoan(t).ClearEvents()

	// Later the same calendar day as the due date: not yet overdue, in
	// agreement with a zero DPD.
	sameDay := firstDue.Add(15 * time.Hour)
	evaluated := loan.WithDelinquency(0, sameDay, loanNow)
	assert.True(t, evaluated.Schedule()[0].Status.Equal(valueobject.InstallmentStatusPending))

	// The next calendar day it flips.
	nextDay := firstDue.AddDate(0, 0, 1)
	evaluated = loan.WithDelinquency(1, nextDay, loanNow)
	assert.True(t, evaluated.Schedule()[0].Status.Equal(valueobject.InstallmentStatusOverdue))
}

func TestReclassify_EmitsClassificationChanged(t *testing.T) {
	loan := testLoan(t).ClearEvents()

	loan = loan.Reclassify(
		valueobject.CategorySpecialMention, false,
		decimal.NewFromFloat(0.05), decimal.NewFromInt(6000),
		45, "DPD 45 crossed into SPECIAL_MENTION", "corr-001", loanNow,
	)

	assert.True(t, loan.Category().Equal(valueobject.CategorySpecialMention))
	assert.True(t, decimal.NewFromInt(6000).Equal(loan.ProvisionAmount()))
	require.Len(t, loan.DomainEvents(), 1)
	assert.Equal(t, "arrears.loan.classification_changed", loan.DomainEvents()[0].EventType())
}

func TestLoanAccount_ScheduleIsACopy(t *testing.T) {
	loan := testLoan(t)
	schedule := loan.Schedule()
	schedule[0].PrincipalPaid = decimal.NewFromInt(999)

	assert.True(t, loan.Schedule()[0].PrincipalPaid.IsZero())
}
