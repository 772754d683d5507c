package model_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/valueobject"
)

func testPayment(t *testing.T) model.PaymentTransaction {
	t.Helper()
	payment, err := model.NewPaymentTransaction(
		"loan-001", "client-001", "PAY-0001", "BANK_TRANSFER", "branch",
		decimal.NewFromInt(1000), loanNow, loanNow,
	)
	require.NoError(t, err)
	return payment
}

func TestNewPaymentTransaction_Valid(t *testing.T) {
	payment := testPayment(t)

	assert.NotEmpty(t, payment.ID())
	assert.Equal(t, "PAY-0001", payment.Reference())
	assert.True(t, payment.Status().Equal(valueobject.PaymentStatusPosted))
	assert.False(t, payment.Reconciled())
	assert.True(t, payment.PrincipalPortion().IsZero())
}

func TestNewPaymentTransaction_Invalid(t *testing.T) {
	_, err := model.NewPaymentTransaction("", "client-001", "PAY-0001", "", "", decimal.NewFromInt(1000), loanNow, loanNow)
	require.ErrorIs(t, err, valueobject.ErrValidation)

	_, err = model.NewPaymentTransaction("loan-001", "client-001", "", "", "", decimal.NewFromInt(1000), loanNow, loanNow)
	require.ErrorIs(t, err, valueobject.ErrValidation)

	_, err = model.NewPaymentTransaction("loan-001", "client-001", "PAY-0001", "", "", decimal.NewFromInt(-5), loanNow, loanNow)
	require.ErrorIs(t, err, valueobject.ErrValidation)
}

func TestPaymentTransaction_WithAllocation(t *testing.T) {
	payment := testPayment(t).WithAllocation(model.PaymentAllocation{
		Principal: decimal.NewFromInt(600),
		Interest:  decimal.NewFromInt(300),
		Unapplied: decimal.NewFromInt(100),
	})

	assert.True(t, decimal.NewFromInt(600).Equal(payment.PrincipalPortion()))
	assert.True(t, decimal.NewFromInt(300).Equal(payment.InterestPortion()))
	assert.True(t, decimal.NewFromInt(100).Equal(payment.Unapplied()))
}

func TestPaymentTransaction_ReconcileOnce(t *testing.T) {
	payment := testPayment(t)

	reconciled, err := payment.Reconcile("ops-clerk", "matched", loanNow)
	require.NoError(t, err)
	assert.True(t, reconciled.Reconciled())
	assert.Equal(t, "ops-clerk", reconciled.ReconciledBy())
	assert.True(t, reconciled.Status().Equal(valueobject.PaymentStatusReconciled))
	require.NotNil(t, reconciled.ReconciledAt())

	_, err = reconciled.Reconcile("ops-clerk", "", loanNow)
	require.ErrorIs(t, err, valueobject.ErrAlreadyReconciled)
}

func TestPaymentTransaction_ReconcileRequiresActor(t *testing.T) {
	payment := testPayment(t)
	_, err := payment.Reconcile("", "", loanNow)
	require.ErrorIs(t, err, valueobject.ErrValidation)
}
