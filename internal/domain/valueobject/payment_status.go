package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// PaymentStatus – immutable value object
// ---------------------------------------------------------------------------

// PaymentStatus represents the lifecycle stage of a recorded payment.
type PaymentStatus struct {
	value string
}

const (
	paymentStatusPosted     = "POSTED"
	paymentStatusReconciled = "RECONCILED"
)

var (
	PaymentStatusPosted     = PaymentStatus{value: paymentStatusPosted}
	PaymentStatusReconciled = PaymentStatus{value: paymentStatusReconciled}
)

var validPaymentStatuses = map[string]PaymentStatus{
	paymentStatusPosted:     PaymentStatusPosted,
	paymentStatusReconciled: PaymentStatusReconciled,
}

// NewPaymentStatus creates a PaymentStatus from a raw string.
func NewPaymentStatus(s string) (PaymentStatus, error) {
	v, ok := validPaymentStatuses[s]
	if !ok {
		return PaymentStatus{}, fmt.Errorf("invalid payment status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s PaymentStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s PaymentStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s PaymentStatus) Equal(other PaymentStatus) bool { return s.value == other.value }
