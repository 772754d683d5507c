package valueobject

import "errors"

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	// ErrLoanNotFound is returned when a loan or its schedule does not exist.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrPaymentNotFound is returned when a payment transaction does not exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrCaseNotFound is returned when a collections case does not exist.
	ErrCaseNotFound = errors.New("collections case not found")

	// ErrAlreadyReconciled is returned when reconciling a payment twice.
	ErrAlreadyReconciled = errors.New("payment already reconciled")

	// ErrDuplicatePaymentReference is returned when a payment reference has
	// already been used for the same loan.
	ErrDuplicatePaymentReference = errors.New("duplicate payment reference")

	// ErrInvalidScheduleParameters is returned for non-positive principal or
	// term, or a negative rate.
	ErrInvalidScheduleParameters = errors.New("invalid schedule parameters")

	// ErrInvalidStatusTransition is returned for disallowed state changes.
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrConcurrencyConflict is returned when an optimistic write loses the
	// per-loan race. Callers retry a bounded number of times.
	ErrConcurrencyConflict = errors.New("concurrent modification detected")

	// ErrValidation is returned for malformed command input.
	ErrValidation = errors.New("validation failed")
)
