package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zedfin/arrears/internal/domain/valueobject"
)

// ClassificationRecord is one append-only entry in a loan's regulatory audit
// trail. Records are created exactly once per category change (or material
// provision change) and are never mutated or deleted.
type ClassificationRecord struct {
	ID                 string
	LoanID             string
	PreviousCategory   valueobject.Category
	NewCategory        valueobject.Category
	DPD                int
	OutstandingBalance decimal.Decimal
	ProvisionRate      decimal.Decimal
	ProvisionAmount    decimal.Decimal
	NonAccrual         bool
	Reason             string
	RecordedAt         time.Time
}

// NewClassificationRecord creates a record for one classification transition.
func NewClassificationRecord(
	loanID string,
	previous, next valueobject.Category,
	dpd int,
	outstandingBalance, provisionRate, provisionAmount decimal.Decimal,
	nonAccrual bool,
	reason string,
	now time.Time,
) ClassificationRecord {
	return ClassificationRecord{
		ID:                 uuid.New().String(),
		LoanID:             loanID,
		PreviousCategory:   previous,
		NewCategory:        next,
		DPD:                dpd,
		OutstandingBalance: outstandingBalance,
		ProvisionRate:      provisionRate,
		ProvisionAmount:    provisionAmount,
		NonAccrual:         nonAccrual,
		Reason:             reason,
		RecordedAt:         now,
	}
}
