package model

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zedfin/arrears/internal/domain/valueobject"
)

// Installment is one period of a loan's repayment ledger.
//
// RemainingPrincipal is the unpaid principal of this installment
// (PrincipalDue - PrincipalPaid). BalanceAfter is the scheduled declining
// loan balance once this installment's principal has been paid; the final
// installment's BalanceAfter is exactly zero by construction.
type Installment struct {
	DueDate            time.Time
	PrincipalDue       decimal.Decimal
	InterestDue        decimal.Decimal
	TotalDue           decimal.Decimal
	PrincipalPaid      decimal.Decimal
	InterestPaid       decimal.Decimal
	RemainingPrincipal decimal.Decimal
	BalanceAfter       decimal.Decimal
	Status             valueobject.InstallmentStatus
	Sequence           int
}

// OutstandingInterest returns the unpaid interest of this installment.
func (i Installment) OutstandingInterest() decimal.Decimal {
	return i.InterestDue.Sub(i.InterestPaid)
}

// Settled returns true when the installment is fully paid.
func (i Installment) Settled() bool {
	return i.Status.Equal(valueobject.InstallmentStatusPaid)
}

// GenerateSchedule computes a declining-balance (annuity) repayment schedule.
//
// Parameters:
//   - principal:        the loan amount
//   - annualRateBps:    annual interest rate in basis points (2400 = 24.00%)
//   - termMonths:       number of monthly periods
//   - firstPaymentDate: due date of the first installment
//
// The calculation uses:
//
//	monthlyRate = annualRateBps / 10_000 / 12
//	payment     = P * r * (1+r)^n / ((1+r)^n - 1)
//
// The last installment's principal component absorbs rounding drift so the
// running balance lands on exactly zero.
func GenerateSchedule(
	principal decimal.Decimal,
	annualRateBps int,
	termMonths int,
	firstPaymentDate time.Time,
) ([]Installment, error) {
	if termMonths <= 0 {
		return nil, fmt.Errorf("%w: term months must be positive, got %d", valueobject.ErrInvalidScheduleParameters, termMonths)
	}
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: principal must be positive, got %s", valueobject.ErrInvalidScheduleParameters, principal)
	}
	if annualRateBps < 0 {
		return nil, fmt.Errorf("%w: annual rate must not be negative, got %d bps", valueobject.ErrInvalidScheduleParameters, annualRateBps)
	}

	// Basis points to a monthly decimal rate. float64 is used only for the
	// power calculation; monetary arithmetic stays in decimal.
	monthlyRate := float64(annualRateBps) / 10_000.0 / 12.0

	var installmentAmount decimal.Decimal
	if monthlyRate == 0 {
		// Zero-interest: even split.
		installmentAmount = principal.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
	} else {
		// P * r * (1+r)^n / ((1+r)^n - 1)
		factor := math.Pow(1+monthlyRate, float64(termMonths))
		payment := principal.InexactFloat64() * monthlyRate * factor / (factor - 1)
		installmentAmount = decimal.NewFromFloat(payment).Round(2)
	}

	schedule := make([]Installment, 0, termMonths)
	remaining := principal
	monthlyRateDec := decimal.NewFromFloat(monthlyRate)

	for seq := 1; seq <= termMonths; seq++ {
		dueDate := firstPaymentDate.AddDate(0, seq-1, 0)

		interest := remaining.Mul(monthlyRateDec).Round(2)
		principalPart := installmentAmount.Sub(interest)

		// Last period absorbs rounding so the balance reaches exactly zero.
		if seq == termMonths {
			principalPart = remaining
		}

		remaining = remaining.Sub(principalPart)

		schedule = append(schedule, Installment{
			Sequence:           seq,
			DueDate:            dueDate,
			PrincipalDue:       principalPart,
			InterestDue:        interest,
			TotalDue:           principalPart.Add(interest),
			PrincipalPaid:      decimal.Zero,
			InterestPaid:       decimal.Zero,
			RemainingPrincipal: principalPart,
			BalanceAfter:       remaining,
			Status:             valueobject.InstallmentStatusPending,
		})
	}

	return schedule, nil
}
