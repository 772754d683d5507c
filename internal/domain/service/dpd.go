package service

import (
	"time"

	"github.com/zedfin/arrears/internal/domain/model"
)

// DaysPastDue returns the age, in whole days, of the oldest unpaid
// installment due strictly before asOf, or 0 if none qualifies.
//
// Pure and deterministic: safe to call concurrently and repeatedly. Only the
// calendar date of each timestamp matters.
func DaysPastDue(installments []model.Installment, asOf time.Time) int {
	asOfDate := truncateToDay(asOf)

	max := 0
	for _, inst := range installments {
		if inst.Settled() {
			continue
		}
		due := truncateToDay(inst.DueDate)
		if !due.Before(asOfDate) {
			continue
		}
		days := int(asOfDate.Sub(due).Hours() / 24)
		if days > max {
			max = days
		}
	}
	return max
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
