package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/service"
	"github.com/zedfin/arrears/internal/domain/valueobject"
)

func scheduleDueAt(t *testing.T, firstDue time.Time) []model.Installment {
	t.Helper()
	schedule, err := model.GenerateSchedule(decimal.NewFromInt(12000), 1200, 6, firstDue)
	require.NoError(t, err)
	return schedule
}

func TestDaysPastDue_NoArrears(t *testing.T) {
	firstDue := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	schedule := scheduleDueAt(t, firstDue)

	// Before anything falls due.
	assert.Equal(t, 0, service.DaysPastDue(schedule, firstDue.AddDate(0, 0, -1)))

	// On the due date itself nothing is past due yet.
	assert.Equal(t, 0, service.DaysPastDue(schedule, firstDue))
}

func TestDaysPastDue_OldestUnpaidDrives(t *testing.T) {
	firstDue := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	schedule := scheduleDueAt(t, firstDue)

	// 45 days after the first due date, two installments are in arrears;
	// the oldest one sets the clock.
	asOf := firstDue.AddDate(0, 0, 45)
	assert.Equal(t, 45, service.DaysPastDue(schedule, asOf))
}

func TestDaysPastDue_SettledInstallmentsIgnored(t *testing.T) {
	firstDue := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	schedule := scheduleDueAt(t, firstDue)
	schedule[0].Status = valueobject.InstallmentStatusPaid

	asOf := firstDue.AddDate(0, 0, 45)
	// Second installment fell due 15 days before asOf.
	assert.Equal(t, 15, service.DaysPastDue(schedule, asOf))
}

func TestDaysPastDue_PartiallyPaidStillCounts(t *testing.T) {
	firstDue := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	schedule := scheduleDueAt(t, firstDue)
	schedule[0].Status = valueobject.InstallmentStatusPartiallyPaid

	asOf := firstDue.AddDate(0, 0, 10)
	assert.Equal(t, 10, service.DaysPastDue(schedule, asOf))
}

func TestDaysPastDue_TimeOfDayIrrelevant(t *testing.T) {
	firstDue := time.Date(2026, 4, 1, 23, 59, 0, 0, time.UTC)
	schedule := scheduleDueAt(t, firstDue)

	morning := time.Date(2026, 4, 11, 0, 1, 0, 0, time.UTC)
	evening := time.Date(2026, 4, 11, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, service.DaysPastDue(schedule, morning), service.DaysPastDue(schedule, evening))
	assert.Equal(t, 10, service.DaysPastDue(schedule, morning))
}

func TestDaysPastDue_Deterministic(t *testing.T) {
	firstDue := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	schedule := scheduleDueAt(t, firstDue)
	asOf := firstDue.AddDate(0, 0, 30)

	first := service.DaysPastDue(schedule, asOf)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, service.DaysPastDue(schedule, asOf))
	}
}
