package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zedfin/arrears/internal/domain/model"
	"github.com/zedfin/arrears/internal/domain/valueobject"
)

var firstDue = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func TestGenerateSchedule_AnnuityTwelveMonths(t *testing.T) {
	schedule, err := model.GenerateSchedule(decimal.NewFromInt(120000), 2400, 12, firstDue)

	require.NoError(t, err)
	require.Len(t, schedule, 12)

	// First period: interest on the full balance at 2% monthly.
	assert.True(t, decimal.NewFromInt(2400).Equal(schedule[0].InterestDue), schedule[0].InterestDue.String())
	assert.Equal(t, firstDue, schedule[0].DueDate)
	assert.Equal(t, 1, schedule[0].Sequence)

	// Due dates advance monthly.
	assert.Equal(t, firstDue.AddDate(0, 11, 0), schedule[11].DueDate)

	// Principal components sum back to the disbursed amount and the
	// declining balance lands on exactly zero.
	sum := decimal.Zero
	for _, inst := range schedule {
		sum = sum.Add(inst.PrincipalDue)
		assert.True(t, inst.TotalDue.Equal(inst.PrincipalDue.Add(inst.InterestDue)))
		assert.True(t, inst.RemainingPrincipal.Equal(inst.PrincipalDue))
		assert.True(t, inst.Status.Equal(valueobject.InstallmentStatusPending))
	}
	assert.True(t, decimal.NewFromInt(120000).Equal(sum), sum.String())
	assert.True(t, schedule[11].BalanceAfter.IsZero(), schedule[11].BalanceAfter.String())

	// The balance declines monotonically.
	prev := decimal.NewFromInt(120000)
	for _, inst := range schedule {
		assert.True(t, inst.BalanceAfter.LessThan(prev))
		prev = inst.BalanceAfter
	}
}

func TestGenerateSchedule_ZeroRate(t *testing.T) {
	schedule, err := model.GenerateSchedule(decimal.NewFromInt(1200), 0, 12, firstDue)

	require.NoError(t, err)
	require.Len(t, schedule, 12)
	for _, inst := range schedule {
		assert.True(t, inst.InterestDue.IsZero())
		assert.True(t, decimal.NewFromInt(100).Equal(inst.PrincipalDue))
	}
	assert.True(t, schedule[11].BalanceAfter.IsZero())
}

func TestGenerateSchedule_SingleInstallment(t *testing.T) {
	schedule, err := model.GenerateSchedule(decimal.NewFromInt(5000), 1200, 1, firstDue)

	require.NoError(t, err)
	require.Len(t, schedule, 1)
	assert.True(t, decimal.NewFromInt(5000).Equal(schedule[0].PrincipalDue))
	assert.True(t, schedule[0].BalanceAfter.IsZero())
}

func TestGenerateSchedule_InvalidParameters(t *testing.T) {
	_, err := model.GenerateSchedule(decimal.NewFromInt(1000), 1200, 0, firstDue)
	require.ErrorIs(t, err, valueobject.ErrInvalidScheduleParameters)

	_, err = model.GenerateSchedule(decimal.Zero, 1200, 12, firstDue)
	require.ErrorIs(t, err, valueobject.ErrInvalidScheduleParameters)

	_, err = model.GenerateSchedule(decimal.NewFromInt(1000), -100, 12, firstDue)
	require.ErrorIs(t, err, valueobject.ErrInvalidScheduleParameters)
}
