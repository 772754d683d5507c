package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zedfin/arrears/internal/domain/service"
	"github.com/zedfin/arrears/internal/domain/valueobject"
)

func sampleBalances() []service.LoanBalanceRow {
	return []service.LoanBalanceRow{
		{LoanID: "loan-001", Category: valueobject.CategoryNormal, DPD: 0, Outstanding: decimal.NewFromInt(50000)},
		{LoanID: "loan-002", Category: valueobject.CategoryNormal, DPD: 15, Outstanding: decimal.NewFromInt(10000)},
		{LoanID: "loan-003", Category: valueobject.CategorySpecialMention, DPD: 45, Outstanding: decimal.NewFromInt(20000)},
		{LoanID: "loan-004", Category: valueobject.CategorySubstandard, DPD: 120, Outstanding: decimal.NewFromInt(15000)},
		{LoanID: "loan-005", Category: valueobject.CategoryLoss, DPD: 400, Outstanding: decimal.NewFromInt(5000)},
	}
}

func TestAgingAnalysis_Buckets(t *testing.T) {
	buckets := service.AgingAnalysis(sampleBalances(), service.DefaultClassificationPolicy())

	require.Len(t, buckets, 5)
	assert.Equal(t, "0-29", buckets[0].Band)
	assert.Equal(t, 2, buckets[0].Loans)
	assert.True(t, decimal.NewFromInt(60000).Equal(buckets[0].Outstanding))

	assert.Equal(t, "30-89", buckets[1].Band)
	assert.Equal(t, 1, buckets[1].Loans)

	assert.Equal(t, "90-179", buckets[2].Band)
	assert.Equal(t, "180-359", buckets[3].Band)
	assert.Equal(t, 0, buckets[3].Loans)
	assert.True(t, buckets[3].Outstanding.IsZero())

	assert.Equal(t, "360+", buckets[4].Band)
	assert.Equal(t, 1, buckets[4].Loans)
}

func TestPortfolioAtRisk_Thresholds(t *testing.T) {
	rows := sampleBalances()

	// 40000 of 100000 sits at DPD >= 30.
	assert.True(t, decimal.NewFromFloat(0.4).Equal(service.PortfolioAtRisk(rows, 30)))
	// 20000 of 100000 sits at DPD >= 90.
	assert.True(t, decimal.NewFromFloat(0.2).Equal(service.PortfolioAtRisk(rows, 90)))
}

func TestPortfolioAtRisk_EmptyBook(t *testing.T) {
	assert.True(t, service.PortfolioAtRisk(nil, 30).IsZero())
}

func TestProvisioningByCategory_Sums(t *testing.T) {
	rows := []service.ProvisionRow{
		{LoanID: "loan-001", Category: valueobject.CategoryNormal, ProvisionAmount: decimal.NewFromInt(500)},
		{LoanID: "loan-002", Category: valueobject.CategoryNormal, ProvisionAmount: decimal.NewFromInt(100)},
		{LoanID: "loan-003", Category: valueobject.CategorySpecialMention, ProvisionAmount: decimal.NewFromInt(1000)},
	}

	out := service.ProvisioningByCategory(rows)

	assert.True(t, decimal.NewFromInt(600).Equal(out["NORMAL"]))
	assert.True(t, decimal.NewFromInt(1000).Equal(out["SPECIAL_MENTION"]))
	assert.NotContains(t, out, "LOSS")
}

func TestRecoveryAnalytics_CuresAndDeteriorations(t *testing.T) {
	transitions := []service.TransitionRow{
		{LoanID: "loan-001", Previous: valueobject.CategorySpecialMention, New: valueobject.CategoryNormal},
		{LoanID: "loan-002", Previous: valueobject.CategoryNormal, New: valueobject.CategoryDoubtful},
		{LoanID: "loan-003", Previous: valueobject.CategoryNormal, New: valueobject.CategoryNormal},
	}
	payments := []service.DelinquentPaymentRow{
		{LoanID: "loan-002", Amount: decimal.NewFromInt(1500)},
	}

	report := service.RecoveryAnalytics(transitions, payments)

	assert.Equal(t, 1, report.Cured)
	assert.Equal(t, 1, report.Deteriorated)
	assert.Equal(t, 1, report.PaymentsCount)
	assert.True(t, decimal.NewFromInt(1500).Equal(report.AmountCollected))
}
