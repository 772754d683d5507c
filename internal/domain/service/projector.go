package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zedfin/arrears/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Projector – pure read-side aggregations over portfolio snapshots
// ---------------------------------------------------------------------------

// LoanBalanceRow is a point-in-time snapshot of one loan's delinquency state.
type LoanBalanceRow struct {
	LoanID      string
	Category    valueobject.Category
	DPD         int
	Outstanding decimal.Decimal
}

// ProvisionRow is the latest provision recorded for one loan.
type ProvisionRow struct {
	LoanID          string
	Category        valueobject.Category
	ProvisionAmount decimal.Decimal
}

// TransitionRow is one classification change within a reporting window.
type TransitionRow struct {
	LoanID     string
	Previous   valueobject.Category
	New        valueobject.Category
	RecordedAt time.Time
}

// DelinquentPaymentRow is a payment collected against a loan that was
// delinquent when the payment arrived.
type DelinquentPaymentRow struct {
	LoanID string
	Amount decimal.Decimal
	Date   time.Time
}

// AgingBucket is one DPD band of the aging analysis.
type AgingBucket struct {
	Band        string
	MinDPD      int
	Loans       int
	Outstanding decimal.Decimal
}

// RecoveryReport summarises cures versus deteriorations over a window.
type RecoveryReport struct {
	Cured           int
	Deteriorated    int
	PaymentsCount   int
	AmountCollected decimal.Decimal
}

// AgingAnalysis buckets outstanding balances by the classification policy's
// DPD bands.
func AgingAnalysis(rows []LoanBalanceRow, policy ClassificationPolicy) []AgingBucket {
	buckets := make([]AgingBucket, len(policy.Bands))
	for i, band := range policy.Bands {
		label := fmt.Sprintf("%d+", band.MinDPD)
		if i+1 < len(policy.Bands) {
			label = fmt.Sprintf("%d-%d", band.MinDPD, policy.Bands[i+1].MinDPD-1)
		}
		buckets[i] = AgingBucket{Band: label, MinDPD: band.MinDPD, Outstanding: decimal.Zero}
	}

	for _, row := range rows {
		idx := 0
		for i, band := range policy.Bands {
			if row.DPD >= band.MinDPD {
				idx = i
			}
		}
		buckets[idx].Loans++
		buckets[idx].Outstanding = buckets[idx].Outstanding.Add(row.Outstanding)
	}

	return buckets
}

// PortfolioAtRisk returns PAR(n): the fraction of total outstanding balance
// held by loans at DPD >= threshold. An empty book yields zero.
func PortfolioAtRisk(rows []LoanBalanceRow, thresholdDPD int) decimal.Decimal {
	total := decimal.Zero
	atRisk := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Outstanding)
		if row.DPD >= thresholdDPD {
			atRisk = atRisk.Add(row.Outstanding)
		}
	}
	if total.IsZero() {
		return decimal.Zero
	}
	return atRisk.Div(total).Round(6)
}

// ProvisioningByCategory sums the latest provision per loan, grouped by
// category.
func ProvisioningByCategory(rows []ProvisionRow) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, row := range rows {
		key := row.Category.String()
		if cur, ok := out[key]; ok {
			out[key] = cur.Add(row.ProvisionAmount)
		} else {
			out[key] = row.ProvisionAmount
		}
	}
	return out
}

// RecoveryAnalytics counts loans that cured versus deteriorated over the
// window and totals payments collected against delinquent loans.
func RecoveryAnalytics(transitions []TransitionRow, payments []DelinquentPaymentRow) RecoveryReport {
	report := RecoveryReport{AmountCollected: decimal.Zero}
	for _, tr := range transitions {
		switch {
		case tr.New.BetterThan(tr.Previous):
			report.Cured++
		case tr.New.WorseThan(tr.Previous):
			report.Deteriorated++
		}
	}
	for _, p := range payments {
		report.PaymentsCount++
		report.AmountCollected = report.AmountCollected.Add(p.Amount)
	}
	return report
}
