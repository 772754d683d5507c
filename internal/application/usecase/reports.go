package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/zedfin/arrears/internal/application/dto"
	"github.com/zedfin/arrears/internal/domain/port"
	"github.com/zedfin/arrears/internal/domain/service"
)

// GetDashboardUseCase assembles the portfolio dashboard: aging analysis,
// PAR30/PAR90 and the provisioning summary by category.
type GetDashboardUseCase struct {
	reportRepo port.ReportRepository
	policy     service.ClassificationPolicy
}

// NewGetDashboardUseCase wires dependencies.
func NewGetDashboardUseCase(reportRepo port.ReportRepository, policy service.ClassificationPolicy) *GetDashboardUseCase {
	return &GetDashboardUseCase{reportRepo: reportRepo, policy: policy}
}

// Execute builds the dashboard from current snapshots.
func (uc *GetDashboardUseCase) Execute(ctx context.Context) (dto.DashboardResponse, error) {
	balances, err := uc.reportRepo.LoanBalances(ctx)
	if err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("load loan balances: %w", err)
	}
	provisions, err := uc.reportRepo.LatestProvisions(ctx)
	if err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("load provisions: %w", err)
	}

	aging := service.AgingAnalysis(balances, uc.policy)
	buckets := make([]dto.AgingBucketResponse, len(aging))
	for i, b := range aging {
		buckets[i] = dto.AgingBucketResponse{
			Band:        b.Band,
			Loans:       b.Loans,
			Outstanding: b.Outstanding,
		}
	}

	return dto.DashboardResponse{
		Aging:        buckets,
		PAR30:        service.PortfolioAtRisk(balances, 30),
		PAR90:        service.PortfolioAtRisk(balances, 90),
		Provisioning: service.ProvisioningByCategory(provisions),
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// GetRecoveryReportUseCase summarises cures, deteriorations and collections
// over a reporting window.
type GetRecoveryReportUseCase struct {
	reportRepo port.ReportRepository
}

// NewGetRecoveryReportUseCase wires dependencies.
func NewGetRecoveryReportUseCase(reportRepo port.ReportRepository) *GetRecoveryReportUseCase {
	return &GetRecoveryReportUseCase{reportRepo: reportRepo}
}

// Execute builds the recovery report for [from, to].
func (uc *GetRecoveryReportUseCase) Execute(ctx context.Context, from, to time.Time) (dto.RecoveryResponse, error) {
	transitions, err := uc.reportRepo.Transitions(ctx, from, to)
	if err != nil {
		return dto.RecoveryResponse{}, fmt.Errorf("load transitions: %w", err)
	}
	payments, err := uc.reportRepo.DelinquentPayments(ctx, from, to)
	if err != nil {
		return dto.RecoveryResponse{}, fmt.Errorf("load delinquent payments: %w", err)
	}

	report := service.RecoveryAnalytics(transitions, payments)
	return dto.RecoveryResponse{
		Cured:           report.Cured,
		Deteriorated:    report.Deteriorated,
		PaymentsCount:   report.PaymentsCount,
		AmountCollected: report.AmountCollected,
	}, nil
}
