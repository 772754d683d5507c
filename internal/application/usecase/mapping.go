package usecase

import (
	"github.com/zedfin/arrears/internal/application/dto"
	"github.com/zedfin/arrears/internal/domain/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps pagination input to sane bounds.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return page, pageSize
}

func toLoanResponse(loan model.LoanAccount, withSchedule bool) dto.LoanResponse {
	resp := dto.LoanResponse{
		ID:                   loan.ID(),
		ClientID:             loan.ClientID(),
		ProductCode:          loan.ProductCode(),
		Principal:            loan.Principal(),
		AnnualRateBps:        loan.AnnualRateBps(),
		TermMonths:           loan.TermMonths(),
		Category:             loan.Category().String(),
		NonAccrual:           loan.NonAccrual(),
		DPD:                  loan.DPD(),
		OutstandingPrincipal: loan.OutstandingPrincipal(),
		CreditBalance:        loan.CreditBalance(),
		ProvisionAmount:      loan.ProvisionAmount(),
		CreatedAt:            loan.CreatedAt(),
		UpdatedAt:            loan.UpdatedAt(),
	}
	if withSchedule {
		resp.Schedule = toScheduleResponse(loan.Schedule())
	}
	return resp
}

func toScheduleResponse(schedule []model.Installment) []dto.InstallmentResponse {
	out := make([]dto.InstallmentResponse, len(schedule))
	for i, inst := range schedule {
		out[i] = dto.InstallmentResponse{
			Sequence:           inst.Sequence,
			DueDate:            inst.DueDate,
			PrincipalDue:       inst.PrincipalDue,
			InterestDue:        inst.InterestDue,
			TotalDue:           inst.TotalDue,
			PrincipalPaid:      inst.PrincipalPaid,
			InterestPaid:       inst.InterestPaid,
			RemainingPrincipal: inst.RemainingPrincipal,
			Status:             inst.Status.String(),
		}
	}
	return out
}

func toPaymentResponse(p model.PaymentTransaction) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:               p.ID(),
		LoanID:           p.LoanID(),
		ClientID:         p.ClientID(),
		Reference:        p.Reference(),
		Method:           p.Method(),
		Source:           p.Source(),
		Amount:           p.Amount(),
		PrincipalPortion: p.PrincipalPortion(),
		InterestPortion:  p.InterestPortion(),
		Unapplied:        p.Unapplied(),
		TransactionDate:  p.TransactionDate(),
		Status:           p.Status().String(),
		Reconciled:       p.Reconciled(),
		ReconciledBy:     p.ReconciledBy(),
		ReconciledAt:     p.ReconciledAt(),
		Notes:            p.Notes(),
	}
}

func toPaymentResponses(payments []model.PaymentTransaction) []dto.PaymentResponse {
	out := make([]dto.PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = toPaymentResponse(p)
	}
	return out
}

func toClassificationResponses(records []model.ClassificationRecord) []dto.ClassificationRecordResponse {
	out := make([]dto.ClassificationRecordResponse, len(records))
	for i, r := range records {
		out[i] = dto.ClassificationRecordResponse{
			ID:                 r.ID,
			LoanID:             r.LoanID,
			PreviousCategory:   r.PreviousCategory.String(),
			NewCategory:        r.NewCategory.String(),
			DPD:                r.DPD,
			OutstandingBalance: r.OutstandingBalance,
			ProvisionRate:      r.ProvisionRate,
			ProvisionAmount:    r.ProvisionAmount,
			NonAccrual:         r.NonAccrual,
			Reason:             r.Reason,
			RecordedAt:         r.RecordedAt,
		}
	}
	return out
}

func toCaseResponse(c model.CollectionsCase) dto.CaseResponse {
	return dto.CaseResponse{
		ID:           c.ID(),
		LoanID:       c.LoanID(),
		Stage:        c.Stage().String(),
		StageEntries: c.StageEntries(),
		Closed:       c.Closed(),
		ClosedAt:     c.ClosedAt(),
	}
}
