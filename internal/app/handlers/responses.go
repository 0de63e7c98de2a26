package handlers

import (
	"loan-ledger/internal/pkg/ledger"
	"loan-ledger/internal/pkg/models"
	storemodels "loan-ledger/internal/pkg/store/models"
	"loan-ledger/internal/service"
)

func toLoanResponse(loan ledger.Loan) models.LoanResponse {
	resp := models.LoanResponse{
		ID:                 loan.ID,
		CreditorID:         loan.CreditorID,
		DebtorID:           loan.DebtorID,
		DebtorName:         loan.DebtorName,
		FamilyID:           loan.FamilyID,
		Description:        loan.Description,
		PrincipalAmount:    loan.PrincipalAmount,
		TotalOwed:          loan.TotalOwed,
		RepaidAmount:       loan.RepaidAmount,
		OutstandingBalance: loan.OutstandingBalance(),
		Status:             string(loan.Status),
		Deadline:           loan.Deadline,
		AttachmentURL:      loan.AttachmentURL,
		RepaymentReceipts:  make([]models.RepaymentReceiptResponse, 0, len(loan.RepaymentReceipts)),
		CreatedAt:          loan.CreatedAt,
		ConfirmedAt:        loan.ConfirmedAt,
		UpdatedAt:          loan.UpdatedAt,
		Version:            loan.Version,
	}
	if p := loan.PendingRepayment; p != nil {
		resp.PendingRepayment = &models.PendingRepaymentResponse{
			Amount:      p.Amount,
			SubmittedBy: p.SubmittedBy,
			SubmittedAt: p.SubmittedAt,
			ReceiptURL:  p.ReceiptURL,
		}
	}
	for _, r := range loan.RepaymentReceipts {
		resp.RepaymentReceipts = append(resp.RepaymentReceipts, models.RepaymentReceiptResponse{
			URL:        r.URL,
			Amount:     r.Amount,
			RecordedAt: r.RecordedAt,
		})
	}
	return resp
}

func toParty(u storemodels.User) *models.PartyResponse {
	return &models.PartyResponse{ID: u.ID, FullName: u.FullName, Email: u.Email}
}

func toLoanViewResponse(view service.LoanView) models.LoanResponse {
	resp := toLoanResponse(view.Loan)
	resp.Creditor = toParty(view.Creditor)
	if view.Debtor != nil {
		resp.Debtor = toParty(*view.Debtor)
	} else if view.Loan.DebtorName != "" {
		resp.Debtor = &models.PartyResponse{FullName: view.Loan.DebtorName}
	}
	return resp
}

func toLoanViewResponses(views []service.LoanView) []models.LoanResponse {
	out := make([]models.LoanResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toLoanViewResponse(v))
	}
	return out
}
