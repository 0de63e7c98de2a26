package service

import (
	"context"

	"loan-ledger/internal/pkg/ledger"
)

type LoanLedgerServiceInterface interface {
	CreateLoan(ctx context.Context, req CreateLoanRequest) (ledger.Loan, error)
	ConfirmReceipt(ctx context.Context, loanID, actingUserID string) (ledger.Loan, error)
	SubmitRepayment(ctx context.Context, req RepaymentRequest) (ledger.Loan, error)
	ConfirmRepayment(ctx context.Context, loanID, actingUserID string) (ledger.Loan, error)
	RecordRepaymentDirectly(ctx context.Context, req RepaymentRequest) (ledger.Loan, error)
	GetLoan(ctx context.Context, loanID, viewerID string) (LoanView, error)
	ListLoans(ctx context.Context, viewerID string) ([]LoanView, error)
	CategorizeLoans(ctx context.Context, viewerID string) (CategorizedView, error)
	UploadAttachment(ctx context.Context, file Attachment) (string, error)
}

type OutboxDrainerInterface interface {
	Drain(ctx context.Context) (DrainResult, error)
}
