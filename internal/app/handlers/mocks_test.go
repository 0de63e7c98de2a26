package handlers

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"loan-ledger/internal/pkg/ledger"
	"loan-ledger/internal/service"
)

type MockLoanLedgerService struct {
	mock.Mock
}

func (m *MockLoanLedgerService) CreateLoan(ctx context.Context, req service.CreateLoanRequest) (ledger.Loan, error) {
	// the body is read here since the handler closes it once the call returns
	if req.Attachment != nil {
		data, _ := io.ReadAll(req.Attachment.Body)
		req.Attachment.Body = nil
		args := m.Called(ctx, req, string(data))
		return args.Get(0).(ledger.Loan), args.Error(1)
	}
	args := m.Called(ctx, req, "")
	return args.Get(0).(ledger.Loan), args.Error(1)
}

func (m *MockLoanLedgerService) ConfirmReceipt(ctx context.Context, loanID, actingUserID string) (ledger.Loan, error) {
	args := m.Called(ctx, loanID, actingUserID)
	return args.Get(0).(ledger.Loan), args.Error(1)
}

func (m *MockLoanLedgerService) SubmitRepayment(ctx context.Context, req service.RepaymentRequest) (ledger.Loan, error) {
	req.Receipt = nil
	args := m.Called(ctx, req)
	return args.Get(0).(ledger.Loan), args.Error(1)
}

func (m *MockLoanLedgerService) ConfirmRepayment(ctx context.Context, loanID, actingUserID string) (ledger.Loan, error) {
	args := m.Called(ctx, loanID, actingUserID)
	return args.Get(0).(ledger.Loan), args.Error(1)
}

func (m *MockLoanLedgerService) RecordRepaymentDirectly(ctx context.Context, req service.RepaymentRequest) (ledger.Loan, error) {
	req.Receipt = nil
	args := m.Called(ctx, req)
	return args.Get(0).(ledger.Loan), args.Error(1)
}

func (m *MockLoanLedgerService) GetLoan(ctx context.Context, loanID, viewerID string) (service.LoanView, error) {
	args := m.Called(ctx, loanID, viewerID)
	return args.Get(0).(service.LoanView), args.Error(1)
}

func (m *MockLoanLedgerService) ListLoans(ctx context.Context, viewerID string) ([]service.LoanView, error) {
	args := m.Called(ctx, viewerID)
	return args.Get(0).([]service.LoanView), args.Error(1)
}

func (m *MockLoanLedgerService) CategorizeLoans(ctx context.Context, viewerID string) (service.CategorizedView, error) {
	args := m.Called(ctx, viewerID)
	return args.Get(0).(service.CategorizedView), args.Error(1)
}

func (m *MockLoanLedgerService) UploadAttachment(ctx context.Context, file service.Attachment) (string, error) {
	data, _ := io.ReadAll(file.Body)
	args := m.Called(ctx, file.Filename, string(data))
	return args.String(0), args.Error(1)
}

type MockOutboxDrainer struct {
	mock.Mock
}

func (m *MockOutboxDrainer) Drain(ctx context.Context) (service.DrainResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.DrainResult), args.Error(1)
}
