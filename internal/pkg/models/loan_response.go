package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PartyResponse struct {
	ID       string `json:"id,omitempty"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
}

type PendingRepaymentResponse struct {
	Amount      decimal.Decimal `json:"amount"`
	SubmittedBy string          `json:"submittedBy"`
	SubmittedAt time.Time       `json:"submittedAt"`
	ReceiptURL  string          `json:"receiptUrl,omitempty"`
}

type RepaymentReceiptResponse struct {
	URL        string          `json:"url"`
	Amount     decimal.Decimal `json:"amount"`
	RecordedAt time.Time       `json:"recordedAt"`
}

type LoanResponse struct {
	ID                 string                     `json:"id"`
	CreditorID         string                     `json:"creditorId"`
	DebtorID           string                     `json:"debtorId,omitempty"`
	DebtorName         string                     `json:"debtorName,omitempty"`
	FamilyID           string                     `json:"familyId,omitempty"`
	Description        string                     `json:"description"`
	PrincipalAmount    decimal.Decimal            `json:"principalAmount"`
	TotalOwed          decimal.Decimal            `json:"totalOwed"`
	RepaidAmount       decimal.Decimal            `json:"repaidAmount"`
	OutstandingBalance decimal.Decimal            `json:"outstandingBalance"`
	Status             string                     `json:"status"`
	Deadline           *time.Time                 `json:"deadline,omitempty"`
	AttachmentURL      string                     `json:"attachmentUrl,omitempty"`
	PendingRepayment   *PendingRepaymentResponse  `json:"pendingRepayment,omitempty"`
	RepaymentReceipts  []RepaymentReceiptResponse `json:"repaymentReceipts"`
	CreatedAt          time.Time                  `json:"createdAt"`
	ConfirmedAt        *time.Time                 `json:"confirmedAt,omitempty"`
	UpdatedAt          time.Time                  `json:"updatedAt"`
	Version            int64                      `json:"version"`
	Creditor           *PartyResponse             `json:"creditor,omitempty"`
	Debtor             *PartyResponse             `json:"debtor,omitempty"`
}

type CategorizedLoansResponse struct {
	ActionRequired []LoanResponse `json:"actionRequired"`
	Lent           []LoanResponse `json:"lent"`
	Borrowed       []LoanResponse `json:"borrowed"`
	Repaid         []LoanResponse `json:"repaid"`
}

type AttachmentResponse struct {
	SecureURL string `json:"secure_url"`
}

type OutboxDrainResponse struct {
	Loans     int `json:"loans"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
