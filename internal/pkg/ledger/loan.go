package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Epsilon absorbs rounding in amounts entered by users.
var Epsilon = decimal.New(1, -2)

// MaxAmount bounds principals so every stored amount fits a BSON Decimal128.
var MaxAmount = decimal.New(1, 15)

type PendingRepayment struct {
	Amount      decimal.Decimal
	SubmittedBy string
	SubmittedAt time.Time
	ReceiptURL  string
}

type RepaymentReceipt struct {
	URL        string
	Amount     decimal.Decimal
	RecordedAt time.Time
}

type Loan struct {
	ID          string
	CreditorID  string
	DebtorID    string
	DebtorName  string
	FamilyID    string
	Description string

	PrincipalAmount decimal.Decimal
	TotalOwed       decimal.Decimal
	RepaidAmount    decimal.Decimal
	Status          Status

	Deadline      *time.Time
	AttachmentURL string

	PendingRepayment  *PendingRepayment
	RepaymentReceipts []RepaymentReceipt

	CreatedAt   time.Time
	ConfirmedAt *time.Time
	UpdatedAt   time.Time

	// Version increases by one on every committed transition.
	Version int64
	// PendingEffects holds derived transactions not yet delivered.
	PendingEffects []Effect
}

func (l Loan) OutstandingBalance() decimal.Decimal {
	balance := l.TotalOwed.Sub(l.RepaidAmount)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

func (l Loan) IsFamily() bool {
	return l.FamilyID != ""
}

func (l Loan) HasRegisteredDebtor() bool {
	return l.DebtorID != ""
}

func (l Loan) IsParty(userID string) bool {
	return userID != "" && (userID == l.CreditorID || userID == l.DebtorID)
}

// isSettled reports whether repaid covers owed within Epsilon.
func isSettled(repaid, owed decimal.Decimal) bool {
	return repaid.GreaterThanOrEqual(owed.Sub(Epsilon))
}

// clone copies the slices and pointers so transitions never alias the input.
func (l Loan) clone() Loan {
	out := l
	if l.Deadline != nil {
		d := *l.Deadline
		out.Deadline = &d
	}
	if l.ConfirmedAt != nil {
		c := *l.ConfirmedAt
		out.ConfirmedAt = &c
	}
	if l.PendingRepayment != nil {
		p := *l.PendingRepayment
		out.PendingRepayment = &p
	}
	out.RepaymentReceipts = append([]RepaymentReceipt(nil), l.RepaymentReceipts...)
	out.PendingEffects = append([]Effect(nil), l.PendingEffects...)
	return out
}
