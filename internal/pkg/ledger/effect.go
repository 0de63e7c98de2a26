package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Effect is a derived income or expense record. Its ID doubles as the
// transaction id so delivery can be repeated safely.
type Effect struct {
	ID            string
	LoanID        string
	Type          TransactionType
	UserID        string
	Amount        decimal.Decimal
	Description   string
	AttachmentURL string
	CreatedAt     time.Time
}

// Parties carries the display names used in effect descriptions.
type Parties struct {
	CreditorName string
	DebtorName   string
}

func (p Parties) creditor() string {
	if p.CreditorName == "" {
		return "creditor"
	}
	return p.CreditorName
}

// debtor falls back to the free-text name stored on the loan.
func (p Parties) debtor(loan Loan) string {
	switch {
	case p.DebtorName != "":
		return p.DebtorName
	case loan.DebtorName != "":
		return loan.DebtorName
	default:
		return "debtor"
	}
}

func describe(prefix, party, loanDescription string) string {
	if loanDescription == "" {
		return prefix + " " + party
	}
	return prefix + " " + party + ": " + loanDescription
}
