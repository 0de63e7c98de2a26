package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"loan-ledger/internal/pkg/consts"
)

// Ledger applies loan transitions. It performs no I/O: every transition
// returns the next loan state plus the derived transactions to deliver.
type Ledger struct {
	now   func() time.Time
	newID func() string
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) {
		l.newID = newID
	}
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type CreateLoanInput struct {
	CreditorID           string
	DebtorID             string
	DebtorName           string
	FamilyID             string
	Description          string
	PrincipalAmount      decimal.Decimal
	Deadline             *time.Time
	AttachmentURL        string
	RequiresConfirmation bool
}

// Transition is the outcome of a state change on an existing loan.
type Transition struct {
	Loan Loan
	// ExpectedVersion is the version the stored loan must still have for the write to apply.
	ExpectedVersion int64
	Effects         []Effect
	// DebtorExpenseSkipped is set when a direct repayment had no registered debtor to charge.
	DebtorExpenseSkipped bool
}

func (l *Ledger) CreateLoan(in CreateLoanInput) (Loan, error) {
	creditorID := strings.TrimSpace(in.CreditorID)
	debtorID := strings.TrimSpace(in.DebtorID)
	debtorName := strings.TrimSpace(in.DebtorName)

	if creditorID == "" {
		return Loan{}, consts.ErrorMissingActingUser
	}
	if debtorID == "" && debtorName == "" {
		return Loan{}, consts.ErrorDebtorRequired
	}
	if debtorID == creditorID {
		return Loan{}, consts.ErrorSelfLoan
	}
	if in.RequiresConfirmation && debtorID == "" {
		return Loan{}, consts.ErrorConfirmationNeedsRegisteredDebtor
	}
	principal := normalizeAmount(in.PrincipalAmount)
	if !principal.IsPositive() {
		return Loan{}, fmt.Errorf("%w: principal must be greater than zero", consts.ErrorInvalidAmount)
	}
	if principal.GreaterThanOrEqual(MaxAmount) {
		return Loan{}, fmt.Errorf("%w: principal must be below %s", consts.ErrorInvalidAmount, MaxAmount.String())
	}

	status := StatusOutstanding
	if in.RequiresConfirmation {
		status = StatusPendingConfirmation
	}
	now := l.now()

	loan := Loan{
		ID:                l.newID(),
		CreditorID:        creditorID,
		DebtorID:          debtorID,
		DebtorName:        debtorName,
		FamilyID:          strings.TrimSpace(in.FamilyID),
		Description:       strings.TrimSpace(in.Description),
		PrincipalAmount:   principal,
		TotalOwed:         principal,
		RepaidAmount:      decimal.Zero,
		Status:            status,
		AttachmentURL:     in.AttachmentURL,
		RepaymentReceipts: []RepaymentReceipt{},
		PendingEffects:    []Effect{},
		CreatedAt:         now,
		UpdatedAt:         now,
		Version:           1,
	}
	if in.Deadline != nil {
		d := in.Deadline.UTC()
		loan.Deadline = &d
	}
	return loan, nil
}

func (l *Ledger) ConfirmReceipt(loan Loan, actingUserID string, parties Parties) (Transition, error) {
	if actingUserID == "" || actingUserID != loan.DebtorID {
		return Transition{}, fmt.Errorf("%w: only the debtor can confirm receipt", consts.ErrorUnauthorized)
	}
	if loan.Status != StatusPendingConfirmation {
		return Transition{}, fmt.Errorf("%w: loan is %s", consts.ErrorInvalidState, loan.Status)
	}

	now := l.now()
	next := loan.clone()
	next.Status = StatusOutstanding
	next.ConfirmedAt = &now

	income := l.effect(loan, TransactionIncome, loan.DebtorID, loan.PrincipalAmount,
		describe("Loan received from", parties.creditor(), loan.Description), loan.AttachmentURL, now)

	return l.commit(loan, next, now, income), nil
}

func (l *Ledger) SubmitRepayment(loan Loan, actingUserID string, amount decimal.Decimal, receiptURL string, parties Parties) (Transition, error) {
	if actingUserID == "" || actingUserID != loan.DebtorID {
		return Transition{}, fmt.Errorf("%w: only the debtor can submit a repayment", consts.ErrorUnauthorized)
	}
	if loan.Status != StatusOutstanding {
		return Transition{}, fmt.Errorf("%w: loan is %s", consts.ErrorInvalidState, loan.Status)
	}
	if loan.PendingRepayment != nil {
		return Transition{}, consts.ErrorAlreadyPending
	}
	applied, err := checkRepaymentAmount(loan, amount)
	if err != nil {
		return Transition{}, err
	}

	now := l.now()
	next := loan.clone()
	next.PendingRepayment = &PendingRepayment{
		Amount:      applied,
		SubmittedBy: actingUserID,
		SubmittedAt: now,
		ReceiptURL:  receiptURL,
	}

	expense := l.effect(loan, TransactionExpense, loan.DebtorID, applied,
		describe("Loan repayment to", parties.creditor(), loan.Description), receiptURL, now)

	return l.commit(loan, next, now, expense), nil
}

func (l *Ledger) ConfirmRepayment(loan Loan, actingUserID string, parties Parties) (Transition, error) {
	if actingUserID == "" || actingUserID != loan.CreditorID {
		return Transition{}, fmt.Errorf("%w: only the creditor can confirm a repayment", consts.ErrorUnauthorized)
	}
	if loan.PendingRepayment == nil {
		return Transition{}, consts.ErrorNoPendingRepayment
	}

	now := l.now()
	pending := *loan.PendingRepayment
	next := loan.clone()
	next.PendingRepayment = nil
	applyRepayment(&next, pending.Amount, pending.ReceiptURL, now)

	income := l.effect(loan, TransactionIncome, loan.CreditorID, pending.Amount,
		describe("Loan repayment from", parties.debtor(loan), loan.Description), pending.ReceiptURL, now)

	return l.commit(loan, next, now, income), nil
}

func (l *Ledger) RecordRepaymentDirectly(loan Loan, actingUserID string, amount decimal.Decimal, receiptURL string, parties Parties) (Transition, error) {
	if actingUserID == "" || actingUserID != loan.CreditorID {
		return Transition{}, fmt.Errorf("%w: only the creditor can record a repayment", consts.ErrorUnauthorized)
	}
	if loan.IsFamily() {
		return Transition{}, consts.ErrorFamilyLoanDirectRepayment
	}
	if loan.Status != StatusOutstanding {
		return Transition{}, fmt.Errorf("%w: loan is %s", consts.ErrorInvalidState, loan.Status)
	}
	if loan.PendingRepayment != nil {
		return Transition{}, consts.ErrorAlreadyPending
	}
	applied, err := checkRepaymentAmount(loan, amount)
	if err != nil {
		return Transition{}, err
	}

	now := l.now()
	next := loan.clone()
	applyRepayment(&next, applied, receiptURL, now)

	effects := []Effect{
		l.effect(loan, TransactionIncome, loan.CreditorID, applied,
			describe("Loan repayment from", parties.debtor(loan), loan.Description), receiptURL, now),
	}
	skipped := !loan.HasRegisteredDebtor()
	if !skipped {
		effects = append(effects, l.effect(loan, TransactionExpense, loan.DebtorID, applied,
			describe("Loan repayment to", parties.creditor(), loan.Description), receiptURL, now))
	}

	t := l.commit(loan, next, now, effects...)
	t.DebtorExpenseSkipped = skipped
	return t, nil
}

func (l *Ledger) effect(loan Loan, kind TransactionType, userID string, amount decimal.Decimal, description, attachmentURL string, now time.Time) Effect {
	return Effect{
		ID:            l.newID(),
		LoanID:        loan.ID,
		Type:          kind,
		UserID:        userID,
		Amount:        amount,
		Description:   description,
		AttachmentURL: attachmentURL,
		CreatedAt:     now,
	}
}

func (l *Ledger) commit(prev, next Loan, now time.Time, effects ...Effect) Transition {
	next.UpdatedAt = now
	next.Version = prev.Version + 1
	next.PendingEffects = append(next.PendingEffects, effects...)
	return Transition{
		Loan:            next,
		ExpectedVersion: prev.Version,
		Effects:         effects,
	}
}

// applyRepayment books a confirmed amount and recomputes the settled status.
func applyRepayment(loan *Loan, amount decimal.Decimal, receiptURL string, now time.Time) {
	loan.RepaidAmount = loan.RepaidAmount.Add(amount)
	if receiptURL != "" {
		loan.RepaymentReceipts = append(loan.RepaymentReceipts, RepaymentReceipt{
			URL:        receiptURL,
			Amount:     amount,
			RecordedAt: now,
		})
	}
	if isSettled(loan.RepaidAmount, loan.TotalOwed) {
		loan.Status = StatusRepaid
	} else {
		loan.Status = StatusOutstanding
	}
}

// checkRepaymentAmount accepts 0 < amount <= balance + Epsilon. Amounts
// inside the tolerance band are clamped to the balance so repaid never
// exceeds owed.
func checkRepaymentAmount(loan Loan, amount decimal.Decimal) (decimal.Decimal, error) {
	amount = normalizeAmount(amount)
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be greater than zero", consts.ErrorInvalidAmount)
	}
	balance := loan.OutstandingBalance()
	if amount.GreaterThan(balance.Add(Epsilon)) {
		return decimal.Zero, fmt.Errorf("%w: amount %s exceeds outstanding balance %s",
			consts.ErrorInvalidAmount, amount.StringFixed(2), balance.StringFixed(2))
	}
	if amount.GreaterThan(balance) {
		return balance, nil
	}
	return amount, nil
}

// normalizeAmount rounds to cents.
func normalizeAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
