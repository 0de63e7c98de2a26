package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"loan-ledger/internal/pkg/ledger"
)

type PendingRepayment struct {
	Amount      primitive.Decimal128 `bson:"amount"`
	SubmittedBy string               `bson:"submittedBy"`
	SubmittedAt time.Time            `bson:"submittedAt"`
	ReceiptURL  string               `bson:"receiptUrl,omitempty"`
}

type RepaymentReceipt struct {
	URL        string               `bson:"url"`
	Amount     primitive.Decimal128 `bson:"amount"`
	RecordedAt time.Time            `bson:"recordedAt"`
}

// PendingEffect is a derived transaction waiting in the loan's outbox.
type PendingEffect struct {
	ID            string               `bson:"id"`
	Type          string               `bson:"type"`
	UserID        string               `bson:"userId"`
	Amount        primitive.Decimal128 `bson:"amount"`
	Description   string               `bson:"description"`
	AttachmentURL string               `bson:"attachmentUrl,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt"`
}

type Loan struct {
	ID                string               `bson:"_id"`
	CreditorID        string               `bson:"creditorId"`
	DebtorID          string               `bson:"debtorId,omitempty"`
	DebtorName        string               `bson:"debtorName,omitempty"`
	FamilyID          string               `bson:"familyId,omitempty"`
	Description       string               `bson:"description"`
	PrincipalAmount   primitive.Decimal128 `bson:"principalAmount"`
	TotalOwed         primitive.Decimal128 `bson:"totalOwed"`
	RepaidAmount      primitive.Decimal128 `bson:"repaidAmount"`
	Status            string               `bson:"status"`
	Deadline          *time.Time           `bson:"deadline,omitempty"`
	AttachmentURL     string               `bson:"attachmentUrl,omitempty"`
	PendingRepayment  *PendingRepayment    `bson:"pendingRepayment"`
	RepaymentReceipts []RepaymentReceipt   `bson:"repaymentReceipts"`
	PendingEffects    []PendingEffect      `bson:"pendingEffects"`
	CreatedAt         time.Time            `bson:"createdAt"`
	ConfirmedAt       *time.Time           `bson:"confirmedAt,omitempty"`
	UpdatedAt         time.Time            `bson:"updatedAt"`
	Version           int64                `bson:"version"`
}

func FromLedgerLoan(l ledger.Loan) (Loan, error) {
	w := &decimalWriter{}
	doc := Loan{
		ID:                l.ID,
		CreditorID:        l.CreditorID,
		DebtorID:          l.DebtorID,
		DebtorName:        l.DebtorName,
		FamilyID:          l.FamilyID,
		Description:       l.Description,
		PrincipalAmount:   w.convert(l.PrincipalAmount),
		TotalOwed:         w.convert(l.TotalOwed),
		RepaidAmount:      w.convert(l.RepaidAmount),
		Status:            string(l.Status),
		Deadline:          l.Deadline,
		AttachmentURL:     l.AttachmentURL,
		PendingRepayment:  w.pendingRepayment(l.PendingRepayment),
		RepaymentReceipts: make([]RepaymentReceipt, 0, len(l.RepaymentReceipts)),
		PendingEffects:    w.effects(l.PendingEffects),
		CreatedAt:         l.CreatedAt,
		ConfirmedAt:       l.ConfirmedAt,
		UpdatedAt:         l.UpdatedAt,
		Version:           l.Version,
	}
	for _, r := range l.RepaymentReceipts {
		doc.RepaymentReceipts = append(doc.RepaymentReceipts, w.receipt(r))
	}
	if w.err != nil {
		return Loan{}, fmt.Errorf("loan %s: %w", l.ID, w.err)
	}
	return doc, nil
}

func FromLedgerEffects(effects []ledger.Effect) ([]PendingEffect, error) {
	w := &decimalWriter{}
	out := w.effects(effects)
	return out, w.err
}

func (w *decimalWriter) pendingRepayment(p *ledger.PendingRepayment) *PendingRepayment {
	if p == nil {
		return nil
	}
	return &PendingRepayment{
		Amount:      w.convert(p.Amount),
		SubmittedBy: p.SubmittedBy,
		SubmittedAt: p.SubmittedAt,
		ReceiptURL:  p.ReceiptURL,
	}
}

func (w *decimalWriter) receipt(r ledger.RepaymentReceipt) RepaymentReceipt {
	return RepaymentReceipt{
		URL:        r.URL,
		Amount:     w.convert(r.Amount),
		RecordedAt: r.RecordedAt,
	}
}

func (w *decimalWriter) effects(effects []ledger.Effect) []PendingEffect {
	out := make([]PendingEffect, 0, len(effects))
	for _, e := range effects {
		out = append(out, PendingEffect{
			ID:            e.ID,
			Type:          string(e.Type),
			UserID:        e.UserID,
			Amount:        w.convert(e.Amount),
			Description:   e.Description,
			AttachmentURL: e.AttachmentURL,
			CreatedAt:     e.CreatedAt,
		})
	}
	return out
}

// ToLedger converts a stored document, normalising legacy statuses.
func (d Loan) ToLedger() (ledger.Loan, error) {
	status, err := ledger.ParseStatus(d.Status)
	if err != nil {
		return ledger.Loan{}, fmt.Errorf("loan %s: %w", d.ID, err)
	}
	principal, err := FromDecimal128(d.PrincipalAmount)
	if err != nil {
		return ledger.Loan{}, fmt.Errorf("loan %s principalAmount: %w", d.ID, err)
	}
	owed, err := FromDecimal128(d.TotalOwed)
	if err != nil {
		return ledger.Loan{}, fmt.Errorf("loan %s totalOwed: %w", d.ID, err)
	}
	repaid, err := FromDecimal128(d.RepaidAmount)
	if err != nil {
		return ledger.Loan{}, fmt.Errorf("loan %s repaidAmount: %w", d.ID, err)
	}

	loan := ledger.Loan{
		ID:                d.ID,
		CreditorID:        d.CreditorID,
		DebtorID:          d.DebtorID,
		DebtorName:        d.DebtorName,
		FamilyID:          d.FamilyID,
		Description:       d.Description,
		PrincipalAmount:   principal,
		TotalOwed:         owed,
		RepaidAmount:      repaid,
		Status:            status,
		Deadline:          d.Deadline,
		AttachmentURL:     d.AttachmentURL,
		RepaymentReceipts: make([]ledger.RepaymentReceipt, 0, len(d.RepaymentReceipts)),
		CreatedAt:         d.CreatedAt,
		ConfirmedAt:       d.ConfirmedAt,
		UpdatedAt:         d.UpdatedAt,
		Version:           d.Version,
	}

	if d.PendingRepayment != nil {
		amount, err := FromDecimal128(d.PendingRepayment.Amount)
		if err != nil {
			return ledger.Loan{}, fmt.Errorf("loan %s pendingRepayment: %w", d.ID, err)
		}
		loan.PendingRepayment = &ledger.PendingRepayment{
			Amount:      amount,
			SubmittedBy: d.PendingRepayment.SubmittedBy,
			SubmittedAt: d.PendingRepayment.SubmittedAt,
			ReceiptURL:  d.PendingRepayment.ReceiptURL,
		}
	}
	for _, r := range d.RepaymentReceipts {
		amount, err := FromDecimal128(r.Amount)
		if err != nil {
			return ledger.Loan{}, fmt.Errorf("loan %s receipt: %w", d.ID, err)
		}
		loan.RepaymentReceipts = append(loan.RepaymentReceipts, ledger.RepaymentReceipt{
			URL: r.URL, Amount: amount, RecordedAt: r.RecordedAt,
		})
	}
	effects, err := ToLedgerEffects(d.ID, d.PendingEffects)
	if err != nil {
		return ledger.Loan{}, err
	}
	loan.PendingEffects = effects
	return loan, nil
}

func ToLedgerEffects(loanID string, docs []PendingEffect) ([]ledger.Effect, error) {
	out := make([]ledger.Effect, 0, len(docs))
	for _, e := range docs {
		amount, err := FromDecimal128(e.Amount)
		if err != nil {
			return nil, fmt.Errorf("loan %s effect %s: %w", loanID, e.ID, err)
		}
		out = append(out, ledger.Effect{
			ID:            e.ID,
			LoanID:        loanID,
			Type:          ledger.TransactionType(e.Type),
			UserID:        e.UserID,
			Amount:        amount,
			Description:   e.Description,
			AttachmentURL: e.AttachmentURL,
			CreatedAt:     e.CreatedAt,
		})
	}
	return out, nil
}
