package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"loan-ledger/internal/pkg/ledger"
)

// Transaction is an income or expense record. Derived ones reuse the effect id as _id.
type Transaction struct {
	ID            string               `bson:"_id"`
	UserID        string               `bson:"userId"`
	Type          string               `bson:"type"`
	Amount        primitive.Decimal128 `bson:"amount"`
	Description   string               `bson:"description"`
	AttachmentURL string               `bson:"attachmentUrl,omitempty"`
	LoanID        string               `bson:"loanId,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt"`
}

func TransactionFromEffect(e ledger.Effect) (Transaction, error) {
	amount, err := ToDecimal128(e.Amount)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		ID:            e.ID,
		UserID:        e.UserID,
		Type:          string(e.Type),
		Amount:        amount,
		Description:   e.Description,
		AttachmentURL: e.AttachmentURL,
		LoanID:        e.LoanID,
		CreatedAt:     e.CreatedAt,
	}, nil
}
