package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NotificationMessage tells the counterparty of a transition what happened
// and whether they need to act.
type NotificationMessage struct {
	Type           string           `json:"type" validate:"required"`
	LoanID         string           `json:"loanId" validate:"required"`
	RecipientID    string           `json:"recipientId" validate:"required"`
	RecipientName  string           `json:"recipientName"`
	RecipientEmail string           `json:"recipientEmail,omitempty"`
	ActorID        string           `json:"actorId"`
	ActorName      string           `json:"actorName"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Description    string           `json:"description,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}
