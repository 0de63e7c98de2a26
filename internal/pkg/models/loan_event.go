package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanEvent is published to the loan events topic after a committed transition.
type LoanEvent struct {
	EventID            string           `json:"eventId"`
	EventType          string           `json:"eventType"`
	LoanID             string           `json:"loanId"`
	ActorID            string           `json:"actorId"`
	CreditorID         string           `json:"creditorId"`
	DebtorID           string           `json:"debtorId,omitempty"`
	FamilyID           string           `json:"familyId,omitempty"`
	Status             string           `json:"status"`
	PrincipalAmount    decimal.Decimal  `json:"principalAmount"`
	TotalOwed          decimal.Decimal  `json:"totalOwed"`
	RepaidAmount       decimal.Decimal  `json:"repaidAmount"`
	OutstandingBalance decimal.Decimal  `json:"outstandingBalance"`
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	Version            int64            `json:"version"`
	OccurredAt         time.Time        `json:"occurredAt"`
}
