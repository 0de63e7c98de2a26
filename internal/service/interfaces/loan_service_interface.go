package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"loan-ledger/internal/pkg/ledger"
	"loan-ledger/internal/pkg/models"
)

// LoanEventPublisherInterface reports committed transitions. Failures are
// logged by the implementation and never surface to the caller.
type LoanEventPublisherInterface interface {
	PublishLoanEvent(ctx context.Context, eventType string, loan ledger.Loan, actorID string, amount *decimal.Decimal)
}

// NotifierInterface tells the counterparty about a transition, best effort.
type NotifierInterface interface {
	Notify(ctx context.Context, msg models.NotificationMessage)
}
