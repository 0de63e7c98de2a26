package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"loan-ledger/internal/pkg/ledger"
	"loan-ledger/internal/pkg/log_messages"
	"loan-ledger/internal/pkg/logger"
	"loan-ledger/internal/pkg/models"
	"loan-ledger/internal/service/interfaces"
)

// LoanEventPublisher publishes committed transitions to Kafka keyed by loan
// id, so events of one loan stay ordered within a partition.
type LoanEventPublisher struct {
	producer interfaces.KafkaPublisherInterface
	newID    func() string
}

func NewLoanEventPublisher(producer interfaces.KafkaPublisherInterface) *LoanEventPublisher {
	return &LoanEventPublisher{
		producer: producer,
		newID:    uuid.NewString,
	}
}

func (p *LoanEventPublisher) PublishLoanEvent(ctx context.Context, eventType string, loan ledger.Loan, actorID string, amount *decimal.Decimal) {
	event := buildLoanEvent(p.newID(), eventType, loan, actorID, amount)

	data, err := json.Marshal(event)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorSerializingMessage, err, zap.String("event_type", eventType))
		return
	}
	if err := p.producer.Publish(ctx, []byte(loan.ID), data); err != nil {
		logger.CtxError(ctx, log_messages.ErrorPublishingLoanEvent, err,
			zap.String("event_type", eventType), zap.String("loan_id", loan.ID))
		return
	}
	logger.CtxInfo(ctx, log_messages.LoanEventPublished,
		zap.String("event_type", eventType),
		zap.String("event_id", event.EventID),
		zap.String("loan_id", loan.ID),
	)
}

func buildLoanEvent(eventID, eventType string, loan ledger.Loan, actorID string, amount *decimal.Decimal) models.LoanEvent {
	return models.LoanEvent{
		EventID:            eventID,
		EventType:          eventType,
		LoanID:             loan.ID,
		ActorID:            actorID,
		CreditorID:         loan.CreditorID,
		DebtorID:           loan.DebtorID,
		FamilyID:           loan.FamilyID,
		Status:             string(loan.Status),
		PrincipalAmount:    loan.PrincipalAmount,
		TotalOwed:          loan.TotalOwed,
		RepaidAmount:       loan.RepaidAmount,
		OutstandingBalance: loan.OutstandingBalance(),
		Amount:             amount,
		Version:            loan.Version,
		OccurredAt:         loan.UpdatedAt,
	}
}
