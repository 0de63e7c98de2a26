package service

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"loan-ledger/internal/pkg/consts"
	"loan-ledger/internal/pkg/ledger"
	"loan-ledger/internal/pkg/log_messages"
	"loan-ledger/internal/pkg/logger"
	"loan-ledger/internal/pkg/models"
	storemodels "loan-ledger/internal/pkg/store/models"
	"loan-ledger/internal/service/interfaces"
)

var validate = validator.New()

// PubSubNotifier publishes counterparty notifications to one Pub/Sub topic.
type PubSubNotifier struct {
	publisher interfaces.RuntimePubSubPublisher
	topic     string
}

func NewPubSubNotifier(publisher interfaces.RuntimePubSubPublisher, topic string) *PubSubNotifier {
	return &PubSubNotifier{publisher: publisher, topic: topic}
}

func (n *PubSubNotifier) Notify(ctx context.Context, msg models.NotificationMessage) {
	if err := validate.Struct(msg); err != nil {
		logger.CtxWarn(ctx, log_messages.ErrorPublishingNotification,
			zap.String("notification_type", msg.Type), zap.Error(err))
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorSerializingMessage, err, zap.String("notification_type", msg.Type))
		return
	}
	attributes := map[string]string{
		"type":        msg.Type,
		"loanId":      msg.LoanID,
		"recipientId": msg.RecipientID,
	}
	if err := n.publisher.Publish(ctx, n.topic, data, attributes); err != nil {
		logger.CtxError(ctx, log_messages.ErrorPublishingNotification, err,
			zap.String("notification_type", msg.Type), zap.String("loan_id", msg.LoanID))
		return
	}
	logger.CtxInfo(ctx, log_messages.NotificationPublished,
		zap.String("notification_type", msg.Type),
		zap.String("loan_id", msg.LoanID),
		zap.String("recipient_id", msg.RecipientID),
	)
}

// notificationFor picks the counterparty of actorID for an event. It returns
// false when there is nobody registered to tell.
func notificationFor(eventType string, loan ledger.Loan, actorID string, amount *decimal.Decimal, users map[string]storemodels.User) (models.NotificationMessage, bool) {
	var kind, recipient string
	switch eventType {
	case consts.EventLoanCreated:
		if loan.Status != ledger.StatusPendingConfirmation {
			return models.NotificationMessage{}, false
		}
		kind, recipient = consts.NotificationLoanAwaitingConfirmation, loan.DebtorID
	case consts.EventLoanReceiptConfirmed:
		kind, recipient = consts.NotificationLoanReceiptConfirmed, loan.CreditorID
	case consts.EventLoanRepaymentSubmitted:
		kind, recipient = consts.NotificationRepaymentAwaitingConfirmation, loan.CreditorID
	case consts.EventLoanRepaymentConfirmed:
		kind, recipient = consts.NotificationRepaymentConfirmed, loan.DebtorID
	case consts.EventLoanRepaymentRecorded:
		kind, recipient = consts.NotificationRepaymentRecorded, loan.DebtorID
	default:
		return models.NotificationMessage{}, false
	}
	if recipient == "" || recipient == actorID {
		return models.NotificationMessage{}, false
	}

	to := users[recipient]
	return models.NotificationMessage{
		Type:           kind,
		LoanID:         loan.ID,
		RecipientID:    recipient,
		RecipientName:  to.FullName,
		RecipientEmail: to.Email,
		ActorID:        actorID,
		ActorName:      users[actorID].FullName,
		Amount:         amount,
		Description:    loan.Description,
		CreatedAt:      loan.UpdatedAt,
	}, true
}
