package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"loan-ledger/internal/pkg/consts"
	"loan-ledger/internal/pkg/ledger"
	"loan-ledger/internal/pkg/models"
)

func TestPubSubNotifier_Notify(t *testing.T) {
	publisher := &MockRuntimePubSubPublisher{}
	var payload []byte
	publisher.On("Publish", mock.Anything, "loan-notifications", mock.Anything, map[string]string{
		"type":        consts.NotificationRepaymentAwaitingConfirmation,
		"loanId":      "loan-1",
		"recipientId": "ana",
	}).Run(func(args mock.Arguments) { payload = args.Get(2).([]byte) }).Return(nil)

	notifier := NewPubSubNotifier(publisher, "loan-notifications")
	msg, ok := notificationFor(consts.EventLoanRepaymentSubmitted, eventLoan(), "ben", nil, testUsers)
	require.True(t, ok)
	notifier.Notify(context.Background(), msg)

	publisher.AssertExpectations(t)
	var decoded models.NotificationMessage
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "Ana Cruz", decoded.RecipientName)
	assert.Equal(t, "Ben Reyes", decoded.ActorName)
}

func TestPubSubNotifier_InvalidMessageNotPublished(t *testing.T) {
	publisher := &MockRuntimePubSubPublisher{}
	notifier := NewPubSubNotifier(publisher, "loan-notifications")

	notifier.Notify(context.Background(), models.NotificationMessage{Type: consts.NotificationRepaymentConfirmed})
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPubSubNotifier_PublishFailureIsSwallowed(t *testing.T) {
	publisher := &MockRuntimePubSubPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("unavailable"))
	notifier := NewPubSubNotifier(publisher, "loan-notifications")

	msg, ok := notificationFor(consts.EventLoanRepaymentConfirmed, eventLoan(), "ana", nil, testUsers)
	require.True(t, ok)
	assert.NotPanics(t, func() { notifier.Notify(context.Background(), msg) })
}

func TestNotificationFor(t *testing.T) {
	pending := eventLoan()
	pending.Status = ledger.StatusPendingConfirmation
	unregistered := eventLoan()
	unregistered.DebtorID = ""
	unregistered.DebtorName = "Lola"

	cases := []struct {
		name      string
		event     string
		loan      ledger.Loan
		actor     string
		wantOK    bool
		wantType  string
		recipient string
	}{
		{"created awaiting confirmation", consts.EventLoanCreated, pending, "ana", true, consts.NotificationLoanAwaitingConfirmation, "ben"},
		{"created outstanding", consts.EventLoanCreated, eventLoan(), "ana", false, "", ""},
		{"receipt confirmed", consts.EventLoanReceiptConfirmed, eventLoan(), "ben", true, consts.NotificationLoanReceiptConfirmed, "ana"},
		{"repayment submitted", consts.EventLoanRepaymentSubmitted, eventLoan(), "ben", true, consts.NotificationRepaymentAwaitingConfirmation, "ana"},
		{"repayment confirmed", consts.EventLoanRepaymentConfirmed, eventLoan(), "ana", true, consts.NotificationRepaymentConfirmed, "ben"},
		{"repayment recorded", consts.EventLoanRepaymentRecorded, eventLoan(), "ana", true, consts.NotificationRepaymentRecorded, "ben"},
		{"recorded for unregistered debtor", consts.EventLoanRepaymentRecorded, unregistered, "ana", false, "", ""},
		{"unknown event", "loan.archived", eventLoan(), "ana", false, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, ok := notificationFor(tc.event, tc.loan, tc.actor, nil, testUsers)
			assert.Equal(t, tc.wantOK, ok)
			if !tc.wantOK {
				return
			}
			assert.Equal(t, tc.wantType, msg.Type)
			assert.Equal(t, tc.recipient, msg.RecipientID)
			assert.Equal(t, tc.loan.UpdatedAt, msg.CreatedAt)
		})
	}
}
