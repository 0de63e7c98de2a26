package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-ledger/internal/pkg/ledger"
)

func seedOutbox(t *testing.T, repo *memLoanRepo, loanID string, userIDs ...string) {
	t.Helper()
	loan := ledger.Loan{ID: loanID, CreditorID: "ana", DebtorID: "ben", Status: ledger.StatusOutstanding, Version: 3}
	for i, userID := range userIDs {
		loan.PendingEffects = append(loan.PendingEffects, ledger.Effect{
			ID:     loanID + "-effect-" + string(rune('a'+i)),
			LoanID: loanID,
			Type:   ledger.TransactionIncome,
			UserID: userID,
			Amount: dec("10"),
		})
	}
	require.NoError(t, repo.Insert(context.Background(), loan))
}

func TestOutboxDispatcher_Drain(t *testing.T) {
	loans := newMemLoanRepo()
	txs := newMemTransactionRepo()
	seedOutbox(t, loans, "loan-1", "ana", "ben")
	seedOutbox(t, loans, "loan-2", "ana")
	seedOutbox(t, loans, "loan-3", "ben")
	txs.setFailing("ben", true)

	dispatcher := NewOutboxDispatcher(loans, txs, OutboxConfig{Workers: 3, BatchSize: 10})
	defer dispatcher.Stop()

	result, err := dispatcher.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DrainResult{Loans: 3, Delivered: 2, Failed: 2}, result)
	assert.Len(t, loans.stored("loan-1").PendingEffects, 1)
	assert.Empty(t, loans.stored("loan-2").PendingEffects)

	txs.setFailing("ben", false)
	result, err = dispatcher.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DrainResult{Loans: 2, Delivered: 2}, result)

	result, err = dispatcher.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DrainResult{}, result)
	assert.Len(t, txs.all(), 4)
}

func TestOutboxDispatcher_RedeliveryIsIdempotent(t *testing.T) {
	loans := newMemLoanRepo()
	txs := newMemTransactionRepo()
	seedOutbox(t, loans, "loan-1", "ana")
	loans.setRemoveErr(errors.New("mongo down"))

	dispatcher := NewOutboxDispatcher(loans, txs, OutboxConfig{Workers: 1, BatchSize: 10})
	defer dispatcher.Stop()

	result, err := dispatcher.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, loans.stored("loan-1").PendingEffects, 1)

	loans.setRemoveErr(nil)
	result, err = dispatcher.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Delivered)
	assert.Len(t, txs.all(), 1, "the second append of the same effect is a no-op")
	assert.Equal(t, 2, txs.appends)
}

func TestOutboxDispatcher_BatchSize(t *testing.T) {
	loans := newMemLoanRepo()
	txs := newMemTransactionRepo()
	for _, id := range []string{"loan-1", "loan-2", "loan-3"} {
		seedOutbox(t, loans, id, "ana")
	}

	dispatcher := NewOutboxDispatcher(loans, txs, OutboxConfig{Workers: 2, BatchSize: 2})
	defer dispatcher.Stop()

	result, err := dispatcher.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Loans)
}

func TestOutboxDispatcher_StartStop(t *testing.T) {
	loans := newMemLoanRepo()
	txs := newMemTransactionRepo()
	seedOutbox(t, loans, "loan-1", "ana")

	dispatcher := NewOutboxDispatcher(loans, txs, OutboxConfig{Interval: 10 * time.Millisecond, Workers: 1, BatchSize: 10})
	dispatcher.Start(context.Background())

	assert.Eventually(t, func() bool {
		return len(loans.stored("loan-1").PendingEffects) == 0
	}, time.Second, 5*time.Millisecond)

	dispatcher.Stop()
	dispatcher.Stop()

	result, err := dispatcher.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Loans)
}
