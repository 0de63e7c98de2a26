package service

import (
	"context"

	"go.uber.org/zap"

	"loan-ledger/internal/pkg/ledger"
	"loan-ledger/internal/pkg/log_messages"
	"loan-ledger/internal/pkg/logger"
	"loan-ledger/internal/service/interfaces"
)

// EffectDeliverer moves derived transactions from a loan's outbox into the
// transaction store. An effect leaves the outbox only after its append
// succeeded, so a crash in between leads to a repeated append, which the
// store treats as already delivered.
type EffectDeliverer struct {
	loans        interfaces.LoanRepositoryInterface
	transactions interfaces.TransactionRepositoryInterface
}

func NewEffectDeliverer(loans interfaces.LoanRepositoryInterface, transactions interfaces.TransactionRepositoryInterface) *EffectDeliverer {
	return &EffectDeliverer{loans: loans, transactions: transactions}
}

// Delivery reports which effects left the outbox.
type Delivery struct {
	Delivered []string
	Failed    int
}

func (d *EffectDeliverer) Deliver(ctx context.Context, loanID string, effects []ledger.Effect) Delivery {
	result := Delivery{Delivered: make([]string, 0, len(effects))}
	for i, effect := range effects {
		if ctx.Err() != nil {
			result.Failed += len(effects) - i
			return result
		}
		if _, err := d.transactions.Append(ctx, effect); err != nil {
			logger.CtxWarn(ctx, log_messages.ErrorDeliveringEffect,
				zap.String("loan_id", loanID),
				zap.String("effect_id", effect.ID),
				zap.Error(err),
			)
			result.Failed++
			continue
		}
		if err := d.loans.RemovePendingEffect(ctx, loanID, effect.ID); err != nil {
			// appended but still queued; the next drain appends it again as a no-op
			result.Failed++
			continue
		}
		result.Delivered = append(result.Delivered, effect.ID)
	}
	return result
}
