package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"loan-ledger/internal/pkg/log_messages"
	"loan-ledger/internal/pkg/logger"
	"loan-ledger/internal/pkg/utils/worker"
	"loan-ledger/internal/service/interfaces"
)

type OutboxConfig struct {
	Interval  time.Duration
	Workers   int
	BatchSize int64
}

type DrainResult struct {
	Loans     int
	Delivered int
	Failed    int
}

// OutboxDispatcher replays derived transactions that were committed with a
// transition but not delivered inline. Loans are delivered in parallel on a
// worker pool; effects of one loan stay in order.
type OutboxDispatcher struct {
	loans     interfaces.LoanRepositoryInterface
	deliverer *EffectDeliverer
	pool      *worker.WorkerPool
	cfg       OutboxConfig

	drainMu sync.Mutex

	lifecycle sync.Mutex
	stop      chan struct{}
	done      chan struct{}
	stopped   bool
}

func NewOutboxDispatcher(loans interfaces.LoanRepositoryInterface, transactions interfaces.TransactionRepositoryInterface, cfg OutboxConfig) *OutboxDispatcher {
	return &OutboxDispatcher{
		loans:     loans,
		deliverer: NewEffectDeliverer(loans, transactions),
		pool:      worker.NewWorkerPool(cfg.Workers),
		cfg:       cfg,
	}
}

// Drain delivers the pending effects of up to BatchSize loans, oldest update first.
func (d *OutboxDispatcher) Drain(ctx context.Context) (DrainResult, error) {
	d.drainMu.Lock()
	defer d.drainMu.Unlock()

	logger.CtxInfo(ctx, log_messages.OutboxDrainStarted, zap.Int64("batch_size", d.cfg.BatchSize))
	loans, err := d.loans.FindWithPendingEffects(ctx, d.cfg.BatchSize)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorOutboxDrain, err)
		return DrainResult{}, err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = DrainResult{Loans: len(loans)}
	)
	for _, loan := range loans {
		loanID, effects := loan.ID, loan.PendingEffects
		wg.Add(1)
		err := d.pool.Submit(ctx, func() {
			defer wg.Done()
			delivery := d.deliverer.Deliver(ctx, loanID, effects)
			mu.Lock()
			result.Delivered += len(delivery.Delivered)
			result.Failed += delivery.Failed
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			logger.CtxWarn(ctx, log_messages.ErrorOutboxDispatcherSubmit, zap.String("loan_id", loanID), zap.Error(err))
			mu.Lock()
			result.Failed += len(effects)
			mu.Unlock()
		}
	}
	wg.Wait()

	logger.CtxInfo(ctx, log_messages.OutboxDrainCompleted,
		zap.Int("loans", result.Loans),
		zap.Int("delivered", result.Delivered),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// Start drains on every tick until Stop is called or ctx ends.
func (d *OutboxDispatcher) Start(ctx context.Context) {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if d.stop != nil || d.stopped || d.cfg.Interval <= 0 {
		return
	}
	d.stop = make(chan struct{})
	d.done = make(chan struct{})

	go func() {
		defer close(d.done)
		ticker := time.NewTicker(d.cfg.Interval)
		defer ticker.Stop()

		logger.CtxInfo(ctx, log_messages.OutboxDispatcherStarted, zap.Duration("interval", d.cfg.Interval))
		for {
			select {
			case <-ticker.C:
				_, _ = d.Drain(ctx)
			case <-d.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the ticker loop, waits for a running drain and stops the pool.
func (d *OutboxDispatcher) Stop() {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	if d.stop != nil {
		close(d.stop)
		<-d.done
	}
	d.pool.Stop()
	logger.Info(log_messages.OutboxDispatcherStopped)
}
