package worker

import (
	"context"
	"errors"
	"sync"
)

var ErrPoolStopped = errors.New("worker pool stopped")

// WorkerPool manages a pool of workers to process tasks
type WorkerPool struct {
	workers []*Worker
	queue   chan Task
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWorkerPool starts numWorkers workers, at least one.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	pool := &WorkerPool{
		workers: make([]*Worker, numWorkers),
		queue:   make(chan Task),
		stop:    make(chan struct{}),
	}

	for i := 0; i < numWorkers; i++ {
		w := NewWorker(i)
		w.Start(pool.queue, &pool.wg)
		pool.workers[i] = w
	}

	return pool
}

func (p *WorkerPool) Size() int {
	return len(p.workers)
}

// Submit hands task to the next idle worker, blocking until one is free.
func (p *WorkerPool) Submit(ctx context.Context, task Task) error {
	select {
	case <-p.stop:
		return ErrPoolStopped
	default:
	}

	select {
	case p.queue <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stop:
		return ErrPoolStopped
	}
}

// Stop stops all workers and waits for running tasks to return.
func (p *WorkerPool) Stop() {
	p.once.Do(func() {
		close(p.stop)
		for _, w := range p.workers {
			w.Stop()
		}
		p.wg.Wait()
	})
}
