package worker

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"loan-ledger/internal/pkg/logger"
)

type Task func()

// Worker drains the queue it shares with the rest of its pool.
type Worker struct {
	id   int
	stop chan struct{}
}

func NewWorker(id int) *Worker {
	return &Worker{id: id, stop: make(chan struct{})}
}

// Start runs tasks until Stop is called or the queue is closed.
func (w *Worker) Start(queue <-chan Task, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case task, ok := <-queue:
				if !ok {
					return
				}
				w.run(task)
			case <-w.stop:
				return
			}
		}
	}()
}

// run keeps the worker alive when a task panics.
func (w *Worker) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Worker task panicked", fmt.Errorf("%v", r), zap.Int("worker_id", w.id))
		}
	}()
	task()
}

func (w *Worker) Stop() {
	close(w.stop)
}
