package pipeline

import (
	"context"
	"sync"

	"github.com/eswarib/biodatamine/internal/logger"
)

// Worker is the single consumer of a Queue: pop a job, run it to
// completion (successful or failed) through the Controller, repeat. Start
// and Stop are idempotent, grounded on the teacher's
// QueueManager.Start()/Stop() pair (internal/engine/manager.go).
type Worker struct {
	queue      *Queue
	controller *Controller
	log        *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

func NewWorker(q *Queue, c *Controller, log *logger.Logger) *Worker {
	return &Worker{queue: q, controller: c, log: log}
}

// Start runs the consumer loop in a new goroutine. Calling Start twice
// without an intervening Stop is a no-op.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.stopped = make(chan struct{})
	w.mu.Unlock()

	go w.run(loopCtx)
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.stopped)

	for {
		job, ok := w.queue.Pop()
		if !ok {
			select {
			case <-w.queue.Wake():
				continue
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.controller.Run(ctx, job); err != nil {
			w.log.Error("job for dataset %s ended in error: %v", job.DatasetID, err)
		}
	}
}

// Stop cancels the consumer loop and waits for it to exit. Calling Stop
// before Start, or twice, is a no-op.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	stopped := w.stopped
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}
