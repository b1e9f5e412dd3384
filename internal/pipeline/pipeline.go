package pipeline

import (
	"context"

	"github.com/eswarib/biodatamine/internal/domain"
)

// Pipeline is the process-wide front door: Enqueue onto the shared Queue,
// gated by configuration. The controller, classifier, and queue are
// process-wide singletons created once at startup and passed by
// reference, per SPEC_FULL.md §9's "global singletons" design note.
type Pipeline struct {
	queue   *Queue
	worker  *Worker
	enabled bool
}

func New(queue *Queue, worker *Worker, enabled bool) *Pipeline {
	return &Pipeline{queue: queue, worker: worker, enabled: enabled}
}

// Enqueue implements spec.md §6's input contract. The caller must already
// have created the dataset row with status=processing, meta.stage=enqueued.
func (p *Pipeline) Enqueue(job domain.Job) error {
	if !p.enabled {
		return domain.ErrPipelineDisabled
	}
	p.queue.Push(job)
	return nil
}

// Start begins the single consumer loop.
func (p *Pipeline) Start(ctx context.Context) {
	p.worker.Start(ctx)
}

// Stop cancels the consumer loop cooperatively and waits for it to exit.
func (p *Pipeline) Stop() {
	p.worker.Stop()
}
