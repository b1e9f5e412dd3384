package store

import (
	"context"
	"fmt"
	"time"

	"github.com/eswarib/biodatamine/internal/domain"
	"github.com/eswarib/biodatamine/internal/logger"
)

// BatchWriter is the single cooperative consumer of a bounded channel of
// file descriptors, generalising the teacher's per-release batched-tx
// upsert (internal/store/release_files.go) into a size/time bounded batch.
// It flushes when the in-memory batch reaches size, when no descriptor has
// arrived for flushAfter, or when the sentinel (nil) is received.
type BatchWriter struct {
	store      *Store
	log        *logger.Logger
	size       int
	flushAfter time.Duration
	in         chan *domain.FileRecord
	done       chan error
}

// NewBatchWriter starts the consumer goroutine and returns immediately. Send
// records on In(); send nil (or close In and let run observe a closed
// channel) to request a final flush and exit. The input channel's capacity
// is 4×size, a secondary backpressure point between analysis and
// persistence per SPEC_FULL.md §4.5. ctx is the controller's per-job
// context: if it's cancelled before a sentinel arrives, the consumer
// goroutine exits without a clean flush and reports ErrBatchWriterCrashed
// on Done().
func NewBatchWriter(ctx context.Context, s *Store, log *logger.Logger, size int, flushAfter time.Duration) *BatchWriter {
	if size < 1 {
		size = 1
	}
	w := &BatchWriter{
		store:      s,
		log:        log,
		size:       size,
		flushAfter: flushAfter,
		in:         make(chan *domain.FileRecord, 4*size),
		done:       make(chan error, 1),
	}
	go w.run(ctx)
	return w
}

// In returns the channel descriptors are sent on. Send a nil value as the
// sentinel to signal end-of-stream.
func (w *BatchWriter) In() chan<- *domain.FileRecord { return w.in }

// Done returns a channel that receives once, carrying ErrBatchWriterCrashed
// only if the consumer goroutine exits without having observed a sentinel
// (e.g. the context was cancelled mid-batch); nil otherwise.
func (w *BatchWriter) Done() <-chan error { return w.done }

func (w *BatchWriter) run(ctx context.Context) {
	batch := make([]*domain.FileRecord, 0, w.size)
	timer := time.NewTimer(w.flushAfter)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		errs := w.store.BulkUpsertFiles(ctx, batch)
		for i, err := range errs {
			if err != nil {
				w.log.Warn("batch writer: upsert failed for %s/%s: %v",
					batch[i].DatasetID, batch[i].RelPath, err)
			}
		}
		batch = batch[:0]
	}

	for {
		select {
		case rec, ok := <-w.in:
			if !ok || rec == nil {
				flush()
				w.done <- nil
				return
			}
			batch = append(batch, rec)
			if len(batch) >= w.size {
				flush()
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.flushAfter)
		case <-timer.C:
			flush()
			timer.Reset(w.flushAfter)
		case <-ctx.Done():
			w.done <- fmt.Errorf("%w: %v", domain.ErrBatchWriterCrashed, ctx.Err())
			return
		}
	}
}
