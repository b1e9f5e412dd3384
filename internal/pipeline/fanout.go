package pipeline

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/eswarib/biodatamine/internal/analyzer"
	"github.com/eswarib/biodatamine/internal/domain"
)

// taskResult is one analyzer task's outcome, delivered on the fanout's
// results channel.
type taskResult struct {
	rec domain.FileRecord
}

// fanout bounds concurrent analyzer execution to a semaphore of
// fileConcurrency permits while allowing up to 2×fileConcurrency tasks to
// be outstanding (submitted but not yet collected) — the dual bound of
// SPEC_FULL.md §4.5, grounded on engine.Downloader.runWorkerPool's
// worker-count/buffer-size sizing (here a semaphore-gated goroutine pool
// rather than a fixed worker-count channel pool, since task count is
// unknown up front).
type fanout struct {
	sem            *semaphore.Weighted
	results        chan taskResult
	outstanding    int
	maxOutstanding int
}

func newFanout(fileConcurrency int) *fanout {
	return &fanout{
		sem:            semaphore.NewWeighted(int64(fileConcurrency)),
		results:        make(chan taskResult, 2*fileConcurrency),
		maxOutstanding: 2 * fileConcurrency,
	}
}

// submit spawns one analyzer task. The caller is responsible for calling
// drainIfFull afterward to enforce the 2N outstanding bound.
func (f *fanout) submit(ctx context.Context, datasetID, absPath, relPath string, folderContext [3]string, classifier analyzer.ModalityClassifier, predLogger *analyzer.PredictionLogger) {
	f.outstanding++
	go func() {
		if err := f.sem.Acquire(ctx, 1); err != nil {
			f.results <- taskResult{rec: domain.FileRecord{
				DatasetID: datasetID,
				RelPath:   relPath,
				AbsPath:   absPath,
				Kind:      domain.KindError,
				Modality:  domain.ModalityUnknown,
				Meta:      domain.FileMeta{Kind: domain.KindError, Error: &domain.ErrorMeta{Error: err.Error()}},
			}}
			return
		}
		rec := analyzer.Analyze(datasetID, absPath, relPath, folderContext, classifier, predLogger)
		f.sem.Release(1)
		f.results <- taskResult{rec: rec}
	}()
}

// collectOne blocks for exactly one completion and decrements outstanding.
func (f *fanout) collectOne(ctx context.Context) (domain.FileRecord, error) {
	select {
	case res := <-f.results:
		f.outstanding--
		return res.rec, nil
	case <-ctx.Done():
		return domain.FileRecord{}, ctx.Err()
	}
}

// drainIfFull awaits completions one at a time until outstanding falls to
// the 2N bound, invoking onComplete for each collected result.
func (f *fanout) drainIfFull(ctx context.Context, onComplete func(domain.FileRecord) error) error {
	for f.outstanding > f.maxOutstanding {
		rec, err := f.collectOne(ctx)
		if err != nil {
			return err
		}
		if err := onComplete(rec); err != nil {
			return err
		}
	}
	return nil
}

// drainAll awaits every remaining outstanding task.
func (f *fanout) drainAll(ctx context.Context, onComplete func(domain.FileRecord) error) error {
	for f.outstanding > 0 {
		rec, err := f.collectOne(ctx)
		if err != nil {
			return err
		}
		if err := onComplete(rec); err != nil {
			return err
		}
	}
	return nil
}
