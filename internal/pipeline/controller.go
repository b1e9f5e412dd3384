// Package pipeline implements the per-dataset ingestion state machine:
// prepare → analyze_files → finalize → ready, with failed reachable from
// any non-terminal stage. Controller.Run is a direct generalisation of the
// teacher's engine.QueueManager.Start() per-stage cascade
// (hydrate → download → post-process becomes prepare → analyze → finalize),
// keeping the same "set status, persist, then do the work" ordering and
// single failure path.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/eswarib/biodatamine/internal/analyzer"
	"github.com/eswarib/biodatamine/internal/domain"
	"github.com/eswarib/biodatamine/internal/logger"
	"github.com/eswarib/biodatamine/internal/store"
	"github.com/eswarib/biodatamine/internal/walker"
	"github.com/eswarib/biodatamine/internal/workspace"
)

// Preparer is the subset of workspace.Preparer the controller depends on.
type Preparer interface {
	Prepare(ctx context.Context, datasetID, rawURL string) (workspace.PreparedWorkspace, error)
}

// Config carries the pipeline-tunable knobs of SPEC_FULL.md §6.
type Config struct {
	FileConcurrency    int
	BatchSize          int
	FlushAfter         time.Duration
	MaxFilesPerDataset int
}

// Controller drives one dataset through its full lifecycle.
type Controller struct {
	store      *store.Store
	preparer   Preparer
	classifier analyzer.ModalityClassifier
	predLogger *analyzer.PredictionLogger
	log        *logger.Logger
	cfg        Config
}

func NewController(s *store.Store, preparer Preparer, classifier analyzer.ModalityClassifier, predLogger *analyzer.PredictionLogger, log *logger.Logger, cfg Config) *Controller {
	return &Controller{store: s, preparer: preparer, classifier: classifier, predLogger: predLogger, log: log, cfg: cfg}
}

// Run drives job.DatasetID from its current stage through to ready or
// failed. Whoever submitted the job is expected to have already created
// the dataset row with status=processing, meta.stage=enqueued.
func (c *Controller) Run(ctx context.Context, job domain.Job) error {
	d, err := c.store.GetDataset(ctx, job.DatasetID)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", job.DatasetID, err)
	}
	if d == nil {
		return fmt.Errorf("dataset %s not found", job.DatasetID)
	}

	log := c.log.WithDataset(job.DatasetID)

	if err := c.runStages(ctx, log, d, job.URL); err != nil {
		log.Error("dataset failed: %v", err)
		c.fail(ctx, log, d, err)
		return err
	}
	return nil
}

func (c *Controller) runStages(ctx context.Context, log *logger.Logger, d *domain.Dataset, rawURL string) error {
	log.Info("prepare: fetching %s", rawURL)
	d.Status = domain.StatusProcessing
	d.Meta.Stage = domain.StagePrepare
	if err := c.store.ReplaceDataset(ctx, d); err != nil {
		return fmt.Errorf("persist prepare stage: %w", err)
	}

	prepared, err := c.preparer.Prepare(ctx, d.DatasetID, rawURL)
	if err != nil {
		return err
	}

	d.Meta.Ingest.Provider = prepared.Provider
	d.Meta.Resolution.OriginalURL = prepared.OriginalURL
	d.Meta.Resolution.ResolvedURL = prepared.ResolvedURL
	d.Meta.Stage = domain.StageAnalyzeFiles
	if err := c.store.ReplaceDataset(ctx, d); err != nil {
		return fmt.Errorf("persist analyze_files stage: %w", err)
	}

	log.Info("analyze: scanning %s", prepared.ScanRoot)
	summary, err := c.analyze(ctx, log, d.DatasetID, prepared.ScanRoot)
	if err != nil {
		return err
	}

	log.Info("finalize: total_files=%d image_2d=%d volume_3d=%d",
		summary.TotalFiles, summary.Image2DCount, summary.Volume3DCount)
	d.Summary = summary
	d.Meta.Stage = domain.StageFinalize
	d.Status = domain.StatusReady
	if err := c.store.ReplaceDataset(ctx, d); err != nil {
		return fmt.Errorf("persist finalize stage: %w", err)
	}
	return nil
}

func (c *Controller) fail(ctx context.Context, log *logger.Logger, d *domain.Dataset, cause error) {
	d.Status = domain.StatusFailed
	d.Meta.Stage = domain.StageFailed
	d.Meta.LastError = cause.Error()
	if err := c.store.ReplaceDataset(ctx, d); err != nil {
		log.Error("could not persist failure state: %v", err)
	}
}

// analyze implements spec.md §4.5's analyze stage: delete prior rows,
// start the batch writer, walk and fan out with the dual (N, 2N) bound,
// fold completions into the aggregator, then drain and flush.
func (c *Controller) analyze(ctx context.Context, log *logger.Logger, datasetID, scanRoot string) (domain.Summary, error) {
	if err := c.store.DeleteFilesByDataset(ctx, datasetID); err != nil {
		return domain.Summary{}, fmt.Errorf("clear prior files: %w", err)
	}

	writer := store.NewBatchWriter(ctx, c.store, log, c.cfg.BatchSize, c.cfg.FlushAfter)
	agg := newAggregator()
	fo := newFanout(c.cfg.FileConcurrency)

	onComplete := func(rec domain.FileRecord) error {
		agg.recordCompletion(&rec)

		select {
		case <-writer.Done():
			return domain.ErrBatchWriterCrashed
		default:
		}

		select {
		case writer.In() <- &rec:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}

	paths, truncated := walker.Walk(ctx, scanRoot, c.cfg.MaxFilesPerDataset)
	for path := range paths {
		relPath := relativeTo(scanRoot, path)
		agg.recordScheduled(relPath)

		fo.submit(ctx, datasetID, path, relPath, analyzer.FolderContext(path), c.classifier, c.predLogger)
		if err := fo.drainIfFull(ctx, onComplete); err != nil {
			drainWriterAbort(writer)
			return domain.Summary{}, err
		}
	}
	if *truncated {
		log.Warn("file walk truncated at max_files_per_dataset=%d for dataset %s", c.cfg.MaxFilesPerDataset, datasetID)
	}

	if err := fo.drainAll(ctx, onComplete); err != nil {
		drainWriterAbort(writer)
		return domain.Summary{}, err
	}

	writer.In() <- nil
	if err := <-writer.Done(); err != nil {
		return domain.Summary{}, err
	}

	return agg.finalize(), nil
}

func drainWriterAbort(w *store.BatchWriter) {
	select {
	case w.In() <- nil:
	default:
	}
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
