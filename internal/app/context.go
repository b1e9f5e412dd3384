// Package app wires the process-wide singletons — config, logger, store,
// provider registry, workspace preparer, modality classifier, pipeline
// controller/queue/worker — into one struct, directly modelled on the
// teacher's internal/app.Context "single source of truth" shape.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/eswarib/biodatamine/internal/analyzer"
	"github.com/eswarib/biodatamine/internal/config"
	"github.com/eswarib/biodatamine/internal/logger"
	"github.com/eswarib/biodatamine/internal/pipeline"
	"github.com/eswarib/biodatamine/internal/provider"
	"github.com/eswarib/biodatamine/internal/store"
	"github.com/eswarib/biodatamine/internal/workspace"
)

// Context holds the core environment and shared resources for the
// ingestion daemon. It acts as the single source of truth for application
// state, threaded by reference into the worker loop.
type Context struct {
	Config *config.Config
	Logger *logger.Logger

	Store      *store.Store
	Providers  *provider.Registry
	Preparer   *workspace.Preparer
	Classifier analyzer.ModalityClassifier
	PredLogger *analyzer.PredictionLogger
	Controller *pipeline.Controller
	Queue      *pipeline.Queue
	Worker     *pipeline.Worker
	Pipeline   *pipeline.Pipeline
}

// New initializes the base environment: opens the store, ensures its
// indexes, builds the provider registry in spec order (most specific
// first), and wires the pipeline controller/queue/worker triple.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Context, error) {
	st, err := store.Open(ctx, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := st.EnsureIndexes(ctx, log); err != nil {
		st.Close()
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	client := provider.DefaultHTTPClient()
	maxBytes := cfg.Pipeline.MaxDownloadBytes

	registry := provider.NewRegistry(
		provider.NewDatasetHostProvider(cfg.DatasetHost, client, maxBytes),
		provider.NewSourceRepoProvider(cfg.SourceRepo, client, maxBytes),
		provider.NewAuthenticatedHTTPProvider(cfg.HTTPCredentials, client, maxBytes),
		provider.NewPlainHTTPProvider(client, maxBytes),
	)

	preparer := workspace.NewPreparer(registry, cfg.Pipeline.DataRoot, cfg.Pipeline.MaxExtractedBytes)
	classifier := analyzer.DefaultClassifier{}

	predLogger, err := analyzer.NewPredictionLogger(cfg.Modality.PredictionLogDir, cfg.Modality.LowConfidenceThreshold)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init prediction logger: %w", err)
	}

	pipelineCfg := pipeline.Config{
		FileConcurrency:    cfg.Pipeline.FileConcurrency,
		BatchSize:          cfg.Pipeline.MongoBatchSize,
		FlushAfter:         secondsToDuration(cfg.Pipeline.BatchFlushSeconds),
		MaxFilesPerDataset: cfg.Pipeline.MaxFilesPerDataset,
	}
	controller := pipeline.NewController(st, preparer, classifier, predLogger, log, pipelineCfg)
	queue := pipeline.NewQueue()
	worker := pipeline.NewWorker(queue, controller, log)
	pl := pipeline.New(queue, worker, cfg.Pipeline.Enabled)

	return &Context{
		Config:     cfg,
		Logger:     log,
		Store:      st,
		Providers:  registry,
		Preparer:   preparer,
		Classifier: classifier,
		PredLogger: predLogger,
		Controller: controller,
		Queue:      queue,
		Worker:     worker,
		Pipeline:   pl,
	}, nil
}

func (c *Context) Close() {
	c.Logger.Info("shutting down store...")
	c.Store.Close()
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
