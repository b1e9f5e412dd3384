package pipeline

import (
	"context"
	"fmt"

	"github.com/eswarib/biodatamine/internal/domain"
	"github.com/eswarib/biodatamine/internal/logger"
	"github.com/eswarib/biodatamine/internal/store"
)

// recoveryLimit is spec.md §4.7's cap on how many stuck datasets are
// re-enqueued at startup.
const recoveryLimit = 200

// Recover streams up to recoveryLimit status=processing datasets, sorted
// by created_at descending, and re-enqueues each using its stored
// source_url. This is safe without any status rewrite because analyze
// begins by deleting prior files rows and finalize overwrites the summary
// — an intentional divergence from the teacher's
// QueueManager.initFromDatabase, which instead resets stuck items to a
// synthetic status before reloading them (internal/engine/manager.go).
func Recover(ctx context.Context, s *store.Store, q *Queue, log *logger.Logger) error {
	stuck, err := s.StreamProcessing(ctx, recoveryLimit)
	if err != nil {
		return fmt.Errorf("stream processing datasets: %w", err)
	}

	for _, d := range stuck {
		q.Push(domain.Job{DatasetID: d.DatasetID, URL: d.SourceURL})
	}
	log.Info("recovery: re-enqueued %d dataset(s)", len(stuck))
	return nil
}
