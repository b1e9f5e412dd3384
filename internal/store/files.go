package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eswarib/biodatamine/internal/domain"
)

// InsertFile inserts a single file record. Used for the rare one-off insert
// outside the batch-writer path (e.g. recording an ErrorMeta placeholder).
func (s *Store) InsertFile(ctx context.Context, f *domain.FileRecord) error {
	doc, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal file: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO files (dataset_id, relpath, doc) VALUES ($1, $2, $3)`,
		f.DatasetID, f.RelPath, doc)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

// DeleteFilesByDataset removes every file row for a dataset — called at the
// start of analyze_files so that a re-run after a crash rebuilds the catalog
// from scratch rather than accumulating stale duplicates (SPEC_FULL.md §4.3).
func (s *Store) DeleteFilesByDataset(ctx context.Context, datasetID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM files WHERE dataset_id = $1`, datasetID)
	if err != nil {
		return fmt.Errorf("delete files by dataset: %w", err)
	}
	return nil
}

// FindFilesByDataset streams back every file record for a dataset, ordered
// by relpath. Nothing in this repository calls it; the pipeline does not
// re-read what it just wrote.
func (s *Store) FindFilesByDataset(ctx context.Context, datasetID string) ([]*domain.FileRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM files WHERE dataset_id = $1 ORDER BY relpath`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("find files by dataset: %w", err)
	}
	defer rows.Close()

	var out []*domain.FileRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		var f domain.FileRecord
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("unmarshal file: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// upsertSQL relies on the unique index EnsureIndexes attempts to create on
// (dataset_id, relpath). When that attempt fell back to a non-unique index
// (pre-existing duplicates), ON CONFLICT has no matching constraint and
// Postgres reports it as a plain per-statement error — which this batch
// already tolerates without aborting the rest of the run.
const upsertSQL = `
	INSERT INTO files (dataset_id, relpath, doc) VALUES ($1, $2, $3)
	ON CONFLICT (dataset_id, relpath) DO UPDATE SET doc = EXCLUDED.doc`

// BulkUpsertFiles writes a slice of file records in one round trip as an
// unordered multi-statement batch (`pgx.Batch`): a failure on one row is
// recorded in the returned slice without aborting the rest, the nearest pgx
// equivalent of an "ordered-false bulk upsert", grounded on the teacher's
// tolerance for partial release_files failures
// (internal/store/release_files.go).
func (s *Store) BulkUpsertFiles(ctx context.Context, records []*domain.FileRecord) []error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	marshalErrs := make([]error, len(records))
	for i, f := range records {
		doc, err := json.Marshal(f)
		if err != nil {
			marshalErrs[i] = fmt.Errorf("marshal %s/%s: %w", f.DatasetID, f.RelPath, err)
			batch.Queue(`SELECT 1 WHERE FALSE`)
			continue
		}
		batch.Queue(upsertSQL, f.DatasetID, f.RelPath, doc)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	errs := make([]error, len(records))
	for i := range records {
		_, err := results.Exec()
		switch {
		case marshalErrs[i] != nil:
			errs[i] = marshalErrs[i]
		case err != nil:
			errs[i] = fmt.Errorf("upsert %s/%s: %w", records[i].DatasetID, records[i].RelPath, err)
		}
	}
	return errs
}
