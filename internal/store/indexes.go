package store

import (
	"context"
	"fmt"

	"github.com/eswarib/biodatamine/internal/logger"
)

// EnsureIndexes creates the tables (if absent) and attempts uniqueness on
// datasets(dataset_id) and files(dataset_id, relpath). If the unique index
// cannot be created because of pre-existing duplicates, it falls back to a
// non-unique composite index and logs a warning — the pipeline then leans on
// upsert semantics for idempotence instead, per SPEC_FULL.md §4.8. This
// mirrors the teacher's migration runner treating "already satisfied" as a
// non-fatal outcome (internal/store/migrate.go).
func (s *Store) EnsureIndexes(ctx context.Context, log *logger.Logger) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			dataset_id TEXT PRIMARY KEY,
			doc JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			id BIGSERIAL PRIMARY KEY,
			dataset_id TEXT NOT NULL,
			relpath TEXT NOT NULL,
			doc JSONB NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure table: %w", err)
		}
	}

	_, err := s.pool.Exec(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS files_dataset_relpath_uniq ON files (dataset_id, relpath)`)
	if err != nil {
		log.Warn("could not create unique index on files(dataset_id, relpath), falling back to non-unique: %v", err)
		if _, fallbackErr := s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS files_dataset_relpath_idx ON files (dataset_id, relpath)`); fallbackErr != nil {
			return fmt.Errorf("fallback index: %w", fallbackErr)
		}
	}

	return nil
}
