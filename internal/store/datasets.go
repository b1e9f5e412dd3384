package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eswarib/biodatamine/internal/domain"
)

// CreateDataset inserts a new dataset document. Callers are expected to set
// Status=processing and Meta.Stage=enqueued before calling this, per
// SPEC_FULL.md §6's input contract.
func (s *Store) CreateDataset(ctx context.Context, d *domain.Dataset) error {
	doc, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO datasets (dataset_id, doc, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (dataset_id) DO NOTHING`,
		d.DatasetID, doc, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}
	return nil
}

// GetDataset fetches one dataset by its external id, or (nil, nil) if absent.
func (s *Store) GetDataset(ctx context.Context, datasetID string) (*domain.Dataset, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM datasets WHERE dataset_id = $1`, datasetID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dataset: %w", err)
	}
	var d domain.Dataset
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("unmarshal dataset: %w", err)
	}
	return &d, nil
}

// ReplaceDataset overwrites the whole document — used at every stage
// transition (prepare, analyze_files, finalize, failed) so that each
// meta.stage transition is observable as a single atomic write, per
// SPEC_FULL.md §5's ordering guarantees.
func (s *Store) ReplaceDataset(ctx context.Context, d *domain.Dataset) error {
	doc, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE datasets SET doc = $2 WHERE dataset_id = $1`,
		d.DatasetID, doc)
	if err != nil {
		return fmt.Errorf("replace dataset: %w", err)
	}
	return nil
}

// StreamProcessing yields up to limit datasets with status=processing,
// ordered by created_at descending — used by recovery (SPEC_FULL.md §4.7).
func (s *Store) StreamProcessing(ctx context.Context, limit int) ([]*domain.Dataset, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM datasets WHERE doc->>'status' = $1 ORDER BY created_at DESC LIMIT $2`,
		string(dStatusProcessing), limit)
	if err != nil {
		return nil, fmt.Errorf("stream processing datasets: %w", err)
	}
	defer rows.Close()

	var out []*domain.Dataset
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		var d domain.Dataset
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("unmarshal dataset: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

const dStatusProcessing = "processing"
