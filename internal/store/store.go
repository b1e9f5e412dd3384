// Package store implements the abstract document-collection contract the
// pipeline needs (insert, delete-by-filter, streaming find, unordered bulk
// upsert) on top of Postgres JSONB columns via pgx. It generalises the
// teacher's batched-transaction-upsert shape (internal/store/release_files.go)
// from one release at a time to an arbitrary typed document.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store owns the connection pool and exposes the two collections the
// pipeline needs: Datasets and Files.
type Store struct {
	pool *pgxpool.Pool
}

func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Filter is a simple equality filter. Keys matching a collection's key
// columns compare directly; any other key compares against the JSONB
// document via `doc->>'key' = value`.
type Filter map[string]any

func (f Filter) whereClause(keyCols map[string]bool, startArg int) (string, []any) {
	if len(f) == 0 {
		return "TRUE", nil
	}
	var clauses []string
	var args []any
	arg := startArg
	for k, v := range f {
		if keyCols[k] {
			clauses = append(clauses, fmt.Sprintf("%s = $%d", k, arg))
		} else {
			clauses = append(clauses, fmt.Sprintf("doc->>'%s' = $%d", k, arg))
		}
		args = append(args, fmt.Sprintf("%v", v))
		arg++
	}
	return strings.Join(clauses, " AND "), args
}
