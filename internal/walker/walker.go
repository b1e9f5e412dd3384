// Package walker enumerates regular files under a scan root, capped at a
// fixed count so a dataset with unexpectedly many files truncates silently
// instead of exhausting memory or disk, per spec.md §8's file-count-cap
// boundary case.
package walker

import (
	"context"
	"io/fs"
	"path/filepath"
)

// Walk sends absolute paths of every regular file under root on the
// returned channel, stopping after maxFiles entries. truncated reports
// whether the cap was hit before the walk would otherwise have finished.
// The channel is closed once the walk (or the cap) ends; ctx cancellation
// stops the walk early without signalling truncation.
func Walk(ctx context.Context, root string, maxFiles int) (<-chan string, *bool) {
	out := make(chan string)
	truncated := new(bool)

	go func() {
		defer close(out)

		count := 0
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if count >= maxFiles {
				*truncated = true
				return filepath.SkipAll
			}

			select {
			case out <- path:
				count++
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	return out, truncated
}
