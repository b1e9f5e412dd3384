// Package workspace prepares a dataset's on-disk working directory: fetch
// through the provider registry, detect and safely extract an archive (or
// copy the bare download), and hand back the root the file walker should
// scan.
package workspace

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/eswarib/biodatamine/internal/provider"
)

// PreparedWorkspace is the outcome of Prepare, persisted into
// Dataset.Meta.Ingest/Resolution and used by the walker as its scan root.
type PreparedWorkspace struct {
	Provider    string
	OriginalURL string
	ResolvedURL string
	ScanRoot    string
}

// Preparer implements spec.md §4.2's six-step recipe.
type Preparer struct {
	registry          *provider.Registry
	dataRoot          string
	maxExtractedBytes int64
}

func NewPreparer(registry *provider.Registry, dataRoot string, maxExtractedBytes int64) *Preparer {
	return &Preparer{registry: registry, dataRoot: dataRoot, maxExtractedBytes: maxExtractedBytes}
}

// Prepare creates <data_root>/<dataset_id>/, fetches rawURL through the
// provider registry, and extracts or copies the result into extracted/.
func (p *Preparer) Prepare(ctx context.Context, datasetID, rawURL string) (PreparedWorkspace, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PreparedWorkspace{}, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	datasetDir := filepath.Join(p.dataRoot, datasetID)
	extractedDir := filepath.Join(datasetDir, "extracted")
	if err := os.MkdirAll(extractedDir, 0o755); err != nil {
		return PreparedWorkspace{}, fmt.Errorf("mkdir workspace: %w", err)
	}

	downloadPath := filepath.Join(datasetDir, "download.bin")
	result, err := p.registry.Resolve(ctx, u, downloadPath)
	if err != nil {
		return PreparedWorkspace{}, err
	}

	isZip, err := looksLikeZip(downloadPath, result.ResolvedURL)
	if err != nil {
		return PreparedWorkspace{}, fmt.Errorf("sniff archive: %w", err)
	}

	if isZip {
		if err := extractZip(downloadPath, extractedDir, p.maxExtractedBytes); err != nil {
			return PreparedWorkspace{}, err
		}
	} else {
		safeName := deriveSafeName(lastPathSegment(result.ResolvedURL))
		if err := moveFile(downloadPath, filepath.Join(extractedDir, safeName)); err != nil {
			return PreparedWorkspace{}, fmt.Errorf("place download: %w", err)
		}
	}

	return PreparedWorkspace{
		Provider:    result.Provider,
		OriginalURL: result.OriginalURL,
		ResolvedURL: result.ResolvedURL,
		ScanRoot:    extractedDir,
	}, nil
}

// lastPathSegment extracts the final URL path segment, stripped of query
// and fragment, for deriveSafeName to sanitize.
func lastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	trimmed := strings.TrimRight(u.Path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx == -1 {
		return trimmed
	}
	return trimmed[idx+1:]
}
