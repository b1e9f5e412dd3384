// Package provider selects a fetch strategy per URL and streams the result
// to disk under a byte cap. The registry is an ordered slice rather than a
// map — first usable entry wins — mirroring the teacher's NNTP/indexer
// manager iteration (internal/provider/manager.go, internal/nntp/manager.go).
package provider

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// FetchResult records what a provider actually did, independent of how it
// matched — the controller persists this verbatim into
// Dataset.Meta.Ingest/Resolution.
type FetchResult struct {
	Provider    string
	OriginalURL string
	ResolvedURL string
}

// Provider is a single fetch strategy. CanHandle is a cheap, side-effect
// free predicate; Fetch does the actual network I/O and must respect ctx
// cancellation and stop once outPath holds as many bytes as it is allowed.
type Provider interface {
	CanHandle(u *url.URL) bool
	Fetch(ctx context.Context, u *url.URL, outPath string) (FetchResult, error)
}

// DefaultHTTPClient is shared by every provider; a generous timeout since
// downloads are capped by byte count, not wall clock.
func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Minute}
}
