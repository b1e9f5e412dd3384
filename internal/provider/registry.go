package provider

import (
	"context"
	"net/url"

	"github.com/eswarib/biodatamine/internal/domain"
)

// Registry holds providers in match-priority order, most specific first.
// It is the generalisation of the teacher's indexer.BaseManager/nntp.Manager
// ordered-iteration pattern from "provider per news server" to "provider per
// fetch strategy".
type Registry struct {
	providers []Provider
}

// NewRegistry returns a registry that tries providers in the given order.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// Resolve picks the first provider whose CanHandle matches and fetches
// through it. Returns domain.ErrNoProvider if none match.
func (r *Registry) Resolve(ctx context.Context, u *url.URL, outPath string) (FetchResult, error) {
	for _, p := range r.providers {
		if p.CanHandle(u) {
			return p.Fetch(ctx, u, outPath)
		}
	}
	return FetchResult{}, domain.ErrNoProvider
}
