package provider

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/eswarib/biodatamine/internal/domain"
)

type fakeProvider struct {
	handles bool
	name    string
}

func (f fakeProvider) CanHandle(*url.URL) bool { return f.handles }
func (f fakeProvider) Fetch(ctx context.Context, u *url.URL, outPath string) (FetchResult, error) {
	return FetchResult{Provider: f.name}, nil
}

func TestRegistry_FirstMatchWins(t *testing.T) {
	r := NewRegistry(
		fakeProvider{handles: false, name: "first"},
		fakeProvider{handles: true, name: "second"},
		fakeProvider{handles: true, name: "third"},
	)

	u, _ := url.Parse("https://example.com/dataset")
	result, err := r.Resolve(context.Background(), u, "/tmp/out")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Provider != "second" {
		t.Fatalf("Provider = %q, want second", result.Provider)
	}
}

func TestRegistry_NoMatchReturnsErrNoProvider(t *testing.T) {
	r := NewRegistry(fakeProvider{handles: false, name: "first"})

	u, _ := url.Parse("https://example.com/dataset")
	_, err := r.Resolve(context.Background(), u, "/tmp/out")
	if !errors.Is(err, domain.ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}
