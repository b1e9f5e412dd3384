package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/eswarib/biodatamine/internal/config"
)

// DatasetHostProvider matches a configured archive-hosting dataset host
// (Kaggle-style) with a /datasets/<owner>/<name> path prefix and fetches
// through an authenticated client, per spec.md §4.1's first provider.
type DatasetHostProvider struct {
	cfg      config.DatasetHostConfig
	client   *http.Client
	maxBytes int64
}

func NewDatasetHostProvider(cfg config.DatasetHostConfig, client *http.Client, maxBytes int64) *DatasetHostProvider {
	return &DatasetHostProvider{cfg: cfg, client: client, maxBytes: maxBytes}
}

func (p *DatasetHostProvider) CanHandle(u *url.URL) bool {
	if p.cfg.Host == "" || !strings.EqualFold(u.Host, p.cfg.Host) {
		return false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	return len(parts) >= 3 && parts[0] == "datasets"
}

func (p *DatasetHostProvider) Fetch(ctx context.Context, u *url.URL, outPath string) (FetchResult, error) {
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return FetchResult{}, err
	}
	if p.cfg.Username != "" && p.cfg.APIKey != "" {
		req.SetBasicAuth(p.cfg.Username, p.cfg.APIKey)
	}

	if _, err := streamingGet(ctx, p.client, req, outPath, p.maxBytes); err != nil {
		return FetchResult{}, err
	}

	return FetchResult{
		Provider:    "dataset_host",
		OriginalURL: u.String(),
		ResolvedURL: u.String(),
	}, nil
}
