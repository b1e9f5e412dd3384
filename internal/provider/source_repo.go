package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/eswarib/biodatamine/internal/config"
)

// SourceRepoProvider matches github.com/<owner>/<repo>[/tree/<ref>] and
// resolves it to a zipball URL before streaming, per spec.md §4.1's second
// provider.
type SourceRepoProvider struct {
	cfg      config.SourceRepoConfig
	client   *http.Client
	maxBytes int64
}

func NewSourceRepoProvider(cfg config.SourceRepoConfig, client *http.Client, maxBytes int64) *SourceRepoProvider {
	return &SourceRepoProvider{cfg: cfg, client: client, maxBytes: maxBytes}
}

func (p *SourceRepoProvider) CanHandle(u *url.URL) bool {
	if !strings.EqualFold(u.Host, "github.com") {
		return false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	return len(parts) >= 2
}

// resolveZipball turns /<owner>/<repo>[/tree/<ref>] into the corresponding
// GitHub codeload zipball URL, defaulting ref to HEAD when absent.
func resolveZipball(u *url.URL) (string, error) {
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return "", fmt.Errorf("source repo url missing owner/repo: %s", u)
	}
	owner, repo := parts[0], parts[1]
	ref := "HEAD"
	if len(parts) >= 4 && parts[2] == "tree" {
		ref = parts[3]
	}
	return fmt.Sprintf("https://codeload.github.com/%s/%s/zip/%s", owner, repo, ref), nil
}

func (p *SourceRepoProvider) Fetch(ctx context.Context, u *url.URL, outPath string) (FetchResult, error) {
	resolved, err := resolveZipball(u)
	if err != nil {
		return FetchResult{}, err
	}

	req, err := http.NewRequest(http.MethodGet, resolved, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if p.cfg.Token != "" {
		req.Header.Set("Authorization", "token "+p.cfg.Token)
	}

	if _, err := streamingGet(ctx, p.client, req, outPath, p.maxBytes); err != nil {
		return FetchResult{}, err
	}

	return FetchResult{
		Provider:    "source_repo",
		OriginalURL: u.String(),
		ResolvedURL: resolved,
	}, nil
}
