package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/eswarib/biodatamine/internal/config"
)

// AuthenticatedHTTPProvider matches any http(s) URL whose host has
// configured credentials or extra headers, per spec.md §4.1's third
// provider. It must be registered ahead of PlainHTTPProvider so hosts with
// credentials skip the HTML-scraping heuristic entirely.
type AuthenticatedHTTPProvider struct {
	creds    map[string]config.ProviderCredentials
	client   *http.Client
	maxBytes int64
}

func NewAuthenticatedHTTPProvider(creds []config.ProviderCredentials, client *http.Client, maxBytes int64) *AuthenticatedHTTPProvider {
	m := make(map[string]config.ProviderCredentials, len(creds))
	for _, c := range creds {
		if c.Host != "" {
			m[strings.ToLower(c.Host)] = c
		}
	}
	return &AuthenticatedHTTPProvider{creds: m, client: client, maxBytes: maxBytes}
}

func (p *AuthenticatedHTTPProvider) CanHandle(u *url.URL) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	_, ok := p.creds[strings.ToLower(u.Host)]
	return ok
}

func (p *AuthenticatedHTTPProvider) Fetch(ctx context.Context, u *url.URL, outPath string) (FetchResult, error) {
	cred := p.creds[strings.ToLower(u.Host)]

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return FetchResult{}, err
	}
	switch {
	case cred.Token != "":
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	case cred.Username != "" || cred.Password != "":
		req.SetBasicAuth(cred.Username, cred.Password)
	}
	for k, v := range cred.Headers {
		req.Header.Set(k, v)
	}

	if _, err := streamingGet(ctx, p.client, req, outPath, p.maxBytes); err != nil {
		return FetchResult{}, err
	}

	return FetchResult{
		Provider:    "authenticated_http",
		OriginalURL: u.String(),
		ResolvedURL: u.String(),
	}, nil
}
