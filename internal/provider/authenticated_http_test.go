package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/eswarib/biodatamine/internal/config"
)

func TestAuthenticatedHTTPProvider_CanHandleOnlyConfiguredHosts(t *testing.T) {
	p := NewAuthenticatedHTTPProvider([]config.ProviderCredentials{
		{Host: "private.example.com", Token: "secret"},
	}, nil, 0)

	configured, _ := url.Parse("https://private.example.com/file.zip")
	if !p.CanHandle(configured) {
		t.Fatal("expected CanHandle true for a configured host")
	}

	unconfigured, _ := url.Parse("https://public.example.com/file.zip")
	if p.CanHandle(unconfigured) {
		t.Fatal("expected CanHandle false for an unconfigured host")
	}
}

func TestAuthenticatedHTTPProvider_SendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	srvURL, _ := url.Parse(srv.URL)
	p := NewAuthenticatedHTTPProvider([]config.ProviderCredentials{
		{Host: srvURL.Host, Token: "tok123"},
	}, srv.Client(), 1<<20)

	dir := t.TempDir()
	out := filepath.Join(dir, "out.bin")
	if _, err := p.Fetch(context.Background(), srvURL, out); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("Authorization header = %q, want Bearer tok123", gotAuth)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
}
