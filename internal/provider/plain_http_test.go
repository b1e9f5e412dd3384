package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
)

func TestScoreLink_RanksBySuffixPriorityPlusDownloadBonus(t *testing.T) {
	tests := []struct {
		link string
		want int
	}{
		{"https://x.com/a.zip", 50},
		{"https://x.com/a.nii.gz", 40},
		{"https://x.com/a.nii", 30},
		{"https://x.com/a.dcm", 20},
		{"https://x.com/a.png", 10},
		{"https://x.com/readme.txt", 0},
		{"https://x.com/download/a.zip", 60},
	}
	for _, tt := range tests {
		if got := scoreLink(tt.link); got != tt.want {
			t.Errorf("scoreLink(%q) = %d, want %d", tt.link, got, tt.want)
		}
	}
}

func TestLooksLikeHTML(t *testing.T) {
	if !looksLikeHTML([]byte("<!DOCTYPE html><html><body>hi</body></html>")) {
		t.Error("expected html doctype to be detected")
	}
	if looksLikeHTML([]byte("PK\x03\x04 raw zip bytes")) {
		t.Error("expected raw zip bytes to not look like html")
	}
}

func TestFindBestCandidate_PrefersHighestScoreThenShortestURL(t *testing.T) {
	page := `<html><body>
		<a href="/other/notes.txt">notes</a>
		<a href="/data/subject-one/scan.dcm">scan 1</a>
		<a href="/x/scan.dcm">scan 2</a>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	p := NewPlainHTTPProvider(srv.Client(), 1<<20)
	u, _ := url.Parse(srv.URL + "/index.html")

	best, ok := p.findBestCandidate(context.Background(), u)
	if !ok {
		t.Fatal("expected a candidate to be found")
	}
	want := srv.URL + "/x/scan.dcm"
	if best != want {
		t.Fatalf("best = %q, want %q (shortest of equally-scored candidates)", best, want)
	}
}

func TestPlainHTTPProvider_Fetch_SkipsPreviewForKnownSuffix(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("zip-bytes"))
	}))
	defer srv.Close()

	p := NewPlainHTTPProvider(srv.Client(), 1<<20)
	u, _ := url.Parse(srv.URL + "/dataset.zip")

	dir := t.TempDir()
	out := filepath.Join(dir, "out.bin")
	result, err := p.Fetch(context.Background(), u, out)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.ResolvedURL != u.String() {
		t.Errorf("ResolvedURL = %q, want original URL unchanged", result.ResolvedURL)
	}
	if hits != 1 {
		t.Fatalf("expected exactly one request (no preview), got %d", hits)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}
