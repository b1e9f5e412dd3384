package provider

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxPreviewBytes is the amount of a candidate page fetched before deciding
// whether it is an HTML listing to scrape, per spec.md §4.1.
const maxPreviewBytes = 512 * 1024

// knownDataSuffixes short-circuits the preview step when the URL's path
// already names a known data file.
var knownDataSuffixes = []string{".zip", ".nii.gz", ".nii", ".dcm", ".png", ".jpg", ".jpeg"}

// suffixPriority ranks candidate links by file type, highest first, per
// spec.md §4.1's "zip > nii.gz > nii > dcm > image" ordering.
var suffixPriority = []struct {
	suffix string
	score  int
}{
	{".zip", 50},
	{".nii.gz", 40},
	{".nii", 30},
	{".dcm", 20},
	{".png", 10},
	{".jpg", 10},
	{".jpeg", 10},
}

// downloadBonus rewards links whose URL contains the word "download".
const downloadBonus = 10

// PlainHTTPProvider is the catch-all http(s) provider: it either fetches the
// URL directly (when it already names a data suffix), or previews up to 512 KiB, and if that preview looks like HTML scrapes
// anchor hrefs for the best-scoring same-host candidate, per spec.md §4.1's
// fourth provider.
type PlainHTTPProvider struct {
	client   *http.Client
	maxBytes int64
}

func NewPlainHTTPProvider(client *http.Client, maxBytes int64) *PlainHTTPProvider {
	return &PlainHTTPProvider{client: client, maxBytes: maxBytes}
}

func (p *PlainHTTPProvider) CanHandle(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

func hasKnownSuffix(path string) bool {
	lower := strings.ToLower(path)
	for _, suf := range knownDataSuffixes {
		if strings.HasSuffix(lower, suf) {
			return true
		}
	}
	return false
}

func (p *PlainHTTPProvider) Fetch(ctx context.Context, u *url.URL, outPath string) (FetchResult, error) {
	resolved := u.String()

	if !hasKnownSuffix(u.Path) {
		if best, ok := p.findBestCandidate(ctx, u); ok {
			resolved = best
		}
	}

	req, err := http.NewRequest(http.MethodGet, resolved, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if _, err := streamingGet(ctx, p.client, req, outPath, p.maxBytes); err != nil {
		return FetchResult{}, err
	}

	return FetchResult{
		Provider:    "plain_http",
		OriginalURL: u.String(),
		ResolvedURL: resolved,
	}, nil
}

// findBestCandidate previews u and, if the preview looks like HTML, scrapes
// anchor hrefs for the highest-scoring same-host candidate. Returns
// ok=false when the preview isn't HTML or no positively-scoring candidate
// exists, in which case the caller keeps the original URL.
func (p *PlainHTTPProvider) findBestCandidate(ctx context.Context, u *url.URL) (string, bool) {
	preview, err := fetchPreview(ctx, p.client, u.String(), maxPreviewBytes)
	if err != nil || !looksLikeHTML(preview) {
		return "", false
	}

	links := extractLinks(preview, u)

	var bestURL string
	bestScore := 0
	for _, link := range links {
		score := scoreLink(link)
		if score <= 0 {
			continue
		}
		if score > bestScore || (score == bestScore && bestURL != "" && len(link) < len(bestURL)) {
			bestScore = score
			bestURL = link
		}
	}
	if bestURL == "" {
		return "", false
	}
	return bestURL, true
}

func looksLikeHTML(preview []byte) bool {
	trimmed := bytes.TrimSpace(preview)
	lower := bytes.ToLower(trimmed)
	return bytes.Contains(lower, []byte("<html")) ||
		bytes.Contains(lower, []byte("<!doctype html")) ||
		bytes.Contains(lower, []byte("<body"))
}

// extractLinks walks the parsed HTML tree for anchor hrefs, resolves them
// against base, and keeps only absolute same-host links.
func extractLinks(preview []byte, base *url.URL) []string {
	doc, err := html.Parse(bytes.NewReader(preview))
	if err != nil {
		return nil
	}

	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			for _, a := range n.Attr {
				if a.Key != "href" {
					continue
				}
				ref, err := url.Parse(a.Val)
				if err != nil {
					continue
				}
				resolved := base.ResolveReference(ref)
				if strings.EqualFold(resolved.Host, base.Host) {
					out = append(out, resolved.String())
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func scoreLink(link string) int {
	lower := strings.ToLower(link)
	score := 0
	for _, sp := range suffixPriority {
		if strings.HasSuffix(lower, sp.suffix) {
			score = sp.score
			break
		}
	}
	if score == 0 {
		return 0
	}
	if strings.Contains(lower, "download") {
		score += downloadBonus
	}
	return score
}
