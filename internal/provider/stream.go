package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/eswarib/biodatamine/internal/domain"
)

// chunkSize matches spec.md §4.1's "stream in ~1 MiB chunks".
const chunkSize = 1 << 20

// cappedWriter aborts with domain.ErrDownloadTooLarge as soon as the
// cumulative byte count would exceed limit, without ever writing the
// offending chunk — generalises the teacher's file_writer.go single-writer-
// per-handle discipline from segment writes to one sequential download.
type cappedWriter struct {
	w       io.Writer
	limit   int64
	written int64
}

func (c *cappedWriter) Write(p []byte) (int, error) {
	if c.written+int64(len(p)) > c.limit {
		return 0, domain.ErrDownloadTooLarge
	}
	n, err := c.w.Write(p)
	c.written += int64(n)
	return n, err
}

// streamingGet executes req and copies the response body to outPath in
// chunkSize-sized reads, capped at maxBytes. The destination file is synced
// and closed before returning, mirroring file_writer.go's
// sync-then-close-on-completion discipline.
func streamingGet(ctx context.Context, client *http.Client, req *http.Request, outPath string, maxBytes int64) (int64, error) {
	req = req.WithContext(ctx)
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("fetch %s: unexpected status %s", req.URL, resp.Status)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	cw := &cappedWriter{w: f, limit: maxBytes}
	buf := make([]byte, chunkSize)
	written, err := io.CopyBuffer(cw, resp.Body, buf)
	if err != nil {
		return written, err
	}
	if err := f.Sync(); err != nil {
		return written, fmt.Errorf("sync %s: %w", outPath, err)
	}
	return written, nil
}

// fetchPreview reads up to maxPreview bytes of the response body without
// ever touching disk — used by PlainHTTPProvider to sniff whether a URL
// resolves to an HTML listing page before committing to a full download.
func fetchPreview(ctx context.Context, client *http.Client, u string, maxPreview int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("preview %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("preview %s: unexpected status %s", u, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPreview))
}
