package provider

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/eswarib/biodatamine/internal/domain"
)

func TestStreamingGet_WritesBodyToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.bin")
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)

	n, err := streamingGet(context.Background(), srv.Client(), req, out, 1<<20)
	if err != nil {
		t.Fatalf("streamingGet: %v", err)
	}
	if n != int64(len("hello world")) {
		t.Errorf("n = %d, want %d", n, len("hello world"))
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Errorf("file content = %q", got)
	}
}

func TestStreamingGet_AbortsOverMaxBytes(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 2048)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.bin")
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)

	_, err := streamingGet(context.Background(), srv.Client(), req, out, 100)
	if !errors.Is(err, domain.ErrDownloadTooLarge) {
		t.Fatalf("expected ErrDownloadTooLarge, got %v", err)
	}
}

func TestStreamingGet_ErrorsOnNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.bin")
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)

	if _, err := streamingGet(context.Background(), srv.Client(), req, out, 1<<20); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}

func TestCappedWriter_StopsBeforeWritingOffendingChunk(t *testing.T) {
	var buf bytes.Buffer
	cw := &cappedWriter{w: &buf, limit: 10}

	if _, err := cw.Write([]byte("12345")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := cw.Write([]byte("678910")); !errors.Is(err, domain.ErrDownloadTooLarge) {
		t.Fatalf("expected ErrDownloadTooLarge, got %v", err)
	}
	if buf.String() != "12345" {
		t.Fatalf("buf = %q, want only the first chunk written", buf.String())
	}
}
