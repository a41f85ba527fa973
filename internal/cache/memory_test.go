package cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"imageserver/internal/catalog"
	"imageserver/internal/fetch"
	"imageserver/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Output: io.Discard})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestMemoryEagerPopulateAndGet(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	writeFile(t, a, "payload-a")

	cat, err := catalog.Resolve([]string{a})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	m, err := NewMemory(context.Background(), cat, fetch.New(time.Second), testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, contentType, err := m.Get(context.Background(), cat.At(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, []byte("payload-a")) {
		t.Error("cached bytes differ from source")
	}
	if contentType != "image/png" {
		t.Errorf("expected image/png, got %s", contentType)
	}
	if m.Len() != 1 || !m.Ready() {
		t.Errorf("expected 1 usable entry and ready, got len=%d ready=%v", m.Len(), m.Ready())
	}
}

func TestMemorySnapshotIgnoresLaterChanges(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	writeFile(t, a, "original")

	cat, err := catalog.Resolve([]string{a})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	m, err := NewMemory(context.Background(), cat, fetch.New(time.Second), testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Changing the file after startup must not change what is served
	writeFile(t, a, "rewritten after startup")

	data, _, err := m.Get(context.Background(), cat.At(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, []byte("original")) {
		t.Error("expected snapshot bytes, got refreshed bytes")
	}
}

func TestMemoryDropsFailedSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	writeFile(t, a, "payload-a")

	cat, err := catalog.Resolve([]string{a, srv.URL + "/missing.png"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	m, err := NewMemory(context.Background(), cat, fetch.New(time.Second), testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Len() != 1 {
		t.Fatalf("expected failed source dropped, len=%d", m.Len())
	}
	if _, _, err := m.Get(context.Background(), cat.At(1)); !errors.Is(err, fetch.ErrNotFound) {
		t.Errorf("expected ErrNotFound for dropped source, got %v", err)
	}
	// The usable source still serves
	if _, _, err := m.Get(context.Background(), cat.At(0)); err != nil {
		t.Errorf("unexpected error for usable source: %v", err)
	}
}

func TestMemoryFailsWhenNothingUsable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cat, err := catalog.Resolve([]string{srv.URL + "/missing.png"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := NewMemory(context.Background(), cat, fetch.New(time.Second), testLogger()); err == nil {
		t.Fatal("expected error when no source is usable")
	}
}
