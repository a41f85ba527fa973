package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"imageserver/internal/api/middleware"
	"imageserver/internal/cache"
	"imageserver/internal/catalog"
	"imageserver/internal/fetch"
	"imageserver/internal/logger"
	"imageserver/internal/selector"
	"imageserver/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger.SetDefaultLogger(logger.New(&logger.Config{Level: "error", Output: io.Discard}))

	dir := t.TempDir()
	for _, f := range []struct{ name, content string }{
		{"a.png", "A"},
		{"b.jpg", "B"},
	} {
		if err := os.WriteFile(filepath.Join(dir, f.name), []byte(f.content), 0o644); err != nil {
			t.Fatalf("write %s: %v", f.name, err)
		}
	}

	cat, err := catalog.Resolve([]string{dir})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	store, err := cache.NewMemory(context.Background(), cat, fetch.New(time.Second), logger.GetDefault())
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	svc := service.NewCatalogService(cat, store, selector.New(), logger.GetDefault())

	return SetupRouter(svc, "test", middleware.CORSConfig{AllowAllOrigins: true})
}

func doRequest(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
	if body["catalog_size"].(float64) != 2 {
		t.Errorf("expected catalog_size 2, got %v", body["catalog_size"])
	}
}

func TestWelcomeEndpoint(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(t, router, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRandomEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, "/random")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "image/png" && ct != "image/jpeg" {
		t.Errorf("unexpected content type %s", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("expected image bytes in body")
	}
}

func TestSequentialEndpointOrder(t *testing.T) {
	router := newTestRouter(t)

	// Catalog order is lexicographic: a.png then b.jpg, wrapping after
	wantBodies := []string{"A", "B", "A"}
	for i, want := range wantBodies {
		w := doRequest(t, router, "/sequential")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
		if w.Body.String() != want {
			t.Errorf("request %d: expected body %q, got %q", i, want, w.Body.String())
		}
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	router := newTestRouter(t)
	if w := doRequest(t, router, "/nope"); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestRequestIDHeaderSet(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(t, router, "/health")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}
