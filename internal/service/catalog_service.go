// Package service exposes the catalog façade: the one entry point the HTTP
// layer calls to get the next image's bytes and content type.
package service

import (
	"context"
	"fmt"

	"imageserver/internal/cache"
	"imageserver/internal/catalog"
	"imageserver/internal/logger"
	"imageserver/internal/selector"
)

// CatalogService composes the catalog, the selector, and the cache store.
// A request for one logical image either succeeds with that image or fails
// visibly; the service never falls back to a different source on error.
type CatalogService struct {
	catalog *catalog.Catalog
	store   cache.Store
	picker  *selector.Selector
	log     *logger.Logger
}

// NewCatalogService creates the façade.
// Parameters:
//   - cat: resolved source catalog, must be non-empty.
//   - store: active cache backend.
//   - picker: shared index selector.
//   - log: service logger.
// Returns:
//   - *CatalogService: initialized façade.
func NewCatalogService(cat *catalog.Catalog, store cache.Store, picker *selector.Selector, log *logger.Logger) *CatalogService {
	return &CatalogService{catalog: cat, store: store, picker: picker, log: log}
}

// Serve picks the next index for mode, maps it to a source, and returns the
// cached bytes and content type. Errors are scoped to this request; they do
// not move the sequential cursor back or affect other in-flight requests.
func (s *CatalogService) Serve(ctx context.Context, mode selector.Mode) ([]byte, string, error) {
	idx := s.picker.Pick(s.catalog.Len(), mode)
	src := s.catalog.At(idx)

	data, contentType, err := s.store.Get(ctx, src)
	if err != nil {
		return nil, "", fmt.Errorf("serve %s: %w", src.Locator, err)
	}
	return data, contentType, nil
}

// Size returns the catalog length, for health and diagnostics.
func (s *CatalogService) Size() int {
	return s.catalog.Len()
}

// Ready reports whether the service can serve: the catalog is non-empty and
// the backend holds at least one usable entry (or populates lazily).
func (s *CatalogService) Ready() bool {
	return s.catalog.Len() > 0 && s.store.Ready()
}

// CachedEntries returns the backend's usable entry count, for diagnostics.
func (s *CatalogService) CachedEntries() int {
	return s.store.Len()
}
