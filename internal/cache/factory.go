package cache

import (
	"context"
	"fmt"
	"strings"

	"imageserver/internal/catalog"
	"imageserver/internal/fetch"
	"imageserver/internal/logger"
	"imageserver/internal/repository"
)

// Backend identifies a cache implementation.
type Backend string

const (
	BackendInMemory   Backend = "in_memory"
	BackendFileSystem Backend = "file_system"
)

// ParseBackend validates a configured backend token.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case BackendInMemory:
		return BackendInMemory, nil
	case BackendFileSystem:
		return BackendFileSystem, nil
	default:
		return "", fmt.Errorf("unknown cache backend: %q", s)
	}
}

// Options carries backend-specific wiring for New.
type Options struct {
	// Dir is the private cache directory (file_system backend).
	Dir string
	// Entries is the cache index repository (file_system backend).
	Entries *repository.CacheEntryRepository
}

// New creates the Store selected by backend. The in-memory backend fetches
// every catalog entry eagerly before returning; the file-system backend
// returns immediately and populates lazily.
func New(ctx context.Context, backend Backend, cat *catalog.Catalog, fetcher *fetch.Fetcher, opts Options, log *logger.Logger) (Store, error) {
	switch backend {
	case BackendInMemory:
		return NewMemory(ctx, cat, fetcher, log)
	case BackendFileSystem:
		return NewFileSystem(opts.Dir, fetcher, opts.Entries, log)
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", backend)
	}
}
