// Package cache stores fetched image bytes keyed by source identity, with
// get-or-populate semantics and lazy staleness detection.
package cache

import (
	"context"
	"errors"

	"imageserver/internal/catalog"
)

// ErrCacheIO reports a failure writing to or maintaining the cache's own
// storage, as opposed to failures fetching from the source.
var ErrCacheIO = errors.New("cache io failure")

// Store is the cache contract shared by both backends. Get returns the
// cached payload for a source, populating the cache first when needed.
//
// The returned byte slice is owned by the cache and never mutated after it
// is handed out; callers may read it concurrently without locking, and must
// not modify it.
type Store interface {
	// Get returns the payload and content type for src, fetching and
	// caching it if it is absent or stale.
	Get(ctx context.Context, src catalog.Source) ([]byte, string, error)

	// Len reports the number of usable cached entries, for diagnostics.
	Len() int

	// Ready reports whether the store can serve at least one entry.
	Ready() bool
}
