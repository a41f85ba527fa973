package cache

import (
	"context"
	"fmt"

	"imageserver/internal/catalog"
	"imageserver/internal/fetch"
	"imageserver/internal/logger"
)

type memoryEntry struct {
	data        []byte
	contentType string
}

// Memory is the in-memory cache backend. Every catalog entry is fetched
// once at construction time; the entry map is immutable afterwards, so reads
// need no locking. The snapshot is never revalidated: a source that changes
// on disk keeps serving its startup bytes until the process restarts.
type Memory struct {
	entries map[string]memoryEntry
}

// NewMemory eagerly fetches all catalog sources. A failed fetch drops that
// source from the usable set and is logged, not retried. Construction fails
// only when no source at all could be fetched.
func NewMemory(ctx context.Context, cat *catalog.Catalog, fetcher *fetch.Fetcher, log *logger.Logger) (*Memory, error) {
	entries := make(map[string]memoryEntry, cat.Len())

	for _, src := range cat.Sources() {
		res, err := fetcher.Fetch(ctx, src)
		if err != nil {
			log.WithError(err).WithField(logger.FieldLocator, src.Locator).
				Warn("dropping source from in-memory cache")
			continue
		}
		entries[src.Locator] = memoryEntry{data: res.Data, contentType: res.ContentType}
		log.WithFields(logger.Fields{
			logger.FieldLocator: src.Locator,
			logger.FieldSize:    len(res.Data),
		}).Debug("cached source in memory")
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no image sources could be loaded into the in-memory cache")
	}

	log.WithField(logger.FieldCount, len(entries)).Info("in-memory cache populated")
	return &Memory{entries: entries}, nil
}

// Get returns the snapshot bytes for src. It performs no I/O; a source that
// failed eager population stays unavailable until restart.
func (m *Memory) Get(_ context.Context, src catalog.Source) ([]byte, string, error) {
	e, ok := m.entries[src.Locator]
	if !ok {
		return nil, "", fmt.Errorf("source %s was not cached at startup: %w", src.Locator, fetch.ErrNotFound)
	}
	return e.data, e.contentType, nil
}

// Len returns the number of usable entries.
func (m *Memory) Len() int {
	return len(m.entries)
}

// Ready reports whether the snapshot holds at least one entry.
func (m *Memory) Ready() bool {
	return len(m.entries) > 0
}
