package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"imageserver/internal/catalog"
	"imageserver/internal/domain"
	"imageserver/internal/fetch"
	"imageserver/internal/logger"
	"imageserver/internal/repository"
)

// FileSystem is the disk-backed cache backend. Payloads live in a private
// directory as files named by the locator digest; the matching fingerprint
// and checksum records live in a SQLite index.
//
// Population is lazy and serialized per key: concurrent requests for the
// same cold key share one fetch, while different keys populate in parallel.
// Local sources are revalidated on every request against their current
// mtime+size; a mismatch evicts the entry and refetches before returning.
// Remote sources carry no revalidation signal and are served from cache for
// the life of the process.
type FileSystem struct {
	dir     string
	fetcher *fetch.Fetcher
	entries *repository.CacheEntryRepository
	group   singleflight.Group
	log     *logger.Logger
}

type payload struct {
	data        []byte
	contentType string
}

// NewFileSystem creates the backend rooted at dir, creating it if needed.
func NewFileSystem(dir string, fetcher *fetch.Fetcher, entries *repository.CacheEntryRepository, log *logger.Logger) (*FileSystem, error) {
	if dir == "" {
		return nil, fmt.Errorf("file_system cache requires a cache directory")
	}
	if entries == nil {
		return nil, fmt.Errorf("file_system cache requires a cache index repository")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory %s: %v: %w", dir, err, ErrCacheIO)
	}
	return &FileSystem{dir: dir, fetcher: fetcher, entries: entries, log: log}, nil
}

// Digest returns the stable cache key for a normalized locator: its hex
// SHA-256, used both as the payload file name and the index primary key.
func Digest(locator string) string {
	sum := sha256.Sum256([]byte(locator))
	return hex.EncodeToString(sum[:])
}

// Get returns the payload for src, populating or refreshing the cache as
// needed. Lookups for the same key are collapsed into a single fetch.
func (c *FileSystem) Get(ctx context.Context, src catalog.Source) ([]byte, string, error) {
	digest := Digest(src.Locator)
	v, err, _ := c.group.Do(digest, func() (interface{}, error) {
		return c.load(ctx, src, digest)
	})
	if err != nil {
		return nil, "", err
	}
	p := v.(*payload)
	return p.data, p.contentType, nil
}

// load serves a single collapsed request: validate any existing entry, evict
// it when stale or damaged, and populate when nothing usable remains.
func (c *FileSystem) load(ctx context.Context, src catalog.Source, digest string) (*payload, error) {
	entry, err := c.entries.Get(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("cache index lookup for %s: %v: %w", src.Locator, err, ErrCacheIO)
	}

	if entry != nil {
		if p, ok := c.readValid(src, entry); ok {
			return p, nil
		}
		c.evict(ctx, digest, src.Locator)
	}

	return c.populate(ctx, src, digest)
}

// readValid returns the cached payload when the entry is both fresh and
// intact. Any failure reports the entry unusable rather than an error; the
// caller evicts and refetches.
func (c *FileSystem) readValid(src catalog.Source, entry *domain.CacheEntry) (*payload, bool) {
	if src.Kind == catalog.KindLocal {
		fp, err := fetch.StatFingerprint(src)
		if err != nil || fp.ModTimeNano != entry.ModTimeNano || fp.Size != entry.Size {
			return nil, false
		}
	}

	data, err := os.ReadFile(c.payloadPath(entry.Digest))
	if err != nil {
		return nil, false
	}
	if checksum(data) != entry.Checksum {
		c.log.WithField(logger.FieldLocator, src.Locator).
			Warn("checksum mismatch for cached payload, evicting")
		return nil, false
	}

	return &payload{data: data, contentType: entry.ContentType}, true
}

// populate fetches the source and writes payload plus index record. A
// transient remote failure is retried once; repeated failure is surfaced.
func (c *FileSystem) populate(ctx context.Context, src catalog.Source, digest string) (*payload, error) {
	res, err := c.fetcher.Fetch(ctx, src)
	if err != nil && errors.Is(err, fetch.ErrUnreachable) && ctx.Err() == nil {
		c.log.WithError(err).WithField(logger.FieldLocator, src.Locator).
			Debug("retrying transient fetch failure")
		res, err = c.fetcher.Fetch(ctx, src)
	}
	if err != nil {
		return nil, err
	}

	if err := c.writePayload(digest, res.Data); err != nil {
		return nil, err
	}

	entry := &domain.CacheEntry{
		Digest:      digest,
		Locator:     src.Locator,
		Kind:        string(src.Kind),
		ContentType: res.ContentType,
		Checksum:    checksum(res.Data),
		ModTimeNano: res.Fingerprint.ModTimeNano,
		Size:        res.Fingerprint.Size,
		ETag:        res.Fingerprint.ETag,
		CreatedAt:   time.Now(),
	}
	if err := c.entries.Upsert(ctx, entry); err != nil {
		os.Remove(c.payloadPath(digest))
		return nil, fmt.Errorf("cache index upsert for %s: %v: %w", src.Locator, err, ErrCacheIO)
	}

	c.log.WithFields(logger.Fields{
		logger.FieldLocator: src.Locator,
		logger.FieldSize:    len(res.Data),
	}).Debug("populated file-system cache")

	return &payload{data: res.Data, contentType: res.ContentType}, nil
}

// writePayload writes to a temp file in the cache directory and renames it
// into place, so readers never observe a partial payload.
func (c *FileSystem) writePayload(digest string, data []byte) error {
	tmp := filepath.Join(c.dir, uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache payload: %v: %w", err, ErrCacheIO)
	}
	if err := os.Rename(tmp, c.payloadPath(digest)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename cache payload: %v: %w", err, ErrCacheIO)
	}
	return nil
}

func (c *FileSystem) evict(ctx context.Context, digest, locator string) {
	if err := c.entries.Delete(ctx, digest); err != nil {
		c.log.WithError(err).WithField(logger.FieldLocator, locator).
			Warn("failed to delete cache index entry")
	}
	if err := os.Remove(c.payloadPath(digest)); err != nil && !os.IsNotExist(err) {
		c.log.WithError(err).WithField(logger.FieldLocator, locator).
			Warn("failed to delete cache payload")
	}
}

func (c *FileSystem) payloadPath(digest string) string {
	return filepath.Join(c.dir, digest)
}

// Len returns the number of indexed entries.
func (c *FileSystem) Len() int {
	count, err := c.entries.Count(context.Background())
	if err != nil {
		return 0
	}
	return int(count)
}

// Ready is always true: the backend populates lazily, so readiness depends
// only on the catalog.
func (c *FileSystem) Ready() bool {
	return true
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
