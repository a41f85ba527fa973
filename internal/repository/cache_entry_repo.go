package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"imageserver/internal/domain"
)

// CacheEntryRepository handles cache index records.
type CacheEntryRepository struct {
	db *gorm.DB
}

// NewCacheEntryRepository creates a new CacheEntryRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *CacheEntryRepository: repository instance bound to db.
func NewCacheEntryRepository(db *gorm.DB) *CacheEntryRepository {
	return &CacheEntryRepository{db: db}
}

// Get retrieves the entry for a digest, or nil when none exists.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - digest: locator digest, the primary key.
// Returns:
//   - *domain.CacheEntry: entry record, nil when absent.
//   - error: non-nil if the lookup fails.
func (r *CacheEntryRepository) Get(ctx context.Context, digest string) (*domain.CacheEntry, error) {
	var entry domain.CacheEntry
	if err := r.db.WithContext(ctx).First(&entry, "digest = ?", digest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// Upsert creates or replaces the entry for its digest.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - entry: entry record to persist.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *CacheEntryRepository) Upsert(ctx context.Context, entry *domain.CacheEntry) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "digest"}},
		UpdateAll: true,
	}).Create(entry).Error
}

// Delete removes the entry for a digest. Deleting an absent digest is not an
// error.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - digest: locator digest to remove.
// Returns:
//   - error: non-nil if the delete fails.
func (r *CacheEntryRepository) Delete(ctx context.Context, digest string) error {
	return r.db.WithContext(ctx).Delete(&domain.CacheEntry{}, "digest = ?", digest).Error
}

// Count returns the number of cached entries.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: entry count.
//   - error: non-nil if the query fails.
func (r *CacheEntryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CacheEntry{}).Count(&count).Error
	return count, err
}
