package domain

import "time"

// CacheEntry is the persisted index record for one on-disk cached image.
// The payload itself lives next to the index as a file named by Digest; this
// record carries the content type, the payload checksum, and the freshness
// fingerprint captured when the entry was populated.
type CacheEntry struct {
	// Digest is the hex SHA-256 of the normalized locator. It doubles as
	// the payload file name.
	Digest string `gorm:"primaryKey;size:64"`

	// Locator is the normalized source locator the entry was built from.
	Locator string `gorm:"index;not null"`

	// Kind is the source kind, local or remote.
	Kind string `gorm:"size:16;not null"`

	ContentType string `gorm:"size:128"`

	// Checksum is the hex SHA-256 of the payload, verified on every read.
	Checksum string `gorm:"size:64;not null"`

	// Freshness fingerprint. ModTimeNano and Size for local sources, ETag
	// for remote sources that supplied one.
	ModTimeNano int64
	Size        int64
	ETag        string `gorm:"size:256"`

	CreatedAt time.Time
}
