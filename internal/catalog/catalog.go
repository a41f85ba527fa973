// Package catalog resolves configured source locators into the ordered,
// de-duplicated list of image sources the server serves from.
package catalog

import (
	"path/filepath"
	"strings"
)

// Kind distinguishes local filesystem sources from remote URL sources.
type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
)

// Source identifies one image by its normalized locator: an absolute local
// path or an absolute URL. Immutable once the catalog is built; equality is
// by locator string.
type Source struct {
	Locator string
	Kind    Kind
}

// Catalog is the resolved, ordered list of image sources. Read-only after
// Resolve, safe for concurrent use without locking.
type Catalog struct {
	sources []Source
}

// Len returns the number of sources in the catalog.
func (c *Catalog) Len() int {
	return len(c.sources)
}

// At returns the source at index i. Panics on out-of-range i, matching
// slice semantics.
func (c *Catalog) At(i int) Source {
	return c.sources[i]
}

// Sources returns a copy of the catalog's source list.
func (c *Catalog) Sources() []Source {
	out := make([]Source, len(c.sources))
	copy(out, c.sources)
	return out
}

// mimeByExtension maps supported image file extensions to MIME types.
var mimeByExtension = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// MIMEForPath returns the MIME type for a path's extension and whether the
// extension is a supported image type.
func MIMEForPath(path string) (string, bool) {
	mime, ok := mimeByExtension[strings.ToLower(filepath.Ext(path))]
	return mime, ok
}
