package catalog

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Resolve expands configured locator strings into a catalog. A locator is
// either an http(s) URL (taken verbatim, reachability checked lazily on
// fetch), an existing regular file, or a directory expanded recursively to
// every supported image file in lexicographic path order.
//
// Resolution fails fast on a locator that is neither a URL nor an existing
// path: a typo in the source list must not silently shrink the pool. It also
// fails when the resolved catalog is empty.
func Resolve(entries []string) (*Catalog, error) {
	seen := make(map[string]struct{})
	var sources []Source

	add := func(s Source) {
		if _, dup := seen[s.Locator]; dup {
			return
		}
		seen[s.Locator] = struct{}{}
		sources = append(sources, s)
	}

	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			return nil, fmt.Errorf("empty image source entry")
		}

		if u, err := url.Parse(entry); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
			add(Source{Locator: u.String(), Kind: KindRemote})
			continue
		}

		abs, err := filepath.Abs(entry)
		if err != nil {
			return nil, fmt.Errorf("normalize source %q: %w", entry, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("image source %q is neither an existing path nor a URL: %w", entry, err)
		}

		switch {
		case info.Mode().IsRegular():
			add(Source{Locator: abs, Kind: KindLocal})
		case info.IsDir():
			expanded, err := expandDir(abs)
			if err != nil {
				return nil, err
			}
			for _, s := range expanded {
				add(s)
			}
		default:
			return nil, fmt.Errorf("image source %q is not a regular file or directory", entry)
		}
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no image sources resolved, check your configuration")
	}

	return &Catalog{sources: sources}, nil
}

// expandDir walks dir recursively and collects supported image files.
// WalkDir visits entries in lexical order, which keeps sequential serving
// reproducible across restarts for an unchanged filesystem.
func expandDir(dir string) ([]Source, error) {
	var out []Source
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := MIMEForPath(path); !ok {
			return nil
		}
		out = append(out, Source{Locator: path, Kind: KindLocal})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("expand source directory %q: %w", dir, err)
	}
	return out, nil
}
