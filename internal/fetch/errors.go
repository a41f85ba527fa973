package fetch

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fetch failure classes. Callers classify with
// errors.Is / errors.As.
var (
	// ErrNotFound means a local source file no longer exists.
	ErrNotFound = errors.New("image source not found")

	// ErrRead means a local source exists but could not be read.
	ErrRead = errors.New("image source read failure")

	// ErrUnreachable means a remote source could not be reached before the
	// fetch timeout.
	ErrUnreachable = errors.New("image source unreachable")

	// ErrUnsupportedImage means the fetched payload is not a decodable image.
	ErrUnsupportedImage = errors.New("unsupported image payload")
)

// BadStatusError reports a non-2xx response from a remote source.
type BadStatusError struct {
	URL        string
	StatusCode int
}

func (e *BadStatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}
