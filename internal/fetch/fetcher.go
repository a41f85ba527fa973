// Package fetch retrieves raw image bytes for catalog sources, from disk or
// over HTTP, and determines their content type.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	// Register decoders for payload validation of remote fetches.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"

	"imageserver/internal/catalog"
)

// Fingerprint is the freshness signal recorded at fetch time. For local
// sources it is modification time plus size; for remote sources it is the
// origin's ETag when one was supplied, otherwise empty.
type Fingerprint struct {
	ModTimeNano int64
	Size        int64
	ETag        string
}

// Matches reports whether two fingerprints describe the same source state.
func (f Fingerprint) Matches(other Fingerprint) bool {
	return f == other
}

// Result carries a successful fetch: the payload, its content type, and the
// freshness fingerprint observed alongside the bytes.
type Result struct {
	Data        []byte
	ContentType string
	Fingerprint Fingerprint
}

// Fetcher retrieves image bytes for a single source. It performs no retries;
// retry policy belongs to the caller.
type Fetcher struct {
	client *resty.Client
}

// New creates a Fetcher whose remote requests time out after the given
// duration.
func New(timeout time.Duration) *Fetcher {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", "imageserver")
	return &Fetcher{client: client}
}

// Fetch retrieves the bytes and content type for src.
func (f *Fetcher) Fetch(ctx context.Context, src catalog.Source) (*Result, error) {
	switch src.Kind {
	case catalog.KindRemote:
		return f.fetchRemote(ctx, src.Locator)
	default:
		return f.fetchLocal(src.Locator)
	}
}

// StatFingerprint returns the current freshness fingerprint of a local
// source without reading its contents.
func StatFingerprint(src catalog.Source) (Fingerprint, error) {
	info, err := os.Stat(src.Locator)
	if err != nil {
		if os.IsNotExist(err) {
			return Fingerprint{}, fmt.Errorf("stat %s: %w", src.Locator, ErrNotFound)
		}
		return Fingerprint{}, fmt.Errorf("stat %s: %w", src.Locator, ErrRead)
	}
	return Fingerprint{ModTimeNano: info.ModTime().UnixNano(), Size: info.Size()}, nil
}

func (f *Fetcher) fetchLocal(path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %v: %w", path, err, ErrRead)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("read %s: not a regular file: %w", path, ErrNotFound)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %v: %w", path, err, ErrRead)
	}

	contentType, ok := catalog.MIMEForPath(path)
	if !ok {
		contentType = mimetype.Detect(data).String()
	}

	return &Result{
		Data:        data,
		ContentType: contentType,
		Fingerprint: Fingerprint{ModTimeNano: info.ModTime().UnixNano(), Size: info.Size()},
	}, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, rawURL string) (*Result, error) {
	resp, err := f.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("get %s: %v: %w", rawURL, err, ErrUnreachable)
	}
	if !resp.IsSuccess() {
		return nil, &BadStatusError{URL: rawURL, StatusCode: resp.StatusCode()}
	}

	data := resp.Body()
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("decode %s: %v: %w", rawURL, err, ErrUnsupportedImage)
	}

	contentType := strings.TrimSpace(strings.Split(resp.Header().Get("Content-Type"), ";")[0])
	if contentType == "" {
		if byExt, ok := catalog.MIMEForPath(rawURL); ok {
			contentType = byExt
		} else {
			contentType = mimetype.Detect(data).String()
		}
	}

	return &Result{
		Data:        data,
		ContentType: contentType,
		Fingerprint: Fingerprint{ETag: resp.Header().Get("ETag"), Size: int64(len(data))},
	}, nil
}
