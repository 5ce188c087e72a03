package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/httputil"
)

const (
	coverNamespace = "covers:"

	// maxCoverBytes caps a single cover download; anything larger is not a
	// shelf cover image.
	maxCoverBytes = 5 << 20

	fetchTimeout = 15 * time.Second
)

// coverEntry is the cached form of a downloaded cover.
type coverEntry struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Fetcher downloads cover images and encodes them as data URIs, so a
// rendered SVG can be fully self-contained instead of referencing remote
// media. Downloads are cached under a "covers:" namespace; transient HTTP
// failures are retried with backoff.
type Fetcher struct {
	http  *http.Client
	cache *httputil.Cache
}

// NewFetcher creates a cover fetcher. A nil cache disables caching.
func NewFetcher(c *httputil.Cache) *Fetcher {
	f := &Fetcher{http: &http.Client{Timeout: fetchTimeout}}
	if c != nil {
		f.cache = c.Namespace(coverNamespace)
	}
	return f
}

// DataURI returns a data: URI for the image at uri.
//
// URIs that are already data: URIs pass through unchanged. Relative
// references must be resolved with [CoverURI] first; anything that is not
// an absolute HTTP(S) URL is an error.
func (f *Fetcher) DataURI(ctx context.Context, uri string) (string, error) {
	if strings.HasPrefix(uri, "data:") {
		return uri, nil
	}
	if !IsAbsoluteURL(uri) {
		return "", fmt.Errorf("cover %q is not an absolute URL", uri)
	}

	var entry coverEntry
	if f.cache != nil {
		if ok, err := f.cache.Get(uri, &entry); ok && err == nil {
			return dataURI(entry), nil
		}
		// Expired or corrupt entry: refetch.
	}

	err := httputil.RetryWithBackoff(ctx, func() error {
		e, err := f.fetch(ctx, uri)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return "", err
	}

	if f.cache != nil {
		_ = f.cache.Set(uri, entry)
	}
	return dataURI(entry), nil
}

func (f *Fetcher) fetch(ctx context.Context, uri string) (coverEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return coverEntry{}, err
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return coverEntry{}, httputil.Retryable(fmt.Errorf("fetch cover: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return coverEntry{}, httputil.Retryable(fmt.Errorf("fetch cover: status %d", resp.StatusCode))
	default:
		return coverEntry{}, fmt.Errorf("fetch cover: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return coverEntry{}, httputil.Retryable(fmt.Errorf("fetch cover: %w", err))
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return coverEntry{ContentType: ct, Data: data}, nil
}

func dataURI(e coverEntry) string {
	return "data:" + e.ContentType + ";base64," + base64.StdEncoding.EncodeToString(e.Data)
}
