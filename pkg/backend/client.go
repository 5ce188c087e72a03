package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/cache"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/catalog"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/httputil"
)

const (
	// DefaultBaseURL is the production ShelvesAI API endpoint.
	DefaultBaseURL = "https://api.shelvesai.app"

	httpTimeout    = 10 * time.Second
	cacheNamespace = "shelves"
)

var (
	// ErrNotFound is returned when a shelf doesn't exist in the backend.
	ErrNotFound = errors.New("shelf not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Shelf is the backend's shelf payload: identity plus the raw item list the
// layout engine consumes.
type Shelf struct {
	ID      string         `json:"id"`
	Name    string         `json:"name,omitempty"`
	Owner   string         `json:"owner,omitempty"`
	Updated time.Time      `json:"updated_at,omitempty"`
	Items   []catalog.Item `json:"items"`
}

// Client provides access to the ShelvesAI backend API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	baseURL string
	ttl     time.Duration
	headers map[string]string
}

// Option configures a [Client].
type Option func(*Client)

// WithToken attaches a bearer token to every request.
func WithToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.headers["Authorization"] = "Bearer " + token
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithKeyer replaces the cache key generator. Multi-tenant deployments pass
// a [cache.ScopedKeyer] here so that shelves fetched with one tenant's
// credentials are never served from another tenant's cache entries.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) {
		if k != nil {
			c.keyer = k
		}
	}
}

// NewClient creates a backend client. An empty baseURL selects
// [DefaultBaseURL]; pass a nil backend (or [cache.NewNullCache]) to disable
// response caching.
func NewClient(baseURL string, backend cache.Cache, ttl time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if backend == nil {
		backend = cache.NewNullCache()
	}
	c := &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   backend,
		keyer:   cache.NewDefaultKeyer(),
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
		headers: map[string]string{"Accept": "application/json"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the endpoint the client talks to. The layout pipeline uses
// it to resolve relative cover references.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchShelf retrieves a shelf with its full item list.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns [ErrNotFound] if the shelf doesn't exist and [ErrNetwork] for
// HTTP failures after retries are exhausted.
func (c *Client) FetchShelf(ctx context.Context, shelfID string, refresh bool) (*Shelf, error) {
	if shelfID == "" {
		return nil, fmt.Errorf("%w: empty shelf id", ErrNotFound)
	}

	var shelf Shelf
	u := fmt.Sprintf("%s/v1/shelves/%s", c.baseURL, url.PathEscape(shelfID))
	err := c.cached(ctx, shelfID, refresh, &shelf, func() error {
		return c.get(ctx, u, &shelf)
	})
	if err != nil {
		return nil, err
	}
	return &shelf, nil
}

// FetchShelfItems retrieves just the item list for a shelf. It is a
// convenience wrapper around [Client.FetchShelf].
func (c *Client) FetchShelfItems(ctx context.Context, shelfID string, refresh bool) ([]catalog.Item, error) {
	shelf, err := c.FetchShelf(ctx, shelfID, refresh)
	if err != nil {
		return nil, err
	}
	return shelf.Items, nil
}

// cached retrieves a value from cache or executes fetch and caches the result.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	cacheKey := c.keyer.HTTPKey(cacheNamespace, key)
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, cacheKey); ok {
			if err := json.Unmarshal(data, v); err == nil {
				return nil
			}
			// Corrupt entry: fall through to a fresh fetch.
		}
	}
	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(ctx, cacheKey, data, c.ttl)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string, v any) error {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
