package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/cache"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/catalog"
)

func testShelf() Shelf {
	return Shelf{
		ID:   "shelf-1",
		Name: "Living room",
		Items: []catalog.Item{
			{ID: "a", Position: []any{0.1, 0.5}},
			{ID: "b", Position: "0.9, 0.9"},
		},
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", nil, time.Hour)
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}

	c = NewClient("https://staging.shelvesai.app/", nil, time.Hour)
	if c.BaseURL() != "https://staging.shelvesai.app" {
		t.Errorf("trailing slash not trimmed: %q", c.BaseURL())
	}
}

func TestClient_FetchShelf(t *testing.T) {
	var sawAuth atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer secret" {
			sawAuth.Store(true)
		}
		switch r.URL.Path {
		case "/v1/shelves/shelf-1":
			json.NewEncoder(w).Encode(testShelf())
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, cache.NewNullCache(), time.Hour, WithToken("secret"))

	shelf, err := c.FetchShelf(context.Background(), "shelf-1", false)
	if err != nil {
		t.Fatalf("FetchShelf: %v", err)
	}
	if shelf.Name != "Living room" {
		t.Errorf("name = %q, want Living room", shelf.Name)
	}
	if len(shelf.Items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(shelf.Items))
	}
	if !sawAuth.Load() {
		t.Error("bearer token not sent")
	}

	items, err := c.FetchShelfItems(context.Background(), "shelf-1", false)
	if err != nil {
		t.Fatalf("FetchShelfItems: %v", err)
	}
	if len(items) != 2 || items[0].ID != "a" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestClient_FetchShelf_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, cache.NewNullCache(), time.Hour)

	_, err := c.FetchShelf(context.Background(), "missing", false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	_, err = c.FetchShelf(context.Background(), "", false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("empty id err = %v, want ErrNotFound", err)
	}
}

func TestClient_FetchShelf_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(testShelf())
	}))
	defer server.Close()

	c := NewClient(server.URL, cache.NewNullCache(), time.Hour)

	shelf, err := c.FetchShelf(context.Background(), "shelf-1", false)
	if err != nil {
		t.Fatalf("FetchShelf after retries: %v", err)
	}
	if shelf.ID != "shelf-1" {
		t.Errorf("id = %q, want shelf-1", shelf.ID)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClient_FetchShelf_Cached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(testShelf())
	}))
	defer server.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	c := NewClient(server.URL, backend, time.Hour)

	if _, err := c.FetchShelf(context.Background(), "shelf-1", false); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := c.FetchShelf(context.Background(), "shelf-1", false); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (second fetch should hit the cache)", calls.Load())
	}

	// refresh bypasses the cache.
	if _, err := c.FetchShelf(context.Background(), "shelf-1", true); err != nil {
		t.Fatalf("refresh fetch: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 after refresh", calls.Load())
	}
}

func TestClient_WithKeyer_ScopesCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(testShelf())
	}))
	defer server.Close()

	shared, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	tenantA := NewClient(server.URL, shared, time.Hour,
		WithKeyer(cache.NewScopedKeyer(cache.NewDefaultKeyer(), "tenant:a:")))
	tenantB := NewClient(server.URL, shared, time.Hour,
		WithKeyer(cache.NewScopedKeyer(cache.NewDefaultKeyer(), "tenant:b:")))

	if _, err := tenantA.FetchShelf(context.Background(), "shelf-1", false); err != nil {
		t.Fatalf("tenant A fetch: %v", err)
	}
	if _, err := tenantB.FetchShelf(context.Background(), "shelf-1", false); err != nil {
		t.Fatalf("tenant B fetch: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 (tenants must not share cache entries)", calls.Load())
	}

	// Same tenant still hits its own entry.
	if _, err := tenantA.FetchShelf(context.Background(), "shelf-1", false); err != nil {
		t.Fatalf("tenant A refetch: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 (tenant A refetch should hit the cache)", calls.Load())
	}
}
