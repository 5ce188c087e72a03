package media

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/httputil"
)

// pngHeader is enough of a PNG for content-type detection.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func coverServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngHeader)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcherDataURI(t *testing.T) {
	var calls atomic.Int32
	srv := coverServer(t, &calls)

	f := NewFetcher(nil)
	uri, err := f.DataURI(context.Background(), srv.URL+"/covers/a.png")
	if err != nil {
		t.Fatalf("DataURI: %v", err)
	}

	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
	if uri != want {
		t.Errorf("uri = %q, want %q", uri, want)
	}
}

func TestFetcherCaches(t *testing.T) {
	var calls atomic.Int32
	srv := coverServer(t, &calls)

	c, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	f := NewFetcher(c)

	first, err := f.DataURI(context.Background(), srv.URL+"/covers/a.png")
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := f.DataURI(context.Background(), srv.URL+"/covers/a.png")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if first != second {
		t.Errorf("cached result differs: %q vs %q", first, second)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1 (second read from cache)", got)
	}
}

func TestFetcherPassthroughAndRejects(t *testing.T) {
	f := NewFetcher(nil)

	data := "data:image/png;base64,AAAA"
	if got, err := f.DataURI(context.Background(), data); err != nil || got != data {
		t.Errorf("data URI passthrough = %q, %v", got, err)
	}

	if _, err := f.DataURI(context.Background(), "covers/a.png"); err == nil {
		t.Error("expected error for relative reference")
	}
}

func TestFetcherNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	_, err := f.DataURI(context.Background(), srv.URL+"/missing.png")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("err = %v, want status 404 error", err)
	}
}
