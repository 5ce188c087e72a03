package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/backend"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/cache"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/catalog"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"svg", false},
		{"invalid", true},
		{"JSON", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"simple", false},
		{"dark", false},
		{"invalid", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{Items: []catalog.Item{}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.RowTolerance != 0.06 || opts.SpacingPad != 0.2 {
		t.Errorf("layout defaults = (%v, %v)", opts.RowTolerance, opts.SpacingPad)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("formats = %v, want [json]", opts.Formats)
	}
	if opts.Style != DefaultStyle {
		t.Errorf("style = %q", opts.Style)
	}
	if opts.Logger == nil {
		t.Error("logger default not applied")
	}

	// Idempotent.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call: %v", err)
	}
}

func TestOptionsValidateSources(t *testing.T) {
	if err := (&Options{}).ValidateForResolve(); err == nil {
		t.Error("no source should fail")
	}
	opts := Options{ShelfID: "s", ItemsFile: "f.json"}
	if err := opts.ValidateForResolve(); err == nil {
		t.Error("two sources should fail")
	}
	opts = Options{ShelfID: "s"}
	if err := opts.ValidateForResolve(); err == nil {
		t.Error("shelf id without backend client should fail")
	}
}

func testItems() []catalog.Item {
	return []catalog.Item{
		{ID: "a", Position: []any{0.1, 0.5}},
		{ID: "b", Position: map[string]any{"x": 0.5, "y": 0.52}},
		{ID: "c", Position: "0.9, 0.9"},
		{ID: "skipped"},
	}
}

func TestRunnerExecuteInline(t *testing.T) {
	runner := NewRunner(nil, nil, nil)

	result, err := runner.Execute(context.Background(), Options{
		Items:   testItems(),
		Formats: []string{FormatJSON, FormatSVG},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.ItemCount != 4 {
		t.Errorf("ItemCount = %d, want 4", result.Stats.ItemCount)
	}
	if result.Stats.PlacedCount != 3 {
		t.Errorf("PlacedCount = %d, want 3", result.Stats.PlacedCount)
	}
	if result.Stats.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", result.Stats.RowCount)
	}
	if result.ItemsHash == "" {
		t.Error("ItemsHash not set")
	}
	if len(result.Artifacts) != 2 {
		t.Errorf("artifacts = %d, want 2", len(result.Artifacts))
	}
	if !strings.HasPrefix(string(result.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact malformed")
	}

	var decoded struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &decoded); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if decoded.Count != 3 {
		t.Errorf("json count = %d, want 3", decoded.Count)
	}
}

func TestRunnerExecuteFromBackend(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(backend.Shelf{ID: "shelf-1", Items: testItems()})
	}))
	defer server.Close()

	fileCache, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(fileCache, nil, nil)
	defer runner.Close()

	// Backend client gets a null cache so the runner's own items cache is
	// what's exercised here.
	client := backend.NewClient(server.URL, cache.NewNullCache(), time.Hour)
	opts := Options{ShelfID: "shelf-1", Backend: client}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.ItemsHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss all caches: %+v", first.CacheInfo)
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.ItemsHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit all caches: %+v", second.CacheInfo)
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", calls.Load())
	}

	// Cached and fresh layouts agree.
	if len(first.Layout) != len(second.Layout) {
		t.Fatalf("layout size mismatch: %d vs %d", len(first.Layout), len(second.Layout))
	}
	for i := range first.Layout {
		if first.Layout[i] != second.Layout[i] {
			t.Errorf("layout[%d] differs: %+v vs %+v", i, first.Layout[i], second.Layout[i])
		}
	}

	// Refresh bypasses the items cache.
	opts.Refresh = true
	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("backend calls after refresh = %d, want 2", calls.Load())
	}
}

func TestRunnerExecuteEmptyShelf(t *testing.T) {
	runner := NewRunner(nil, nil, nil)

	result, err := runner.Execute(context.Background(), Options{
		Items: []catalog.Item{{ID: "no-position"}},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.PlacedCount != 0 || result.Stats.RowCount != 0 {
		t.Errorf("stats = %+v, want empty layout", result.Stats)
	}
	if !strings.Contains(string(result.Artifacts[FormatJSON]), `"items": []`) {
		t.Errorf("empty layout should serialize items as []: %s", result.Artifacts[FormatJSON])
	}
}

func TestRunnerResolveFromFile(t *testing.T) {
	path := t.TempDir() + "/items.json"
	if err := catalog.WriteItemsFile(testItems(), path); err != nil {
		t.Fatalf("WriteItemsFile: %v", err)
	}

	runner := NewRunner(nil, nil, nil)
	items, err := runner.Resolve(context.Background(), Options{ItemsFile: path})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(items) != 4 {
		t.Errorf("len = %d, want 4", len(items))
	}
}
