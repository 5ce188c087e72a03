package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/cache"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/catalog"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/layout"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete resolve → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Resolve
	resolveStart := time.Now()
	items, itemsHit, err := r.ResolveWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	result.Items = items
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.Stats.ItemCount = len(items)
	result.CacheInfo.ItemsHit = itemsHit

	if data, err := catalog.MarshalItems(items); err == nil {
		result.ItemsHash = cache.Hash(data)
	}

	r.Logger.Info("resolved items",
		"count", len(items),
		"duration", result.Stats.ResolveTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	placed, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, items, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = placed
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.PlacedCount = len(placed)
	result.Stats.RowCount = countRows(placed)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"placed", len(placed),
		"rows", result.Stats.RowCount,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, placed, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ResolveWithCacheInfo obtains the item payload with caching and returns
// cache hit info. Inline items and local files are never cached; only
// backend fetches are.
func (r *Runner) ResolveWithCacheInfo(ctx context.Context, opts Options) ([]catalog.Item, bool, error) {
	if err := opts.ValidateForResolve(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	switch {
	case opts.Items != nil:
		return opts.Items, false, nil
	case opts.ItemsFile != "":
		items, err := catalog.ReadItemsFile(opts.ItemsFile)
		return items, false, err
	}

	cacheKey := r.Keyer.ItemsKey(opts.ShelfID, opts.ItemsKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if items, err := catalog.UnmarshalItems(data); err == nil {
				return items, true, nil // Cache hit
			}
		}
	}

	items, err := opts.Backend.FetchShelfItems(ctx, opts.ShelfID, opts.Refresh)
	if err != nil {
		return nil, false, err
	}

	if data, err := catalog.MarshalItems(items); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLItems)
	}

	return items, false, nil // Cache miss
}

// Resolve is a convenience wrapper that calls ResolveWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Resolve(ctx context.Context, opts Options) ([]catalog.Item, error) {
	items, _, err := r.ResolveWithCacheInfo(ctx, opts)
	return items, err
}

// ComputeLayoutWithCacheInfo normalizes the items with caching and returns
// cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, items []catalog.Item, opts Options) ([]layout.Item, bool, error) {
	opts.SetLayoutDefaults()
	r.applyLogger(&opts)

	itemsData, err := catalog.MarshalItems(items)
	if err != nil {
		return nil, false, fmt.Errorf("serialize items for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(itemsData), opts.LayoutKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var cached []layout.Item
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}

	placed := layout.Normalize(items, opts.BaseURL, opts.LayoutOptions())

	if data, err := json.Marshal(placed); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return placed, false, nil // Cache miss
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo
// and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, items []catalog.Item, opts Options) ([]layout.Item, error) {
	placed, _, err := r.ComputeLayoutWithCacheInfo(ctx, items, opts)
	return placed, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, placed []layout.Item, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutData, err := json.Marshal(placed)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	rendered, err := renderFormats(placed, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, placed []layout.Item, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, placed, opts)
	return artifacts, err
}

// renderFormats renders the layout in every requested format.
func renderFormats(placed []layout.Item, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			data, err := render.RenderJSON(placed,
				render.WithJSONShelf(opts.ShelfID),
				render.WithJSONIndent())
			if err != nil {
				return nil, fmt.Errorf("render json: %w", err)
			}
			out[format] = data
		case FormatSVG:
			svgOpts := []render.SVGOption{
				render.WithSize(opts.Width, opts.Height),
				render.WithStyle(render.Style(opts.Style)),
			}
			if opts.Titles {
				svgOpts = append(svgOpts, render.WithTitles())
			}
			if opts.Covers {
				svgOpts = append(svgOpts, render.WithCovers())
			}
			out[format] = render.RenderSVG(placed, svgOpts...)
		default:
			return nil, ValidateFormat(format)
		}
	}
	return out, nil
}

// countRows reports the number of distinct shelf rows in a layout.
// Normalization snaps row members to an identical y, so exact comparison
// is safe.
func countRows(placed []layout.Item) int {
	seen := map[float64]bool{}
	for _, it := range placed {
		seen[it.Y] = true
	}
	return len(seen)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
