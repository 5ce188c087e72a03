// Package pipeline provides the core layout pipeline for Shelf Vision.
//
// This package implements the complete resolve → layout → render pipeline
// that can be used by CLI and API components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Resolve: Obtain the raw item payload (from the ShelvesAI backend,
//     a local file, or inline items)
//  2. Layout: Normalize item positions into shelf rows
//  3. Render: Generate output in various formats (JSON, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    ShelfID: "7d9f...",
//	    Formats: []string{"json"},
//	    Backend: client,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data := result.Artifacts["json"]
//
// Run individual stages:
//
//	items, err := runner.Resolve(ctx, opts)
//	placed, err := runner.ComputeLayout(ctx, items, opts)
//	artifacts, err := runner.Render(ctx, placed, opts)
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/backend"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/cache"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/catalog"
	apperrors "github.com/fTr0ut/ShelvesAI-sub003/pkg/errors"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/layout"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/render"
)

// ===== Defaults - Single Source of Truth for CLI and API =====

const (
	// DefaultWidth is the default SVG frame width in pixels.
	DefaultWidth = 1200.0

	// DefaultHeight is the default SVG frame height in pixels.
	DefaultHeight = 800.0
)

// DefaultStyle is the default SVG visual style.
const DefaultStyle = string(render.StyleSimple)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
}

// ValidStyles is the set of supported SVG styles, derived from the renderer
// so the pipeline and [render.Styles] can never disagree.
var ValidStyles = func() map[string]bool {
	styles := render.Styles()
	m := make(map[string]bool, len(styles))
	for _, s := range styles {
		m[string(s)] = true
	}
	return m
}()

// StyleNames lists the supported SVG style names, for flag help and error
// messages.
func StyleNames() []string {
	styles := render.Styles()
	names := make([]string, len(styles))
	for i, s := range styles {
		names[i] = string(s)
	}
	return names
}

// ===== Options =====

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Resolve options. Exactly one of ShelfID, ItemsFile, or Items must be
	// set: ShelfID fetches from the backend, ItemsFile reads a local JSON
	// payload, and Items supplies the payload inline.
	ShelfID   string         `json:"shelf_id,omitempty"`
	ItemsFile string         `json:"items_file,omitempty"`
	Items     []catalog.Item `json:"items,omitempty"`
	Refresh   bool           `json:"refresh,omitempty"`

	// Layout options
	RowTolerance float64 `json:"row_tolerance,omitempty"`
	SpacingPad   float64 `json:"spacing_pad,omitempty"`
	BaseURL      string  `json:"base_url,omitempty"` // media base for cover URIs

	// Render options
	Formats []string `json:"formats,omitempty"`
	Style   string   `json:"style,omitempty"`
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`
	Titles  bool     `json:"titles,omitempty"`
	Covers  bool     `json:"covers,omitempty"`

	// Runtime options (not serialized)
	Logger  *log.Logger     `json:"-"`
	Backend *backend.Client `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Items is the raw item payload the layout was computed from.
	Items []catalog.Item

	// ItemsHash is the content hash of the payload.
	ItemsHash string

	// Layout is the normalized layout.
	Layout []layout.Item

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount   int // items in the raw payload
	PlacedCount int // items that survived position resolution
	RowCount    int // distinct shelf rows in the layout
	ResolveTime time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ItemsHit  bool // Whether the item payload came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ===== Validation =====

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperrors.New(apperrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return apperrors.New(apperrors.ErrCodeInvalidStyle, "invalid style: %q (must be one of: %s)", style, strings.Join(StyleNames(), ", "))
	}
	return nil
}

// ===== Options Methods =====

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForResolve(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForResolve checks required fields for the resolve stage.
func (o *Options) ValidateForResolve() error {
	sources := 0
	if o.ShelfID != "" {
		sources++
	}
	if o.ItemsFile != "" {
		sources++
	}
	if o.Items != nil {
		sources++
	}
	if sources == 0 {
		return fmt.Errorf("shelf_id, items_file, or items is required")
	}
	if sources > 1 {
		return fmt.Errorf("shelf_id, items_file, and items are mutually exclusive")
	}
	if o.ShelfID != "" && o.Backend == nil {
		return fmt.Errorf("backend client is required to fetch shelf %q", o.ShelfID)
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
// Zero tolerance and pad select the engine defaults; BaseURL falls back to
// the backend's endpoint so relative covers resolve against the same host
// the items came from.
func (o *Options) SetLayoutDefaults() {
	if o.RowTolerance == 0 {
		o.RowTolerance = layout.DefaultRowTolerance
	}
	if o.SpacingPad == 0 {
		o.SpacingPad = layout.DefaultSpacingPad
	}
	if o.BaseURL == "" && o.Backend != nil {
		o.BaseURL = o.Backend.BaseURL()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

// LayoutOptions returns the engine options for the layout stage.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		RowTolerance: o.RowTolerance,
		SpacingPad:   o.SpacingPad,
	}
}

// ItemsKeyOpts returns cache key options for the item payload.
func (o *Options) ItemsKeyOpts() cache.ItemsKeyOpts {
	return cache.ItemsKeyOpts{BaseURL: o.BaseURL}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		RowTolerance: o.RowTolerance,
		SpacingPad:   o.SpacingPad,
		BaseURL:      o.BaseURL,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format == FormatSVG {
		opts.Style = o.Style
		opts.Width = o.Width
		opts.Height = o.Height
		opts.Titles = o.Titles
		opts.Covers = o.Covers
	}
	return opts
}
