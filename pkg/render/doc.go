// Package render provides output sinks for normalized shelf layouts.
//
// # Overview
//
// A sink transforms a normalized layout (a slice of [layout.Item]) into a
// final output format. This package provides renderers for:
//
//   - JSON: layout data export for the mobile client and external tools
//   - SVG: a schematic shelf preview with boards and item tiles
//
// # JSON Output
//
// [RenderJSON] exports the layout as JSON. This is the primary interchange
// format for Shelf Vision: the ShelvesAI client consumes it directly, and it
// round-trips through the layout cache unchanged.
//
//	data, err := render.RenderJSON(items, render.WithJSONIndent())
//
// # SVG Output
//
// [RenderSVG] produces a schematic scene: one horizontal board per row and
// one tile per item, positioned by the normalized coordinates. The top-left
// of the viewport is (0, 0), matching the coordinate convention of
// [layout.Normalize].
//
//	svg := render.RenderSVG(items,
//	    render.WithSize(1200, 800),
//	    render.WithStyle(render.StyleDark),
//	    render.WithTitles(),
//	)
//
// # Adding New Formats
//
// To add a new output format:
//
//  1. Create a renderer: func RenderFoo(items []layout.Item, opts ...FooOption) ([]byte, error)
//  2. Define option types for configuration
//  3. Register the format in internal/cli/render.go for CLI support
//
// [layout.Item]: github.com/fTr0ut/ShelvesAI-sub003/pkg/layout.Item
// [layout.Normalize]: github.com/fTr0ut/ShelvesAI-sub003/pkg/layout.Normalize
package render
