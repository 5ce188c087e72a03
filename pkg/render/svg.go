package render

import (
	"bytes"
	"fmt"
	"html"
	"sort"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/layout"
)

// Style names a visual palette for [RenderSVG].
type Style string

const (
	StyleSimple Style = "simple"
	StyleDark   Style = "dark"
)

// Styles lists the available SVG styles, for CLI flag validation.
func Styles() []Style { return []Style{StyleSimple, StyleDark} }

type palette struct {
	background string
	board      string
	tile       string
	tileStroke string
	text       string
}

var palettes = map[Style]palette{
	StyleSimple: {
		background: "#fdfdfb",
		board:      "#8d6e4f",
		tile:       "#ffffff",
		tileStroke: "#2b2b2b",
		text:       "#2b2b2b",
	},
	StyleDark: {
		background: "#1c1b22",
		board:      "#5c4a36",
		tile:       "#2d2c35",
		tileStroke: "#8f8ca0",
		text:       "#e8e6f0",
	},
}

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width      float64
	height     float64
	style      Style
	showTitles bool
	showCovers bool
}

// WithSize sets the viewport dimensions in pixels. Non-positive values keep
// the defaults (1200x800).
func WithSize(width, height float64) SVGOption {
	return func(r *svgRenderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// WithStyle selects the visual palette. Unknown styles fall back to
// [StyleSimple].
func WithStyle(s Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithTitles renders each item's title beneath its tile.
func WithTitles() SVGOption { return func(r *svgRenderer) { r.showTitles = true } }

// WithCovers embeds cover images (via the item's CoverURI) inside the tiles.
// Tiles without a cover render as plain rectangles.
func WithCovers() SVGOption { return func(r *svgRenderer) { r.showCovers = true } }

const (
	tileWidth  = 0.07 // fraction of viewport width
	tileHeight = 0.16 // fraction of viewport height
	boardInset = 0.02 // horizontal board overhang, fraction of width
)

// RenderSVG draws the layout as a schematic shelf scene: one board line per
// row and one tile per item. Tiles sit on top of their board, so an item at
// y=1.0 rests on the bottom edge of the viewport.
func RenderSVG(items []layout.Item, opts ...SVGOption) []byte {
	r := svgRenderer{width: 1200, height: 800, style: StyleSimple}
	for _, opt := range opts {
		opt(&r)
	}
	pal, ok := palettes[r.style]
	if !ok {
		pal = palettes[StyleSimple]
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)
	fmt.Fprintf(&buf, `  <rect width="%.1f" height="%.1f" fill="%s"/>`+"\n", r.width, r.height, pal.background)

	for _, y := range rowLevels(items) {
		renderBoard(&buf, &r, pal, y)
	}
	for _, it := range items {
		renderTile(&buf, &r, pal, it)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// rowLevels returns the distinct y values in ascending order. Normalization
// snaps every row member to the same y, so equality comparison is exact.
func rowLevels(items []layout.Item) []float64 {
	seen := map[float64]bool{}
	var levels []float64
	for _, it := range items {
		if !seen[it.Y] {
			seen[it.Y] = true
			levels = append(levels, it.Y)
		}
	}
	sort.Float64s(levels)
	return levels
}

func renderBoard(buf *bytes.Buffer, r *svgRenderer, pal palette, y float64) {
	py := y * r.height
	x0 := boardInset * r.width
	x1 := r.width - x0
	fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="6"/>`+"\n",
		x0, py, x1, py, pal.board)
}

func renderTile(buf *bytes.Buffer, r *svgRenderer, pal palette, it layout.Item) {
	w := tileWidth * r.width
	h := tileHeight * r.height
	// Center the tile on x; its base rests on the board at y.
	px := it.X*r.width - w/2
	py := it.Y*r.height - h

	fmt.Fprintf(buf, `  <g id="item-%s">`+"\n", html.EscapeString(it.ID))
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s" stroke-width="2" rx="3"/>`+"\n",
		px, py, w, h, pal.tile, pal.tileStroke)
	if r.showCovers && it.CoverURI != "" {
		fmt.Fprintf(buf, `    <image href="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" preserveAspectRatio="xMidYMid slice"/>`+"\n",
			html.EscapeString(it.CoverURI), px+2, py+2, w-4, h-4)
	}
	if r.showTitles {
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" fill="%s">%s</text>`+"\n",
			it.X*r.width, it.Y*r.height+16, h*0.12, pal.text, html.EscapeString(it.Title))
	}
	buf.WriteString("  </g>\n")
}
