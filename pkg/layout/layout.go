// Package layout turns a list of catalog items into renderable positions on
// a unit-square shelf canvas.
//
// The normalizer compensates for two defects in recorded positions: items
// whose row coordinate is approximate or noisy, and items on the same row
// whose horizontal spacing is too tight or uneven. It clusters items into
// rows, snaps each row onto a single horizontal line, evens out spacing
// within a row, and anchors the layout to the bottom edge of the canvas.
//
// The whole computation is a pure, synchronous function of its inputs: no
// I/O, no shared state, no errors. Items whose position metadata cannot be
// resolved are dropped, never defaulted; most catalog items are never
// manually positioned, so missing layout data is the common case rather
// than an exceptional one.
package layout

import (
	"fmt"
	"math"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/catalog"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/media"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/position"
)

const (
	// DefaultRowTolerance is the maximum distance between an item's y and a
	// row's running-average y for the item to join that row, in unit-square
	// terms. Tunable, but the value is load-bearing for visual behavior.
	DefaultRowTolerance = 0.06

	// DefaultSpacingPad is the fraction of a row's median gap added between
	// neighbors when evening out horizontal spacing.
	DefaultSpacingPad = 0.2

	// UntitledTitle is the display title for items with no resolvable title.
	UntitledTitle = "Untitled item"
)

// Item is one positioned entry of a computed layout, ready to be placed by
// a rendering surface at (X*canvasWidth, Y*canvasHeight). X and Y are
// always within [0,1]. Empty Label/Detail/CoverURI mean "none".
type Item struct {
	ID       string  `json:"id" bson:"id"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	Title    string  `json:"title" bson:"title"`
	Label    string  `json:"label,omitempty" bson:"label,omitempty"`
	Detail   string  `json:"detail,omitempty" bson:"detail,omitempty"`
	CoverURI string  `json:"cover_uri,omitempty" bson:"cover_uri,omitempty"`
}

// Options tunes the normalizer. The zero value uses the defaults above.
type Options struct {
	// RowTolerance overrides DefaultRowTolerance when > 0.
	RowTolerance float64

	// SpacingPad overrides DefaultSpacingPad when > 0.
	SpacingPad float64
}

func (o Options) withDefaults() Options {
	if o.RowTolerance <= 0 {
		o.RowTolerance = DefaultRowTolerance
	}
	if o.SpacingPad <= 0 {
		o.SpacingPad = DefaultSpacingPad
	}
	return o
}

// Normalize computes the shelf layout for items.
//
// baseURL is used only for building cover URIs; it plays no role in the
// position math. Items without a resolvable position are excluded from the
// result. The returned slice preserves row creation order, with members of
// a row ordered by ascending x. An input with nothing resolvable yields an
// empty (non-nil) slice.
//
// Normalize is deterministic: identical inputs produce identical outputs,
// and the input slice is never mutated.
func Normalize(items []catalog.Item, baseURL string, opts Options) []Item {
	opts = opts.withDefaults()

	resolved := make([]*Item, 0, len(items))
	for i := range items {
		it := &items[i]
		pos, ok := position.FromItem(it)
		if !ok {
			continue
		}

		id := it.ID
		if id == "" {
			id = fmt.Sprintf("item-%d", i)
		}
		title := it.Title()
		if title == "" {
			title = UntitledTitle
		}

		resolved = append(resolved, &Item{
			ID:       id,
			X:        pos.X,
			Y:        pos.Y,
			Title:    title,
			Label:    pos.Label,
			Detail:   it.Detail(),
			CoverURI: media.CoverURI(it.CoverRef(), baseURL),
		})
	}
	if len(resolved) == 0 {
		return []Item{}
	}

	rows := clusterRows(resolved, opts.RowTolerance)
	for _, r := range rows {
		r.snap()
		r.space(opts.SpacingPad)
	}

	anchorBottom(rows)

	out := make([]Item, 0, len(resolved))
	for _, r := range rows {
		for _, it := range r.items {
			it.X = clamp01(it.X)
			it.Y = clamp01(it.Y)
			out = append(out, *it)
		}
	}
	return out
}

// anchorBottom shifts every item's y upward by (1 - maxY) so the layout
// hugs the bottom edge of the canvas. Items closer to y=0 are conceptually
// further back on the shelf and render higher.
func anchorBottom(rows []*row) {
	maxY := 0.0
	for _, r := range rows {
		for _, it := range r.items {
			maxY = math.Max(maxY, it.Y)
		}
	}
	if maxY >= 1 {
		return
	}
	shift := 1 - maxY
	for _, r := range rows {
		for _, it := range r.items {
			it.Y += shift
		}
	}
}

func clamp01(f float64) float64 {
	return math.Min(1, math.Max(0, f))
}
