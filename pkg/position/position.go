// Package position extracts normalized unit-square coordinates from the
// heterogeneous position metadata attached to catalog items.
//
// Position metadata originates from manual entry, vision-scan output, and
// migrated catalog records, so no schema can be enforced up front. The
// resolver accepts four shapes:
//
//   - a two-element sequence [x, y] of numbers or numeric strings
//   - an object with coordinate fields under several aliases, optionally
//     nested one level under "coordinates"/"coords"
//   - a free-text string of the form "<x>,<y>" or "<x> <y>"
//   - nothing at all
//
// Every failure mode degrades to "no position" rather than an error: a
// single bad record must not abort rendering of the rest of the shelf.
// Resolvable coordinates are clamped into [0,1] on both axes.
package position

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/catalog"
)

// Axis aliases accepted on object-shaped metadata.
var (
	xAliases = []string{"x", "col", "column", "longitude", "lon", "left", "horizontal"}
	yAliases = []string{"y", "row", "latitude", "lat", "top", "vertical"}
)

// Keys under which object-shaped metadata may nest its coordinates.
var nestedKeys = []string{"coordinates", "coords"}

// Resolved is a successfully parsed position. X and Y are always within
// [0,1]. Label carries the human-readable label that accompanied the raw
// metadata, or "" when the source had none; it is attached independently of
// which shape produced the coordinates.
type Resolved struct {
	X     float64
	Y     float64
	Label string
}

// FromItem resolves the position of a catalog item.
//
// The raw metadata is searched in priority order: the user-collection
// wrapper's position/location, the user-collectable wrapper's, the item's
// own, then collectable.position, manual.position, collectable.location,
// manual.location. The first non-nil hit wins; sources are never merged.
//
// The second return value is false when no source yields two finite
// numbers; such items are dropped from layout, not given a default.
func FromItem(it *catalog.Item) (Resolved, bool) {
	return Resolve(rawSource(it), fallbackLabel(it))
}

// Resolve parses raw position metadata of unknown shape.
//
// fallback is an externally supplied label string (typically the item-level
// label): it is parsed as a last-resort "x,y" source when the primary shape
// fails, and attached as the label of the result when the source itself
// carries none.
func Resolve(raw any, fallback string) (Resolved, bool) {
	switch v := raw.(type) {
	case []any:
		return resolveSequence(v, fallback)
	case []float64:
		seq := make([]any, len(v))
		for i, n := range v {
			seq[i] = n
		}
		return resolveSequence(seq, fallback)
	case []int:
		seq := make([]any, len(v))
		for i, n := range v {
			seq[i] = n
		}
		return resolveSequence(seq, fallback)
	case []string:
		seq := make([]any, len(v))
		for i, s := range v {
			seq[i] = s
		}
		return resolveSequence(seq, fallback)
	case map[string]any:
		return resolveObject(v, fallback)
	case string:
		if x, y, ok := parseCoordString(v); ok {
			return Resolved{X: x, Y: y, Label: fallback}, true
		}
		return resolveFallback(fallback)
	default:
		// Absent or unrecognized shape. One last attempt on the label.
		return resolveFallback(fallback)
	}
}

// resolveSequence handles the [x, y] shape. Extra elements are ignored.
func resolveSequence(seq []any, fallback string) (Resolved, bool) {
	if len(seq) >= 2 {
		x, okX := parseNumber(seq[0])
		y, okY := parseNumber(seq[1])
		if okX && okY {
			return Resolved{X: clamp01(x), Y: clamp01(y), Label: fallback}, true
		}
	}
	return resolveFallback(fallback)
}

// resolveObject handles the object shape. Both axes must resolve or the
// whole shape fails; a lone row or column is insufficient.
func resolveObject(obj map[string]any, fallback string) (Resolved, bool) {
	label := objectLabel(obj)
	if label == "" {
		label = fallback
	}

	x, okX := lookupAxis(obj, xAliases)
	y, okY := lookupAxis(obj, yAliases)
	if okX && okY {
		return Resolved{X: clamp01(x), Y: clamp01(y), Label: label}, true
	}

	if cx, cy, ok := parseCoordString(label); ok {
		return Resolved{X: cx, Y: cy, Label: label}, true
	}
	return Resolved{}, false
}

// resolveFallback parses the externally supplied label as a coordinate
// string. This is the terminal branch of every failed shape.
func resolveFallback(fallback string) (Resolved, bool) {
	if x, y, ok := parseCoordString(fallback); ok {
		return Resolved{X: x, Y: y, Label: fallback}, true
	}
	return Resolved{}, false
}

// lookupAxis finds the first alias present on obj, checking direct fields
// before the nested coordinate sub-objects. A present-but-unparseable value
// fails the axis; later aliases are not consulted.
func lookupAxis(obj map[string]any, aliases []string) (float64, bool) {
	for _, alias := range aliases {
		if v, ok := obj[alias]; ok {
			return parseNumber(v)
		}
	}
	for _, key := range nestedKeys {
		nested, ok := obj[key].(map[string]any)
		if !ok {
			continue
		}
		for _, alias := range aliases {
			if v, ok := nested[alias]; ok {
				return parseNumber(v)
			}
		}
	}
	return 0, false
}

// objectLabel returns the object's own label or description field.
func objectLabel(obj map[string]any) string {
	if s, ok := obj["label"].(string); ok && s != "" {
		return s
	}
	if s, ok := obj["description"].(string); ok && s != "" {
		return s
	}
	return ""
}

// parseCoordString splits s on runs of commas/whitespace and parses the
// first two tokens as x and y. Trailing tokens are ignored. Both values
// must be finite; results are clamped into [0,1].
func parseCoordString(s string) (x, y float64, ok bool) {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(tokens) < 2 {
		return 0, 0, false
	}
	x, okX := parseNumber(tokens[0])
	y, okY := parseNumber(tokens[1])
	if !okX || !okY {
		return 0, 0, false
	}
	return clamp01(x), clamp01(y), true
}

// parseNumber converts any numeric-like value into a finite float64.
// Parsing is locale-naive: anything strconv accepts after trimming counts.
func parseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, isFinite(n)
	case float32:
		return float64(n), isFinite(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || !isFinite(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp01(f float64) float64 {
	return math.Min(1, math.Max(0, f))
}

// rawSource walks the item's possible position containers in priority
// order and returns the first non-nil raw value.
func rawSource(it *catalog.Item) any {
	if it == nil {
		return nil
	}
	if w := it.UserCollection; w != nil {
		if w.Position != nil {
			return w.Position
		}
		if w.Location != nil {
			return w.Location
		}
	}
	if uc := it.UserCollectable; uc != nil {
		if uc.Position != nil {
			return uc.Position
		}
		if uc.Location != nil {
			return uc.Location
		}
	}
	if it.Position != nil {
		return it.Position
	}
	if it.Location != nil {
		return it.Location
	}
	if c := it.Collectable; c != nil && c.Position != nil {
		return c.Position
	}
	if m := it.Manual; m != nil && m.Position != nil {
		return m.Position
	}
	if c := it.Collectable; c != nil && c.Location != nil {
		return c.Location
	}
	if m := it.Manual; m != nil && m.Location != nil {
		return m.Location
	}
	return nil
}

// fallbackLabel returns the label accompanying the item's metadata: the
// item-level label, else the user-collection wrapper's.
func fallbackLabel(it *catalog.Item) string {
	if it == nil {
		return ""
	}
	if it.Label != "" {
		return it.Label
	}
	if w := it.UserCollection; w != nil {
		return w.Label
	}
	return ""
}
