package render

import (
	"encoding/json"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent bool
	shelf  string
}

// WithJSONIndent pretty-prints the output with two-space indentation.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONShelf records the shelf identifier in the output envelope, so a
// consumer holding several layouts can tell them apart.
func WithJSONShelf(id string) JSONOption { return func(r *jsonRenderer) { r.shelf = id } }

type jsonOutput struct {
	Shelf string        `json:"shelf,omitempty"`
	Count int           `json:"count"`
	Items []layout.Item `json:"items"`
}

// RenderJSON exports the normalized layout as a JSON document. The items
// array is always present, even when empty, so consumers never need a nil
// check.
func RenderJSON(items []layout.Item, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	if items == nil {
		items = []layout.Item{}
	}
	out := jsonOutput{Shelf: r.shelf, Count: len(items), Items: items}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
