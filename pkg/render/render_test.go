package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/layout"
)

var testItems = []layout.Item{
	{ID: "dune", X: 0.1, Y: 0.61, Title: "Dune"},
	{ID: "hyperion", X: 0.5, Y: 0.61, Title: "Hyperion"},
	{ID: "foundation", X: 0.9, Y: 1.0, Title: "Foundation", CoverURI: "https://api.shelvesai.app/media/covers/foundation.jpg"},
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(testItems, WithJSONShelf("shelf-1"))
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var out struct {
		Shelf string        `json:"shelf"`
		Count int           `json:"count"`
		Items []layout.Item `json:"items"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if out.Shelf != "shelf-1" {
		t.Errorf("shelf = %q, want shelf-1", out.Shelf)
	}
	if out.Count != 3 || len(out.Items) != 3 {
		t.Errorf("count = %d, len(items) = %d, want 3", out.Count, len(out.Items))
	}
	if out.Items[0].ID != "dune" || out.Items[0].X != 0.1 {
		t.Errorf("first item round-trip mismatch: %+v", out.Items[0])
	}
}

func TestRenderJSONEmpty(t *testing.T) {
	data, err := RenderJSON(nil)
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	if !strings.Contains(string(data), `"items":[]`) {
		t.Errorf("empty layout should serialize items as [], got %s", data)
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testItems, WithSize(1000, 500), WithTitles()))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Errorf("missing svg root element: %.80s", svg)
	}
	if !strings.Contains(svg, `viewBox="0 0 1000.0 500.0"`) {
		t.Errorf("custom size not applied: %.120s", svg)
	}
	for _, id := range []string{"item-dune", "item-hyperion", "item-foundation"} {
		if !strings.Contains(svg, id) {
			t.Errorf("missing tile group %s", id)
		}
	}
	if !strings.Contains(svg, ">Dune</text>") {
		t.Error("titles requested but not rendered")
	}

	// Two distinct rows mean two boards.
	if got := strings.Count(svg, "<line "); got != 2 {
		t.Errorf("board count = %d, want 2", got)
	}
}

func TestRenderSVGCovers(t *testing.T) {
	svg := string(RenderSVG(testItems, WithCovers()))
	if !strings.Contains(svg, `<image href="https://api.shelvesai.app/media/covers/foundation.jpg"`) {
		t.Error("cover image not embedded")
	}
	// Items without a cover stay plain rectangles.
	if got := strings.Count(svg, "<image "); got != 1 {
		t.Errorf("image count = %d, want 1", got)
	}
}

func TestRenderSVGEscaping(t *testing.T) {
	items := []layout.Item{{ID: "a", X: 0.5, Y: 1.0, Title: `Alice & Bob <3`}}
	svg := string(RenderSVG(items, WithTitles()))
	if strings.Contains(svg, "Alice & Bob <3") {
		t.Error("title not escaped")
	}
	if !strings.Contains(svg, "Alice &amp; Bob &lt;3") {
		t.Errorf("escaped title missing from output")
	}
}

func TestRenderSVGUnknownStyle(t *testing.T) {
	svg := string(RenderSVG(testItems, WithStyle("neon")))
	if !strings.Contains(svg, palettes[StyleSimple].background) {
		t.Error("unknown style should fall back to simple palette")
	}
}
