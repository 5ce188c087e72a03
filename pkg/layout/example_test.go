package layout_test

import (
	"fmt"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/catalog"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/layout"
)

func ExampleNormalize() {
	items := []catalog.Item{
		{ID: "dune", Position: []any{0.1, 0.5}},
		{ID: "hyperion", Position: map[string]any{"x": 0.5, "y": 0.52}},
		{ID: "foundation", Position: "0.9, 0.9"},
	}

	out := layout.Normalize(items, "", layout.Options{})
	for _, it := range out {
		fmt.Printf("%s: (%.2f, %.2f)\n", it.ID, it.X, it.Y)
	}
	// Output:
	// dune: (0.06, 0.61)
	// hyperion: (0.54, 0.61)
	// foundation: (0.90, 1.00)
}
