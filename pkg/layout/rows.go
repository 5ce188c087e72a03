package layout

import (
	"math"
	"sort"
)

// row is a transient grouping used during clustering. The running average
// of member y-values decides whether later items join, so row identity is
// order-dependent: this is a deliberate single-pass greedy assignment, not
// a globally optimal clustering, and downstream visual behavior depends on
// the greedy semantics.
type row struct {
	sum   float64
	items []*Item
}

func (r *row) avg() float64 {
	return r.sum / float64(len(r.items))
}

func (r *row) add(it *Item) {
	r.sum += it.Y
	r.items = append(r.items, it)
}

// clusterRows assigns items to rows in input order. Each item joins the
// first existing row whose running-average y lies within tolerance of its
// own y, updating the average; otherwise it starts a new row. Rows are
// never merged or re-clustered after creation.
func clusterRows(items []*Item, tolerance float64) []*row {
	var rows []*row

	for _, it := range items {
		var target *row
		for _, r := range rows {
			if math.Abs(r.avg()-it.Y) <= tolerance {
				target = r
				break
			}
		}
		if target == nil {
			target = &row{}
			rows = append(rows, target)
		}
		target.add(it)
	}
	return rows
}

// snap places every member on the row's final average y, so the whole row
// renders on exactly the same horizontal line.
func (r *row) snap() {
	y := r.avg()
	for _, it := range r.items {
		it.Y = y
	}
}

// space evens out horizontal spacing within the row.
//
// Members are sorted by x, consecutive gaps widened by pad times the median
// of the strictly positive gaps, keeping the row's center fixed. A row
// whose spread then exceeds the unit width is rescaled linearly into [0,1];
// otherwise it is shifted as a block to fit (minimum first, then maximum),
// preserving relative spacing. Single-member rows and rows with a zero
// median gap are left untouched.
func (r *row) space(pad float64) {
	n := len(r.items)
	if n < 2 {
		return
	}

	sort.SliceStable(r.items, func(i, j int) bool {
		return r.items[i].X < r.items[j].X
	})

	gaps := make([]float64, n-1)
	var positive []float64
	for i := 0; i < n-1; i++ {
		gaps[i] = r.items[i+1].X - r.items[i].X
		if gaps[i] > 0 {
			positive = append(positive, gaps[i])
		}
	}

	med := median(positive)
	if med == 0 {
		return
	}
	extra := pad * med

	xs := make([]float64, n)
	xs[0] = r.items[0].X
	for i := 1; i < n; i++ {
		xs[i] = xs[i-1] + gaps[i-1] + extra
	}

	// Re-center so the padding spreads symmetrically.
	oldCenter := (r.items[0].X + r.items[n-1].X) / 2
	newCenter := (xs[0] + xs[n-1]) / 2
	shift := oldCenter - newCenter
	for i := range xs {
		xs[i] += shift
	}

	spread := xs[n-1] - xs[0]
	if spread > 1 {
		for i := range xs {
			xs[i] = (xs[i] - xs[0]) / spread
		}
	} else {
		if xs[0] < 0 {
			d := -xs[0]
			for i := range xs {
				xs[i] += d
			}
		}
		if xs[n-1] > 1 {
			d := xs[n-1] - 1
			for i := range xs {
				xs[i] -= d
			}
		}
		for i := range xs {
			xs[i] = clamp01(xs[i])
		}
	}

	for i, it := range r.items {
		it.X = xs[i]
	}
}

// median returns the median of values, or 0 for an empty slice.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
