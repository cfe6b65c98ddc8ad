package grid

import (
	"math"
	"sort"

	"github.com/fukurin00/geo_map_provider/boundary"
)

// Rasterize fills ring into a fresh occupancy grid described by spec.
// Interior and boundary cells get Interior, everything else stays
// Exterior.
//
// Row 0 corresponds to min_y: the grid is not vertically flipped. The
// fill uses even-odd scanline semantics over the cell-snapped polygon, so
// it is well defined for any closed ring, self-intersecting ones
// included. Output is deterministic for identical inputs.
func Rasterize(ring boundary.Ring, spec Spec) *OccupancyGrid {
	g := NewOccupancyGrid(spec.Width, spec.Height)
	n := len(ring)
	cols := make([]int, n)
	rows := make([]int, n)
	for i, p := range ring {
		cols[i], rows[i] = spec.CellIndex(p)
	}

	var xs []float64
	for row := 0; row < spec.Height; row++ {
		xs = xs[:0]
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			y0, y1 := rows[i], rows[j]
			if y0 == y1 {
				continue // horizontal edges are handled by the outline pass
			}
			// half-open span so a vertex shared by two edges counts once
			if row < minInt(y0, y1) || row >= maxInt(y0, y1) {
				continue
			}
			t := float64(row-y0) / float64(y1-y0)
			xs = append(xs, float64(cols[i])+t*float64(cols[j]-cols[i]))
		}
		sort.Float64s(xs)
		for k := 0; k+1 < len(xs); k += 2 {
			from := int(math.Ceil(xs[k]))
			to := int(math.Floor(xs[k+1]))
			for col := from; col <= to; col++ {
				g.set(col, row, Interior)
			}
		}
	}

	// boundary cells belong to the interior domain
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		traceSegment(g, cols[i], rows[i], cols[j], rows[j])
	}
	return g
}

// traceSegment marks the cells of a grid-snapped segment (Bresenham).
func traceSegment(g *OccupancyGrid, x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		g.set(x0, y0, Interior)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
