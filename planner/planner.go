// Package planner runs A* reachability checks over a generated map,
// consuming the artifacts the same way a navigation stack would.
package planner

import (
	"fmt"
	"math"

	astar "github.com/beefsack/go-astar"

	"github.com/fukurin00/geo_map_provider/grid"
)

// Planner plans over one loaded occupancy grid.
type Planner struct {
	grid  *grid.OccupancyGrid
	meta  grid.Metadata
	nodes map[int]*node
}

// New wraps an in-memory grid and its metadata.
func New(g *grid.OccupancyGrid, meta grid.Metadata) *Planner {
	return &Planner{grid: g, meta: meta, nodes: make(map[int]*node)}
}

// Load reads map artifacts from disk and wraps them.
func Load(yamlPath string) (*Planner, error) {
	g, meta, err := grid.ReadArtifacts(yamlPath)
	if err != nil {
		return nil, err
	}
	return New(g, meta), nil
}

// CellIndex maps a world position onto the loaded grid.
func (p *Planner) CellIndex(x, y float64) (col, row int, err error) {
	col = int(math.Floor((x - p.meta.Origin[0]) / p.meta.Resolution))
	row = int(math.Floor((y - p.meta.Origin[1]) / p.meta.Resolution))
	if col < 0 || row < 0 || col >= p.grid.Width || row >= p.grid.Height {
		return 0, 0, fmt.Errorf("position (%v,%v) is out of map", x, y)
	}
	return col, row, nil
}

// Reachable reports whether a traversable path connects the two world
// positions, and the path length in meters when one exists.
func (p *Planner) Reachable(x1, y1, x2, y2 float64) (bool, float64, error) {
	sc, sr, err := p.CellIndex(x1, y1)
	if err != nil {
		return false, 0, err
	}
	gc, gr, err := p.CellIndex(x2, y2)
	if err != nil {
		return false, 0, err
	}
	if p.grid.At(sc, sr) != grid.Interior {
		return false, 0, fmt.Errorf("start (%v,%v) is not traversable", x1, y1)
	}
	if p.grid.At(gc, gr) != grid.Interior {
		return false, 0, fmt.Errorf("goal (%v,%v) is not traversable", x2, y2)
	}

	_, dist, found := astar.Path(p.node(sc, sr), p.node(gc, gr))
	if !found {
		return false, 0, nil
	}
	return true, dist * p.meta.Resolution, nil
}

// node is a flyweight per cell: astar keys on Pather identity, so the
// same cell must always yield the same pointer.
type node struct {
	p        *Planner
	col, row int
}

func (p *Planner) node(col, row int) *node {
	key := col + row*p.grid.Width
	if n, ok := p.nodes[key]; ok {
		return n
	}
	n := &node{p: p, col: col, row: row}
	p.nodes[key] = n
	return n
}

var moves = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

func (n *node) PathNeighbors() []astar.Pather {
	var out []astar.Pather
	for _, m := range moves {
		c, r := n.col+m[0], n.row+m[1]
		if c < 0 || r < 0 || c >= n.p.grid.Width || r >= n.p.grid.Height {
			continue
		}
		if n.p.grid.At(c, r) != grid.Interior {
			continue
		}
		out = append(out, n.p.node(c, r))
	}
	return out
}

func (n *node) PathNeighborCost(to astar.Pather) float64 {
	t := to.(*node)
	return math.Hypot(float64(t.col-n.col), float64(t.row-n.row))
}

func (n *node) PathEstimatedCost(to astar.Pather) float64 {
	t := to.(*node)
	return math.Hypot(float64(t.col-n.col), float64(t.row-n.row))
}
