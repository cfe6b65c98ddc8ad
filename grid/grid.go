// Package grid rasterizes a boundary ring into a ROS-style occupancy grid
// and reads and writes the map artifacts (PGM + PNG + map.yaml).
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/fukurin00/geo_map_provider/boundary"
	"github.com/fukurin00/geo_map_provider/projection"
)

var (
	// ErrDegenerateExtent reports a zero-area bounding box, a
	// non-positive resolution or a negative padding.
	ErrDegenerateExtent = errors.New("degenerate map extent")
	// ErrIOFailure reports a failed or refused artifact write.
	ErrIOFailure = errors.New("map artifact io failure")
)

// Cell is one occupancy value of the raster.
type Cell uint8

const (
	// Exterior marks cells outside the boundary polygon.
	Exterior Cell = iota
	// Interior marks cells on or inside the boundary polygon.
	Interior
)

// Spec describes the grid geometry derived from a boundary ring.
type Spec struct {
	Resolution float64 // meters per cell
	Padding    int     // extra cells on every side
	MinX       float64 // pre-padding bounding box, meters
	MinY       float64
	MaxX       float64
	MaxY       float64
	Width      int // cells, padding included
	Height     int
}

// NewSpec computes the grid geometry covering ring.
func NewSpec(ring boundary.Ring, resolution float64, padding int) (Spec, error) {
	if resolution <= 0 {
		return Spec{}, fmt.Errorf("%w: resolution %v", ErrDegenerateExtent, resolution)
	}
	if padding < 0 {
		return Spec{}, fmt.Errorf("%w: negative padding %d", ErrDegenerateExtent, padding)
	}

	s := Spec{Resolution: resolution, Padding: padding}
	s.MinX, s.MinY = ring[0].X, ring[0].Y
	s.MaxX, s.MaxY = ring[0].X, ring[0].Y
	for _, p := range ring[1:] {
		s.MinX = math.Min(s.MinX, p.X)
		s.MinY = math.Min(s.MinY, p.Y)
		s.MaxX = math.Max(s.MaxX, p.X)
		s.MaxY = math.Max(s.MaxY, p.Y)
	}
	if s.MaxX == s.MinX || s.MaxY == s.MinY {
		return Spec{}, fmt.Errorf("%w: bounding box %v x %v", ErrDegenerateExtent, s.MaxX-s.MinX, s.MaxY-s.MinY)
	}

	s.Width = int(math.Ceil((s.MaxX-s.MinX)/resolution)) + 2*padding
	s.Height = int(math.Ceil((s.MaxY-s.MinY)/resolution)) + 2*padding
	return s, nil
}

// CellIndex maps a world position onto grid coordinates.
func (s Spec) CellIndex(p projection.PlanarPoint) (col, row int) {
	col = int(math.Floor((p.X-s.MinX)/s.Resolution)) + s.Padding
	row = int(math.Floor((p.Y-s.MinY)/s.Resolution)) + s.Padding
	return col, row
}

// Origin returns the world position of cell (0,0), the padded lower-left
// corner of the map.
func (s Spec) Origin() (x, y float64) {
	return s.MinX - float64(s.Padding)*s.Resolution,
		s.MinY - float64(s.Padding)*s.Resolution
}

// OccupancyGrid is a rectangular occupancy raster, row-major, row 0 at
// min_y. Every cell is initialized; there is no partially-filled state.
type OccupancyGrid struct {
	Width  int
	Height int
	Cells  []Cell
}

// NewOccupancyGrid allocates a grid with every cell set to Exterior.
func NewOccupancyGrid(width, height int) *OccupancyGrid {
	return &OccupancyGrid{
		Width:  width,
		Height: height,
		Cells:  make([]Cell, width*height),
	}
}

// At returns the cell value, Exterior for out-of-range coordinates.
func (g *OccupancyGrid) At(col, row int) Cell {
	if col < 0 || row < 0 || col >= g.Width || row >= g.Height {
		return Exterior
	}
	return g.Cells[col+row*g.Width]
}

func (g *OccupancyGrid) set(col, row int, c Cell) {
	if col < 0 || row < 0 || col >= g.Width || row >= g.Height {
		return
	}
	g.Cells[col+row*g.Width] = c
}
