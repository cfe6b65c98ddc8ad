// Package boundary orders an unordered planar point set into a closed
// polygon ring.
package boundary

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/fukurin00/geo_map_provider/projection"
)

// ErrInsufficientPoints reports fewer than 3 distinct boundary points.
var ErrInsufficientPoints = errors.New("insufficient boundary points")

// Ring is an ordered sequence of planar points describing a closed
// polygon; the last point connects back to the first.
type Ring []projection.PlanarPoint

// Order selects the boundary-ordering strategy.
type Order int

const (
	// AngularSort sorts points by the angle each makes with the centroid.
	// It preserves input cardinality exactly and yields a simple polygon
	// only when the boundary is star-shaped with respect to the centroid;
	// for other shapes the ring self-intersects. That limitation is a
	// property of the strategy, not silently corrected here.
	AngularSort Order = iota
	// ConvexHull computes the convex hull of the points. It is the one
	// strategy allowed to drop points.
	ConvexHull
	// InputOrder trusts the points as an already-ordered ring.
	InputOrder
)

func (o Order) String() string {
	switch o {
	case AngularSort:
		return "angular"
	case ConvexHull:
		return "hull"
	case InputOrder:
		return "input"
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

// ParseOrder maps a configuration string onto an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "angular", "":
		return AngularSort, nil
	case "hull":
		return ConvexHull, nil
	case "input":
		return InputOrder, nil
	}
	return AngularSort, fmt.Errorf("unknown boundary order %q (want angular, hull or input)", s)
}

// Centroid returns the arithmetic mean position of pts.
func Centroid(pts []projection.PlanarPoint) projection.PlanarPoint {
	var c projection.PlanarPoint
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(pts))
	c.Y /= float64(len(pts))
	return c
}

func countDistinct(pts []projection.PlanarPoint) int {
	seen := make(map[projection.PlanarPoint]struct{}, len(pts))
	for _, p := range pts {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// MakeRing orders pts into a ring using the given strategy. The input
// slice is not modified.
func MakeRing(pts []projection.PlanarPoint, order Order) (Ring, error) {
	if n := countDistinct(pts); n < 3 {
		return nil, fmt.Errorf("%w: %d distinct points, need at least 3", ErrInsufficientPoints, n)
	}
	switch order {
	case ConvexHull:
		return convexHull(pts)
	case InputOrder:
		return Ring(append([]projection.PlanarPoint(nil), pts...)), nil
	default:
		return angularSort(pts), nil
	}
}

func angularSort(pts []projection.PlanarPoint) Ring {
	ring := Ring(append([]projection.PlanarPoint(nil), pts...))
	c := Centroid(pts)
	sort.SliceStable(ring, func(i, j int) bool {
		ai := math.Atan2(ring[i].Y-c.Y, ring[i].X-c.X)
		aj := math.Atan2(ring[j].Y-c.Y, ring[j].X-c.X)
		return ai < aj
	})
	return ring
}

func cross(o, a, b projection.PlanarPoint) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// convexHull is Andrew's monotone chain, counter-clockwise, collinear
// points dropped.
func convexHull(pts []projection.PlanarPoint) (Ring, error) {
	sorted := append([]projection.PlanarPoint(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	var lower, upper []projection.PlanarPoint
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) < 3 {
		return nil, fmt.Errorf("%w: hull collapsed to %d points (collinear input)", ErrInsufficientPoints, len(hull))
	}
	return Ring(hull), nil
}
