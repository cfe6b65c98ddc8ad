package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fukurin00/geo_map_provider/projection"
)

func pt(x, y float64) projection.PlanarPoint {
	return projection.PlanarPoint{X: x, Y: y}
}

// isSimple reports whether no two non-adjacent ring edges properly
// intersect.
func isSimple(r Ring) bool {
	n := len(r)
	seg := func(i int) (projection.PlanarPoint, projection.PlanarPoint) {
		return r[i], r[(i+1)%n]
	}
	dir := func(a, b, c projection.PlanarPoint) float64 {
		return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			a, b := seg(i)
			c, d := seg(j)
			if dir(a, b, c)*dir(a, b, d) < 0 && dir(c, d, a)*dir(c, d, b) < 0 {
				return false
			}
		}
	}
	return true
}

func TestAngularSortSquare(t *testing.T) {
	in := []projection.PlanarPoint{pt(10, 10), pt(0, 0), pt(10, 0), pt(0, 10)}
	ring, err := MakeRing(in, AngularSort)
	require.NoError(t, err)

	want := Ring{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10)}
	assert.Equal(t, want, ring)
	// input untouched
	assert.Equal(t, pt(10, 10), in[0])
}

func TestAngularSortConvexIsSimple(t *testing.T) {
	// shuffled octagon vertices
	in := []projection.PlanarPoint{
		pt(2, -5), pt(-5, 2), pt(5, 2), pt(-2, 5),
		pt(2, 5), pt(-2, -5), pt(5, -2), pt(-5, -2),
	}
	ring, err := MakeRing(in, AngularSort)
	require.NoError(t, err)
	require.Len(t, ring, len(in))
	assert.True(t, isSimple(ring))
}

func TestAngularSortKeepsDuplicatesStable(t *testing.T) {
	in := []projection.PlanarPoint{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10), pt(10, 0)}
	ring, err := MakeRing(in, AngularSort)
	require.NoError(t, err)

	// no dedup: cardinality preserved, equal-angle points keep input order
	require.Len(t, ring, 5)
	assert.Equal(t, Ring{pt(0, 0), pt(10, 0), pt(10, 0), pt(10, 10), pt(0, 10)}, ring)
}

func TestMakeRingInsufficientPoints(t *testing.T) {
	_, err := MakeRing([]projection.PlanarPoint{pt(0, 0), pt(1, 1), pt(0, 0)}, AngularSort)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Contains(t, err.Error(), "2 distinct")

	_, err = MakeRing(nil, AngularSort)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestConvexHullDropsInteriorPoint(t *testing.T) {
	in := []projection.PlanarPoint{pt(0, 0), pt(10, 0), pt(5, 5), pt(10, 10), pt(0, 10)}
	ring, err := MakeRing(in, ConvexHull)
	require.NoError(t, err)

	assert.Equal(t, Ring{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10)}, ring)
}

func TestConvexHullCollinear(t *testing.T) {
	_, err := MakeRing([]projection.PlanarPoint{pt(0, 0), pt(5, 5), pt(10, 10)}, ConvexHull)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestInputOrderPassthrough(t *testing.T) {
	in := []projection.PlanarPoint{pt(0, 0), pt(0, 10), pt(10, 10), pt(10, 0)}
	ring, err := MakeRing(in, InputOrder)
	require.NoError(t, err)
	assert.Equal(t, Ring(in), ring)
}

func TestCentroid(t *testing.T) {
	c := Centroid([]projection.PlanarPoint{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10)})
	assert.InDelta(t, 5, c.X, 1e-12)
	assert.InDelta(t, 5, c.Y, 1e-12)
}

func TestParseOrder(t *testing.T) {
	for s, want := range map[string]Order{"angular": AngularSort, "hull": ConvexHull, "input": InputOrder, "": AngularSort} {
		got, err := ParseOrder(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseOrder("zigzag")
	assert.Error(t, err)
}
