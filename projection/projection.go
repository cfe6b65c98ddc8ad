// Package projection converts geodetic WGS84 coordinates into planar
// metric coordinates through a configurable proj4 CRS pair.
package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// ErrInvalidCoordinate reports a latitude or longitude outside the valid
// geodetic range, or one that failed to parse upstream.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// WGS84 is the geodetic source frame used when none is configured.
const WGS84 = "+proj=longlat +datum=WGS84 +no_defs"

// GeoPoint is a geodetic position in degrees. Field order is fixed:
// latitude first, longitude second.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// PlanarPoint is a projected position in meters.
type PlanarPoint struct {
	X float64
	Y float64
}

// Validate checks that p lies inside the valid geodetic range.
func Validate(p GeoPoint) error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90,90]", ErrInvalidCoordinate, p.Lat)
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180,180]", ErrInvalidCoordinate, p.Lon)
	}
	return nil
}

// GeoCentroid returns the arithmetic mean position of pts.
func GeoCentroid(pts []GeoPoint) GeoPoint {
	var c GeoPoint
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c.Lat += p.Lat
		c.Lon += p.Lon
	}
	c.Lat /= float64(len(pts))
	c.Lon /= float64(len(pts))
	return c
}

// UTMZoneCRS returns the proj4 string of the UTM zone containing p,
// spelled out as an explicit transverse mercator so any proj4 parser
// accepts it. This is the low-distortion planar frame for boundaries that
// fit inside one zone.
func UTMZoneCRS(p GeoPoint) string {
	zone := int(math.Floor((p.Lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	lon0 := float64(zone)*6 - 183
	y0 := 0.0
	if p.Lat < 0 {
		y0 = 10000000.0
	}
	return fmt.Sprintf("+proj=tmerc +lat_0=0 +lon_0=%g +k=0.9996 +x_0=500000 +y_0=%g +datum=WGS84 +units=m +no_defs", lon0, y0)
}

// Projector transforms geodetic points into one planar target frame.
type Projector struct {
	transform proj.Transformer
	sourceCRS string
	targetCRS string
}

// New builds a projector for the given proj4 CRS pair.
func New(sourceCRS, targetCRS string) (*Projector, error) {
	src, err := proj.Parse(sourceCRS)
	if err != nil {
		return nil, fmt.Errorf("parse source crs %q: %w", sourceCRS, err)
	}
	dst, err := proj.Parse(targetCRS)
	if err != nil {
		return nil, fmt.Errorf("parse target crs %q: %w", targetCRS, err)
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("transform %q -> %q: %w", sourceCRS, targetCRS, err)
	}
	return &Projector{transform: t, sourceCRS: sourceCRS, targetCRS: targetCRS}, nil
}

// TargetCRS returns the proj4 string of the planar frame.
func (p *Projector) TargetCRS() string { return p.targetCRS }

// Project transforms points into the target frame, preserving order and
// cardinality. It is a pure transform with no side effects.
func (p *Projector) Project(points []GeoPoint) ([]PlanarPoint, error) {
	out := make([]PlanarPoint, 0, len(points))
	for _, gp := range points {
		if err := Validate(gp); err != nil {
			return nil, err
		}
		g, err := geom.Point{X: gp.Lon, Y: gp.Lat}.Transform(p.transform)
		if err != nil {
			return nil, fmt.Errorf("project (%v,%v): %w", gp.Lat, gp.Lon, err)
		}
		q := g.(geom.Point)
		out = append(out, PlanarPoint{X: q.X, Y: q.Y})
	}
	return out, nil
}
