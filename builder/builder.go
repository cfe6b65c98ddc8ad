// Package builder runs the one-shot conversion pipeline: project the
// geodetic waypoints, order them into a ring, rasterize the ring and
// write the map artifacts. Each invocation is independent; nothing is
// shared across runs.
package builder

import (
	"fmt"
	"os"

	"github.com/labstack/gommon/log"
	yaml "gopkg.in/yaml.v2"

	"github.com/fukurin00/geo_map_provider/boundary"
	"github.com/fukurin00/geo_map_provider/grid"
	"github.com/fukurin00/geo_map_provider/projection"
)

// Config holds every knob of the pipeline. There are no hidden defaults
// inside the stages; everything is passed down from here.
type Config struct {
	Resolution     float64 `yaml:"resolution"`      // meters per cell
	Padding        int     `yaml:"padding"`         // cells
	SourceCRS      string  `yaml:"source_crs"`      // proj4, empty = WGS84
	TargetCRS      string  `yaml:"target_crs"`      // proj4, empty = auto UTM zone
	OccupiedThresh float64 `yaml:"occupied_thresh"`
	FreeThresh     float64 `yaml:"free_thresh"`
	Negate         int     `yaml:"negate"`
	Order          string  `yaml:"order"` // angular, hull or input
	Force          bool    `yaml:"force"` // overwrite existing artifacts
}

// DefaultConfig mirrors the reference constants of the Nav2 map
// convention.
func DefaultConfig() Config {
	return Config{
		Resolution:     0.5,
		Padding:        10,
		SourceCRS:      projection.WGS84,
		OccupiedThresh: 0.65,
		FreeThresh:     0.196,
		Negate:         0,
		Order:          "angular",
	}
}

// LoadConfig overlays a YAML profile on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Result is everything one pipeline run produced.
type Result struct {
	Spec grid.Spec
	Grid *grid.OccupancyGrid
	Meta grid.Metadata
}

// Build converts points into map artifacts under dir with the given base
// name. On any error no artifact files are left on disk.
func Build(points []projection.GeoPoint, dir, name string, cfg Config) (*Result, error) {
	order, err := boundary.ParseOrder(cfg.Order)
	if err != nil {
		return nil, err
	}
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: %d points", boundary.ErrInsufficientPoints, len(points))
	}

	source := cfg.SourceCRS
	if source == "" {
		source = projection.WGS84
	}
	target := cfg.TargetCRS
	if target == "" {
		target = projection.UTMZoneCRS(projection.GeoCentroid(points))
		log.Infof("auto-selected planar frame %q", target)
	}
	proj, err := projection.New(source, target)
	if err != nil {
		return nil, err
	}

	planar, err := proj.Project(points)
	if err != nil {
		return nil, err
	}
	ring, err := boundary.MakeRing(planar, order)
	if err != nil {
		return nil, err
	}
	spec, err := grid.NewSpec(ring, cfg.Resolution, cfg.Padding)
	if err != nil {
		return nil, err
	}

	g := grid.Rasterize(ring, spec)
	log.Infof("rasterized %d points into %dx%d cells at %gm/cell", len(ring), spec.Width, spec.Height, spec.Resolution)

	meta, err := grid.WriteArtifacts(g, spec, grid.WriteOptions{
		Dir:            dir,
		Name:           name,
		OccupiedThresh: cfg.OccupiedThresh,
		FreeThresh:     cfg.FreeThresh,
		Negate:         cfg.Negate,
		Force:          cfg.Force,
	})
	if err != nil {
		return nil, err
	}
	log.Infof("wrote %s.pgm, %s.png and %s.yaml (origin %v)", name, name, name, meta.Origin)

	return &Result{Spec: spec, Grid: g, Meta: meta}, nil
}
