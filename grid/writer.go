package grid

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	pnm "github.com/jbuchbinder/gopnm"
	yaml "gopkg.in/yaml.v2"
)

// Grayscale values of the two cell states in the ROS map convention:
// 0 is occupied/outside, 205 is the unexplored mid-gray.
const (
	exteriorGray uint8 = 0
	interiorGray uint8 = 205
)

// Metadata is the map.yaml record read by map_server.
type Metadata struct {
	Image          string     `yaml:"image"`
	Resolution     float64    `yaml:"resolution"`
	Origin         [3]float64 `yaml:"origin,flow"`
	OccupiedThresh float64    `yaml:"occupied_thresh"`
	FreeThresh     float64    `yaml:"free_thresh"`
	Negate         int        `yaml:"negate"`
}

// WriteOptions configures one artifact write. Zero thresholds are written
// as given; defaults live in the builder config, not here.
type WriteOptions struct {
	Dir            string
	Name           string // base name: <Name>.pgm, <Name>.png, <Name>.yaml
	OccupiedThresh float64
	FreeThresh     float64
	Negate         int
	// Force opts in to overwriting existing artifacts. Without it an
	// existing file at any target path fails the write.
	Force bool
}

// WriteArtifacts writes the grid as a PGM raster, a PNG duplicate and a
// map.yaml metadata record. All three files are staged in temporary
// files and committed by rename, so a failed run leaves no artifacts
// behind.
func WriteArtifacts(g *OccupancyGrid, spec Spec, opt WriteOptions) (Metadata, error) {
	pgmPath := filepath.Join(opt.Dir, opt.Name+".pgm")
	pngPath := filepath.Join(opt.Dir, opt.Name+".png")
	yamlPath := filepath.Join(opt.Dir, opt.Name+".yaml")

	if !opt.Force {
		for _, path := range []string{pgmPath, pngPath, yamlPath} {
			if _, err := os.Stat(path); err == nil {
				return Metadata{}, fmt.Errorf("%w: %s already exists (overwrite requires force)", ErrIOFailure, path)
			}
		}
	}

	ox, oy := spec.Origin()
	meta := Metadata{
		Image:          opt.Name + ".pgm",
		Resolution:     spec.Resolution,
		Origin:         [3]float64{ox, oy, 0.0},
		OccupiedThresh: opt.OccupiedThresh,
		FreeThresh:     opt.FreeThresh,
		Negate:         opt.Negate,
	}
	metaBytes, err := yaml.Marshal(&meta)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: marshal metadata: %v", ErrIOFailure, err)
	}

	img := grayImage(g)
	commit := stager{dir: opt.Dir}
	defer commit.cleanup()

	if err := commit.stage(pgmPath, func(f *os.File) error {
		return pnm.Encode(f, img, pnm.PGM)
	}); err != nil {
		return Metadata{}, err
	}
	if err := commit.stage(pngPath, func(f *os.File) error {
		return png.Encode(f, img)
	}); err != nil {
		return Metadata{}, err
	}
	if err := commit.stage(yamlPath, func(f *os.File) error {
		_, werr := f.Write(metaBytes)
		return werr
	}); err != nil {
		return Metadata{}, err
	}

	if err := commit.rename(); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

func grayImage(g *OccupancyGrid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			v := exteriorGray
			if g.At(col, row) == Interior {
				v = interiorGray
			}
			img.SetGray(col, row, color.Gray{Y: v})
		}
	}
	return img
}

// stager collects temporary files and commits them under their final
// names only when every write succeeded.
type stager struct {
	dir     string
	staged  []string // temp paths, parallel to finals
	finals  []string
	renamed []string
}

func (s *stager) stage(final string, write func(*os.File) error) error {
	f, err := os.CreateTemp(s.dir, ".stage-*")
	if err != nil {
		return fmt.Errorf("%w: stage %s: %v", ErrIOFailure, final, err)
	}
	s.staged = append(s.staged, f.Name())
	s.finals = append(s.finals, final)
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %v", ErrIOFailure, final, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIOFailure, final, err)
	}
	return nil
}

func (s *stager) rename() error {
	for i, tmp := range s.staged {
		if err := os.Rename(tmp, s.finals[i]); err != nil {
			// roll back already-committed files so no partial set remains
			for _, done := range s.renamed {
				os.Remove(done)
			}
			s.renamed = nil
			return fmt.Errorf("%w: commit %s: %v", ErrIOFailure, s.finals[i], err)
		}
		s.renamed = append(s.renamed, s.finals[i])
	}
	s.staged = nil
	return nil
}

func (s *stager) cleanup() {
	for _, tmp := range s.staged {
		os.Remove(tmp)
	}
}
