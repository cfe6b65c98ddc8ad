package grid

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	_ "github.com/jbuchbinder/gopnm"
	yaml "gopkg.in/yaml.v2"
)

// ReadMetadata parses a map.yaml record.
func ReadMetadata(yamlPath string) (Metadata, error) {
	var meta Metadata
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		return meta, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return meta, fmt.Errorf("%w: parse %s: %v", ErrIOFailure, yamlPath, err)
	}
	return meta, nil
}

// ReadArtifacts reads a map.yaml and its referenced raster back into an
// occupancy grid. Cells at the unexplored mid-gray and above count as
// Interior, everything darker as Exterior.
func ReadArtifacts(yamlPath string) (*OccupancyGrid, Metadata, error) {
	meta, err := ReadMetadata(yamlPath)
	if err != nil {
		return nil, meta, err
	}

	imgPath := filepath.Join(filepath.Dir(yamlPath), meta.Image)
	file, err := os.Open(imgPath)
	if err != nil {
		return nil, meta, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, meta, fmt.Errorf("%w: decode %s: %v", ErrIOFailure, imgPath, err)
	}

	bound := img.Bounds()
	g := NewOccupancyGrid(bound.Dx(), bound.Dy())
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			pixel := color.GrayModel.Convert(img.At(bound.Min.X+col, bound.Min.Y+row)).(color.Gray).Y
			if pixel >= interiorGray {
				g.set(col, row, Interior)
			}
		}
	}
	return g, meta, nil
}
