// Package geocsv loads and saves boundary waypoints as CSV files with
// named latitude/longitude columns.
package geocsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fukurin00/geo_map_provider/projection"
)

func findColumn(header []string, names ...string) int {
	for i, h := range header {
		for _, n := range names {
			if strings.EqualFold(strings.TrimSpace(h), n) {
				return i
			}
		}
	}
	return -1
}

// Load reads waypoints from a CSV file. The header must name a latitude
// and a longitude column (lat/lon abbreviations accepted, any case).
// Point order is preserved.
func Load(path string) ([]projection.GeoPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	latCol := findColumn(header, "latitude", "lat")
	lonCol := findColumn(header, "longitude", "lon", "lng")
	if latCol < 0 || lonCol < 0 {
		return nil, fmt.Errorf("%s: no latitude/longitude columns in header %v", path, header)
	}

	var points []projection.GeoPoint
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line+1, err)
		}
		line++
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[latCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d latitude %q", projection.ErrInvalidCoordinate, line, rec[latCol])
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[lonCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d longitude %q", projection.ErrInvalidCoordinate, line, rec[lonCol])
		}
		p := projection.GeoPoint{Lat: lat, Lon: lon}
		if err := projection.Validate(p); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		points = append(points, p)
	}
	return points, nil
}

// Save writes waypoints with a Latitude,Longitude header, the format the
// loader reads back.
func Save(path string, points []projection.GeoPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Latitude", "Longitude"}); err != nil {
		return err
	}
	for _, p := range points {
		rec := []string{
			strconv.FormatFloat(p.Lat, 'f', -1, 64),
			strconv.FormatFloat(p.Lon, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
