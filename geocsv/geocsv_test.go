package geocsv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fukurin00/geo_map_provider/projection"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, "latitude,longitude\n53.1122,8.8297\n53.1125,8.8301\n53.1120,8.8305\n")

	points, err := Load(path)
	require.NoError(t, err)
	require.Len(t, points, 3)
	// order preserved
	assert.Equal(t, projection.GeoPoint{Lat: 53.1122, Lon: 8.8297}, points[0])
	assert.Equal(t, projection.GeoPoint{Lat: 53.1120, Lon: 8.8305}, points[2])
}

func TestLoadHeaderVariants(t *testing.T) {
	for _, header := range []string{"Latitude,Longitude", "LAT,LON", "lat,lng", "name,lat,lon"} {
		content := header + "\n"
		if header == "name,lat,lon" {
			content += "a,1.5,2.5\n"
		} else {
			content += "1.5,2.5\n"
		}
		points, err := Load(writeCSV(t, content))
		require.NoError(t, err, header)
		require.Len(t, points, 1)
		assert.Equal(t, projection.GeoPoint{Lat: 1.5, Lon: 2.5}, points[0])
	}
}

func TestLoadMissingColumns(t *testing.T) {
	_, err := Load(writeCSV(t, "x,y\n1,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude/longitude")
}

func TestLoadMalformedValue(t *testing.T) {
	_, err := Load(writeCSV(t, "lat,lon\nnot-a-number,8.83\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, projection.ErrInvalidCoordinate)
	assert.Contains(t, err.Error(), "not-a-number")
}

func TestLoadOutOfRange(t *testing.T) {
	_, err := Load(writeCSV(t, "lat,lon\n95.0,8.83\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, projection.ErrInvalidCoordinate)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	in := []projection.GeoPoint{
		{Lat: 53.1122, Lon: 8.8297},
		{Lat: -33.87, Lon: 151.21},
		{Lat: 0, Lon: 0},
	}
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
