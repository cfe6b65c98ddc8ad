package osm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fukurin00/geo_map_provider/projection"
)

const fixture = `{
  "elements": [
    {"type": "node", "id": 1, "lat": 53.1120, "lon": 8.8290},
    {"type": "node", "id": 2, "lat": 53.1120, "lon": 8.8310},
    {"type": "node", "id": 3, "lat": 53.1130, "lon": 8.8310},
    {"type": "node", "id": 4, "lat": 53.1130, "lon": 8.8290},
    {"type": "node", "id": 5, "lat": 53.1140, "lon": 8.8290},
    {"type": "way", "id": 10, "nodes": [1, 2, 3, 4, 1],
     "tags": {"natural": "water", "name": "Uni See", "loc_name": "Bremen"}},
    {"type": "way", "id": 11, "nodes": [1, 2, 5],
     "tags": {"natural": "water", "name": "open chain"}}
  ]
}`

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Contains(t, r.Form.Get("data"), `way["natural"="water"]`)
		w.Write([]byte(fixture))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchLayer(t *testing.T) {
	srv := testServer(t)
	client := &Client{Endpoint: srv.URL, HTTP: srv.Client()}

	center := projection.GeoPoint{Lat: 53.1125, Lon: 8.8300}
	boundaries, err := client.FetchLayer(context.Background(), center, 200, "water")
	require.NoError(t, err)

	// only the closed way survives
	require.Len(t, boundaries, 1)
	b := boundaries[0]
	assert.Equal(t, "Uni See", b.Name)
	assert.True(t, b.Ring.Closed())

	points := b.Points()
	require.Len(t, points, 4)
	assert.Equal(t, projection.GeoPoint{Lat: 53.1120, Lon: 8.8290}, points[0])
	assert.Equal(t, projection.GeoPoint{Lat: 53.1130, Lon: 8.8290}, points[3])
}

func TestFetchLayerUnknownLayer(t *testing.T) {
	client := &Client{Endpoint: "http://localhost:1", HTTP: http.DefaultClient}
	_, err := client.FetchLayer(context.Background(), projection.GeoPoint{}, 200, "lava")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lava")
}

func TestFetchLayerInvalidCenter(t *testing.T) {
	client := NewClient()
	_, err := client.FetchLayer(context.Background(), projection.GeoPoint{Lat: 99}, 200, "water")
	assert.ErrorIs(t, err, projection.ErrInvalidCoordinate)
}

func TestFetchLayerServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too busy", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	client := &Client{Endpoint: srv.URL, HTTP: srv.Client()}
	_, err := client.FetchLayer(context.Background(), projection.GeoPoint{Lat: 0, Lon: 0}, 200, "water")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestBoundaryFileName(t *testing.T) {
	b := Boundary{Tags: map[string]string{"name": "Uni See", "loc_name": "Bremen"}}
	assert.Equal(t, "Uni_See_Bremen.csv", b.FileName())

	assert.Equal(t, "boundary.csv", Boundary{Tags: map[string]string{}}.FileName())
}
