// Package osm fetches closed-way boundary geometry from the Overpass
// API. It is a thin network collaborator: the core pipeline never touches
// it, it only produces waypoint sets the loader can feed in.
package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/fukurin00/geo_map_provider/projection"
)

// DefaultEndpoint is the public Overpass interpreter.
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// metersPerDegree approximates one degree of latitude, good enough for
// the small bounding boxes queried here.
const metersPerDegree = 111320.0

// Client queries one Overpass endpoint.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// NewClient returns a client for the public endpoint with a sane timeout.
func NewClient() *Client {
	return &Client{
		Endpoint: DefaultEndpoint,
		HTTP:     &http.Client{Timeout: 60 * time.Second},
	}
}

// Boundary is one closed way returned by a layer query. The ring stores
// (lon,lat) pairs in orb order.
type Boundary struct {
	Name string
	Tags map[string]string
	Ring orb.Ring
}

// Points returns the ring as geodetic waypoints, first==last vertex
// collapsed.
func (b Boundary) Points() []projection.GeoPoint {
	ring := b.Ring
	if ring.Closed() && len(ring) > 1 {
		ring = ring[:len(ring)-1]
	}
	pts := make([]projection.GeoPoint, 0, len(ring))
	for _, p := range ring {
		pts = append(pts, projection.GeoPoint{Lat: p.Y(), Lon: p.X()})
	}
	return pts
}

// FileName derives a CSV-friendly name from the way tags.
func (b Boundary) FileName() string {
	name := b.Tags["name"]
	if name == "" {
		name = "boundary"
	}
	if loc := b.Tags["loc_name"]; loc != "" {
		name += "_" + loc
	}
	return strings.ReplaceAll(name, " ", "_") + ".csv"
}

func layerFilter(layer string) (key, value string, err error) {
	switch layer {
	case "water":
		return "natural", "water", nil
	case "wood":
		return "natural", "wood", nil
	case "building":
		return "building", "yes", nil
	}
	return "", "", fmt.Errorf("unknown layer %q (want water, wood or building)", layer)
}

type element struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat"`
	Lon   float64           `json:"lon"`
	Nodes []int64           `json:"nodes"`
	Tags  map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []element `json:"elements"`
}

// FetchLayer queries all closed ways of the given layer within radius
// meters around a geodetic point.
func (c *Client) FetchLayer(ctx context.Context, center projection.GeoPoint, radius float64, layer string) ([]Boundary, error) {
	if err := projection.Validate(center); err != nil {
		return nil, err
	}
	key, value, err := layerFilter(layer)
	if err != nil {
		return nil, err
	}

	d := radius / metersPerDegree
	query := fmt.Sprintf(`[out:json];(way[%q=%q](%f,%f,%f,%f););out body;>;out skel qt;`,
		key, value, center.Lat-d, center.Lon-d, center.Lat+d, center.Lon+d)

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass status %s", resp.Status)
	}

	var data overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	return assembleBoundaries(data.Elements), nil
}

// assembleBoundaries joins way node references against the node table and
// keeps only closed loops.
func assembleBoundaries(elements []element) []Boundary {
	nodes := make(map[int64]orb.Point)
	for _, e := range elements {
		if e.Type == "node" {
			nodes[e.ID] = orb.Point{e.Lon, e.Lat}
		}
	}

	var out []Boundary
	for _, e := range elements {
		if e.Type != "way" || len(e.Nodes) < 4 {
			continue
		}
		ring := make(orb.Ring, 0, len(e.Nodes))
		complete := true
		for _, id := range e.Nodes {
			p, ok := nodes[id]
			if !ok {
				complete = false
				break
			}
			ring = append(ring, p)
		}
		if !complete || !ring.Closed() {
			continue
		}
		out = append(out, Boundary{Name: e.Tags["name"], Tags: e.Tags, Ring: ring})
	}
	return out
}
