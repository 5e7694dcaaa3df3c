package route

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Fetcher resolves the routed path between two points. Implementations are
// treated as opaque remote calls: they may fail, and results may arrive after
// the caller no longer wants them.
type Fetcher interface {
	FetchRoute(ctx context.Context, from, to orb.Point, profile Profile) (Segment, error)
}

// OSRMFetcher fetches segments from an OSRM-compatible HTTP endpoint.
type OSRMFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewOSRMFetcher creates a fetcher for the given base URL, e.g.
// "https://router.example.com".
func NewOSRMFetcher(baseURL string) *OSRMFetcher {
	return &OSRMFetcher{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// osrmResponse is the subset of the OSRM route response the engine needs.
type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry json.RawMessage `json:"geometry"`
		Distance float64         `json:"distance"`
		Duration float64         `json:"duration"`
	} `json:"routes"`
	Waypoints []struct {
		Location [2]float64 `json:"location"`
	} `json:"waypoints"`
}

// FetchRoute requests the route from→to for the given profile.
func (f *OSRMFetcher) FetchRoute(ctx context.Context, from, to orb.Point, profile Profile) (Segment, error) {
	url := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=full&geometries=geojson",
		f.BaseURL, profile, from[0], from[1], to[0], to[1])

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Segment{}, fmt.Errorf("building route request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return Segment{}, fmt.Errorf("route request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Segment{}, fmt.Errorf("route request: status %d", resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Segment{}, fmt.Errorf("decoding route response: %w", err)
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		return Segment{}, fmt.Errorf("route request: backend code %q", body.Code)
	}

	g, err := geojson.UnmarshalGeometry(body.Routes[0].Geometry)
	if err != nil {
		return Segment{}, fmt.Errorf("decoding route geometry: %w", err)
	}
	line, ok := g.Geometry().(orb.LineString)
	if !ok {
		return Segment{}, fmt.Errorf("route geometry: want LineString, got %T", g.Geometry())
	}

	seg := Segment{
		Geometry: line,
		Distance: body.Routes[0].Distance,
		Duration: body.Routes[0].Duration,
	}
	for _, wp := range body.Waypoints {
		seg.SnappedWaypoints = append(seg.SnappedWaypoints, orb.Point{wp.Location[0], wp.Location[1]})
	}
	return seg, nil
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, from, to orb.Point, profile Profile) (Segment, error)

func (fn FetcherFunc) FetchRoute(ctx context.Context, from, to orb.Point, profile Profile) (Segment, error) {
	return fn(ctx, from, to, profile)
}
