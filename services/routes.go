package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// RouteClient resolves routes between itinerary stops for the map display.
// It speaks the OSRM HTTP API; locations are "lat,lon" pairs.
type RouteClient struct {
	baseURL    string
	httpClient *http.Client
}

var routeClient *RouteClient

func InitRoutes() {
	baseURL := os.Getenv("OSRM_URL")
	if baseURL == "" {
		baseURL = "https://router.project-osrm.org"
	}
	routeClient = &RouteClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func GetRouteClient() *RouteClient {
	return routeClient
}

// RouteResult carries the resolved route for map rendering.
type RouteResult struct {
	DistanceMeters float64         `json:"distance_meters"`
	Duration       string          `json:"duration"`
	GeoJSON        json.RawMessage `json:"geo_json"`
}

var routeProfiles = map[string]string{
	"car":     "driving",
	"driving": "driving",
	"walk":    "foot",
	"walking": "foot",
	"bike":    "bike",
	"cycling": "bike",
}

// ComputeRoute resolves the route through the given "lat,lon" waypoints.
func (c *RouteClient) ComputeRoute(ctx context.Context, locations []string, mode string) (*RouteResult, error) {
	if len(locations) < 2 {
		return nil, fmt.Errorf("need at least two locations")
	}

	profile, ok := routeProfiles[strings.ToLower(mode)]
	if !ok {
		profile = "driving"
	}

	coords := make([]string, 0, len(locations))
	for _, loc := range locations {
		parts := strings.Split(loc, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("location %q is not lat,lon", loc)
		}
		// OSRM wants lon,lat order.
		coords = append(coords, strings.TrimSpace(parts[1])+","+strings.TrimSpace(parts[0]))
	}

	endpoint := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=geojson",
		c.baseURL, url.PathEscape(profile), strings.Join(coords, ";"))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing error (%d): %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Routes []struct {
			Distance float64         `json:"distance"`
			Duration float64         `json:"duration"`
			Geometry json.RawMessage `json:"geometry"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse route response: %w", err)
	}
	if len(parsed.Routes) == 0 {
		return nil, fmt.Errorf("no route found")
	}

	r := parsed.Routes[0]
	return &RouteResult{
		DistanceMeters: r.Distance,
		Duration:       (time.Duration(r.Duration) * time.Second).String(),
		GeoJSON:        r.Geometry,
	}, nil
}
