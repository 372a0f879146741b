// Package geocoding resolves place queries to coordinates.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org"
	userAgent      = "tidesat/1.0" // Required by Nominatim ToS
)

// Geocoder converts place queries to coordinates
type Geocoder struct {
	baseURL    string
	httpClient *http.Client
	lastCall   time.Time
	mu         sync.Mutex
}

// Location represents a geocoded location
type Location struct {
	Latitude  float64
	Longitude float64
	Name      string
}

// NewGeocoder creates a new geocoder
func NewGeocoder() *Geocoder {
	return &Geocoder{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// nominatimResponse represents the Nominatim API response
type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode converts a query to coordinates. Decimal "lat, lon" pairs resolve
// locally; anything else goes to the Nominatim API.
func (g *Geocoder) Geocode(ctx context.Context, query string) (*Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	if loc, ok := parseCoordinates(query); ok {
		return loc, nil
	}

	params := url.Values{}
	params.Add("format", "json")
	params.Add("limit", "1")
	params.Add("q", query)

	reqURL := fmt.Sprintf("%s/search?%s", g.baseURL, params.Encode())

	// Rate limiting: Nominatim requires 1 req/sec max
	g.mu.Lock()
	if !g.lastCall.IsZero() {
		elapsed := time.Since(g.lastCall)
		if elapsed < time.Second {
			time.Sleep(time.Second - elapsed)
		}
	}
	g.lastCall = time.Now()
	g.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Set required User-Agent header (Nominatim ToS requirement)
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim API returned status %d", resp.StatusCode)
	}

	var results []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no results found for '%s'", query)
	}

	result := results[0]

	var lat, lon float64
	if _, err := fmt.Sscanf(result.Lat, "%f", &lat); err != nil {
		return nil, fmt.Errorf("parsing latitude: %w", err)
	}
	if _, err := fmt.Sscanf(result.Lon, "%f", &lon); err != nil {
		return nil, fmt.Errorf("parsing longitude: %w", err)
	}

	return &Location{
		Latitude:  lat,
		Longitude: lon,
		Name:      result.DisplayName,
	}, nil
}

// parseCoordinates accepts decimal "lat, lon" pairs typed directly into a
// location field
func parseCoordinates(s string) (*Location, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, false
	}

	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLon != nil {
		return nil, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, false
	}

	return &Location{
		Latitude:  lat,
		Longitude: lon,
		Name:      fmt.Sprintf("%.4f, %.4f", lat, lon),
	}, true
}
