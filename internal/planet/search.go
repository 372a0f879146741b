package planet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/htarver/tidesat/internal/models"
)

const defaultBaseURL = "https://api.planet.com"

// PlanetDataClient implements SearchClient using the Planet Data API
type PlanetDataClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewDataClient creates a new Data API client. An empty baseURL selects
// the production endpoint.
func NewDataClient(baseURL, apiKey string) *PlanetDataClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &PlanetDataClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Search retrieves all scenes matching params, following pagination links
// until the catalog is exhausted.
func (c *PlanetDataClient) Search(ctx context.Context, params SearchParams) ([]models.Scene, error) {
	body, err := json.Marshal(quickSearchRequest{
		ItemTypes: []string{params.ItemType},
		Filter:    buildSearchFilter(params),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search filter: %w", err)
	}

	searchURL := fmt.Sprintf("%s/data/v1/quick-search", c.baseURL)

	var scenes []models.Scene
	next := ""
	for {
		var page searchResponse
		if next == "" {
			page, err = c.postSearch(ctx, searchURL, body)
		} else {
			page, err = c.getPage(ctx, next)
		}
		if err != nil {
			return nil, err
		}

		for _, feat := range page.Features {
			scenes = append(scenes, sceneFromFeature(feat))
		}

		next = page.Links.Next
		if next == "" {
			break
		}
	}

	return scenes, nil
}

func (c *PlanetDataClient) postSearch(ctx context.Context, url string, body []byte) (searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return searchResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doSearch(req)
}

func (c *PlanetDataClient) getPage(ctx context.Context, url string) (searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return searchResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	return c.doSearch(req)
}

func (c *PlanetDataClient) doSearch(req *http.Request) (searchResponse, error) {
	// API key travels as the basic auth username with an empty password
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return searchResponse{}, fmt.Errorf("failed to fetch search results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return searchResponse{}, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var page searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return searchResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return page, nil
}

// buildSearchFilter combines the date, coverage and geometry predicates
// into the AndFilter shape the Data API expects.
func buildSearchFilter(params SearchParams) searchFilter {
	return searchFilter{
		Type: "AndFilter",
		Config: []searchFilter{
			{
				Type:      "DateRangeFilter",
				FieldName: "acquired",
				Config: map[string]string{
					"gte": params.Start.UTC().Format(time.RFC3339),
					"lte": params.End.UTC().Format(time.RFC3339),
				},
			},
			{
				Type:      "RangeFilter",
				FieldName: "visible_percent",
				Config:    map[string]float64{"gte": params.MinVisible},
			},
			{
				Type:      "GeometryFilter",
				FieldName: "geometry",
				Config:    params.AOI.GeoJSON(),
			},
		},
	}
}

func sceneFromFeature(feat searchFeature) models.Scene {
	scene := models.Scene{
		ID:           feat.ID,
		ItemType:     feat.Properties.ItemType,
		SatelliteID:  feat.Properties.SatelliteID,
		CloudCover:   feat.Properties.CloudCover,
		VisiblePct:   feat.Properties.VisiblePercent,
		ClearPct:     feat.Properties.ClearPercent,
		GSD:          feat.Properties.GSD,
		ViewAngle:    feat.Properties.ViewAngle,
		SunElevation: feat.Properties.SunElevation,
		SunAzimuth:   feat.Properties.SunAzimuth,
	}

	if t, err := time.Parse(time.RFC3339, feat.Properties.Acquired); err == nil {
		scene.Acquired = t.UTC()
	} else if t, err := models.AcquiredTimeFromID(feat.ID); err == nil {
		// Some archive items omit the acquired property, the ID still
		// carries the capture timestamp
		scene.Acquired = t
	}

	return scene
}

// Internal types for the Data API

type quickSearchRequest struct {
	ItemTypes []string     `json:"item_types"`
	Filter    searchFilter `json:"filter"`
}

type searchFilter struct {
	Type      string      `json:"type"`
	FieldName string      `json:"field_name,omitempty"`
	Config    interface{} `json:"config"`
}

type searchFeature struct {
	ID         string `json:"id"`
	Properties struct {
		ItemType       string  `json:"item_type"`
		Acquired       string  `json:"acquired"`
		SatelliteID    string  `json:"satellite_id"`
		CloudCover     float64 `json:"cloud_cover"`
		VisiblePercent float64 `json:"visible_percent"`
		ClearPercent   float64 `json:"clear_percent"`
		GSD            float64 `json:"gsd"`
		ViewAngle      float64 `json:"view_angle"`
		SunElevation   float64 `json:"sun_elevation"`
		SunAzimuth     float64 `json:"sun_azimuth"`
	} `json:"properties"`
}

type searchResponse struct {
	Features []searchFeature `json:"features"`
	Links    struct {
		Next string `json:"_next"`
	} `json:"_links"`
}
