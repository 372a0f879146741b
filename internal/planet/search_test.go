package planet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/htarver/tidesat/internal/geo"
)

func testAOI(t *testing.T) geo.Polygon {
	t.Helper()
	aoi, err := geo.ComputeAOI(-27.33, 153.19, 3)
	if err != nil {
		t.Fatalf("ComputeAOI() error = %v", err)
	}
	return aoi
}

func TestNewDataClient(t *testing.T) {
	client := NewDataClient("", "PLAKtest")

	if client == nil {
		t.Fatal("NewDataClient() returned nil")
	}
	if client.baseURL != "https://api.planet.com" {
		t.Errorf("baseURL = %s, unexpected value", client.baseURL)
	}
	if client.httpClient.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", client.httpClient.Timeout)
	}
}

func TestPlanetDataClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/v1/quick-search" {
			t.Errorf("path = %s, want /data/v1/quick-search", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("method = %s, want POST", r.Method)
		}

		// API key rides as the basic auth username
		user, _, ok := r.BasicAuth()
		if !ok || user != "PLAKtest" {
			t.Errorf("basic auth user = %q, want PLAKtest", user)
		}

		var req quickSearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding search request: %v", err)
		}
		if len(req.ItemTypes) != 1 || req.ItemTypes[0] != "SkySatCollect" {
			t.Errorf("item_types = %v, want [SkySatCollect]", req.ItemTypes)
		}
		if req.Filter.Type != "AndFilter" {
			t.Errorf("filter type = %s, want AndFilter", req.Filter.Type)
		}

		w.Header().Set("Content-Type", "application/json")
		data, err := os.ReadFile("testdata/planet_search_response.json")
		if err != nil {
			t.Fatalf("reading fixture: %v", err)
		}
		w.Write(data)
	}))
	defer server.Close()

	client := NewDataClient(server.URL, "PLAKtest")

	scenes, err := client.Search(context.Background(), SearchParams{
		AOI:        testAOI(t),
		Start:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		MinVisible: 80,
		ItemType:   "SkySatCollect",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(scenes) != 2 {
		t.Fatalf("len(scenes) = %d, want 2", len(scenes))
	}

	first := scenes[0]
	if first.ID != "20250530_002244_03_24bd" {
		t.Errorf("ID = %s, want 20250530_002244_03_24bd", first.ID)
	}
	wantAcquired := time.Date(2025, 5, 30, 0, 22, 44, 95000000, time.UTC)
	if !first.Acquired.Equal(wantAcquired) {
		t.Errorf("Acquired = %v, want %v", first.Acquired, wantAcquired)
	}
	if first.VisiblePct != 98.0 {
		t.Errorf("VisiblePct = %v, want 98.0", first.VisiblePct)
	}
	if first.SatelliteID != "2449" {
		t.Errorf("SatelliteID = %s, want 2449", first.SatelliteID)
	}
	if first.GSD != 0.72 {
		t.Errorf("GSD = %v, want 0.72", first.GSD)
	}
}

func TestPlanetDataClient_SearchPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/data/v1/quick-search":
			fmt.Fprintf(w, `{
				"features": [{"id": "20250530_002244_03_24bd", "properties": {"acquired": "2025-05-30T00:22:44Z", "item_type": "SkySatCollect"}}],
				"_links": {"_next": "%s/page2"}
			}`, server.URL)
		case "/page2":
			if r.Method != "GET" {
				t.Errorf("pagination method = %s, want GET", r.Method)
			}
			fmt.Fprint(w, `{
				"features": [{"id": "20250512_231858_94_24f3", "properties": {"acquired": "2025-05-12T23:18:58Z", "item_type": "SkySatCollect"}}],
				"_links": {"_next": ""}
			}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewDataClient(server.URL, "PLAKtest")

	scenes, err := client.Search(context.Background(), SearchParams{
		AOI:      testAOI(t),
		Start:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		ItemType: "SkySatCollect",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(scenes) != 2 {
		t.Fatalf("len(scenes) = %d, want 2 across pages", len(scenes))
	}
	if scenes[1].ID != "20250512_231858_94_24f3" {
		t.Errorf("second page scene ID = %s, want 20250512_231858_94_24f3", scenes[1].ID)
	}
}

func TestPlanetDataClient_SearchFallsBackToIDTimestamp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"features": [{"id": "20240623004021272478", "properties": {"item_type": "SkySatCollect"}}],
			"_links": {"_next": ""}
		}`)
	}))
	defer server.Close()

	client := NewDataClient(server.URL, "PLAKtest")

	scenes, err := client.Search(context.Background(), SearchParams{
		AOI:      testAOI(t),
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ItemType: "SkySatCollect",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := time.Date(2024, 6, 23, 0, 40, 21, 0, time.UTC)
	if !scenes[0].Acquired.Equal(want) {
		t.Errorf("Acquired = %v, want %v from scene ID", scenes[0].Acquired, want)
	}
}

func TestPlanetDataClient_SearchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "auth required"}`))
	}))
	defer server.Close()

	client := NewDataClient(server.URL, "bad-key")

	_, err := client.Search(context.Background(), SearchParams{
		AOI:      testAOI(t),
		ItemType: "SkySatCollect",
	})
	if err == nil {
		t.Error("Expected error for unauthorized search, got nil")
	}
}
