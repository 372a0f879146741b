package planet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/htarver/tidesat/internal/models"
)

func TestPlanetOrdersClient_CreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/compute/ops/orders/v2" {
			t.Errorf("path = %s, want /compute/ops/orders/v2", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("method = %s, want POST", r.Method)
		}

		var req orderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding order request: %v", err)
		}
		if len(req.Products) != 1 {
			t.Fatalf("len(products) = %d, want 1", len(req.Products))
		}
		if req.Products[0].ProductBundle != "visual" {
			t.Errorf("product_bundle = %s, want visual", req.Products[0].ProductBundle)
		}
		if len(req.Tools) != 1 || req.Tools[0].Clip == nil {
			t.Error("order should carry a clip tool when an AOI is given")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprint(w, `{"id": "e9c2e844-3a97-4a5d-b9e7-4c8e5d1a2f33", "name": "AOI_clip_test", "state": "queued", "created_on": "2025-05-30T01:02:11Z"}`)
	}))
	defer server.Close()

	client := NewOrdersClient(server.URL, "PLAKtest")

	order, err := client.CreateOrder(context.Background(), OrderParams{
		Name:     "AOI_clip_test",
		ItemID:   "20250530_002244_03_24bd",
		ItemType: "SkySatCollect",
		ClipAOI:  testAOI(t),
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if order.ID != "e9c2e844-3a97-4a5d-b9e7-4c8e5d1a2f33" {
		t.Errorf("order ID = %s, unexpected value", order.ID)
	}
	if order.State != models.OrderQueued {
		t.Errorf("order state = %s, want queued", order.State)
	}
}

func TestPlanetOrdersClient_CreateOrder_NoClipWithoutAOI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req orderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding order request: %v", err)
		}
		if len(req.Tools) != 0 {
			t.Errorf("full scene order should carry no tools, got %d", len(req.Tools))
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "abc", "state": "queued"}`)
	}))
	defer server.Close()

	client := NewOrdersClient(server.URL, "PLAKtest")

	_, err := client.CreateOrder(context.Background(), OrderParams{
		Name:     "full_scene_test",
		ItemID:   "20250530_002244_03_24bd",
		ItemType: "SkySatCollect",
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
}

func TestPlanetOrdersClient_GetOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/compute/ops/orders/v2/e9c2e844-3a97-4a5d-b9e7-4c8e5d1a2f33"
		if r.URL.Path != wantPath {
			t.Errorf("path = %s, want %s", r.URL.Path, wantPath)
		}

		w.Header().Set("Content-Type", "application/json")
		data, err := os.ReadFile("testdata/planet_order_success.json")
		if err != nil {
			t.Fatalf("reading fixture: %v", err)
		}
		w.Write(data)
	}))
	defer server.Close()

	client := NewOrdersClient(server.URL, "PLAKtest")

	order, err := client.GetOrder(context.Background(), "e9c2e844-3a97-4a5d-b9e7-4c8e5d1a2f33")
	if err != nil {
		t.Fatalf("GetOrder() error = %v", err)
	}

	if order.State != models.OrderSuccess {
		t.Errorf("state = %s, want success", order.State)
	}
	if !order.State.Terminal() {
		t.Error("success state should be terminal")
	}
	if len(order.Assets) != 2 {
		t.Errorf("len(Assets) = %d, want 2", len(order.Assets))
	}
	if len(order.ItemIDs) != 1 || order.ItemIDs[0] != "20250530_002244_03_24bd" {
		t.Errorf("ItemIDs = %v, want [20250530_002244_03_24bd]", order.ItemIDs)
	}
}

func TestPlanetOrdersClient_WaitForOrder(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		state := "running"
		if calls.Add(1) >= 3 {
			state = "success"
		}
		fmt.Fprintf(w, `{"id": "abc", "state": "%s"}`, state)
	}))
	defer server.Close()

	client := NewOrdersClient(server.URL, "PLAKtest")

	order, err := client.WaitForOrder(context.Background(), "abc", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForOrder() error = %v", err)
	}

	if order.State != models.OrderSuccess {
		t.Errorf("final state = %s, want success", order.State)
	}
	if got := calls.Load(); got < 3 {
		t.Errorf("poll count = %d, want at least 3", got)
	}
}

func TestPlanetOrdersClient_DownloadResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, _, ok := r.BasicAuth(); !ok || user != "PLAKtest" {
			t.Errorf("basic auth user = %q, want PLAKtest", user)
		}
		fmt.Fprint(w, "zip-bytes-"+r.URL.Path)
	}))
	defer server.Close()

	client := NewOrdersClient(server.URL, "PLAKtest")
	dir := t.TempDir()

	order := &models.Order{
		ID:    "abc",
		State: models.OrderSuccess,
		Assets: []string{
			server.URL + "/results/20250530_002244_03_24bd_visual_clip.zip",
			server.URL + "/results/manifest.json",
		},
	}

	saved, err := client.DownloadResults(context.Background(), order, dir)
	if err != nil {
		t.Fatalf("DownloadResults() error = %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("len(saved) = %d, want 2", len(saved))
	}

	data, err := os.ReadFile(saved[0])
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if string(data) != "zip-bytes-/results/20250530_002244_03_24bd_visual_clip.zip" {
		t.Errorf("content = %q, unexpected", data)
	}
	if filepath.Base(saved[1]) != "manifest.json" {
		t.Errorf("second file = %s, want manifest.json", filepath.Base(saved[1]))
	}
}

func TestPlanetOrdersClient_DownloadResults_NoAssets(t *testing.T) {
	client := NewOrdersClient("http://unused.invalid", "PLAKtest")

	_, err := client.DownloadResults(context.Background(), &models.Order{ID: "abc"}, t.TempDir())
	if err == nil {
		t.Error("Expected error for an order with no result files, got nil")
	}
}

func TestPlanetOrdersClient_WaitForOrder_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "abc", "state": "running"}`)
	}))
	defer server.Close()

	client := NewOrdersClient(server.URL, "PLAKtest")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.WaitForOrder(ctx, "abc", 10*time.Millisecond)
	if err == nil {
		t.Error("Expected error when context expires before completion, got nil")
	}
}
