package planet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/htarver/tidesat/internal/models"
)

// DefaultPollInterval is how often WaitForOrder checks order state.
const DefaultPollInterval = 10 * time.Second

// PlanetOrdersClient implements OrderClient using the Planet Orders API
type PlanetOrdersClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOrdersClient creates a new Orders API client. An empty baseURL
// selects the production endpoint.
func NewOrdersClient(baseURL, apiKey string) *PlanetOrdersClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &PlanetOrdersClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateOrder submits a visual-bundle order for one scene, clipped to the
// AOI when one is given.
func (c *PlanetOrdersClient) CreateOrder(ctx context.Context, params OrderParams) (*models.Order, error) {
	orderReq := orderRequest{
		Name: params.Name,
		Products: []orderProduct{
			{
				ItemIDs:       []string{params.ItemID},
				ItemType:      params.ItemType,
				ProductBundle: "visual",
			},
		},
	}
	if len(params.ClipAOI) > 0 {
		orderReq.Tools = []orderTool{
			{Clip: &clipTool{AOI: params.ClipAOI.GeoJSON()}},
		}
	}

	body, err := json.Marshal(orderReq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	url := fmt.Sprintf("%s/compute/ops/orders/v2", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var orderResp orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if orderResp.ID == "" {
		return nil, fmt.Errorf("order accepted but no order ID returned")
	}

	return orderFromResponse(orderResp), nil
}

// GetOrder retrieves the current state of an order.
func (c *PlanetOrdersClient) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	url := fmt.Sprintf("%s/compute/ops/orders/v2/%s", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var orderResp orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return orderFromResponse(orderResp), nil
}

// WaitForOrder polls until the order reaches a terminal state or ctx is
// cancelled. Callers bound the wait with a context deadline.
func (c *PlanetOrdersClient) WaitForOrder(ctx context.Context, orderID string, interval time.Duration) (*models.Order, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		order, err := c.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order.State.Terminal() {
			return order, nil
		}

		select {
		case <-ctx.Done():
			return order, fmt.Errorf("waiting for order %s: %w", orderID, ctx.Err())
		case <-ticker.C:
		}
	}
}

// DownloadResults fetches every result file of a completed order into dir
// and returns the saved paths. The order must carry asset locations, which
// appear once the order reaches the success state.
func (c *PlanetOrdersClient) DownloadResults(ctx context.Context, order *models.Order, dir string) ([]string, error) {
	if len(order.Assets) == 0 {
		return nil, fmt.Errorf("order %s has no result files", order.ID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	// Result archives can be large, so the request context bounds the
	// download instead of the 30s client timeout
	dl := &http.Client{}

	var saved []string
	for i, location := range order.Assets {
		req, err := http.NewRequestWithContext(ctx, "GET", location, nil)
		if err != nil {
			return saved, fmt.Errorf("failed to create request: %w", err)
		}
		req.SetBasicAuth(c.apiKey, "")

		resp, err := dl.Do(req)
		if err != nil {
			return saved, fmt.Errorf("failed to download result: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return saved, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
		}

		path := filepath.Join(dir, resultFileName(location, i))
		f, err := os.Create(path)
		if err != nil {
			resp.Body.Close()
			return saved, fmt.Errorf("failed to create %s: %w", path, err)
		}
		_, err = io.Copy(f, resp.Body)
		resp.Body.Close()
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return saved, fmt.Errorf("failed to write %s: %w", path, err)
		}
		saved = append(saved, path)
	}
	return saved, nil
}

// resultFileName derives a local filename from a result URL, falling back
// to an index-based name when the URL path gives nothing usable.
func resultFileName(location string, idx int) string {
	if u, err := url.Parse(location); err == nil {
		if base := filepath.Base(u.Path); base != "." && base != "/" && base != "" {
			return base
		}
	}
	return fmt.Sprintf("result_%d", idx)
}

func orderFromResponse(resp orderResponse) *models.Order {
	order := &models.Order{
		ID:    resp.ID,
		Name:  resp.Name,
		State: models.OrderState(resp.State),
	}
	if t, err := time.Parse(time.RFC3339, resp.CreatedOn); err == nil {
		order.CreatedOn = t.UTC()
	}
	for _, p := range resp.Products {
		order.ItemIDs = append(order.ItemIDs, p.ItemIDs...)
	}
	for _, r := range resp.Links.Results {
		if r.Location != "" {
			order.Assets = append(order.Assets, r.Location)
		}
	}
	return order
}

// Internal types for the Orders API

type orderRequest struct {
	Name     string         `json:"name"`
	Products []orderProduct `json:"products"`
	Tools    []orderTool    `json:"tools,omitempty"`
}

type orderProduct struct {
	ItemIDs       []string `json:"item_ids"`
	ItemType      string   `json:"item_type"`
	ProductBundle string   `json:"product_bundle"`
}

type orderTool struct {
	Clip *clipTool `json:"clip,omitempty"`
}

type clipTool struct {
	AOI interface{} `json:"aoi"`
}

type orderResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	State     string         `json:"state"`
	CreatedOn string         `json:"created_on"`
	Products  []orderProduct `json:"products"`
	Links     struct {
		Results []struct {
			Location string `json:"location"`
			Name     string `json:"name"`
		} `json:"results"`
	} `json:"_links"`
}
