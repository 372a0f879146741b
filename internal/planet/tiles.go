package planet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/htarver/tidesat/internal/geo"
)

const defaultTilesURL = "https://tiles0.planet.com"

const tileCacheDuration = 15 * time.Minute

type tileCacheEntry struct {
	data      []byte
	fetchedAt time.Time
}

// PlanetTilesClient implements TileClient using the Planet tile server
type PlanetTilesClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      map[string]tileCacheEntry
	mu         sync.RWMutex
}

// NewTilesClient creates a new tile server client. An empty baseURL
// selects the production tile server.
func NewTilesClient(baseURL, apiKey string) *PlanetTilesClient {
	if baseURL == "" {
		baseURL = defaultTilesURL
	}
	return &PlanetTilesClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: make(map[string]tileCacheEntry),
	}
}

// FetchTile retrieves one rendered 256px PNG tile for a scene. Tiles are
// cached in memory so grid rebuilds and repeated previews of the same
// scene do not refetch.
func (c *PlanetTilesClient) FetchTile(ctx context.Context, itemType, itemID string, tile geo.Tile) ([]byte, error) {
	url := fmt.Sprintf("%s/data/v1/%s/%s/%d/%d/%d.png",
		c.baseURL, itemType, itemID, tile.Zoom, tile.X, tile.Y)

	// Check cache first
	c.mu.RLock()
	entry, ok := c.cache[url]
	c.mu.RUnlock()

	if ok && time.Since(entry.fetchedAt) < tileCacheDuration {
		return entry.data, nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tile server returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tile: %w", err)
	}

	// Store in cache
	c.mu.Lock()
	c.cache[url] = tileCacheEntry{data: data, fetchedAt: time.Now()}
	c.mu.Unlock()

	return data, nil
}
