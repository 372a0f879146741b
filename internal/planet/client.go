package planet

import (
	"context"
	"time"

	"github.com/htarver/tidesat/internal/geo"
	"github.com/htarver/tidesat/internal/models"
)

// SearchClient defines the interface for searching the imagery catalog
type SearchClient interface {
	// Search retrieves all scenes matching the given parameters, following
	// result pagination to the end
	Search(ctx context.Context, params SearchParams) ([]models.Scene, error)
}

// OrderClient defines the interface for placing and tracking imagery orders
type OrderClient interface {
	// CreateOrder submits a clip-and-ship order for a single scene
	CreateOrder(ctx context.Context, req OrderParams) (*models.Order, error)

	// GetOrder retrieves the current state of an order
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)

	// WaitForOrder polls an order until it reaches a terminal state
	WaitForOrder(ctx context.Context, orderID string, interval time.Duration) (*models.Order, error)
}

// TileClient defines the interface for fetching preview map tiles
type TileClient interface {
	// FetchTile retrieves one rendered PNG tile for a scene
	FetchTile(ctx context.Context, itemType, itemID string, tile geo.Tile) ([]byte, error)
}

// SearchParams describes a catalog search
type SearchParams struct {
	AOI        geo.Polygon // search footprint
	Start      time.Time   // acquired range lower bound
	End        time.Time   // acquired range upper bound
	MinVisible float64     // visible_percent lower bound, 0-100
	ItemType   string      // e.g. "SkySatCollect"
}

// OrderParams describes a clip-and-ship order
type OrderParams struct {
	Name     string
	ItemID   string
	ItemType string
	ClipAOI  geo.Polygon // empty polygon orders the full scene
}
