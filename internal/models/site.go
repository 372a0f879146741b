package models

import "time"

// Site represents a saved survey location.
// It can be a transient object from a geocoder lookup or a saved user configuration.
type Site struct {
	ID         int64     `json:"id"`           // Database Primary Key (0 if not saved)
	Name       string    `json:"name"`         // User-friendly name
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	GridSize   int       `json:"grid_size"`    // AOI side length in tiles, 1-9
	TidePortID int64     `json:"tide_port_id"` // nearest tide port (0 if unresolved)
	CreatedAt  time.Time `json:"created_at"`
}
