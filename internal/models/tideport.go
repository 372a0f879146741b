package models

// TidePort represents a tide prediction station from the bundled registry.
type TidePort struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`   // e.g. "Brisbane Bar"
	Region    string  `json:"region"` // e.g. "QLD"
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
