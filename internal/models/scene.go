package models

import (
	"fmt"
	"strings"
	"time"
)

// Scene represents a single satellite capture returned by the imagery search.
type Scene struct {
	ID           string    `json:"id"`             // e.g. "20250530_002244_03_24bd"
	ItemType     string    `json:"item_type"`      // e.g. "SkySatCollect"
	Acquired     time.Time `json:"acquired"`       // capture time, UTC
	SatelliteID  string    `json:"satellite_id"`   // e.g. "2449"
	CloudCover   float64   `json:"cloud_cover"`    // fraction 0..1
	VisiblePct   float64   `json:"visible_percent"` // 0..100
	ClearPct     float64   `json:"clear_percent"`   // 0..100
	GSD          float64   `json:"gsd"`            // ground sample distance, metres
	ViewAngle    float64   `json:"view_angle"`
	SunElevation float64   `json:"sun_elevation"`
	SunAzimuth   float64   `json:"sun_azimuth"`
}

// scene IDs encode the capture timestamp as YYYYMMDD_HHMMSS or as a
// continuous digit run for older archive items
const sceneTimeLayout = "20060102150405"

// AcquiredTimeFromID recovers the UTC capture time embedded in a scene ID.
func AcquiredTimeFromID(itemID string) (time.Time, error) {
	compact := itemID
	if parts := strings.Split(itemID, "_"); len(parts) >= 2 {
		compact = parts[0] + parts[1]
	}
	if len(compact) < len(sceneTimeLayout) {
		return time.Time{}, fmt.Errorf("scene ID %q does not encode a timestamp", itemID)
	}
	t, err := time.Parse(sceneTimeLayout, compact[:len(sceneTimeLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("scene ID %q: %w", itemID, err)
	}
	return t, nil
}

// AcquiredDate returns the capture date formatted for display and export.
func (s Scene) AcquiredDate() string {
	return s.Acquired.UTC().Format("2006-01-02")
}

// AcquiredClock returns the capture time of day formatted for display and export.
func (s Scene) AcquiredClock() string {
	return s.Acquired.UTC().Format("15:04:05")
}
