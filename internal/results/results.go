// Package results joins imagery search hits with tide data and exposure
// marks, and orders them for display and export.
package results

import (
	"sort"
	"time"

	"github.com/htarver/tidesat/internal/models"
	"github.com/htarver/tidesat/internal/tides"
)

// Row pairs a scene with the tide sample nearest its capture time.
// HasTide is false when no sample fell within the matching gap, in which
// case TideHeight and TideTime are meaningless.
type Row struct {
	Scene      models.Scene    `json:"scene"`
	TideHeight float64         `json:"tide_height,omitempty"`
	TideTime   time.Time       `json:"tide_time,omitempty"`
	HasTide    bool            `json:"has_tide"`
	Exposure   models.Exposure `json:"exposure"`
}

// BuildRows correlates scenes against a tide series. A scene gets a tide
// height only when the nearest sample is within maxGap of the capture time;
// scenes outside every sample's reach stay unmatched rather than inheriting
// a stale reading. marks carries saved exposure statuses keyed by item ID
// and may be nil.
func BuildRows(scenes []models.Scene, series tides.Series, maxGap time.Duration, marks map[string]models.Exposure) []Row {
	rows := make([]Row, 0, len(scenes))
	for _, sc := range scenes {
		row := Row{Scene: sc, Exposure: models.ExposureNotMarked}
		if status, ok := marks[sc.ID]; ok && status.Valid() {
			row.Exposure = status
		}
		if sample, err := series.NearestHeight(sc.Acquired); err == nil {
			gap := sc.Acquired.Sub(sample.Time)
			if gap < 0 {
				gap = -gap
			}
			if gap <= maxGap {
				row.TideHeight = sample.Height
				row.TideTime = sample.Time
				row.HasTide = true
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// SortByTide orders rows by tide height. Rows without a tide match always
// sort last, in either direction.
func SortByTide(rows []Row, descending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.HasTide != b.HasTide {
			return a.HasTide
		}
		if !a.HasTide {
			return false
		}
		if descending {
			return a.TideHeight > b.TideHeight
		}
		return a.TideHeight < b.TideHeight
	})
}

// SortByTime orders rows by capture time.
func SortByTime(rows []Row, descending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		if descending {
			return rows[i].Scene.Acquired.After(rows[j].Scene.Acquired)
		}
		return rows[i].Scene.Acquired.Before(rows[j].Scene.Acquired)
	})
}
