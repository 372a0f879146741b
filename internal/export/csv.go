// Package export writes search results and previews to files a GIS
// workflow can consume.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/htarver/tidesat/internal/models"
	"github.com/htarver/tidesat/internal/results"
)

// resultHeader is the column layout downstream spreadsheets expect.
var resultHeader = []string{
	"Item ID",
	"Acquired Date",
	"Acquired Time",
	"Cloud Cover (%)",
	"Visible Percent (%)",
	"Clear Percent (%)",
	"GSD (m)",
	"Tide Height (m)",
	"Satellite ID",
	"Item Type",
	"Exposure Status",
	"View Angle",
	"Sun Elevation",
	"Sun Azimuth",
}

// DefaultCSVName returns a timestamped file name for a results export.
func DefaultCSVName(now time.Time) string {
	return fmt.Sprintf("imagery_results_%s.csv", now.Format("20060102_150405"))
}

// WriteResultsCSV streams rows as CSV. Rows without a tide match get an
// empty Tide Height cell rather than a zero.
func WriteResultsCSV(w io.Writer, rows []results.Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(resultHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, row := range rows {
		tide := ""
		if row.HasTide {
			tide = fmt.Sprintf("%.2f", row.TideHeight)
		}
		exposure := row.Exposure
		if exposure == "" {
			exposure = models.ExposureNotMarked
		}

		s := row.Scene
		record := []string{
			s.ID,
			s.AcquiredDate(),
			s.AcquiredClock(),
			fmt.Sprintf("%.2f", s.CloudCover*100),
			fmt.Sprintf("%.1f", s.VisiblePct),
			fmt.Sprintf("%.1f", s.ClearPct),
			fmt.Sprintf("%.2f", s.GSD),
			tide,
			s.SatelliteID,
			s.ItemType,
			string(exposure),
			fmt.Sprintf("%.2f", s.ViewAngle),
			fmt.Sprintf("%.2f", s.SunElevation),
			fmt.Sprintf("%.2f", s.SunAzimuth),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row for %s: %w", s.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveResultsCSV writes rows to a new file at path.
func SaveResultsCSV(path string, rows []results.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteResultsCSV(f, rows); err != nil {
		return err
	}
	return f.Close()
}
