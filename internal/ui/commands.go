package ui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/htarver/tidesat/internal/export"
	"github.com/htarver/tidesat/internal/exposure"
	"github.com/htarver/tidesat/internal/geo"
	"github.com/htarver/tidesat/internal/models"
	"github.com/htarver/tidesat/internal/mosaic"
	"github.com/htarver/tidesat/internal/planet"
	"github.com/htarver/tidesat/internal/ports"
	"github.com/htarver/tidesat/internal/results"
	"github.com/htarver/tidesat/internal/sites"
	"github.com/htarver/tidesat/internal/tides"
)

// geocodeLocation resolves the location field in the background
func geocodeLocation(geocoder sites.Geocoder, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		location, err := geocoder.Geocode(ctx, query)
		return geocodeMsg{location: location, err: err}
	}
}

// runSearch loads the tide file, searches the imagery catalog and joins the
// two into result rows
func runSearch(search planet.SearchClient, exposures *exposure.Repository, parser *tides.Parser, center geo.Point, p searchParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		aoi, err := geo.ComputeAOI(center.Lat, center.Lon, p.gridSize)
		if err != nil {
			return searchDoneMsg{err: err}
		}

		var series tides.Series
		var skipped int
		if p.tideFile != "" {
			parsed, err := parser.ParseFile(p.tideFile)
			if err != nil {
				return searchDoneMsg{err: fmt.Errorf("loading tide file: %w", err)}
			}
			series = parsed.Series
			skipped = len(parsed.Skipped)
		}

		end := time.Now().UTC()
		scenes, err := search.Search(ctx, planet.SearchParams{
			AOI:        aoi,
			Start:      end.AddDate(0, 0, -p.daysBack),
			End:        end,
			MinVisible: p.minVisible,
			ItemType:   p.itemType,
		})
		if err != nil {
			return searchDoneMsg{err: err}
		}

		marks, err := exposures.All()
		if err != nil {
			// Marks are a decoration on the results, not worth failing the search
			slog.Warn("loading exposure marks", "error", err)
		}

		rows := results.BuildRows(scenes, series, p.maxTideGap, marks)
		results.SortByTime(rows, true)
		return searchDoneMsg{rows: rows, series: series, skipped: skipped}
	}
}

// loadSavedSites reads the saved sites in the background
func loadSavedSites(svc *sites.Service) tea.Cmd {
	return func() tea.Msg {
		sites, err := svc.ListSites()
		return sitesLoadedMsg{sites: sites, err: err}
	}
}

// saveSite geocodes the form's location and saves it under name
func saveSite(svc *sites.Service, name, location string, gridSize int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		site, err := svc.CreateSite(ctx, name, location, gridSize)
		return siteSavedMsg{site: site, err: err}
	}
}

// deleteSite removes a saved site by name
func deleteSite(svc *sites.Service, name string) tea.Cmd {
	return func() tea.Msg {
		err := svc.DeleteSite(name)
		return siteDeletedMsg{name: name, err: err}
	}
}

// markExposure persists one exposure mark
func markExposure(repo *exposure.Repository, itemID string, siteID int64, status models.Exposure) tea.Cmd {
	return func() tea.Msg {
		err := repo.Mark(itemID, siteID, status)
		return exposureMarkedMsg{itemID: itemID, status: status, err: err}
	}
}

// exportResultsCSV writes the current rows to a timestamped CSV in dir
func exportResultsCSV(dir string, rows []results.Row) tea.Cmd {
	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportDoneMsg{err: fmt.Errorf("creating export dir: %w", err)}
		}
		path := filepath.Join(dir, export.DefaultCSVName(time.Now()))
		if err := export.SaveResultsCSV(path, rows); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

// savePreview fetches the preview mosaic for a scene and writes it as a
// georeferenced PNG
func savePreview(tiles planet.TileClient, itemType, itemID string, center geo.Point, gridSize int, dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		builder := mosaic.NewBuilder(tiles)
		mos, err := builder.Build(ctx, itemType, itemID, center, gridSize)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		mos.MarkCenter()

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportDoneMsg{err: fmt.Errorf("creating export dir: %w", err)}
		}
		path := filepath.Join(dir, fmt.Sprintf("preview_%s.png", itemID))
		if err := export.SaveMosaicPNG(path, mos); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

// saveAOIShapefile writes the current AOI footprint as a shapefile
func saveAOIShapefile(dir, name string, aoi geo.Polygon) tea.Cmd {
	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportDoneMsg{err: fmt.Errorf("creating export dir: %w", err)}
		}
		path := filepath.Join(dir, fmt.Sprintf("aoi_%s.shp", time.Now().Format("20060102_150405")))
		if err := export.SaveAOIShapefile(path, name, aoi); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

// initiateProvisioning starts the tide port registry build and hands its
// channels back to the update loop
func initiateProvisioning(dbPath, seedPath string) tea.Cmd {
	return func() tea.Msg {
		progressChan := make(chan string, 16)
		resultChan := make(chan error, 1)

		go func() {
			err := ports.ProvisionPortsDatabase(dbPath, seedPath, progressChan)
			close(progressChan)
			resultChan <- err
		}()

		return provisioningStartedMsg{progressChan: progressChan, resultChan: resultChan}
	}
}

// waitForProvisionStatus re-arms after each progress line
func waitForProvisionStatus(progressChan chan string) tea.Cmd {
	return func() tea.Msg {
		status, ok := <-progressChan
		if !ok {
			return nil
		}
		return provisionStatusMsg(status)
	}
}

// waitForProvisionResult delivers the job's final error
func waitForProvisionResult(resultChan chan error) tea.Cmd {
	return func() tea.Msg {
		return provisionResultMsg{err: <-resultChan}
	}
}
