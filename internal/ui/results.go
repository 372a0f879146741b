package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/htarver/tidesat/internal/geo"
	"github.com/htarver/tidesat/internal/models"
	"github.com/htarver/tidesat/internal/results"
)

// buildResultsTable creates the scene table
func buildResultsTable(rows []results.Row, height int) table.Model {
	columns := []table.Column{
		{Title: "Acquired (UTC)", Width: 16},
		{Title: "Item ID", Width: 26},
		{Title: "Cloud%", Width: 6},
		{Title: "Vis%", Width: 5},
		{Title: "GSD", Width: 5},
		{Title: "Tide m", Width: 6},
		{Title: "Mark", Width: 11},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows(rows)),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colorPrimary).
		Bold(false)
	t.SetStyles(s)

	return t
}

// tableRows converts result rows to table rows
func tableRows(rows []results.Row) []table.Row {
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		tide := "-"
		if r.HasTide {
			tide = fmt.Sprintf("%.2f", r.TideHeight)
		}
		out[i] = table.Row{
			r.Scene.Acquired.Format("2006-01-02 15:04"),
			r.Scene.ID,
			fmt.Sprintf("%.0f", r.Scene.CloudCover*100),
			fmt.Sprintf("%.0f", r.Scene.VisiblePct),
			fmt.Sprintf("%.2f", r.Scene.GSD),
			tide,
			string(r.Exposure),
		}
	}
	return out
}

// handleResults handles keyboard input in the results state
func (m Model) handleResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if len(m.rows) > 0 {
			m.detailIndex = m.resultsTable.Cursor()
			m.state = StateDetail
		}
		return m, nil

	case "esc":
		m.state = StateForm
		m.statusMsg = ""
		return m, nil

	case "m":
		return m.markRow(m.resultsTable.Cursor(), models.ExposureExposed)
	case "n":
		return m.markRow(m.resultsTable.Cursor(), models.ExposureNotExposed)
	case "c":
		return m.markRow(m.resultsTable.Cursor(), models.ExposureNotMarked)

	case "s":
		m.tideSortDesc = !m.tideSortDesc
		results.SortByTide(m.rows, m.tideSortDesc)
		m.resultsTable.SetRows(tableRows(m.rows))
		m.setStatus(fmt.Sprintf("Sorted by tide height %s", sortDirection(m.tideSortDesc)), false)
		return m, nil

	case "t":
		m.timeSortDesc = !m.timeSortDesc
		results.SortByTime(m.rows, m.timeSortDesc)
		m.resultsTable.SetRows(tableRows(m.rows))
		m.setStatus(fmt.Sprintf("Sorted by capture time %s", sortDirection(m.timeSortDesc)), false)
		return m, nil

	case "e":
		if len(m.rows) == 0 {
			return m, nil
		}
		m.setStatus("Exporting CSV...", false)
		return m, exportResultsCSV(m.cfg.Export.Dir, m.rows)

	case "p":
		row, ok := m.rowAt(m.resultsTable.Cursor())
		if !ok {
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Building preview for %s...", row.Scene.ID), false)
		return m, savePreview(m.tiles, row.Scene.ItemType, row.Scene.ID, m.center, m.pending.gridSize, m.cfg.Export.Dir)

	case "f":
		aoi, err := geo.ComputeAOI(m.center.Lat, m.center.Lon, m.pending.gridSize)
		if err != nil {
			m.setStatus("AOI unavailable: "+err.Error(), true)
			return m, nil
		}
		m.setStatus("Writing AOI shapefile...", false)
		return m, saveAOIShapefile(m.cfg.Export.Dir, m.siteLabel(), aoi)
	}

	var cmd tea.Cmd
	m.resultsTable, cmd = m.resultsTable.Update(msg)
	return m, cmd
}

// markRow persists a mark for the row at idx
func (m Model) markRow(idx int, status models.Exposure) (tea.Model, tea.Cmd) {
	row, ok := m.rowAt(idx)
	if !ok {
		return m, nil
	}
	var siteID int64
	if m.currentSite != nil {
		siteID = m.currentSite.ID
	}
	return m, markExposure(m.exposures, row.Scene.ID, siteID, status)
}

// rowAt bounds-checks an index into the result rows
func (m Model) rowAt(idx int) (results.Row, bool) {
	if idx < 0 || idx >= len(m.rows) {
		return results.Row{}, false
	}
	return m.rows[idx], true
}

func sortDirection(descending bool) string {
	if descending {
		return "descending"
	}
	return "ascending"
}

// viewResults renders the result table
func (m Model) viewResults() string {
	title := titleStyle.Render("Search Results")

	where := m.locationName
	if where == "" {
		where = fmt.Sprintf("%.4f, %.4f", m.center.Lat, m.center.Lon)
	}
	subtitle := mutedStyle.Render(fmt.Sprintf("%d scenes near %s", len(m.rows), where))

	var sections []string
	sections = append(sections, title, subtitle)

	if len(m.series) > 0 {
		tideNote := fmt.Sprintf("Tide series: %d samples", len(m.series))
		if m.skippedRows > 0 {
			tideNote += fmt.Sprintf(", %d rows skipped", m.skippedRows)
		}
		sections = append(sections, mutedStyle.Render(tideNote))
	}

	sections = append(sections, "", m.resultsTable.View())

	if m.statusMsg != "" {
		style := successStyle
		if m.statusErr {
			style = errorStyle
		}
		sections = append(sections, "", style.Render(m.statusMsg))
	}

	help := helpStyle.Render("Enter: Detail • M/N/C: Mark • S/T: Sort • E: CSV • P: Preview • F: Shapefile • Esc: New search • Q: Quit")
	sections = append(sections, "", help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
