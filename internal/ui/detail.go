package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/htarver/tidesat/internal/models"
	"github.com/htarver/tidesat/internal/results"
)

// tideChartWindow is how far either side of the capture time the chart covers.
const tideChartWindow = 6 * time.Hour

// handleDetail handles keyboard input in the scene detail state
func (m Model) handleDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = StateResults
		return m, nil

	case "m":
		return m.markRow(m.detailIndex, models.ExposureExposed)
	case "n":
		return m.markRow(m.detailIndex, models.ExposureNotExposed)
	case "c":
		return m.markRow(m.detailIndex, models.ExposureNotMarked)

	case "p":
		row, ok := m.rowAt(m.detailIndex)
		if !ok {
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Building preview for %s...", row.Scene.ID), false)
		return m, savePreview(m.tiles, row.Scene.ItemType, row.Scene.ID, m.center, m.pending.gridSize, m.cfg.Export.Dir)
	}

	return m, nil
}

// viewDetail renders one scene's metadata above its tide context chart
func (m Model) viewDetail() string {
	row, ok := m.rowAt(m.detailIndex)
	if !ok {
		return errorStyle.Render("No scene selected")
	}
	s := row.Scene

	title := titleStyle.Render("Scene " + s.ID)

	kv := func(label, value string) string {
		return labelStyle.Width(14).Render(label) + valueStyle.Render(value)
	}

	tide := "no tide match"
	if row.HasTide {
		tide = fmt.Sprintf("%.2f m at %s", row.TideHeight, row.TideTime.UTC().Format("15:04 UTC"))
	}

	meta := []string{
		kv("Acquired", s.Acquired.UTC().Format("2006-01-02 15:04:05 UTC")),
		kv("Item type", s.ItemType),
		kv("Satellite", s.SatelliteID),
		kv("Cloud cover", fmt.Sprintf("%.1f%%", s.CloudCover*100)),
		kv("Visible", fmt.Sprintf("%.1f%%", s.VisiblePct)),
		kv("Clear", fmt.Sprintf("%.1f%%", s.ClearPct)),
		kv("GSD", fmt.Sprintf("%.2f m", s.GSD)),
		kv("View angle", fmt.Sprintf("%.1f deg", s.ViewAngle)),
		kv("Sun elevation", fmt.Sprintf("%.1f deg", s.SunElevation)),
		kv("Sun azimuth", fmt.Sprintf("%.1f deg", s.SunAzimuth)),
		kv("Tide", tide),
		kv("Mark", exposureStyle(string(row.Exposure)).Render(string(row.Exposure))),
	}

	chart := sectionHeaderStyle.Render("TIDE CONTEXT") + "\n" + m.renderTideChart(row, 64, 12)

	var status string
	if m.statusMsg != "" {
		style := successStyle
		if m.statusErr {
			style = errorStyle
		}
		status = style.Render(m.statusMsg)
	}

	help := helpStyle.Render("Esc: Back • M/N/C: Mark • P: Save preview • Q: Quit")

	sections := []string{title, "", strings.Join(meta, "\n"), "", chart}
	if status != "" {
		sections = append(sections, "", status)
	}
	sections = append(sections, "", help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderTideChart draws the tide curve around the scene's capture time.
// Falls back to plain text when the series is missing or too sparse to plot.
func (m Model) renderTideChart(row results.Row, width, height int) string {
	if len(m.series) == 0 {
		return mutedStyle.Render("No tide data loaded")
	}

	window := m.series.Window(row.Scene.Acquired, tideChartWindow)
	if len(window) < 2 {
		return mutedStyle.Render("Tide series does not cover this capture time")
	}

	minT, maxT := window[0].Time, window[len(window)-1].Time
	minY, maxY := window[0].Height, window[0].Height
	for _, sample := range window {
		if sample.Height < minY {
			minY = sample.Height
		}
		if sample.Height > maxY {
			maxY = sample.Height
		}
	}
	// Pad the Y range so the curve does not hug the frame
	minY -= 0.2
	maxY += 0.2

	chart := timeserieslinechart.New(width, height)
	chart.AxisStyle = chartAxisStyle
	chart.LabelStyle = chartLabelStyle
	chart.XLabelFormatter = timeserieslinechart.HourTimeLabelFormatter()
	chart.SetTimeRange(minT, maxT)
	chart.SetViewTimeRange(minT, maxT)
	chart.SetYRange(minY, maxY)
	chart.SetViewYRange(minY, maxY)
	chart.SetStyle(chartLineStyle)

	for _, sample := range window {
		chart.Push(timeserieslinechart.TimePoint{Time: sample.Time, Value: sample.Height})
	}
	chart.DrawBraille()

	return chart.View()
}
