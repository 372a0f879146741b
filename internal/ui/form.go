package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/htarver/tidesat/internal/config"
)

// Form field indexes
const (
	fieldSiteName = iota
	fieldLocation
	fieldGridSize
	fieldDaysBack
	fieldMinVisible
	fieldTideFile
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Site name",
	"Location",
	"Grid size (tiles)",
	"Days back",
	"Min visible %",
	"Tide file",
}

// searchParams is a validated snapshot of the form at submit time
type searchParams struct {
	location   string
	gridSize   int
	daysBack   int
	minVisible float64
	tideFile   string
	itemType   string
	maxTideGap time.Duration
}

// newFormInputs builds the form fields, seeded from config and flags
func newFormInputs(cfg *config.Config, siteName, location, tideFile string) []textinput.Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 200
		ti.Width = 46
		inputs[i] = ti
	}

	inputs[fieldSiteName].Placeholder = "optional, used by Ctrl+S"
	inputs[fieldSiteName].SetValue(siteName)
	inputs[fieldLocation].Placeholder = "-27.1781, 153.3697 or a place name"
	inputs[fieldLocation].SetValue(location)
	inputs[fieldGridSize].SetValue(strconv.Itoa(cfg.Search.GridSize))
	inputs[fieldDaysBack].SetValue(strconv.Itoa(cfg.Search.DaysBack))
	inputs[fieldMinVisible].SetValue(strconv.FormatFloat(cfg.Search.MinVisible, 'f', -1, 64))
	inputs[fieldTideFile].Placeholder = "tide CSV/TXT path (optional)"
	inputs[fieldTideFile].SetValue(tideFile)

	return inputs
}

// parseForm validates the form and returns a snapshot for the search
func (m Model) parseForm() (searchParams, error) {
	p := searchParams{
		location:   strings.TrimSpace(m.inputs[fieldLocation].Value()),
		tideFile:   strings.TrimSpace(m.inputs[fieldTideFile].Value()),
		itemType:   m.cfg.Search.ItemType,
		maxTideGap: time.Duration(m.cfg.Search.MaxTideGapMins) * time.Minute,
	}

	if p.location == "" {
		return p, fmt.Errorf("location is required")
	}

	grid, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldGridSize].Value()))
	if err != nil || grid < 1 || grid > 9 {
		return p, fmt.Errorf("grid size must be a whole number from 1 to 9")
	}
	p.gridSize = grid

	days, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldDaysBack].Value()))
	if err != nil || days <= 0 {
		return p, fmt.Errorf("days back must be a positive whole number")
	}
	p.daysBack = days

	vis, err := strconv.ParseFloat(strings.TrimSpace(m.inputs[fieldMinVisible].Value()), 64)
	if err != nil || vis < 0 || vis > 100 {
		return p, fmt.Errorf("min visible must be between 0 and 100")
	}
	p.minVisible = vis

	return p, nil
}

// handleForm handles keyboard input in the form state
func (m Model) handleForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Clear stale errors when typing
	if m.err != nil && msg.Type != tea.KeyEnter {
		m.err = nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		return m.submitSearch()
	case tea.KeyTab, tea.KeyDown:
		return m.focusField((m.focus + 1) % fieldCount)
	case tea.KeyShiftTab, tea.KeyUp:
		return m.focusField((m.focus - 1 + fieldCount) % fieldCount)
	}

	switch msg.String() {
	case "ctrl+s":
		name := strings.TrimSpace(m.inputs[fieldSiteName].Value())
		if name == "" {
			m.err = fmt.Errorf("site name is required to save a site")
			return m, nil
		}
		p, err := m.parseForm()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Saving site %q...", name)
		return m, saveSite(m.siteSvc, name, p.location, p.gridSize)

	case "ctrl+l":
		return m, loadSavedSites(m.siteSvc)
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// focusField moves focus between form fields
func (m Model) focusField(idx int) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = idx
	return m, m.inputs[m.focus].Focus()
}

// submitSearch validates the form and kicks off geocoding then search
func (m Model) submitSearch() (tea.Model, tea.Cmd) {
	p, err := m.parseForm()
	if err != nil {
		m.err = err
		return m, nil
	}
	if m.cfg.Planet.APIKey == "" {
		m.err = fmt.Errorf("no Planet API key configured (set PL_API_KEY)")
		return m, nil
	}

	// Marks are attributed to the current site, drop it once the form
	// names a different one
	if m.currentSite != nil && !strings.EqualFold(strings.TrimSpace(m.inputs[fieldSiteName].Value()), m.currentSite.Name) {
		m.currentSite = nil
	}

	m.pending = p
	m.err = nil
	m.statusMsg = ""
	m.state = StateSearching
	m.searchStatus = fmt.Sprintf("Resolving %q...", p.location)
	return m, tea.Batch(m.spinner.Tick, geocodeLocation(m.geocoder, p.location))
}

// viewForm renders the search form
func (m Model) viewForm() string {
	title := titleStyle.Render("tidesat")
	subtitle := mutedStyle.Render("Tide-correlated satellite imagery search")

	fields := make([]string, 0, fieldCount)
	for i := range m.inputs {
		label := labelStyle
		if i == m.focus {
			label = focusedLabelStyle
		}
		fields = append(fields, label.Render(fieldLabels[i])+"\n"+m.inputs[i].View())
	}
	form := formBoxStyle.Render(strings.Join(fields, "\n"))

	var sections []string
	sections = append(sections, title, subtitle, "", form)

	if m.err != nil {
		sections = append(sections, "", errorStyle.Render("✗ "+m.err.Error()))
	}
	if m.statusMsg != "" {
		sections = append(sections, "", successStyle.Render(m.statusMsg))
	}

	help := helpStyle.Render("Enter: Search • Tab: Next field • Ctrl+S: Save site • Ctrl+L: Saved sites • Ctrl+C: Quit")
	sections = append(sections, "", help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
