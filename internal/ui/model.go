package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/htarver/tidesat/internal/config"
	"github.com/htarver/tidesat/internal/exposure"
	"github.com/htarver/tidesat/internal/geo"
	"github.com/htarver/tidesat/internal/geocoding"
	"github.com/htarver/tidesat/internal/models"
	"github.com/htarver/tidesat/internal/planet"
	"github.com/htarver/tidesat/internal/ports"
	"github.com/htarver/tidesat/internal/results"
	"github.com/htarver/tidesat/internal/sites"
	"github.com/htarver/tidesat/internal/tides"
)

// AppState represents the current state of the application
type AppState int

const (
	StateForm AppState = iota
	StateSites
	StateSearching
	StateResults
	StateDetail
	StateProvisioning
	StateError
)

// Model is the main application model
type Model struct {
	cfg   *config.Config
	state AppState

	width  int
	height int
	err    error

	// form
	inputs []textinput.Model
	focus  int

	// search in flight
	pending      searchParams
	searchStatus string
	spinner      spinner.Model

	// resolved location and results
	center       geo.Point
	locationName string
	currentSite  *models.Site
	rows         []results.Row
	series       tides.Series
	skippedRows  int
	resultsTable table.Model
	detailIndex  int
	tideSortDesc bool
	timeSortDesc bool

	// saved sites
	siteList list.Model

	// status line under the active view
	statusMsg string
	statusErr bool

	// first run provisioning
	provisionChan   chan string
	provisionResult chan error
	provisionStatus string

	// backends
	geocoder  sites.Geocoder
	search    planet.SearchClient
	tiles     planet.TileClient
	siteSvc   *sites.Service
	exposures *exposure.Repository
	parser    *tides.Parser
}

// NewModel creates the initial application model. siteName, location and
// tideFile seed the form and may be empty.
func NewModel(cfg *config.Config, siteName, location, tideFile string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	geocoder := geocoding.NewGeocoder()

	inputs := newFormInputs(cfg, siteName, location, tideFile)
	inputs[fieldLocation].Focus()

	m := Model{
		cfg:          cfg,
		state:        StateForm,
		inputs:       inputs,
		focus:        fieldLocation,
		spinner:      s,
		timeSortDesc: true,
		geocoder:     geocoder,
		search:       planet.NewDataClient(cfg.Planet.BaseURL, cfg.Planet.APIKey),
		tiles:        planet.NewTilesClient(cfg.Planet.TilesURL, cfg.Planet.APIKey),
		siteSvc:      sites.NewService(cfg.Database.Path, ports.DefaultSeedPath, geocoder),
		exposures:    exposure.NewRepository(cfg.Database.Path),
		parser:       tides.NewParserWithOffset(cfg.Tides.LocalOffsetHours),
	}

	if needed, err := ports.NeedsProvisioning(cfg.Database.Path); err == nil && needed {
		m.state = StateProvisioning
		m.provisionStatus = "Preparing tide port registry..."
	}

	return m
}

// Init starts the first background work
func (m Model) Init() tea.Cmd {
	if m.state == StateProvisioning {
		return tea.Batch(m.spinner.Tick, initiateProvisioning(m.cfg.Database.Path, ports.DefaultSeedPath))
	}
	return textinput.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resultsTable.SetHeight(m.tableHeight())
		m.siteList.SetSize(msg.Width, m.listHeight())
		return m, nil

	case provisioningStartedMsg:
		m.state = StateProvisioning
		m.provisionChan = msg.progressChan
		m.provisionResult = msg.resultChan
		return m, tea.Batch(
			m.spinner.Tick,
			waitForProvisionStatus(msg.progressChan),
			waitForProvisionResult(msg.resultChan),
		)

	case provisionStatusMsg:
		m.provisionStatus = string(msg)
		return m, waitForProvisionStatus(m.provisionChan)

	case provisionResultMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("building tide port registry: %w", msg.err)
			m.state = StateError
			return m, nil
		}
		m.state = StateForm
		return m, textinput.Blink

	case geocodeMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = StateForm
			return m, nil
		}
		m.center = geo.Point{Lat: msg.location.Latitude, Lon: msg.location.Longitude}
		m.locationName = msg.location.Name
		m.searchStatus = fmt.Sprintf("Searching imagery near %s...", msg.location.Name)
		return m, runSearch(m.search, m.exposures, m.parser, m.center, m.pending)

	case searchDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = StateError
			return m, nil
		}
		m.rows = msg.rows
		m.series = msg.series
		m.skippedRows = msg.skipped
		m.tideSortDesc = false
		m.timeSortDesc = true
		m.resultsTable = buildResultsTable(m.rows, m.tableHeight())
		m.state = StateResults
		m.setStatus("", false)
		return m, nil

	case sitesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = StateError
			return m, nil
		}
		m.siteList = createSiteList(msg.sites, m.width, m.listHeight())
		m.state = StateSites
		return m, nil

	case siteSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.statusMsg = ""
			return m, nil
		}
		m.currentSite = msg.site
		m.setStatus(fmt.Sprintf("✓ Saved site %q", msg.site.Name), false)
		return m, nil

	case siteDeletedMsg:
		if msg.err != nil {
			m.setStatus("Delete failed: "+msg.err.Error(), true)
			return m, nil
		}
		if m.currentSite != nil && m.currentSite.Name == msg.name {
			m.currentSite = nil
		}
		return m, loadSavedSites(m.siteSvc)

	case exposureMarkedMsg:
		if msg.err != nil {
			m.setStatus("Mark failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.applyMark(msg.itemID, msg.status)
		m.resultsTable.SetRows(tableRows(m.rows))
		m.setStatus(fmt.Sprintf("Marked %s as %s", msg.itemID, msg.status), false)
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.setStatus("Export failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.setStatus("✓ Wrote "+msg.path, false)
		return m, nil

	case errMsg:
		m.err = msg.err
		m.state = StateError
		return m, nil

	case spinner.TickMsg:
		if m.state == StateSearching || m.state == StateProvisioning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes keys to the active state. Plain q only quits in states
// with no text entry so typed text never closes the app.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if m.state == StateResults || m.state == StateDetail || m.state == StateError {
			return m, tea.Quit
		}
	}

	switch m.state {
	case StateForm:
		return m.handleForm(msg)
	case StateSites:
		return m.handleSites(msg)
	case StateResults:
		return m.handleResults(msg)
	case StateDetail:
		return m.handleDetail(msg)
	case StateError:
		switch msg.String() {
		case "enter", "esc":
			m.err = nil
			m.state = StateForm
			return m, textinput.Blink
		}
	}

	return m, nil
}

// View renders the current state
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.state {
	case StateProvisioning:
		return m.viewProvisioning()
	case StateForm:
		return m.viewForm()
	case StateSites:
		return m.viewSites()
	case StateSearching:
		return m.viewSearching()
	case StateResults:
		return m.viewResults()
	case StateDetail:
		return m.viewDetail()
	case StateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewProvisioning() string {
	title := titleStyle.Render("First run setup")
	status := fmt.Sprintf("%s %s", m.spinner.View(), m.provisionStatus)
	note := mutedStyle.Render("Building the local tide port registry. This happens once.")
	help := helpStyle.Render("Ctrl+C: Quit")
	return lipgloss.JoinVertical(lipgloss.Left, title, "", status, note, "", help)
}

func (m Model) viewSearching() string {
	title := titleStyle.Render("Searching")
	status := fmt.Sprintf("%s %s", m.spinner.View(), m.searchStatus)
	help := helpStyle.Render("Ctrl+C: Quit")
	return lipgloss.JoinVertical(lipgloss.Left, title, "", status, "", help)
}

func (m Model) viewError() string {
	title := errorStyle.Render("✗ Error")
	body := "unknown error"
	if m.err != nil {
		body = m.err.Error()
	}
	help := helpStyle.Render("Enter: Back • Q: Quit")
	return lipgloss.JoinVertical(lipgloss.Left, title, "", valueStyle.Render(body), "", help)
}

// setStatus replaces the status line under the active view
func (m *Model) setStatus(text string, isErr bool) {
	m.statusMsg = text
	m.statusErr = isErr
}

// applyMark updates the in-memory row for a persisted mark
func (m *Model) applyMark(itemID string, status models.Exposure) {
	for i := range m.rows {
		if m.rows[i].Scene.ID == itemID {
			m.rows[i].Exposure = status
			return
		}
	}
}

// siteLabel names exports after the current site when there is one
func (m Model) siteLabel() string {
	if m.currentSite != nil {
		return m.currentSite.Name
	}
	if m.locationName != "" {
		return m.locationName
	}
	return "aoi"
}

func (m Model) tableHeight() int {
	h := m.height - 12
	if h < 5 {
		h = 5
	}
	if h > 20 {
		h = 20
	}
	return h
}

func (m Model) listHeight() int {
	h := m.height - 4
	if h < 8 {
		h = 8
	}
	return h
}
