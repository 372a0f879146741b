package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/htarver/tidesat/internal/models"
)

// siteItem wraps a Site for use in a list
type siteItem struct {
	site models.Site
}

// FilterValue implements list.Item
func (s siteItem) FilterValue() string {
	return s.site.Name
}

// Title implements list.DefaultItem
func (s siteItem) Title() string {
	return s.site.Name
}

// Description implements list.DefaultItem
func (s siteItem) Description() string {
	return fmt.Sprintf("%.4f, %.4f • grid %d", s.site.Latitude, s.site.Longitude, s.site.GridSize)
}

// createSiteList creates a list.Model from saved sites
func createSiteList(sites []models.Site, width, height int) list.Model {
	items := make([]list.Item, len(sites))
	for i, site := range sites {
		items[i] = siteItem{site: site}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Saved Sites"
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)

	return l
}

// handleSites handles keyboard input in the saved sites state
func (m Model) handleSites(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// An active filter owns the keyboard
	if m.siteList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.siteList, cmd = m.siteList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "enter":
		if item, ok := m.siteList.SelectedItem().(siteItem); ok {
			return m.useSite(item.site)
		}
		return m, nil

	case "x":
		if item, ok := m.siteList.SelectedItem().(siteItem); ok {
			return m, deleteSite(m.siteSvc, item.site.Name)
		}
		return m, nil

	case "esc":
		m.state = StateForm
		return m, nil
	}

	var cmd tea.Cmd
	m.siteList, cmd = m.siteList.Update(msg)
	return m, cmd
}

// useSite loads a saved site back into the form
func (m Model) useSite(site models.Site) (tea.Model, tea.Cmd) {
	m.currentSite = &site
	m.inputs[fieldSiteName].SetValue(site.Name)
	m.inputs[fieldLocation].SetValue(fmt.Sprintf("%.6f, %.6f", site.Latitude, site.Longitude))
	m.inputs[fieldGridSize].SetValue(strconv.Itoa(site.GridSize))
	m.state = StateForm
	m.setStatus(fmt.Sprintf("Loaded site %q", site.Name), false)
	return m, nil
}

// viewSites renders the saved sites list
func (m Model) viewSites() string {
	help := helpStyle.Render("Enter: Use site • X: Delete • Esc: Back")
	return lipgloss.JoinVertical(lipgloss.Left, m.siteList.View(), help)
}
