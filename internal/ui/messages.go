package ui

import (
	"github.com/htarver/tidesat/internal/geocoding"
	"github.com/htarver/tidesat/internal/models"
	"github.com/htarver/tidesat/internal/results"
	"github.com/htarver/tidesat/internal/tides"
)

// Message types for async operations

// errMsg is a message type for errors
type errMsg struct {
	err error
}

// geocodeMsg is sent when the location field has been resolved
type geocodeMsg struct {
	location *geocoding.Location
	err      error
}

// searchDoneMsg is sent when a full imagery search has finished
type searchDoneMsg struct {
	rows    []results.Row
	series  tides.Series
	skipped int
	err     error
}

// sitesLoadedMsg is sent when the saved sites have been read
type sitesLoadedMsg struct {
	sites []models.Site
	err   error
}

// siteSavedMsg is sent when the current form has been saved as a site
type siteSavedMsg struct {
	site *models.Site
	err  error
}

// siteDeletedMsg is sent when a saved site has been removed
type siteDeletedMsg struct {
	name string
	err  error
}

// exposureMarkedMsg is sent when an exposure mark has been persisted
type exposureMarkedMsg struct {
	itemID string
	status models.Exposure
	err    error
}

// exportDoneMsg is sent when a CSV, preview or shapefile export has finished
type exportDoneMsg struct {
	path string
	err  error
}

// Provisioning messages

// provisioningStartedMsg carries the channels of a running provisioning job
type provisioningStartedMsg struct {
	progressChan chan string
	resultChan   chan error
}

// provisionStatusMsg is one progress line from the provisioning job
type provisionStatusMsg string

// provisionResultMsg is the final outcome of the provisioning job
type provisionResultMsg struct {
	err error
}
