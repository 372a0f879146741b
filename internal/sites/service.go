package sites

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/htarver/tidesat/internal/geo"
	"github.com/htarver/tidesat/internal/geocoding"
	"github.com/htarver/tidesat/internal/models"
	"github.com/htarver/tidesat/internal/ports"
)

// Geocoder resolves a place query to coordinates
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*geocoding.Location, error)
}

// Service orchestrates site operations
type Service struct {
	repo     *Repository
	geocoder Geocoder
	dbPath   string
	seedPath string
}

// NewService creates a new site service. dbPath and seedPath feed the tide
// port lookup used to suggest each site's reference port.
func NewService(dbPath, seedPath string, geocoder Geocoder) *Service {
	return &Service{
		repo:     NewRepository(dbPath),
		geocoder: geocoder,
		dbPath:   dbPath,
		seedPath: seedPath,
	}
}

// CreateSite geocodes a place query and saves the resulting site
func (s *Service) CreateSite(ctx context.Context, name, locationQuery string, gridSize int) (*models.Site, error) {
	loc, err := s.geocoder.Geocode(ctx, locationQuery)
	if err != nil {
		return nil, fmt.Errorf("geocoding location: %w", err)
	}
	if loc == nil {
		return nil, fmt.Errorf("location not found: %s", locationQuery)
	}

	return s.CreateSiteAt(ctx, name, loc.Latitude, loc.Longitude, gridSize)
}

// CreateSiteAt builds and saves a site at known coordinates
func (s *Service) CreateSiteAt(ctx context.Context, name string, lat, lon float64, gridSize int) (*models.Site, error) {
	if name == "" {
		return nil, fmt.Errorf("site name cannot be empty")
	}

	// Reject coordinates and grid sizes the AOI math cannot serve
	if _, err := geo.ComputeAOI(lat, lon, gridSize); err != nil {
		return nil, err
	}

	site := &models.Site{
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
		GridSize:  gridSize,
	}

	// The nearest tide port is a suggestion. Sites outside the registry's
	// coverage save fine without one.
	if nearest, err := ports.NearestPort(s.dbPath, s.seedPath, lat, lon); err == nil {
		site.TidePortID = nearest.ID
	} else {
		slog.Debug("no tide port near site", "name", name, "error", err)
	}

	if err := s.repo.SaveSite(site); err != nil {
		return nil, fmt.Errorf("saving site: %w", err)
	}

	return site, nil
}

// ListSites returns all saved sites
func (s *Service) ListSites() ([]models.Site, error) {
	return s.repo.ListSites()
}

// GetSite returns a saved site by name
func (s *Service) GetSite(name string) (*models.Site, error) {
	return s.repo.GetSite(name)
}

// DeleteSite removes a site by name
func (s *Service) DeleteSite(name string) error {
	return s.repo.DeleteSite(name)
}
