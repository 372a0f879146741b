// Package sites manages saved survey locations.
package sites

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/htarver/tidesat/internal/database"
	"github.com/htarver/tidesat/internal/models"
	_ "modernc.org/sqlite"
)

// Repository handles persistence for saved survey sites
type Repository struct {
	dbPath string
}

// NewRepository creates a site repository backed by the database at dbPath
func NewRepository(dbPath string) *Repository {
	return &Repository{dbPath: dbPath}
}

func (r *Repository) open() (*sql.DB, error) {
	// Ensure schema exists (safe to call multiple times)
	if err := database.EnsureSchema(r.dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", r.dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// SaveSite saves a site, replacing any existing site with the same name
func (r *Repository) SaveSite(site *models.Site) error {
	db, err := r.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if site.CreatedAt.IsZero() {
		site.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO saved_sites (name, latitude, longitude, grid_size, tide_port_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			grid_size = excluded.grid_size,
			tide_port_id = excluded.tide_port_id,
			created_at = excluded.created_at
	`
	if _, err := db.Exec(query,
		site.Name,
		site.Latitude,
		site.Longitude,
		site.GridSize,
		site.TidePortID,
		site.CreatedAt,
	); err != nil {
		return fmt.Errorf("saving site: %w", err)
	}

	// LastInsertId is unreliable on the upsert's update path, read the id back
	if err := db.QueryRow("SELECT id FROM saved_sites WHERE name = ?", site.Name).Scan(&site.ID); err != nil {
		return fmt.Errorf("reading back site id: %w", err)
	}

	return nil
}

// ListSites retrieves all saved sites ordered by name
func (r *Repository) ListSites() ([]models.Site, error) {
	db, err := r.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query("SELECT id, name, latitude, longitude, grid_size, tide_port_id, created_at FROM saved_sites ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying sites: %w", err)
	}
	defer rows.Close()

	var sites []models.Site
	for rows.Next() {
		var s models.Site
		var tidePortID sql.NullInt64

		if err := rows.Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude, &s.GridSize, &tidePortID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning site: %w", err)
		}
		s.TidePortID = tidePortID.Int64
		sites = append(sites, s)
	}

	return sites, rows.Err()
}

// GetSite retrieves a saved site by name
func (r *Repository) GetSite(name string) (*models.Site, error) {
	db, err := r.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var s models.Site
	var tidePortID sql.NullInt64

	err = db.QueryRow("SELECT id, name, latitude, longitude, grid_size, tide_port_id, created_at FROM saved_sites WHERE name = ?", name).
		Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude, &s.GridSize, &tidePortID, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("site not found: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("querying site: %w", err)
	}
	s.TidePortID = tidePortID.Int64

	return &s, nil
}

// DeleteSite removes a site by name
func (r *Repository) DeleteSite(name string) error {
	db, err := r.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec("DELETE FROM saved_sites WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting site: %w", err)
	}

	return nil
}
