package database

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultPath returns the path to the single shared database
func DefaultPath() string {
	return filepath.Join("data", "tidesat.db")
}

// EnsureSchema ensures that the user-facing tables (saved sites and
// per-scene exposure marks) exist.
func EnsureSchema(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database to ensure schema: %w", err)
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS saved_sites (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			grid_size INTEGER NOT NULL DEFAULT 3,
			tide_port_id INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_saved_sites_name ON saved_sites(name);
	`)
	if err != nil {
		return fmt.Errorf("creating saved_sites table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS exposure_marks (
			item_id TEXT PRIMARY KEY,
			site_id INTEGER,
			status TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_exposure_marks_site ON exposure_marks(site_id);
	`)
	if err != nil {
		return fmt.Errorf("creating exposure_marks table: %w", err)
	}

	return nil
}
