// Package exposure persists per-scene exposure marks so a survey can be
// resumed without re-judging imagery that was already reviewed.
package exposure

import (
	"database/sql"
	"fmt"

	"github.com/htarver/tidesat/internal/database"
	"github.com/htarver/tidesat/internal/models"
	_ "modernc.org/sqlite"
)

// Repository stores exposure marks keyed by Planet item ID. An absent row
// means "Not Marked", so clearing a mark deletes the row.
type Repository struct {
	dbPath string
}

// NewRepository creates a repository backed by the database at dbPath.
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

// Mark records the exposure status for one scene. Marking a scene
// "Not Marked" removes its row.
func (r *Repository) Mark(itemID string, siteID int64, status models.Exposure) error {
	if !status.Valid() {
		return fmt.Errorf("invalid exposure status: %q", status)
	}
	if status == models.ExposureNotMarked {
		return r.Clear(itemID)
	}

	db, err := r.open()
	if err != nil {
		return err
	}
	defer db.Close()

	query := `
		INSERT INTO exposure_marks (item_id, site_id, status, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(item_id) DO UPDATE SET
			site_id = excluded.site_id,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := db.Exec(query, itemID, siteID, string(status)); err != nil {
		return fmt.Errorf("saving exposure mark: %w", err)
	}
	return nil
}

// MarkBulk applies one status to many scenes in a single transaction.
func (r *Repository) MarkBulk(itemIDs []string, siteID int64, status models.Exposure) error {
	if !status.Valid() {
		return fmt.Errorf("invalid exposure status: %q", status)
	}
	if len(itemIDs) == 0 {
		return nil
	}

	db, err := r.open()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if status == models.ExposureNotMarked {
		stmt, err := tx.Prepare("DELETE FROM exposure_marks WHERE item_id = ?")
		if err != nil {
			return fmt.Errorf("preparing delete: %w", err)
		}
		defer stmt.Close()
		for _, id := range itemIDs {
			if _, err := stmt.Exec(id); err != nil {
				return fmt.Errorf("clearing mark for %s: %w", id, err)
			}
		}
		return tx.Commit()
	}

	stmt, err := tx.Prepare(`
		INSERT INTO exposure_marks (item_id, site_id, status, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(item_id) DO UPDATE SET
			site_id = excluded.site_id,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, id := range itemIDs {
		if _, err := stmt.Exec(id, siteID, string(status)); err != nil {
			return fmt.Errorf("marking %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// Clear removes the mark for one scene.
func (r *Repository) Clear(itemID string) error {
	db, err := r.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec("DELETE FROM exposure_marks WHERE item_id = ?", itemID); err != nil {
		return fmt.Errorf("clearing exposure mark: %w", err)
	}
	return nil
}

// Get returns the saved status for a scene, or "Not Marked" when none exists.
func (r *Repository) Get(itemID string) (models.Exposure, error) {
	db, err := r.open()
	if err != nil {
		return models.ExposureNotMarked, err
	}
	defer db.Close()

	var status string
	err = db.QueryRow("SELECT status FROM exposure_marks WHERE item_id = ?", itemID).Scan(&status)
	if err == sql.ErrNoRows {
		return models.ExposureNotMarked, nil
	}
	if err != nil {
		return models.ExposureNotMarked, fmt.Errorf("querying exposure mark: %w", err)
	}
	return models.Exposure(status), nil
}

// All returns every saved mark keyed by item ID.
func (r *Repository) All() (map[string]models.Exposure, error) {
	db, err := r.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query("SELECT item_id, status FROM exposure_marks")
	if err != nil {
		return nil, fmt.Errorf("querying exposure marks: %w", err)
	}
	defer rows.Close()

	marks := make(map[string]models.Exposure)
	for rows.Next() {
		var itemID, status string
		if err := rows.Scan(&itemID, &status); err != nil {
			return nil, fmt.Errorf("scanning exposure mark: %w", err)
		}
		marks[itemID] = models.Exposure(status)
	}
	return marks, rows.Err()
}
