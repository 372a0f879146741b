package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureSchema_Persistence(t *testing.T) {
	// Create a temporary directory for the test database
	tmpDir, err := os.MkdirTemp("", "tidesat_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "test.db")

	// 1. Initialize schema
	if err := EnsureSchema(dbPath); err != nil {
		t.Fatalf("First EnsureSchema failed: %v", err)
	}

	// 2. Insert records
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	_, err = db.Exec(`INSERT INTO saved_sites (name, latitude, longitude, grid_size) VALUES ('Test Site', -27.3, 153.2, 3)`)
	if err != nil {
		db.Close()
		t.Fatalf("Failed to insert site: %v", err)
	}
	_, err = db.Exec(`INSERT INTO exposure_marks (item_id, site_id, status) VALUES ('20250530_002244_03_24bd', 1, 'Exposed')`)
	db.Close()
	if err != nil {
		t.Fatalf("Failed to insert exposure mark: %v", err)
	}

	// 3. Initialize schema again (should not drop tables)
	if err := EnsureSchema(dbPath); err != nil {
		t.Fatalf("Second EnsureSchema failed: %v", err)
	}

	// 4. Verify records exist
	db, err = sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM saved_sites WHERE name = 'Test Site'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query site: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 site, got %d. Data was likely lost due to table drop.", count)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM exposure_marks WHERE status = 'Exposed'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query exposure mark: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 exposure mark, got %d", count)
	}
}
