// Package ports maintains the bundled registry of tide prediction ports
// and answers nearest-port queries for survey sites.
package ports

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/htarver/tidesat/internal/models"
)

// DefaultSeedPath is where the bundled port list ships.
const DefaultSeedPath = "data/tide_ports.csv"

var provisionMu sync.Mutex

// NeedsProvisioning checks if the tide ports table needs to be provisioned
func NeedsProvisioning(dbPath string) (bool, error) {
	// If file doesn't exist, we need to provision
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return true, nil
	}

	// Check if tide_ports table exists
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return false, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='tide_ports'").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for tide_ports table: %w", err)
	}

	return count == 0, nil
}

// ProvisionPortsDatabase loads the bundled port list into the SQLite
// database. Progress messages go to progressChan when one is given.
func ProvisionPortsDatabase(dbPath, seedPath string, progressChan chan<- string) error {
	provisionMu.Lock()
	defer provisionMu.Unlock()

	needs, err := NeedsProvisioning(dbPath)
	if err != nil {
		return err
	}
	if !needs {
		return nil
	}

	sendProgress := func(msg string) {
		if progressChan != nil {
			progressChan <- msg
		} else {
			log.Println(msg)
		}
	}

	sendProgress("Tide ports table not found, provisioning...")

	// Create data directory if it doesn't exist
	dataDir := filepath.Dir(dbPath)
	if err = os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if seedPath == "" {
		seedPath = DefaultSeedPath
	}
	sendProgress(fmt.Sprintf("Loading tide ports from %s...", seedPath))
	tidePorts, err := loadSeedPorts(seedPath)
	if err != nil {
		return fmt.Errorf("loading port seed: %w", err)
	}

	// Open database (or create if it doesn't exist)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database for building: %w", err)
	}
	defer db.Close()

	sendProgress("Building tide ports database...")
	if err = buildPortsDatabase(db, tidePorts, progressChan); err != nil {
		return fmt.Errorf("building database: %w", err)
	}

	sendProgress(fmt.Sprintf("Successfully provisioned %d tide ports at %s", len(tidePorts), dbPath))
	return nil
}

// loadSeedPorts parses the bundled CSV of ports. Expected header:
// name,region,latitude,longitude
func loadSeedPorts(path string) ([]models.TidePort, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading seed header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		col[name] = i
	}
	for _, required := range []string{"name", "latitude", "longitude"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("seed file missing %q column", required)
		}
	}

	var tidePorts []models.TidePort
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Printf("Skipping seed line %d: %v", line, err)
			continue
		}

		lat, latErr := strconv.ParseFloat(record[col["latitude"]], 64)
		lon, lonErr := strconv.ParseFloat(record[col["longitude"]], 64)
		if latErr != nil || lonErr != nil {
			log.Printf("Skipping seed line %d: bad coordinates", line)
			continue
		}

		port := models.TidePort{
			Name:      strings.TrimSpace(record[col["name"]]),
			Latitude:  lat,
			Longitude: lon,
		}
		if idx, ok := col["region"]; ok && idx < len(record) {
			port.Region = strings.TrimSpace(record[idx])
		}
		tidePorts = append(tidePorts, port)
	}

	if len(tidePorts) == 0 {
		return nil, fmt.Errorf("seed file %s has no usable ports", path)
	}
	return tidePorts, nil
}

// buildPortsDatabase creates the tide_ports table and inserts the seed rows
func buildPortsDatabase(db *sql.DB, tidePorts []models.TidePort, progressChan chan<- string) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tide_ports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			region TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tide_ports_coords ON tide_ports(latitude, longitude);
		CREATE INDEX IF NOT EXISTS idx_tide_ports_region ON tide_ports(region);
	`)
	if err != nil {
		return fmt.Errorf("creating tide_ports table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() // Rollback on error

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO tide_ports (name, region, latitude, longitude) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	count := 0
	for _, p := range tidePorts {
		_, err = stmt.Exec(p.Name, p.Region, p.Latitude, p.Longitude)
		if err != nil {
			log.Printf("Error inserting port %s: %v", p.Name, err)
			continue
		}
		count++
		if count%50 == 0 {
			if progressChan != nil {
				progressChan <- fmt.Sprintf("Inserted %d tide ports...", count)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	if progressChan != nil {
		progressChan <- fmt.Sprintf("Successfully inserted %d tide ports", count)
	}
	return nil
}
