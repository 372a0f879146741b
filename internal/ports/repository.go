package ports

import (
	"database/sql"
	"fmt"
	"math"
	"sort"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/htarver/tidesat/internal/geo"
	"github.com/htarver/tidesat/internal/models"
)

// NearbyPort is a registry port with its distance from a query point
type NearbyPort struct {
	models.TidePort
	DistanceKM float64
}

var (
	db      *sql.DB
	once    sync.Once
	initErr error

	// GetDB is a function variable to allow mocking in tests
	GetDB = func(dbPath, seedPath string) (*sql.DB, error) {
		once.Do(func() {
			// Provision database if it doesn't exist
			initErr = ProvisionPortsDatabase(dbPath, seedPath, nil)
			if initErr != nil {
				return
			}

			db, initErr = sql.Open("sqlite", dbPath)
			if initErr != nil {
				return
			}
			// Set pragmas for performance
			_, _ = db.Exec("PRAGMA journal_mode=WAL")
			_, _ = db.Exec("PRAGMA synchronous=NORMAL")
			_, _ = db.Exec("PRAGMA cache_size=10000")
		})
		return db, initErr
	}
)

// FindNearbyPorts finds tide ports near the given coordinates within maxKM,
// sorted nearest first.
func FindNearbyPorts(dbPath, seedPath string, lat, lon, maxKM float64) ([]NearbyPort, error) {
	db, err := GetDB(dbPath, seedPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Bounding box prefilter before the exact distance pass. One degree
	// of latitude is about 111 km, widen by 1.5x to keep edge ports in.
	latDelta := (maxKM / 111.0) * 1.5
	lonDelta := (maxKM / (111.0 * math.Cos(lat*math.Pi/180))) * 1.5

	query := `
		SELECT id, name, region, latitude, longitude
		FROM tide_ports
		WHERE latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
	`

	rows, err := db.Query(query,
		lat-latDelta, lat+latDelta,
		lon-lonDelta, lon+lonDelta)
	if err != nil {
		return nil, fmt.Errorf("querying ports: %w", err)
	}
	defer rows.Close()

	var nearby []NearbyPort
	for rows.Next() {
		var p models.TidePort
		var region sql.NullString

		if err := rows.Scan(&p.ID, &p.Name, &region, &p.Latitude, &p.Longitude); err != nil {
			continue
		}
		p.Region = region.String

		distance := geo.DistanceKM(
			geo.Point{Lat: lat, Lon: lon},
			geo.Point{Lat: p.Latitude, Lon: p.Longitude})
		if distance <= maxKM {
			nearby = append(nearby, NearbyPort{TidePort: p, DistanceKM: distance})
		}
	}

	if len(nearby) == 0 {
		return nil, fmt.Errorf("no tide ports found near %.4f, %.4f within %.0f km", lat, lon, maxKM)
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceKM < nearby[j].DistanceKM
	})

	return nearby, nil
}

// NearestPort returns the closest registry port to the given coordinates.
func NearestPort(dbPath, seedPath string, lat, lon float64) (*NearbyPort, error) {
	nearby, err := FindNearbyPorts(dbPath, seedPath, lat, lon, 500.0)
	if err != nil {
		return nil, err
	}
	return &nearby[0], nil
}

// GetPortByID retrieves a single tide port by its ID.
func GetPortByID(dbPath, seedPath string, portID int64) (*models.TidePort, error) {
	db, err := GetDB(dbPath, seedPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var p models.TidePort
	var region sql.NullString

	err = db.QueryRow(
		"SELECT id, name, region, latitude, longitude FROM tide_ports WHERE id = ?",
		portID,
	).Scan(&p.ID, &p.Name, &region, &p.Latitude, &p.Longitude)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tide port %d not found", portID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying tide port by ID: %w", err)
	}
	p.Region = region.String

	return &p, nil
}

// ListPorts retrieves the whole registry ordered by name.
func ListPorts(dbPath, seedPath string) ([]models.TidePort, error) {
	db, err := GetDB(dbPath, seedPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	rows, err := db.Query("SELECT id, name, region, latitude, longitude FROM tide_ports ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying ports: %w", err)
	}
	defer rows.Close()

	var tidePorts []models.TidePort
	for rows.Next() {
		var p models.TidePort
		var region sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &region, &p.Latitude, &p.Longitude); err != nil {
			return nil, fmt.Errorf("scanning port: %w", err)
		}
		p.Region = region.String
		tidePorts = append(tidePorts, p)
	}

	return tidePorts, rows.Err()
}
