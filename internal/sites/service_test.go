package sites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/htarver/tidesat/internal/geo"
	"github.com/htarver/tidesat/internal/geocoding"
	"github.com/htarver/tidesat/internal/ports"
	_ "modernc.org/sqlite"
)

type fakeGeocoder struct {
	loc *geocoding.Location
	err error
}

func (f *fakeGeocoder) Geocode(ctx context.Context, query string) (*geocoding.Location, error) {
	return f.loc, f.err
}

// mockPortsDB points ports.GetDB at an in-memory registry for this test
func mockPortsDB(t *testing.T, seedBrisbane bool) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE tide_ports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			region TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL
		);
	`)
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	if seedBrisbane {
		_, err = db.Exec(`INSERT INTO tide_ports (name, region, latitude, longitude) VALUES ('Brisbane Bar', 'QLD', -27.3667, 153.1667)`)
		if err != nil {
			t.Fatalf("Failed to insert test data: %v", err)
		}
	}

	oldGetDB := ports.GetDB
	ports.GetDB = func(dbPath, seedPath string) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() {
		ports.GetDB = oldGetDB
		db.Close()
	})
}

func testService(t *testing.T, g Geocoder) *Service {
	t.Helper()
	dir := t.TempDir()
	return NewService(filepath.Join(dir, "test.db"), filepath.Join(dir, "seed.csv"), g)
}

func TestCreateSiteAt(t *testing.T) {
	mockPortsDB(t, true)
	svc := testService(t, &fakeGeocoder{})

	site, err := svc.CreateSiteAt(context.Background(), "Tangalooma Wrecks", -27.1781, 153.3697, 3)
	if err != nil {
		t.Fatalf("CreateSiteAt() error = %v", err)
	}
	if site.ID == 0 {
		t.Error("site should be saved with an ID")
	}
	if site.TidePortID == 0 {
		t.Error("site near Brisbane Bar should get a suggested tide port")
	}
}

func TestCreateSiteAt_NoNearbyPort(t *testing.T) {
	mockPortsDB(t, false)
	svc := testService(t, &fakeGeocoder{})

	site, err := svc.CreateSiteAt(context.Background(), "Remote Atoll", 5.0, -160.0, 3)
	if err != nil {
		t.Fatalf("CreateSiteAt() error = %v", err)
	}
	if site.TidePortID != 0 {
		t.Errorf("TidePortID = %d, want 0 with an empty registry", site.TidePortID)
	}
}

func TestCreateSiteAt_InvalidInput(t *testing.T) {
	mockPortsDB(t, true)
	svc := testService(t, &fakeGeocoder{})

	tests := []struct {
		name     string
		siteName string
		lat, lon float64
		gridSize int
	}{
		{"bad latitude", "A", 91.0, 153.0, 3},
		{"bad longitude", "B", -27.0, -200.0, 3},
		{"grid too small", "C", -27.0, 153.0, 0},
		{"grid too large", "D", -27.0, 153.0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSiteAt(context.Background(), tt.siteName, tt.lat, tt.lon, tt.gridSize)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.Is(err, geo.ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}

	if _, err := svc.CreateSiteAt(context.Background(), "", -27.0, 153.0, 3); err == nil {
		t.Error("Expected error for empty name, got nil")
	}
}

func TestCreateSite_UsesGeocoder(t *testing.T) {
	mockPortsDB(t, true)
	svc := testService(t, &fakeGeocoder{
		loc: &geocoding.Location{Latitude: -27.1781, Longitude: 153.3697, Name: "Tangalooma, Moreton Island"},
	})

	site, err := svc.CreateSite(context.Background(), "Tangalooma Wrecks", "Tangalooma, Moreton Island", 3)
	if err != nil {
		t.Fatalf("CreateSite() error = %v", err)
	}
	if site.Latitude != -27.1781 {
		t.Errorf("Latitude = %v, want geocoded -27.1781", site.Latitude)
	}
}

func TestCreateSite_GeocoderError(t *testing.T) {
	mockPortsDB(t, true)
	svc := testService(t, &fakeGeocoder{err: fmt.Errorf("no results")})

	if _, err := svc.CreateSite(context.Background(), "Nowhere", "nowhere at all", 3); err == nil {
		t.Error("Expected error when geocoding fails, got nil")
	}
}

func TestServicePassthroughs(t *testing.T) {
	mockPortsDB(t, true)
	svc := testService(t, &fakeGeocoder{})

	if _, err := svc.CreateSiteAt(context.Background(), "Passthrough Site", -27.0, 153.0, 3); err != nil {
		t.Fatalf("CreateSiteAt() error = %v", err)
	}

	sites, err := svc.ListSites()
	if err != nil {
		t.Fatalf("ListSites() error = %v", err)
	}
	if len(sites) != 1 {
		t.Fatalf("len(sites) = %d, want 1", len(sites))
	}

	got, err := svc.GetSite("Passthrough Site")
	if err != nil {
		t.Fatalf("GetSite() error = %v", err)
	}
	if got.Name != "Passthrough Site" {
		t.Errorf("GetSite().Name = %q", got.Name)
	}

	if err := svc.DeleteSite("Passthrough Site"); err != nil {
		t.Fatalf("DeleteSite() error = %v", err)
	}
	sites, err = svc.ListSites()
	if err != nil {
		t.Fatalf("ListSites() after delete error = %v", err)
	}
	if len(sites) != 0 {
		t.Errorf("len(sites) = %d, want 0 after delete", len(sites))
	}
}
