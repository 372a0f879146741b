package ports

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tide_ports.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing seed file: %v", err)
	}
	return path
}

func TestProvisionPortsDatabase(t *testing.T) {
	seed := writeSeedFile(t, "name,region,latitude,longitude\n"+
		"Brisbane Bar,QLD,-27.3667,153.1667\n"+
		"Gold Coast Seaway,QLD,-27.9390,153.4290\n")
	dbPath := filepath.Join(t.TempDir(), "ports.db")

	needs, err := NeedsProvisioning(dbPath)
	if err != nil {
		t.Fatalf("NeedsProvisioning() error = %v", err)
	}
	if !needs {
		t.Error("fresh path should need provisioning")
	}

	if err := ProvisionPortsDatabase(dbPath, seed, nil); err != nil {
		t.Fatalf("ProvisionPortsDatabase() error = %v", err)
	}

	needs, err = NeedsProvisioning(dbPath)
	if err != nil {
		t.Fatalf("NeedsProvisioning() after provision error = %v", err)
	}
	if needs {
		t.Error("provisioned database should not need provisioning again")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("opening provisioned db: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM tide_ports").Scan(&count); err != nil {
		t.Fatalf("counting ports: %v", err)
	}
	if count != 2 {
		t.Errorf("port count = %d, want 2", count)
	}

	var region string
	err = db.QueryRow("SELECT region FROM tide_ports WHERE name = 'Brisbane Bar'").Scan(&region)
	if err != nil {
		t.Fatalf("querying Brisbane Bar: %v", err)
	}
	if region != "QLD" {
		t.Errorf("region = %q, want QLD", region)
	}

	// Second provision run is a no-op, not a duplicate insert
	if err := ProvisionPortsDatabase(dbPath, seed, nil); err != nil {
		t.Fatalf("second ProvisionPortsDatabase() error = %v", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM tide_ports").Scan(&count); err != nil {
		t.Fatalf("recounting ports: %v", err)
	}
	if count != 2 {
		t.Errorf("port count after reprovision = %d, want 2", count)
	}
}

func TestProvisionPortsDatabase_ReportsProgress(t *testing.T) {
	seed := writeSeedFile(t, "name,region,latitude,longitude\nBrisbane Bar,QLD,-27.3667,153.1667\n")
	dbPath := filepath.Join(t.TempDir(), "ports.db")

	progress := make(chan string, 32)
	if err := ProvisionPortsDatabase(dbPath, seed, progress); err != nil {
		t.Fatalf("ProvisionPortsDatabase() error = %v", err)
	}
	close(progress)

	var messages []string
	for msg := range progress {
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		t.Error("expected progress messages, got none")
	}
}

func TestLoadSeedPorts_SkipsBadRows(t *testing.T) {
	seed := writeSeedFile(t, "name,region,latitude,longitude\n"+
		"Brisbane Bar,QLD,-27.3667,153.1667\n"+
		"Bad Port,QLD,not-a-number,153.0\n"+
		"Mackay Outer Harbour,QLD,-21.1000,149.2333\n")

	tidePorts, err := loadSeedPorts(seed)
	if err != nil {
		t.Fatalf("loadSeedPorts() error = %v", err)
	}
	if len(tidePorts) != 2 {
		t.Errorf("len(ports) = %d, want 2 with bad row skipped", len(tidePorts))
	}
}

func TestLoadSeedPorts_MissingColumns(t *testing.T) {
	seed := writeSeedFile(t, "name,lat,lon\nBrisbane Bar,-27.3,153.1\n")

	if _, err := loadSeedPorts(seed); err == nil {
		t.Error("Expected error for missing latitude column, got nil")
	}
}

func TestLoadSeedPorts_MissingFile(t *testing.T) {
	if _, err := loadSeedPorts(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("Expected error for missing seed file, got nil")
	}
}
