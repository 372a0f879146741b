package exposure

import (
	"path/filepath"
	"testing"

	"github.com/htarver/tidesat/internal/models"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(filepath.Join(t.TempDir(), "test.db"))
}

func TestMarkAndGet(t *testing.T) {
	repo := testRepo(t)

	if err := repo.Mark("20250530_002244_03_24bd", 1, models.ExposureExposed); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}

	status, err := repo.Get("20250530_002244_03_24bd")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if status != models.ExposureExposed {
		t.Errorf("Get() = %q, want Exposed", status)
	}
}

func TestGetUnmarked(t *testing.T) {
	repo := testRepo(t)

	status, err := repo.Get("never-marked")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if status != models.ExposureNotMarked {
		t.Errorf("Get() = %q, want Not Marked", status)
	}
}

func TestMarkOverwrites(t *testing.T) {
	repo := testRepo(t)

	if err := repo.Mark("item-1", 1, models.ExposureExposed); err != nil {
		t.Fatalf("first Mark() error = %v", err)
	}
	if err := repo.Mark("item-1", 1, models.ExposureNotExposed); err != nil {
		t.Fatalf("second Mark() error = %v", err)
	}

	status, err := repo.Get("item-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if status != models.ExposureNotExposed {
		t.Errorf("Get() = %q, want Not Exposed", status)
	}
}

func TestMarkNotMarkedClearsRow(t *testing.T) {
	repo := testRepo(t)

	if err := repo.Mark("item-1", 1, models.ExposureExposed); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}
	if err := repo.Mark("item-1", 1, models.ExposureNotMarked); err != nil {
		t.Fatalf("Mark(Not Marked) error = %v", err)
	}

	marks, err := repo.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(marks) != 0 {
		t.Errorf("len(All()) = %d, want 0 after clearing mark", len(marks))
	}
}

func TestMarkRejectsInvalidStatus(t *testing.T) {
	repo := testRepo(t)

	if err := repo.Mark("item-1", 1, models.Exposure("Sunk")); err == nil {
		t.Error("Expected error for invalid status, got nil")
	}
}

func TestMarkBulk(t *testing.T) {
	repo := testRepo(t)

	ids := []string{"item-1", "item-2", "item-3"}
	if err := repo.MarkBulk(ids, 7, models.ExposureExposed); err != nil {
		t.Fatalf("MarkBulk() error = %v", err)
	}

	marks, err := repo.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(marks) != 3 {
		t.Fatalf("len(All()) = %d, want 3", len(marks))
	}
	for _, id := range ids {
		if marks[id] != models.ExposureExposed {
			t.Errorf("marks[%s] = %q, want Exposed", id, marks[id])
		}
	}

	// Bulk "Not Marked" clears the rows
	if err := repo.MarkBulk(ids[:2], 7, models.ExposureNotMarked); err != nil {
		t.Fatalf("MarkBulk(Not Marked) error = %v", err)
	}
	marks, err = repo.All()
	if err != nil {
		t.Fatalf("All() after bulk clear error = %v", err)
	}
	if len(marks) != 1 {
		t.Errorf("len(All()) = %d, want 1 after bulk clear", len(marks))
	}
}

func TestClear(t *testing.T) {
	repo := testRepo(t)

	if err := repo.Mark("item-1", 1, models.ExposureExposed); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}
	if err := repo.Clear("item-1"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	status, err := repo.Get("item-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if status != models.ExposureNotMarked {
		t.Errorf("Get() after Clear = %q, want Not Marked", status)
	}
}

func TestMarksSurviveReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first := NewRepository(dbPath)
	if err := first.Mark("item-1", 1, models.ExposureExposed); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}

	second := NewRepository(dbPath)
	status, err := second.Get("item-1")
	if err != nil {
		t.Fatalf("Get() from fresh repository error = %v", err)
	}
	if status != models.ExposureExposed {
		t.Errorf("Get() = %q, want Exposed to survive reopen", status)
	}
}
