package database

import (
	"path/filepath"
	"testing"
)

func TestDefaultPath(t *testing.T) {
	expected := filepath.Join("data", "tidesat.db")
	if got := DefaultPath(); got != expected {
		t.Errorf("DefaultPath() = %v, want %v", got, expected)
	}
}
