package models

import (
	"testing"
	"time"
)

func TestAcquiredTimeFromID(t *testing.T) {
	tests := []struct {
		name   string
		itemID string
		want   time.Time
	}{
		{
			name:   "underscore separated skysat id",
			itemID: "20250530_002244_03_24bd",
			want:   time.Date(2025, 5, 30, 0, 22, 44, 0, time.UTC),
		},
		{
			name:   "continuous digit archive id",
			itemID: "20240623004021272478",
			want:   time.Date(2024, 6, 23, 0, 40, 21, 0, time.UTC),
		},
		{
			name:   "planetscope style id",
			itemID: "20230512_223456_78_2458",
			want:   time.Date(2023, 5, 12, 22, 34, 56, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AcquiredTimeFromID(tt.itemID)
			if err != nil {
				t.Fatalf("AcquiredTimeFromID(%q) error = %v", tt.itemID, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("AcquiredTimeFromID(%q) = %v, want %v", tt.itemID, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("AcquiredTimeFromID(%q) location = %v, want UTC", tt.itemID, got.Location())
			}
		})
	}
}

func TestAcquiredTimeFromID_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		itemID string
	}{
		{"too short", "2025"},
		{"not digits", "not_a_scene_id_here"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := AcquiredTimeFromID(tt.itemID); err == nil {
				t.Errorf("AcquiredTimeFromID(%q) = nil error, want error", tt.itemID)
			}
		})
	}
}

func TestScene_AcquiredFormatting(t *testing.T) {
	s := Scene{Acquired: time.Date(2025, 5, 30, 0, 22, 44, 0, time.UTC)}

	if got := s.AcquiredDate(); got != "2025-05-30" {
		t.Errorf("AcquiredDate() = %q, want 2025-05-30", got)
	}
	if got := s.AcquiredClock(); got != "00:22:44" {
		t.Errorf("AcquiredClock() = %q, want 00:22:44", got)
	}
}
