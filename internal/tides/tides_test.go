package tides

import (
	"errors"
	"testing"
	"time"
)

func mkSeries(heights ...float64) Series {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := make(Series, len(heights))
	for i, h := range heights {
		s[i] = Sample{Time: base.Add(time.Duration(i) * 10 * time.Minute), Height: h}
	}
	return s
}

func TestNearestHeight(t *testing.T) {
	s := mkSeries(1.0, 2.0, 3.0)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		target time.Time
		want   float64
	}{
		{"exact match", base.Add(10 * time.Minute), 2.0},
		{"before first", base.Add(-time.Hour), 1.0},
		{"after last", base.Add(time.Hour), 3.0},
		{"closer to earlier", base.Add(4 * time.Minute), 1.0},
		{"closer to later", base.Add(6 * time.Minute), 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.NearestHeight(tt.target)
			if err != nil {
				t.Fatalf("NearestHeight() error = %v", err)
			}
			if got.Height != tt.want {
				t.Errorf("NearestHeight(%v).Height = %v, want %v", tt.target, got.Height, tt.want)
			}
		})
	}
}

func TestNearestHeight_HalfwayPrefersEarlier(t *testing.T) {
	s := mkSeries(1.0, 2.0)
	target := s[0].Time.Add(5 * time.Minute)

	got, err := s.NearestHeight(target)
	if err != nil {
		t.Fatalf("NearestHeight() error = %v", err)
	}
	if !got.Time.Equal(s[0].Time) {
		t.Errorf("halfway target resolved to %v, want earlier sample %v", got.Time, s[0].Time)
	}
}

func TestNearestHeight_EmptySeries(t *testing.T) {
	var s Series
	_, err := s.NearestHeight(time.Now())
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("error = %v, want ErrEmptySeries", err)
	}
}

func TestNearestHeight_SingleSample(t *testing.T) {
	s := mkSeries(1.5)

	got, err := s.NearestHeight(s[0].Time.Add(48 * time.Hour))
	if err != nil {
		t.Fatalf("NearestHeight() error = %v", err)
	}
	if got.Height != 1.5 {
		t.Errorf("Height = %v, want 1.5", got.Height)
	}
}

func TestWindow(t *testing.T) {
	s := mkSeries(1.0, 2.0, 3.0, 4.0, 5.0, 6.0)
	center := s[0].Time.Add(20 * time.Minute)

	got := s.Window(center, 10*time.Minute)
	if len(got) != 3 {
		t.Fatalf("len(Window) = %d, want 3", len(got))
	}
	if got[0].Height != 2.0 || got[2].Height != 4.0 {
		t.Errorf("Window = %v..%v, want 2.0..4.0", got[0].Height, got[2].Height)
	}
}

func TestWindow_NoSamplesInRange(t *testing.T) {
	s := mkSeries(1.0, 2.0)
	got := s.Window(s[0].Time.Add(24*time.Hour), 5*time.Minute)
	if len(got) != 0 {
		t.Errorf("len(Window) = %d, want 0", len(got))
	}
}

func TestSpan(t *testing.T) {
	s := mkSeries(1.0, 2.0, 3.0)

	start, end, err := s.Span()
	if err != nil {
		t.Fatalf("Span() error = %v", err)
	}
	if !start.Equal(s[0].Time) {
		t.Errorf("start = %v, want %v", start, s[0].Time)
	}
	if !end.Equal(s[2].Time) {
		t.Errorf("end = %v, want %v", end, s[2].Time)
	}

	var empty Series
	if _, _, err := empty.Span(); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("empty Span() error = %v, want ErrEmptySeries", err)
	}
}

func TestSchemaString(t *testing.T) {
	tests := []struct {
		schema Schema
		want   string
	}{
		{SchemaLocal, "local"},
		{SchemaUTC, "utc"},
		{SchemaText, "text"},
	}

	for _, tt := range tests {
		if got := tt.schema.String(); got != tt.want {
			t.Errorf("Schema(%d).String() = %q, want %q", tt.schema, got, tt.want)
		}
	}
}

func TestRowError(t *testing.T) {
	inner := errors.New("bad height")
	re := RowError{Row: 7, Err: inner}

	if !errors.Is(re, inner) {
		t.Error("RowError should unwrap to inner error")
	}
	if re.Error() == "" {
		t.Error("RowError.Error() should not be empty")
	}
}
