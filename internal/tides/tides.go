// Package tides parses tide prediction files into a normalized UTC series
// and matches timestamps against it. Parsing and matching are pure; callers
// own the returned values.
package tides

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrEmptySeries reports a lookup against a series with no samples.
	ErrEmptySeries = errors.New("empty tide series")

	// ErrUnrecognizedSchema reports input whose headers match no supported
	// tide file layout.
	ErrUnrecognizedSchema = errors.New("unrecognized tide file schema")

	// ErrNoValidRows reports a parse where every data row was rejected.
	ErrNoValidRows = errors.New("no valid tide rows")
)

// Sample is a single tide prediction. Time is always UTC.
type Sample struct {
	Time   time.Time `json:"time"`
	Height float64   `json:"height_m"`
}

// Series is a sequence of samples sorted ascending by time. Duplicate
// timestamps are permitted; matching uses the first encountered.
type Series []Sample

// NearestHeight returns the sample closest in time to target. On an exact
// tie the earlier sample wins.
func (s Series) NearestHeight(target time.Time) (Sample, error) {
	if len(s) == 0 {
		return Sample{}, ErrEmptySeries
	}

	idx := sort.Search(len(s), func(i int) bool {
		return !s[i].Time.Before(target)
	})

	if idx == 0 {
		return s[0], nil
	}
	if idx == len(s) {
		return s[len(s)-1], nil
	}

	prev, next := s[idx-1], s[idx]
	if target.Sub(prev.Time) <= next.Time.Sub(target) {
		return prev, nil
	}
	return next, nil
}

// Window returns the samples within span of center, for charting.
func (s Series) Window(center time.Time, span time.Duration) Series {
	lo := sort.Search(len(s), func(i int) bool {
		return !s[i].Time.Before(center.Add(-span))
	})
	hi := sort.Search(len(s), func(i int) bool {
		return s[i].Time.After(center.Add(span))
	})
	return s[lo:hi]
}

// Span returns the first and last sample times.
func (s Series) Span() (time.Time, time.Time, error) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}, ErrEmptySeries
	}
	return s[0].Time, s[len(s)-1].Time, nil
}

// RowError records a single data row that could not be parsed. Row is the
// 1-based data row ordinal, headers excluded.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Schema identifies which tide file layout a parse detected.
type Schema int

const (
	// SchemaLocal is the CSV layout with combined DateTime and Height
	// columns, timestamps in a fixed local UTC offset.
	SchemaLocal Schema = iota
	// SchemaUTC is the CSV layout with ISO-8601 datetime and tide_height
	// columns.
	SchemaUTC
	// SchemaText is the whitespace-delimited equispaced prediction format.
	SchemaText
)

func (s Schema) String() string {
	switch s {
	case SchemaLocal:
		return "local"
	case SchemaUTC:
		return "utc"
	case SchemaText:
		return "text"
	default:
		return "unknown"
	}
}

// ParseResult is a parsed series plus the rows that were skipped.
type ParseResult struct {
	Schema  Schema
	Series  Series
	Skipped []RowError
}
