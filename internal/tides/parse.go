package tides

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultLocalOffsetHours is the fixed UTC offset assumed for SchemaLocal
// timestamps (Brisbane standard time, no daylight saving).
const DefaultLocalOffsetHours = 10

// localTimeLayout is the day-first layout used by SchemaLocal and the
// text format.
const localTimeLayout = "02/01/2006 15:04"

// Parser converts tide prediction files into a Series. The zero value is
// not usable; construct with NewParser.
type Parser struct {
	// LocalZone is the fixed offset applied to SchemaLocal timestamps
	// before converting to UTC.
	LocalZone *time.Location
}

// NewParser returns a parser using the default local offset.
func NewParser() *Parser {
	return &Parser{
		LocalZone: time.FixedZone("UTC+10", DefaultLocalOffsetHours*60*60),
	}
}

// NewParserWithOffset returns a parser whose SchemaLocal timestamps carry
// the given fixed UTC offset in hours.
func NewParserWithOffset(offsetHours int) *Parser {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return &Parser{LocalZone: time.FixedZone(name, offsetHours*60*60)}
}

// ParseFile parses a tide file, dispatching on extension: .txt uses the
// equispaced text format, everything else the CSV schemas.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tide file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return p.ParseTXT(f)
	}
	return p.ParseCSV(f)
}

// ParseCSV parses one of the two supported CSV layouts, detected from the
// headers. Rows that fail to parse are skipped and recorded; the parse as
// a whole fails only when no valid rows remain.
func (p *Parser) ParseCSV(r io.Reader) (*ParseResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: no header row", ErrUnrecognizedSchema)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[normalizeHeader(name)] = i
	}

	dtIdx, hasDT := cols["datetime"]
	heightIdx, hasHeight := cols["height"]
	tideHeightIdx, hasTideHeight := cols["tide_height"]

	result := &ParseResult{}
	var valueIdx int
	switch {
	case hasDT && hasHeight:
		result.Schema = SchemaLocal
		valueIdx = heightIdx
	case hasDT && hasTideHeight:
		result.Schema = SchemaUTC
		valueIdx = tideHeightIdx
	default:
		return nil, fmt.Errorf("%w: headers %q", ErrUnrecognizedSchema, header)
	}

	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Row: row, Err: err})
			continue
		}
		if dtIdx >= len(record) || valueIdx >= len(record) {
			result.Skipped = append(result.Skipped, RowError{Row: row, Err: errors.New("missing columns")})
			continue
		}

		dtStr := strings.TrimSpace(record[dtIdx])
		if dtStr == "" {
			result.Skipped = append(result.Skipped, RowError{Row: row, Err: errors.New("empty datetime")})
			continue
		}

		var ts time.Time
		if result.Schema == SchemaLocal {
			local, perr := time.ParseInLocation(localTimeLayout, dtStr, p.LocalZone)
			if perr != nil {
				result.Skipped = append(result.Skipped, RowError{Row: row, Err: perr})
				continue
			}
			ts = local.UTC()
		} else {
			var perr error
			ts, perr = parseISOTime(dtStr)
			if perr != nil {
				result.Skipped = append(result.Skipped, RowError{Row: row, Err: perr})
				continue
			}
		}

		height, perr := strconv.ParseFloat(strings.TrimSpace(record[valueIdx]), 64)
		if perr != nil {
			result.Skipped = append(result.Skipped, RowError{Row: row, Err: perr})
			continue
		}

		result.Series = append(result.Series, Sample{Time: ts, Height: height})
	}

	return finishParse(result)
}

// ParseTXT parses the equispaced prediction text format: anything before a
// header line starting with "Date" and containing "Height" is ignored, then
// whitespace-delimited rows of date, time and height, already in UTC.
func (p *Parser) ParseTXT(r io.Reader) (*ParseResult, error) {
	result := &ParseResult{Schema: SchemaText}

	sc := bufio.NewScanner(r)
	headerFound := false
	row := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if !headerFound {
			lower := strings.ToLower(line)
			if strings.HasPrefix(lower, "date") && strings.Contains(lower, "height") {
				headerFound = true
			}
			continue
		}

		row++
		parts := strings.Fields(line)
		if len(parts) < 3 {
			result.Skipped = append(result.Skipped, RowError{Row: row, Err: errors.New("short row")})
			continue
		}

		ts, err := time.Parse(localTimeLayout, parts[0]+" "+parts[1])
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Row: row, Err: err})
			continue
		}

		height, err := strconv.ParseFloat(parts[len(parts)-1], 64)
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Row: row, Err: err})
			continue
		}

		result.Series = append(result.Series, Sample{Time: ts.UTC(), Height: height})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading tide text: %w", err)
	}

	if !headerFound {
		return nil, fmt.Errorf("%w: no 'Date Time Height' header line", ErrUnrecognizedSchema)
	}

	return finishParse(result)
}

// finishParse applies the zero-valid-rows rule and sorts by UTC time.
// The stable sort keeps first-encountered order among duplicate timestamps.
func finishParse(result *ParseResult) (*ParseResult, error) {
	if len(result.Series) == 0 {
		return nil, fmt.Errorf("%w: %d rows skipped", ErrNoValidRows, len(result.Skipped))
	}

	sort.SliceStable(result.Series, func(i, j int) bool {
		return result.Series[i].Time.Before(result.Series[j].Time)
	})
	return result, nil
}

// normalizeHeader lowercases a header cell and strips space and any UTF-8
// byte order mark.
func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
}

// parseISOTime accepts RFC 3339 timestamps and two offset-less fallbacks
// treated as UTC.
func parseISOTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
