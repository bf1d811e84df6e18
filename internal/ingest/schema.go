package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

type DataType string

const (
	NumberType   DataType = "number"
	DatetimeType DataType = "datetime"
	StringType   DataType = "string"
)

// Column is one named, typed column of an uploaded table
type Column struct {
	Name     string   `json:"name"`
	DataType DataType `json:"data_type"`
}

// Schema is the preview returned for an uploaded file
type Schema struct {
	NumRows int      `json:"num_rows"`
	Columns []Column `json:"columns"`
}

// Table is a parsed upload: typed columns plus the raw cell values of every data row
type Table struct {
	Columns []Column
	Rows    [][]string
}

// SchemaInferenceError is returned when an upload cannot be read as delimited text
type SchemaInferenceError struct {
	Reason string
	Err    error
}

func (e *SchemaInferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not read tabular data: %s: %s", e.Reason, e.Err.Error())
	}
	return fmt.Sprintf("could not read tabular data: %s", e.Reason)
}

func (e *SchemaInferenceError) Unwrap() error {
	return e.Err
}

var delimiters = []rune{',', ';', '\t', '|'}

var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
	"-":    {},
}

// InferSchema reads raw delimited text and reports its row count and column types
func InferSchema(raw []byte) (*Schema, error) {
	table, err := ReadTable(raw)
	if err != nil {
		return nil, err
	}

	return &Schema{
		NumRows: len(table.Rows),
		Columns: table.Columns,
	}, nil
}

// ReadTable parses raw delimited text into a typed table. The first record is the header.
func ReadTable(raw []byte) (*Table, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &SchemaInferenceError{Reason: "file is empty"}
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = sniffDelimiter(raw)

	header, err := reader.Read()
	if err != nil {
		return nil, &SchemaInferenceError{Reason: "failed to read header", Err: err}
	}

	rows := [][]string{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &SchemaInferenceError{Reason: fmt.Sprintf("malformed row %d", len(rows)+1), Err: err}
		}
		rows = append(rows, record)
	}

	names := columnNames(header)
	columns := make([]Column, len(names))
	values := make([]string, len(rows))

	for i, name := range names {
		for r, row := range rows {
			values[r] = row[i]
		}
		columns[i] = Column{Name: name, DataType: classify(values)}
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

func sniffDelimiter(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}

	best, bestCount := ',', 0
	for _, d := range delimiters {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}

	return best
}

// columnNames names blank header cells and de-duplicates repeated ones as name.1, name.2, ...
func columnNames(header []string) []string {
	names := make([]string, len(header))
	seen := map[string]int{}

	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		}
		seen[name] = 0
		names[i] = name
	}

	return names
}

func classify(values []string) DataType {
	seen := false
	isDatetime, isNumber := true, true

	for _, v := range values {
		if IsNull(v) {
			continue
		}
		seen = true
		v = strings.TrimSpace(v)

		if isNumber {
			_, isNumber = ParseNumber(v)
		}
		if isDatetime {
			_, isDatetime = ParseDatetime(v)
		}
		if !isNumber && !isDatetime {
			break
		}
	}

	switch {
	case !seen:
		return StringType
	case isDatetime:
		return DatetimeType
	case isNumber:
		return NumberType
	default:
		return StringType
	}
}

func IsNull(v string) bool {
	_, ok := nullTokens[strings.TrimSpace(v)]
	return ok
}

func ParseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f, err == nil
}

// ParseDatetime accepts anything dateparse understands, except bare numbers, which are never
// treated as timestamps or compact dates.
func ParseDatetime(v string) (t time.Time, ok bool) {
	v = strings.TrimSpace(v)
	if _, isNumber := ParseNumber(v); isNumber {
		return time.Time{}, false
	}

	// dateparse can panic on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			t, ok = time.Time{}, false
		}
	}()

	parsed, err := dateparse.ParseIn(v, time.UTC)
	if err != nil {
		return time.Time{}, false
	}

	return parsed, true
}
