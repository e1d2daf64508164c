// Package ingest turns uploaded spreadsheet files into headers and rows.
// Parse failures surface before any prediction or write runs.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrEmptyFile       = errors.New("ingest: file has no header row")
	ErrUnsupportedFile = errors.New("ingest: unsupported file format")
)

// ParsedFile is the raw parse result: verbatim headers plus rows aligned to
// them. Ragged rows are padded with empty cells so column indexes stay valid.
type ParsedFile struct {
	Headers []string
	Rows    [][]string
}

// ParseCSV reads a comma-separated upload. The first record is the header
// row; a UTF-8 BOM on the first header is stripped.
func ParseCSV(r io.Reader) (*ParsedFile, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest: malformed csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	if allBlank(headers) {
		return nil, ErrEmptyFile
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if allBlank(rec) {
			continue
		}
		row := make([]string, len(headers))
		copy(row, rec)
		rows = append(rows, row)
	}
	return &ParsedFile{Headers: headers, Rows: rows}, nil
}

// Parse dispatches on the uploaded file's name.
func Parse(name string, r io.Reader) (*ParsedFile, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.HasSuffix(lower, ".csv"), strings.HasSuffix(lower, ".txt"):
		return ParseCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, name)
	}
}

// SampleRows returns up to n leading rows for prediction input.
func (p *ParsedFile) SampleRows(n int) [][]string {
	if p == nil || n <= 0 {
		return nil
	}
	if n > len(p.Rows) {
		n = len(p.Rows)
	}
	return p.Rows[:n]
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
