package ingest

import (
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	in := "\ufeffFull Name,Email,Phone No\nJane Doe,jane@x.com,555-1212\n,,\nBob,bob@x.com\n"

	parsed, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(parsed.Headers) != 3 || parsed.Headers[0] != "Full Name" {
		t.Fatalf("headers = %v", parsed.Headers)
	}
	if len(parsed.Rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2 (blank row dropped)", len(parsed.Rows))
	}
	// Ragged rows are padded to header width.
	if len(parsed.Rows[1]) != 3 || parsed.Rows[1][2] != "" {
		t.Fatalf("rows[1] = %v", parsed.Rows[1])
	}
}

func TestParseCSVEmpty(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("")); err == nil {
		t.Fatalf("ParseCSV(empty) error = nil, want %v", ErrEmptyFile)
	}
}

func TestParseRejectsUnsupportedFormat(t *testing.T) {
	if _, err := Parse("contacts.xlsx", strings.NewReader("x")); err == nil {
		t.Fatalf("Parse(xlsx) error = nil, want unsupported format")
	}
	if _, err := Parse("contacts.csv", strings.NewReader("A,B\n1,2\n")); err != nil {
		t.Fatalf("Parse(csv) error = %v", err)
	}
}

func TestSampleRows(t *testing.T) {
	p := &ParsedFile{Rows: [][]string{{"1"}, {"2"}, {"3"}}}
	if got := len(p.SampleRows(2)); got != 2 {
		t.Fatalf("SampleRows(2) len = %d", got)
	}
	if got := len(p.SampleRows(10)); got != 3 {
		t.Fatalf("SampleRows(10) len = %d", got)
	}
}
