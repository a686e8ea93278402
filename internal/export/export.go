// Package export writes flat records to spreadsheet files.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

const (
	// DefaultFileName is the file written when no path is given.
	DefaultFileName = "Lab_Informatics_Curriculum.xlsx"
	// DefaultSheet names the single worksheet.
	DefaultSheet = "Curriculum"
)

// ErrNothingToExport is returned when there are no records to write. No file
// is created in that case.
var ErrNothingToExport = errors.New("no assignments to export yet")

// Cell is one keyed value of a record.
type Cell struct {
	Key   string
	Value string
}

// Record is a flat row. Key order matters only for the first record that
// introduces a key: it fixes that key's column.
type Record []Cell

// Get returns the value stored under key.
func (r Record) Get(key string) (string, bool) {
	for _, c := range r {
		if c.Key == key {
			return c.Value, true
		}
	}
	return "", false
}

// Header returns every key in first-seen order across all records.
func Header(records []Record) []string {
	var header []string
	seen := make(map[string]bool)
	for _, r := range records {
		for _, c := range r {
			if seen[c.Key] {
				continue
			}
			seen[c.Key] = true
			header = append(header, c.Key)
		}
	}
	return header
}

// table lays records out as header plus value rows. Missing keys become
// empty cells.
func table(records []Record) ([]string, [][]string) {
	header := Header(records)
	rows := make([][]string, len(records))
	for i, r := range records {
		row := make([]string, len(header))
		for j, key := range header {
			row[j], _ = r.Get(key)
		}
		rows[i] = row
	}
	return header, rows
}

// Format selects the file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat maps a format name to a Format. An empty name selects XLSX.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q (expected xlsx or csv)", s)
}

// FormatForPath picks the format from the file extension, defaulting to XLSX.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

// Options configures Write and WriteFile.
type Options struct {
	Format Format
	Sheet  string
}

func (o Options) sheet() string {
	if o.Sheet == "" {
		return DefaultSheet
	}
	return o.Sheet
}

// Write encodes records to w.
func Write(w io.Writer, records []Record, opts Options) error {
	if len(records) == 0 {
		return ErrNothingToExport
	}
	switch opts.Format {
	case FormatCSV:
		return writeCSV(w, records)
	case FormatXLSX, "":
		return writeXLSX(w, records, opts.sheet())
	}
	return fmt.Errorf("unknown export format %q", opts.Format)
}

// WriteFile encodes records and atomically replaces path with the result.
// Nothing is written when records is empty.
func WriteFile(path string, records []Record, opts Options) error {
	if len(records) == 0 {
		return ErrNothingToExport
	}
	var buf bytes.Buffer
	if err := Write(&buf, records, opts); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}
