// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package locimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/eftp-registry/internal/logging"
)

// Format is a supported spreadsheet format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ErrUnsupportedFormat is returned for file extensions other than .xlsx and .csv.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Row is one data line of a sheet. Line is the 1-based spreadsheet line.
type Row struct {
	Line   int
	Values map[string]string
}

// Get returns the trimmed value of column, "" when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Values[column])
}

// Table is a parsed sheet.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the header contains column.
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// ReadRows parses the file at path.
func ReadRows(path string) (*Table, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Str("path", path).Msg("Error closing import file")
		}
	}()

	return Read(f, format)
}

// Read parses r as the given format.
func Read(r io.Reader, format Format) (*Table, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatXLSX:
		records, err = readXLSX(r)
	case FormatCSV:
		records, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return buildTable(records)
}

func readXLSX(r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if closeErr := wb.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Msg("Error closing workbook")
		}
	}()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)

	// Sniff the delimiter from the header line; French locale exports use ';'.
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	firstLine := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		firstLine = head[:i]
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		cr.Comma = ';'
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func buildTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.New("file is empty: a header row is required")
	}

	t := &Table{Columns: make([]string, len(records[0]))}
	for i, name := range records[0] {
		t.Columns[i] = strings.ToLower(strings.TrimSpace(name))
	}

	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := Row{Line: i + 2, Values: make(map[string]string, len(t.Columns))}
		for j, col := range t.Columns {
			if col == "" || j >= len(rec) {
				continue
			}
			row.Values[col] = rec[j]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
