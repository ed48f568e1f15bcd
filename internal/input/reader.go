// Package input reads tracking identifiers from the first column of a CSV
// or spreadsheet file.
package input

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/xkilldash9x/trackrunner/internal/config"
)

// UnsupportedFormatError is returned for any extension other than the
// recognised tabular formats.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return "unsupported input format: file has no extension"
	}
	return fmt.Sprintf("unsupported input format %q (want .csv, .xlsx or .xlsm)", e.Ext)
}

// Is lets errors.Is match any UnsupportedFormatError.
func (e *UnsupportedFormatError) Is(target error) bool {
	_, ok := target.(*UnsupportedFormatError)
	return ok
}

// ErrUnsupportedFormat can be used with errors.Is.
var ErrUnsupportedFormat error = &UnsupportedFormatError{}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader extracts identifiers. With HasHeader the first row names the
// column and is skipped.
type Reader struct {
	HasHeader bool
}

func NewReader(cfg config.InputConfig) *Reader {
	return &Reader{HasHeader: cfg.HasHeader}
}

// ReadIdentifiers reads path with a header row.
func ReadIdentifiers(path string) ([]string, error) {
	return (&Reader{HasHeader: true}).Read(path)
}

// Read returns the trimmed, non-empty first-column values of path in row
// order. Duplicates are kept.
func (r *Reader) Read(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var rows [][]string
	var err error
	switch ext {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readSpreadsheet(path)
	default:
		return nil, &UnsupportedFormatError{Ext: ext}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if r.HasHeader && len(rows) > 0 {
		rows = rows[1:]
	}
	return firstColumn(rows), nil
}

func firstColumn(rows [][]string) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if v := strings.TrimSpace(row[0]); v != "" {
			ids = append(ids, v)
		}
	}
	return ids
}

func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readSpreadsheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}
