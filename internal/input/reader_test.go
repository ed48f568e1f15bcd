package input

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xkilldash9x/trackrunner/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeWorkbook(t *testing.T, name string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadCSV(t *testing.T) {
	t.Run("header skipped and cells trimmed", func(t *testing.T) {
		path := writeFile(t, "ids.csv", "FCR Number,Notes\n MAEU123456 ,first\nMAEU654321,second\n")
		ids, err := ReadIdentifiers(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"MAEU123456", "MAEU654321"}, ids)
	})

	t.Run("empty cells dropped and duplicates kept", func(t *testing.T) {
		path := writeFile(t, "ids.csv", "id\nA1\n\n  ,x\nA1\n\"B2\"\n")
		ids, err := ReadIdentifiers(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"A1", "A1", "B2"}, ids)
	})

	t.Run("byte order mark and ragged rows", func(t *testing.T) {
		path := writeFile(t, "ids.CSV", "\xEF\xBB\xBFid\nA1,extra,more\nB2\n")
		ids, err := ReadIdentifiers(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"A1", "B2"}, ids)
	})

	t.Run("without header", func(t *testing.T) {
		path := writeFile(t, "ids.csv", "A1\nB2\n")
		ids, err := NewReader(config.InputConfig{HasHeader: false}).Read(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"A1", "B2"}, ids)
	})

	t.Run("header only", func(t *testing.T) {
		path := writeFile(t, "ids.csv", "id\n")
		ids, err := ReadIdentifiers(path)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadIdentifiers(filepath.Join(t.TempDir(), "absent.csv"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestReadSpreadsheet(t *testing.T) {
	path := writeWorkbook(t, "ids.xlsx", [][]interface{}{
		{"FCR Number", "Customer"},
		{"MAEU123456", "ACME"},
		{"", "blank id"},
		{"  MAEU654321 ", nil},
		{123456, nil},
	})

	ids, err := ReadIdentifiers(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"MAEU123456", "MAEU654321", "123456"}, ids)
}

func TestReadSpreadsheetCorrupt(t *testing.T) {
	path := writeFile(t, "broken.xlsx", "not a zip archive")
	_, err := ReadIdentifiers(path)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestUnsupportedFormat(t *testing.T) {
	for _, name := range []string{"ids.txt", "ids.xls", "ids.json", "ids"} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, "A1\n")
			ids, err := ReadIdentifiers(path)
			assert.Nil(t, ids)

			var formatErr *UnsupportedFormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, filepath.Ext(name), formatErr.Ext)
			assert.ErrorIs(t, err, ErrUnsupportedFormat)
			assert.NotEmpty(t, err.Error())
		})
	}
}
