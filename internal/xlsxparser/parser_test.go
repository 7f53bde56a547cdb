package xlsxparser

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/funding-dashboard/internal/config"
)

var settings = config.CSVSettings{HeaderRows: 1, DataStartRow: 2}

// writeWorkbook creates a workbook with a "Funding" sheet after the default one.
func writeWorkbook(t *testing.T) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Notes"}))

	_, err := f.NewSheet("Funding")
	require.NoError(t, err)
	rows := [][]interface{}{
		{"Startup Name", "City Location", "Amount in USD"},
		{"Ola", "Bengaluru", 1000},
		{},
		{"Paytm", "Noida", "2,000"},
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Funding", cell, &r))
	}
	return f
}

func TestParse_NamedSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funding.xlsx")
	require.NoError(t, writeWorkbook(t).SaveAs(path))

	table, err := Parse(path, "Funding", settings)

	require.NoError(t, err)
	assert.Equal(t, path, table.SourceFile)
	assert.Equal(t, []string{"Startup Name", "City Location", "Amount in USD"}, table.Headers)
	assert.Equal(t, [][]string{
		{"Ola", "Bengaluru", "1000"},
		{"Paytm", "Noida", "2,000"},
	}, table.Rows)
	assert.Equal(t, []int{2, 4}, table.RowNumbers)
}

func TestParseReader_DefaultsToFirstSheet(t *testing.T) {
	var buf bytes.Buffer
	_, err := writeWorkbook(t).WriteTo(&buf)
	require.NoError(t, err)

	table, err := ParseReader(&buf, "", settings)

	require.NoError(t, err)
	assert.Equal(t, []string{"Notes"}, table.Headers)
	assert.Equal(t, 0, table.Len())
}

func TestParse_MissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funding.xlsx")
	require.NoError(t, writeWorkbook(t).SaveAs(path))

	_, err := Parse(path, "Deals", settings)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Deals" not found`)
}

func TestParse_NotAWorkbook(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.xlsx"), "", settings)
	assert.Error(t, err)
}
