// =============================================================================
// Startup Funding Dashboard - XLSX Input Parser
// =============================================================================
//
// Funding datasets are often shared as Excel workbooks rather than CSV. This
// module reads one worksheet of an .xlsx file into the same Table shape the
// CSV parser produces, so the rest of the ingestion pipeline does not care
// where the rows came from.
//
// SHEET SELECTION:
//   - If a sheet name is given it must exist.
//   - Otherwise the first sheet of the workbook is used.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/funding-dashboard/internal/config"
	"github.com/ginjaninja78/funding-dashboard/internal/csvparser"
)

// Parse reads a worksheet of an XLSX workbook.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//   - sheet: The worksheet name; empty selects the first sheet.
//   - settings: Header and data-start settings shared with CSV input.
//
// RETURNS:
//   - The parsed table.
//   - An error if the workbook or sheet cannot be read.
func Parse(path, sheet string, settings config.CSVSettings) (*csvparser.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	table, err := parseFile(f, sheet, settings)
	if err != nil {
		return nil, err
	}
	table.SourceFile = path
	return table, nil
}

// ParseReader reads a worksheet from an XLSX stream.
func ParseReader(r io.Reader, sheet string, settings config.CSVSettings) (*csvparser.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseFile(f, sheet, settings)
}

func parseFile(f *excelize.File, sheet string, settings config.CSVSettings) (*csvparser.Table, error) {
	sheetName, err := resolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %q: %w", sheetName, err)
	}

	table, err := csvparser.FromRows(rows, settings)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
	}
	return table, nil
}

// resolveSheet returns the sheet to read.
func resolveSheet(f *excelize.File, sheet string) (string, error) {
	if sheet == "" {
		name := f.GetSheetName(0)
		if name == "" {
			return "", fmt.Errorf("workbook has no sheets")
		}
		return name, nil
	}

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to look up sheet %q: %w", sheet, err)
	}
	if idx < 0 {
		return "", fmt.Errorf("sheet %q not found (available: %v)", sheet, f.GetSheetList())
	}
	return sheet, nil
}
