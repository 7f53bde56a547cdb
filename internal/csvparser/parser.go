// =============================================================================
// Startup Funding Dashboard - CSV Parser Module
// =============================================================================
//
// This module reads delimited funding exports into a Table: a header row plus
// raw string rows. It does not interpret values; typing happens in ingest.
//
// FEATURES:
//   - Configurable delimiter (comma, pipe, semicolon, tab)
//   - Multi-line headers merged column by column
//   - Configurable data start row
//   - Lazy quotes and ragged rows tolerated
//   - UTF-8 byte order mark stripped
//   - Empty rows skipped, source row numbers kept for diagnostics
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/funding-dashboard/internal/config"
)

// ErrEmpty is returned when the input has no rows at all.
var ErrEmpty = errors.New("file is empty")

// utf8BOM is the byte order mark some spreadsheet tools prepend.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Table is a parsed tabular file.
type Table struct {
	// Headers contains the column headers. For multi-line headers these are
	// the merged headers.
	Headers []string

	// Rows contains the data rows. Each row has exactly len(Headers) cells.
	Rows [][]string

	// RowNumbers holds the 1-indexed source row number of each data row.
	RowNumbers []int

	// SourceFile is the path the table was read from.
	SourceFile string
}

// Column returns the index of the header, or -1 if absent.
func (t *Table) Column(header string) int {
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV parsing settings.
//
// RETURNS:
//   - The parsed table.
//   - An error if the file cannot be opened or is not valid CSV.
func Parse(filePath string, settings config.CSVSettings) (*Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath
	return table, nil
}

// ParseReader reads CSV data from r.
func ParseReader(r io.Reader, settings config.CSVSettings) (*Table, error) {
	reader := bufio.NewReader(r)
	if head, err := reader.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = reader.Discard(len(utf8BOM))
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(allRows) == 0 {
		return nil, ErrEmpty
	}

	return buildTable(allRows, settings)
}

// FromRows builds a table from already-split rows (e.g. a worksheet).
func FromRows(allRows [][]string, settings config.CSVSettings) (*Table, error) {
	if len(allRows) == 0 {
		return nil, ErrEmpty
	}
	return buildTable(allRows, settings)
}

func buildTable(allRows [][]string, settings config.CSVSettings) (*Table, error) {
	headerRows := settings.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}
	if len(allRows) < headerRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting (%d)", headerRows)
	}

	headers := mergeHeaders(allRows[:headerRows])

	start := settings.DataStartRow - 1
	if start < headerRows {
		start = headerRows
	}

	table := &Table{Headers: headers}
	for i := start; i < len(allRows); i++ {
		row := allRows[i]
		if isRowEmpty(row) {
			continue
		}
		table.Rows = append(table.Rows, alignRow(row, len(headers)))
		table.RowNumbers = append(table.RowNumbers, i+1)
	}
	return table, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = []rune(settings.Delimiter)[0]
		} else {
			reader.Comma = ','
		}
	}

	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// mergeHeaders merges one or more header rows into a single header row.
//
// Example:
//
//	Row 1: "Startup", "",        "Amount"
//	Row 2: "Name",    "Date",    "in USD"
//	Result: "Startup Name", "Date", "Amount in USD"
func mergeHeaders(rows [][]string) []string {
	maxCols := 0
	for _, row := range rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for _, row := range rows {
			if col < len(row) {
				if v := strings.TrimSpace(row[col]); v != "" {
					parts = append(parts, v)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}
	return cleanHeaders(headers)
}

// cleanHeaders trims headers and names blank ones Column_N.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// alignRow trims cells and pads or truncates the row to width cells.
func alignRow(row []string, width int) []string {
	out := make([]string, width)
	for i := 0; i < width && i < len(row); i++ {
		out[i] = strings.TrimSpace(row[i])
	}
	return out
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
