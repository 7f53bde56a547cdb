// =============================================================================
// Startup Funding Dashboard - Dataset Loader
// =============================================================================
//
// The loader is the one place raw input becomes typed records. It runs once
// at startup:
//
//   1. Read the file (CSV or XLSX, chosen by extension) into a Table.
//   2. Resolve the headers to canonical fields.
//   3. For each row: normalize text fields, coerce amount and date.
//   4. Exclude rows that cannot be used and record why.
//
// COERCION:
//   - Amounts: currency symbols, thousands separators and spaces are removed
//     before parsing. Null tokens ("undisclosed", "n/a", ...) become null.
//   - Dates: tried against each configured layout in order. An empty cell or
//     null token becomes null; any other unparseable value excludes the row.
//
// EXCLUSION:
//   A row is excluded when its amount or date cannot be parsed, or when a
//   required field (startup name, city, amount) is null. A required field is
//   only checked when the source actually has a column for it.
//
// Coercion failures are never fatal. A file that cannot be read, or has no
// header, is.
//
// =============================================================================

package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/funding-dashboard/internal/config"
	"github.com/ginjaninja78/funding-dashboard/internal/csvparser"
	"github.com/ginjaninja78/funding-dashboard/internal/schema"
	"github.com/ginjaninja78/funding-dashboard/internal/types"
	"github.com/ginjaninja78/funding-dashboard/internal/xlsxparser"
)

var (
	// ErrNoHeader is returned when the input has no usable header row.
	ErrNoHeader = errors.New("input has no header row")

	// ErrUnsupportedFormat is returned for file extensions the loader cannot read.
	ErrUnsupportedFormat = errors.New("unsupported input format")
)

// amountStripper removes currency symbols, separators and spaces.
var amountStripper = strings.NewReplacer(
	",", "",
	"$", "",
	"₹", "",
	" ", "",
	"\u00a0", "",
	"\\xc2\\xa0", "",
	"+", "",
)

// Loader reads funding datasets.
type Loader struct {
	data       config.DataConfig
	resolver   *schema.Resolver
	normalizer *Normalizer
	nulls      map[string]struct{}
	logger     *slog.Logger
}

// NewLoader creates a Loader from configuration.
func NewLoader(cfg *config.Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	nulls := make(map[string]struct{}, len(cfg.Data.NullTokens))
	for _, tok := range cfg.Data.NullTokens {
		nulls[strings.ToLower(strings.TrimSpace(tok))] = struct{}{}
	}
	return &Loader{
		data:       cfg.Data,
		resolver:   schema.NewResolver(cfg.ExtraAliases()),
		normalizer: NewNormalizer(cfg.Normalization),
		nulls:      nulls,
		logger:     logger.With("component", "ingest"),
	}
}

// Load reads the dataset at cfg.Data.Path.
func Load(cfg *config.Config, logger *slog.Logger) (*types.Dataset, error) {
	return NewLoader(cfg, logger).Load(cfg.Data.Path)
}

// Load reads and types the file at path.
//
// PARAMETERS:
//   - path: A .csv, .tsv, .txt or .xlsx file.
//
// RETURNS:
//   - The dataset, with excluded rows listed in Excluded.
//   - An error if the file cannot be read or has no header.
func (l *Loader) Load(path string) (*types.Dataset, error) {
	start := time.Now()

	table, err := l.readTable(path)
	if err != nil {
		if errors.Is(err, csvparser.ErrEmpty) {
			return nil, fmt.Errorf("%w: %s", ErrNoHeader, path)
		}
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	ds, err := l.FromTable(table)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	ds.Source = path

	l.logger.Info("dataset loaded",
		"path", path,
		"rows", table.Len(),
		"records", ds.Len(),
		"excluded", len(ds.Excluded),
		"columns", len(ds.Columns),
		"duration", time.Since(start),
	)
	if missing := schema.Missing(ds.Columns, types.AllFields...); len(missing) > 0 {
		l.logger.Warn("canonical fields not found in source", "fields", missing)
	}
	return ds, nil
}

func (l *Loader) readTable(path string) (*csvparser.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		settings := l.data.CSV
		if strings.EqualFold(filepath.Ext(path), ".tsv") && settings.Delimiter == "," {
			settings.Delimiter = "\t"
		}
		return csvparser.Parse(path, settings)
	case ".xlsx", ".xlsm":
		return xlsxparser.Parse(path, l.data.Sheet, l.data.CSV)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// FromTable types the rows of an already parsed table.
func (l *Loader) FromTable(table *csvparser.Table) (*types.Dataset, error) {
	if table == nil || len(table.Headers) == 0 {
		return nil, ErrNoHeader
	}

	cols := l.resolver.Resolve(table.Headers)
	index := make(map[types.Field]int, len(cols))
	for f, col := range cols {
		index[f] = table.Column(col)
	}

	ds := &types.Dataset{
		Source:  table.SourceFile,
		Columns: cols,
		Records: make([]types.Record, 0, len(table.Rows)),
	}

	for i, row := range table.Rows {
		rowNum := i + 1
		if i < len(table.RowNumbers) {
			rowNum = table.RowNumbers[i]
		}

		rec, issue := l.coerce(row, rowNum, cols, index)
		if issue != nil {
			ds.Excluded = append(ds.Excluded, *issue)
			l.logger.Debug("row excluded",
				"row", issue.Row, "field", issue.Field, "value", issue.Value, "reason", issue.Reason)
			continue
		}
		ds.Records = append(ds.Records, rec)
	}

	return ds, nil
}

// coerce builds a record from one row, or returns the reason it is excluded.
func (l *Loader) coerce(row []string, rowNum int, cols types.Resolution, index map[types.Field]int) (types.Record, *types.RowIssue) {
	rec := types.Record{Row: rowNum}

	cell := func(f types.Field) string {
		idx, ok := index[f]
		if !ok || idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	for _, f := range types.AllFields {
		if !f.IsText() || !cols.Has(f) {
			continue
		}
		v := cell(f)
		if l.isNull(v) {
			v = ""
		}
		rec.SetText(f, v)
	}
	if err := l.normalizer.NormalizeRecord(&rec); err != nil {
		return rec, &types.RowIssue{Row: rowNum, Reason: err.Error()}
	}

	if cols.Has(types.FieldAmountUSD) {
		raw := cell(types.FieldAmountUSD)
		amount, err := l.parseAmount(raw)
		if err != nil {
			return rec, &types.RowIssue{Row: rowNum, Field: types.FieldAmountUSD, Value: raw, Reason: err.Error()}
		}
		rec.AmountUSD = amount
	}

	if cols.Has(types.FieldDate) {
		raw := cell(types.FieldDate)
		date, err := l.parseDate(raw)
		if err != nil {
			return rec, &types.RowIssue{Row: rowNum, Field: types.FieldDate, Value: raw, Reason: err.Error()}
		}
		rec.Date = date
	}

	for _, f := range types.RequiredFields {
		if !cols.Has(f) {
			continue
		}
		var null bool
		if f == types.FieldAmountUSD {
			null = rec.AmountUSD == nil
		} else {
			null = rec.Text(f) == ""
		}
		if null {
			return rec, &types.RowIssue{Row: rowNum, Field: f, Value: cell(f), Reason: "missing required value"}
		}
	}

	return rec, nil
}

func (l *Loader) isNull(v string) bool {
	_, ok := l.nulls[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// parseAmount returns nil for null tokens and an error for unparseable values.
func (l *Loader) parseAmount(raw string) (*decimal.Decimal, error) {
	if l.isNull(raw) {
		return nil, nil
	}
	cleaned := amountStripper.Replace(raw)
	if cleaned == "" || l.isNull(cleaned) {
		return nil, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("unparseable amount")
	}
	return &d, nil
}

// parseDate returns nil for empty values and an error when no layout matches.
func (l *Loader) parseDate(raw string) (*time.Time, error) {
	if l.isNull(raw) {
		return nil, nil
	}
	layouts := l.data.DateLayouts
	if len(layouts) == 0 {
		layouts = config.DefaultDateLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unparseable date")
}
