// =============================================================================
// Startup Funding Dashboard - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - schema     (Field, Resolution)
//   - ingest     (Record, Dataset, RowIssue)
//   - filter     (Dataset)
//   - aggregate  (Dataset)
//   - dashboard  (everything above)
//
// =============================================================================

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CANONICAL FIELDS
// =============================================================================

// Field is the canonical name of a semantic column in a funding dataset.
// Source files name their columns loosely; the schema resolver maps them
// onto these names once at load time.
type Field string

const (
	FieldStartupName    Field = "startup_name"
	FieldIndustry       Field = "industry"
	FieldCity           Field = "city"
	FieldInvestmentType Field = "investment_type"
	FieldInvestorName   Field = "investor_name"
	FieldAmountUSD      Field = "amount_usd"
	FieldDate           Field = "date"
)

// AllFields lists every canonical field in display order.
var AllFields = []Field{
	FieldStartupName,
	FieldIndustry,
	FieldCity,
	FieldInvestmentType,
	FieldInvestorName,
	FieldAmountUSD,
	FieldDate,
}

// RequiredFields are the fields a record cannot be analysed without.
// A record with any of them null is excluded at ingest.
var RequiredFields = []Field{
	FieldStartupName,
	FieldCity,
	FieldAmountUSD,
}

// IsText reports whether the field holds a string value.
func (f Field) IsText() bool {
	switch f {
	case FieldStartupName, FieldIndustry, FieldCity, FieldInvestmentType, FieldInvestorName:
		return true
	}
	return false
}

// IsNumeric reports whether the field can be summed.
func (f Field) IsNumeric() bool {
	return f == FieldAmountUSD
}

// IsTemporal reports whether the field holds a calendar date.
func (f Field) IsTemporal() bool {
	return f == FieldDate
}

// ParseField converts a string to a known Field.
func ParseField(s string) (Field, bool) {
	for _, f := range AllFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// =============================================================================
// SCHEMA RESOLUTION
// =============================================================================

// Resolution maps each canonical field to the source column it was found in.
// Fields that could not be matched are absent from the map.
type Resolution map[Field]string

// Has reports whether the field was found in the source.
func (r Resolution) Has(f Field) bool {
	_, ok := r[f]
	return ok
}

// Column returns the source column name for a field, or "" if absent.
func (r Resolution) Column(f Field) string {
	return r[f]
}

// =============================================================================
// RECORD
// =============================================================================

// Record represents one funding event.
// Empty strings and nil pointers mean "null".
type Record struct {
	StartupName    string           `json:"startup_name"`
	Industry       string           `json:"industry,omitempty"`
	City           string           `json:"city"`
	InvestmentType string           `json:"investment_type,omitempty"`
	InvestorName   string           `json:"investor_name,omitempty"`
	AmountUSD      *decimal.Decimal `json:"amount_usd"`
	Date           *time.Time       `json:"date,omitempty"`

	// Row is the 1-indexed row number in the source file.
	Row int `json:"row"`
}

// Text returns the value of a text field, or "" for non-text fields.
func (r *Record) Text(f Field) string {
	switch f {
	case FieldStartupName:
		return r.StartupName
	case FieldIndustry:
		return r.Industry
	case FieldCity:
		return r.City
	case FieldInvestmentType:
		return r.InvestmentType
	case FieldInvestorName:
		return r.InvestorName
	}
	return ""
}

// SetText assigns a text field. Non-text fields are ignored.
func (r *Record) SetText(f Field, v string) {
	switch f {
	case FieldStartupName:
		r.StartupName = v
	case FieldIndustry:
		r.Industry = v
	case FieldCity:
		r.City = v
	case FieldInvestmentType:
		r.InvestmentType = v
	case FieldInvestorName:
		r.InvestorName = v
	}
}

// Amount returns the amount, or zero and false when null.
func (r *Record) Amount() (decimal.Decimal, bool) {
	if r.AmountUSD == nil {
		return decimal.Zero, false
	}
	return *r.AmountUSD, true
}

// Year returns the calendar year of the record's date, or 0 and false when null.
func (r *Record) Year() (int, bool) {
	if r.Date == nil {
		return 0, false
	}
	return r.Date.Year(), true
}

// =============================================================================
// DATASET
// =============================================================================

// RowIssue describes why a source row was excluded at ingest.
type RowIssue struct {
	Row    int    `json:"row"`
	Field  Field  `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Dataset is an ordered, immutable sequence of usable records together with
// the column resolution they were read with.
type Dataset struct {
	// Source is the path of the file the dataset was loaded from.
	Source string `json:"source"`

	// Columns is the schema resolution used at load time.
	Columns Resolution `json:"columns"`

	// Records holds the usable records in source order.
	Records []Record `json:"records"`

	// Excluded lists rows dropped during ingestion.
	Excluded []RowIssue `json:"excluded,omitempty"`
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// WithRecords returns a dataset sharing this dataset's metadata but holding
// the given records. Excluded rows are not carried over.
func (d *Dataset) WithRecords(records []Record) *Dataset {
	return &Dataset{
		Source:  d.Source,
		Columns: d.Columns,
		Records: records,
	}
}
