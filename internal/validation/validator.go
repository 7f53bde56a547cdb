// =============================================================================
// Startup Funding Dashboard - Validation Engine
// =============================================================================
//
// This module validates the two kinds of input the dashboard accepts from
// outside: configuration files and filter selections. It also turns ingest
// row issues into the same error shape so every problem is reported one way.
//
// VALIDATION STRATEGY:
//   1. Field-level: struct tags checked by go-playground/validator.
//   2. Struct-level: cross-field rules (e.g. a range minimum must not exceed
//      its maximum) registered per type.
//   3. Row-level: issues collected while loading the dataset, reported as
//      warnings.
//
// ERROR HANDLING:
//   - Errors are collected, not returned one at a time.
//   - Each error carries the field path, the offending value and the rule.
//   - Warnings never fail a run; errors do.
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ginjaninja78/funding-dashboard/internal/filter"
	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation problem.
type ValidationError struct {
	// Severity is "error" (the input is rejected) or "warning".
	Severity string `json:"severity"`

	// Field is the dotted path of the field, using yaml or json names.
	Field string `json:"field"`

	// Value is the offending value, rendered as text.
	Value string `json:"value,omitempty"`

	// Rule is the validation rule that was violated.
	Rule string `json:"rule"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// RowNumber is the source row for row-level problems, 0 otherwise.
	RowNumber int `json:"row,omitempty"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", strings.ToUpper(e.Severity))
	if e.RowNumber > 0 {
		fmt.Fprintf(&b, "row %d, ", e.RowNumber)
	}
	fmt.Fprintf(&b, "field '%s': %s", e.Field, e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value: '%s')", e.Value)
	}
	return b.String()
}

// Errors is a list of validation problems. It implements error so it can be
// returned and wrapped like any other error.
type Errors []*ValidationError

// Error joins the individual messages.
func (errs Errors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Fatal returns the errors with severity "error".
func (errs Errors) Fatal() Errors {
	var out Errors
	for _, e := range errs {
		if e.Severity == SeverityError {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// VALIDATOR
// =============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"yaml", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	v.RegisterStructValidation(selectionStructLevel, filter.Selection{})
	return v
}

// selectionStructLevel rejects inverted year and amount ranges.
func selectionStructLevel(sl validator.StructLevel) {
	sel := sl.Current().Interface().(filter.Selection)

	if sel.Years.Active() && sel.Years.Min > sel.Years.Max {
		sl.ReportError(sel.Years.Max, "years.max", "Years", "gtefield", "years.min")
	}
	if sel.Amount.Active() {
		if sel.Amount.Min.IsNegative() {
			sl.ReportError(sel.Amount.Min.String(), "amount.min", "Amount", "gte", "0")
		}
		if sel.Amount.Min.GreaterThan(sel.Amount.Max) {
			sl.ReportError(sel.Amount.Max.String(), "amount.max", "Amount", "gtefield", "amount.min")
		}
	}
}

// Struct validates v against its struct tags and registered struct-level
// rules.
//
// PARAMETERS:
//   - v: A struct or pointer to struct.
//
// RETURNS:
//   - nil if v is valid.
//   - Errors describing every problem otherwise.
//   - The underlying error if v cannot be validated at all.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fromFieldError(fe))
	}
	return out
}

// Selection validates a filter selection.
func Selection(sel filter.Selection) error {
	return Struct(sel)
}

func fromFieldError(fe validator.FieldError) *ValidationError {
	return &ValidationError{
		Severity: SeverityError,
		Field:    fieldPath(fe),
		Value:    fmt.Sprint(fe.Value()),
		Rule:     fe.Tag(),
		Message:  message(fe),
	}
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return fmt.Sprintf("is required when %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s item(s)", fe.Param())
	case "gtefield":
		return fmt.Sprintf("must not be less than %s", fe.Param())
	}
	return fmt.Sprintf("failed rule '%s'", fe.Tag())
}

// =============================================================================
// ROW ISSUES
// =============================================================================

// RowIssues converts ingest row issues into warnings.
func RowIssues(issues []types.RowIssue) Errors {
	out := make(Errors, 0, len(issues))
	for _, issue := range issues {
		out = append(out, &ValidationError{
			Severity:  SeverityWarning,
			Field:     string(issue.Field),
			Value:     issue.Value,
			Rule:      "parse",
			Message:   issue.Reason,
			RowNumber: issue.Row,
		})
	}
	return out
}

// MissingColumns reports required fields that no source column resolved to.
func MissingColumns(fields []types.Field) Errors {
	out := make(Errors, 0, len(fields))
	for _, f := range fields {
		out = append(out, &ValidationError{
			Severity: SeverityWarning,
			Field:    string(f),
			Rule:     "column",
			Message:  "no matching column in source; views using this field are unavailable",
		})
	}
	return out
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
//
// PARAMETERS:
//   - errs: The validation errors to format.
//
// RETURNS:
//   - A formatted string containing all errors.
func FormatErrors(errs Errors) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Validation completed with %d problem(s):\n\n", len(errs))
	for i, err := range errs {
		fmt.Fprintf(&builder, "%d. %s\n", i+1, err.Error())
	}
	return builder.String()
}

// WriteErrorLog writes validation errors to a log file.
//
// PARAMETERS:
//   - errs: The validation errors to write.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(errs Errors, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "# Validation log generated %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(writer, "# errors: %d, warnings: %d\n\n", len(errs.Fatal()), len(errs)-len(errs.Fatal()))
	writer.WriteString(FormatErrors(errs))
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
