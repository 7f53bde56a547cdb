// =============================================================================
// Startup Funding Dashboard - Report Writers
// =============================================================================
//
// Report writers render a Dashboard for a consumer outside the pipeline:
//
//   - WriteText: aligned plain-text tables for the terminal
//   - WriteJSON: the dashboard as indented JSON
//   - WriteXLSX: a workbook with one sheet per view plus charts
//
// Writers never recompute anything. Unavailable views are rendered as a
// placeholder line, and an empty selection renders the no-data message.
//
// =============================================================================

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/funding-dashboard/internal/aggregate"
	"github.com/ginjaninja78/funding-dashboard/internal/dashboard"
	"github.com/ginjaninja78/funding-dashboard/internal/filter"
	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

// Format names accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Write renders the dashboard in the named format.
func Write(w io.Writer, dash *dashboard.Dashboard, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return WriteText(w, dash)
	case FormatJSON:
		return WriteJSON(w, dash)
	}
	return fmt.Errorf("unknown report format %q (want text or json)", format)
}

// WriteJSON writes the dashboard as indented JSON.
func WriteJSON(w io.Writer, dash *dashboard.Dashboard) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dash); err != nil {
		return fmt.Errorf("failed to encode dashboard: %w", err)
	}
	return nil
}

// =============================================================================
// TEXT REPORT
// =============================================================================

// WriteText writes the dashboard as a plain-text report.
//
// PARAMETERS:
//   - w: The destination.
//   - dash: The dashboard to render.
//
// RETURNS:
//   - The first write error, if any.
func WriteText(w io.Writer, dash *dashboard.Dashboard) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Startup Funding Dashboard\n")
	fmt.Fprintf(tw, "Source:\t%s\n", dash.Source)
	fmt.Fprintf(tw, "Filters:\t%s\n", filterLabel(dash.Selection))
	if dash.Period != "" {
		fmt.Fprintf(tw, "Period:\t%s\n", dash.Period)
	}
	fmt.Fprintf(tw, "Records:\t%d matched of %d loaded (%d excluded at load)\n",
		dash.Stats.Matched, dash.Stats.Loaded, dash.Stats.Excluded)
	fmt.Fprintln(tw)

	if dash.NoData {
		fmt.Fprintln(tw, dash.Message)
		return tw.Flush()
	}

	if len(dash.Preview) > 0 && dash.Filtered != nil {
		fmt.Fprintf(tw, "== Filtered Data Preview ==\n")
		writeRecords(tw, dash.Filtered.Columns, dash.Preview)
		fmt.Fprintln(tw)
	}

	for _, v := range dash.Views {
		writeView(tw, v)
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}

// WriteRecords writes records as an aligned table with one column per
// resolved field.
func WriteRecords(w io.Writer, cols types.Resolution, records []types.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	writeRecords(tw, cols, records)
	return tw.Flush()
}

func writeRecords(tw *tabwriter.Writer, cols types.Resolution, records []types.Record) {
	fields := presentFields(cols)

	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = cols.Column(f)
	}
	fmt.Fprintf(tw, "row\t%s\n", strings.Join(headers, "\t"))

	for i := range records {
		cells := make([]string, len(fields))
		for j, f := range fields {
			cells[j] = cellText(&records[i], f)
		}
		fmt.Fprintf(tw, "%d\t%s\n", records[i].Row, strings.Join(cells, "\t"))
	}
}

func writeView(tw *tabwriter.Writer, v aggregate.View) {
	fmt.Fprintf(tw, "== %s ==\n", v.Title)
	if !v.Available {
		fmt.Fprintf(tw, "(unavailable: source has no %s column)\n", v.Field)
		return
	}
	if v.Empty() {
		fmt.Fprintln(tw, "(no data)")
		return
	}

	switch v.Kind {
	case aggregate.KindShare:
		fmt.Fprintf(tw, "#\t%s\tdeals\tshare\n", v.Field)
		for i, p := range v.Points {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%.1f%%\n", i+1, p.Label, p.Count, p.Share*100)
		}
	case aggregate.KindTimeSeries:
		fmt.Fprintf(tw, "period\tamount_usd\tdeals\n")
		for _, p := range v.Points {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", p.Label, FormatAmount(p.Value), p.Count)
		}
		fmt.Fprintf(tw, "total\t%s\t%d\n", FormatAmount(v.Total()), deals(v))
	default:
		fmt.Fprintf(tw, "#\t%s\tamount_usd\tdeals\n", v.Field)
		for i, p := range v.Points {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i+1, p.Label, FormatAmount(p.Value), p.Count)
		}
		fmt.Fprintf(tw, "\ttotal\t%s\t%d\n", FormatAmount(v.Total()), deals(v))
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// presentFields returns the canonical fields the source has, in canonical
// order.
func presentFields(cols types.Resolution) []types.Field {
	fields := make([]types.Field, 0, len(types.AllFields))
	for _, f := range types.AllFields {
		if cols.Has(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// filterLabel renders the selection, or a short note when nothing is
// filtered.
func filterLabel(sel filter.Selection) string {
	if sel.IsDefault() {
		return "none (all records)"
	}
	return sel.String()
}

// deals counts the records contributing to a view.
func deals(v aggregate.View) int {
	n := 0
	for _, p := range v.Points {
		n += p.Count
	}
	return n
}

func cellText(r *types.Record, f types.Field) string {
	switch {
	case f.IsNumeric():
		if v, ok := r.Amount(); ok {
			return v.String()
		}
		return ""
	case f.IsTemporal():
		if r.Date != nil {
			return r.Date.Format("2006-01-02")
		}
		return ""
	}
	return r.Text(f)
}

// FormatAmount renders an amount with two decimals and thousands separators.
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + frac
}
