package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/funding-dashboard/internal/aggregate"
	"github.com/ginjaninja78/funding-dashboard/internal/dashboard"
)

// Sheet names used by the workbook.
const (
	SummarySheet = "Summary"
	DataSheet    = "filtered_data"
)

// maxSheetName is the Excel limit on worksheet name length.
const maxSheetName = 31

// leadingLabels is the number of labels listed per view on the Summary sheet.
const leadingLabels = 3

// WriteXLSX writes the dashboard as an Excel workbook at path.
//
// The workbook contains a Summary sheet, one sheet per available view with
// a chart (bar for top-N views, line for trends, pie for shares) and a sheet
// with the filtered records.
func WriteXLSX(path string, dash *dashboard.Dashboard) error {
	f, err := buildWorkbook(dash)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteXLSXTo writes the workbook to w.
func WriteXLSXTo(w io.Writer, dash *dashboard.Dashboard) error {
	f, err := buildWorkbook(dash)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(dash *dashboard.Dashboard) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	steps := []func() error{
		func() error { return writeSummarySheet(f, dash, bold) },
		func() error { return writeDataSheet(f, dash, bold) },
	}
	for _, v := range dash.AvailableViews() {
		v := v
		steps = append(steps, func() error { return writeViewSheet(f, v, bold) })
	}

	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to build workbook: %w", err)
		}
	}
	return f, nil
}

// =============================================================================
// SHEETS
// =============================================================================

func writeSummarySheet(f *excelize.File, dash *dashboard.Dashboard, bold int) error {
	rows := [][]interface{}{
		{"Startup Funding Dashboard"},
		{"Run ID", dash.RunID},
		{"Generated", dash.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Source", dash.Source},
		{"Filters", filterLabel(dash.Selection)},
		{"Period", dash.Period},
		{"Loaded records", dash.Stats.Loaded},
		{"Excluded at load", dash.Stats.Excluded},
		{"Matched records", dash.Stats.Matched},
	}
	if dash.NoData {
		rows = append(rows, []interface{}{"Note", dash.Message})
	}
	rows = append(rows, []interface{}{}, []interface{}{"View", "Status", "Points", "Total", "Leading"})

	for _, v := range dash.Views {
		status := "available"
		if !v.Available {
			status = "unavailable"
		}
		labels := v.Labels()
		if len(labels) > leadingLabels {
			labels = labels[:leadingLabels]
		}
		rows = append(rows, []interface{}{
			v.Title, status, len(v.Points), v.Total().InexactFloat64(), strings.Join(labels, ", "),
		})
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "A1", bold); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "A", "A", 28)
}

func writeDataSheet(f *excelize.File, dash *dashboard.Dashboard, bold int) error {
	if _, err := f.NewSheet(DataSheet); err != nil {
		return err
	}
	if dash.Filtered == nil {
		return nil
	}

	cols := dash.Filtered.Columns
	fields := presentFields(cols)

	header := make([]interface{}, 0, len(fields)+1)
	header = append(header, "Row")
	for _, field := range fields {
		header = append(header, cols.Column(field))
	}
	if err := f.SetSheetRow(DataSheet, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(DataSheet, "A1", last, bold); err != nil {
		return err
	}

	for i := range dash.Filtered.Records {
		r := &dash.Filtered.Records[i]
		row := make([]interface{}, 0, len(header))
		row = append(row, r.Row)
		for _, field := range fields {
			if field.IsNumeric() {
				if v, ok := r.Amount(); ok {
					row = append(row, v.InexactFloat64())
					continue
				}
			}
			row = append(row, cellText(r, field))
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(DataSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeViewSheet(f *excelize.File, v aggregate.View, bold int) error {
	sheet := sheetName(v.Name)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	valueHeader := "Amount (USD)"
	if v.Kind == aggregate.KindShare {
		valueHeader = "Deals"
	}
	header := []interface{}{string(v.Field), valueHeader, "Deals", "Share"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", bold); err != nil {
		return err
	}

	for i, p := range v.Points {
		row := []interface{}{p.Label, p.Value.InexactFloat64(), p.Count, p.Share}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 32); err != nil {
		return err
	}

	if v.Empty() {
		return nil
	}
	return f.AddChart(sheet, "F2", chartFor(sheet, v))
}

// chartFor picks the chart type matching the view kind.
func chartFor(sheet string, v aggregate.View) *excelize.Chart {
	n := len(v.Points) + 1
	series := excelize.ChartSeries{
		Name:       fmt.Sprintf("'%s'!$B$1", sheet),
		Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, n),
		Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, n),
	}

	chart := &excelize.Chart{
		Type:   excelize.Bar,
		Series: []excelize.ChartSeries{series},
		Title:  []excelize.RichTextRun{{Text: v.Title}},
		Legend: excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{
			Width:  640,
			Height: 400,
		},
	}

	switch v.Kind {
	case aggregate.KindTimeSeries:
		chart.Type = excelize.Line
	case aggregate.KindShare:
		chart.Type = excelize.Pie
		chart.Legend = excelize.ChartLegend{Position: "right"}
		chart.PlotArea = excelize.ChartPlotArea{ShowPercent: true}
	}
	return chart
}

func sheetName(name string) string {
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}
