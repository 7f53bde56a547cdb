// =============================================================================
// Startup Funding Dashboard - Dashboard Builder
// =============================================================================
//
// This module orchestrates one recomputation of the dashboard:
//
//   1. Filter the loaded dataset with the current Selection.
//   2. Compute the standard set of views on the filtered records.
//   3. Collect statistics and a preview of the filtered rows.
//
// The loaded dataset is never modified. Every call recomputes everything
// from scratch, so a Dashboard always reflects exactly one Selection.
//
// STANDARD VIEWS:
//   - top_startups:          top N startups by summed amount
//   - top_investors:         top N investors by summed amount
//   - funding_trend:         summed amount per month (or quarter/year)
//   - industry_funding:      top N industries by summed amount
//   - investment_type_share: record count per investment type
//   - city_share:            record count per city
//
// =============================================================================

package dashboard

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/funding-dashboard/internal/aggregate"
	"github.com/ginjaninja78/funding-dashboard/internal/config"
	"github.com/ginjaninja78/funding-dashboard/internal/filter"
	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

// NoDataMessage is shown when the selection matches no records.
const NoDataMessage = "No data available for the selected filters."

// View names.
const (
	ViewTopStartups         = "top_startups"
	ViewTopInvestors        = "top_investors"
	ViewFundingTrend        = "funding_trend"
	ViewIndustryFunding     = "industry_funding"
	ViewInvestmentTypeShare = "investment_type_share"
	ViewCityShare           = "city_share"
)

// =============================================================================
// OPTIONS AND RESULT TYPES
// =============================================================================

// Options controls how views are computed.
type Options struct {
	// TopN is the number of groups kept by top-N views.
	TopN int

	// PreviewRows is the number of filtered rows included as a preview.
	PreviewRows int

	// Bucket is the granularity of the funding trend.
	Bucket aggregate.Bucket

	// FillGaps zero-fills empty buckets between the first and last dated
	// record of the filtered data.
	FillGaps bool
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{TopN: 10, PreviewRows: 5, Bucket: aggregate.BucketMonth}
}

// OptionsFromConfig converts the dashboard configuration section.
func OptionsFromConfig(cfg config.DashboardConfig) (Options, error) {
	bucket, err := aggregate.ParseBucket(cfg.Bucket)
	if err != nil {
		return Options{}, err
	}
	return Options{
		TopN:        cfg.TopN,
		PreviewRows: cfg.PreviewRows,
		Bucket:      bucket,
		FillGaps:    cfg.FillGaps,
	}, nil
}

// Stats contains statistics about one recomputation.
type Stats struct {
	// Loaded is the number of usable records in the loaded dataset.
	Loaded int `json:"loaded"`

	// Excluded is the number of source rows dropped at ingest.
	Excluded int `json:"excluded"`

	// Matched is the number of records passing the selection.
	Matched int `json:"matched"`

	// Elapsed is the time taken to filter and aggregate.
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Dashboard is the full output of one recomputation.
type Dashboard struct {
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Source      string           `json:"source"`
	Selection   filter.Selection `json:"selection"`
	Period      string           `json:"period,omitempty"`
	Stats       Stats            `json:"stats"`

	// NoData is set when the selection matched nothing. Message then holds
	// NoDataMessage.
	NoData  bool   `json:"no_data"`
	Message string `json:"message,omitempty"`

	Preview []types.Record   `json:"preview"`
	Views   []aggregate.View `json:"views"`

	// Filtered is the filtered dataset the views were computed from.
	Filtered *types.Dataset `json:"-"`
}

// View returns the named view.
func (d *Dashboard) View(name string) (aggregate.View, bool) {
	for _, v := range d.Views {
		if v.Name == name {
			return v, true
		}
	}
	return aggregate.View{}, false
}

// AvailableViews returns the views whose fields exist in the source.
func (d *Dashboard) AvailableViews() []aggregate.View {
	out := make([]aggregate.View, 0, len(d.Views))
	for _, v := range d.Views {
		if v.Available {
			out = append(out, v)
		}
	}
	return out
}

// =============================================================================
// BUILD
// =============================================================================

// Build filters ds with sel and computes the standard views.
//
// PARAMETERS:
//   - ds: The loaded dataset. It is not modified.
//   - sel: The current selection.
//   - opts: View options.
//
// RETURNS:
//   - The dashboard. An empty match is a valid result with NoData set.
func Build(ds *types.Dataset, sel filter.Selection, opts Options) *Dashboard {
	start := time.Now()
	if opts.TopN <= 0 {
		opts.TopN = DefaultOptions().TopN
	}

	filtered := filter.Apply(ds, sel)

	dash := &Dashboard{
		RunID:       uuid.NewString(),
		GeneratedAt: start.UTC(),
		Source:      filtered.Source,
		Selection:   sel,
		Period:      period(ds, sel),
		Filtered:    filtered,
		Preview:     filter.Preview(filtered, opts.PreviewRows),
	}
	if dash.Preview == nil {
		dash.Preview = []types.Record{}
	}

	if ds != nil {
		dash.Stats.Loaded = ds.Len()
		dash.Stats.Excluded = len(ds.Excluded)
	}
	dash.Stats.Matched = filtered.Len()

	if filtered.Len() == 0 {
		dash.NoData = true
		dash.Message = NoDataMessage
	}

	dash.Views = views(filtered, opts, dash.Period)
	dash.Stats.Elapsed = time.Since(start)
	return dash
}

func views(ds *types.Dataset, opts Options, period string) []aggregate.View {
	var span *aggregate.Span
	if opts.FillGaps {
		span = aggregate.DataSpan(ds)
	}

	suffix := ""
	if period != "" {
		suffix = " (" + period + ")"
	}

	specs := []struct {
		name  string
		title string
		view  aggregate.View
	}{
		{ViewTopStartups, fmt.Sprintf("Top %d Funded Startups%s", opts.TopN, suffix),
			aggregate.TopNBySum(ds, types.FieldStartupName, types.FieldAmountUSD, opts.TopN)},
		{ViewTopInvestors, fmt.Sprintf("Top %d Investors%s", opts.TopN, suffix),
			aggregate.TopNBySum(ds, types.FieldInvestorName, types.FieldAmountUSD, opts.TopN)},
		{ViewFundingTrend, trendTitle(opts.Bucket),
			aggregate.TimeBucketedSum(ds, types.FieldDate, types.FieldAmountUSD, opts.Bucket, span)},
		{ViewIndustryFunding, "Funding Distribution by Industry",
			aggregate.TopNBySum(ds, types.FieldIndustry, types.FieldAmountUSD, opts.TopN)},
		{ViewInvestmentTypeShare, "Deals by Investment Type",
			aggregate.CategoryShare(ds, types.FieldInvestmentType)},
		{ViewCityShare, "Deals by City",
			aggregate.CategoryShare(ds, types.FieldCity)},
	}

	out := make([]aggregate.View, len(specs))
	for i, s := range specs {
		s.view.Name = s.name
		s.view.Title = s.title
		out[i] = s.view
	}
	return out
}

func trendTitle(b aggregate.Bucket) string {
	switch b {
	case aggregate.BucketQuarter:
		return "Quarterly Funding Trend"
	case aggregate.BucketYear:
		return "Yearly Funding Trend"
	}
	return "Monthly Funding Trend"
}

// period renders the year range the views cover: the selected range, or the
// full range of the loaded data when years are not filtered. Sources without
// a date column have no period.
func period(ds *types.Dataset, sel filter.Selection) string {
	if ds == nil || !ds.Columns.Has(types.FieldDate) {
		return ""
	}
	if sel.Years.Active() {
		return fmt.Sprintf("%d - %d", sel.Years.Min, sel.Years.Max)
	}
	span := aggregate.DataSpan(ds)
	if span == nil {
		return ""
	}
	return fmt.Sprintf("%d - %d", span.From.Year(), span.To.Year())
}
