package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/funding-dashboard/internal/aggregate"
	"github.com/ginjaninja78/funding-dashboard/internal/dashboard"
	"github.com/ginjaninja78/funding-dashboard/internal/filter"
	"github.com/ginjaninja78/funding-dashboard/internal/types"
	"github.com/ginjaninja78/funding-dashboard/internal/validation"
)

// selectionFlags holds the filter and view flags shared by summary and
// export. A categorical flag that is not given means "no filter"; giving it
// with an empty value (--city=) excludes every record.
type selectionFlags struct {
	cities          []string
	industries      []string
	investmentTypes []string
	years           string
	minAmount       string
	maxAmount       string

	topN     int
	preview  int
	bucket   string
	fillGaps bool
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceVar(&f.cities, "city", nil, "Keep only these cities (repeatable or comma separated)")
	flags.StringSliceVar(&f.industries, "industry", nil, "Keep only these industries")
	flags.StringSliceVar(&f.investmentTypes, "investment-type", nil, "Keep only these investment types")
	flags.StringVar(&f.years, "years", "", "Inclusive year range, e.g. 2015:2019 or 2017")
	flags.StringVar(&f.minAmount, "min-amount", "", "Minimum amount in USD (inclusive)")
	flags.StringVar(&f.maxAmount, "max-amount", "", "Maximum amount in USD (inclusive)")

	flags.IntVar(&f.topN, "top", 0, "Number of groups in top-N views (default from config)")
	flags.IntVar(&f.preview, "preview", -1, "Number of filtered rows to preview (default from config)")
	flags.StringVar(&f.bucket, "bucket", "", "Trend granularity: month, quarter or year (default from config)")
	flags.BoolVar(&f.fillGaps, "fill-gaps", false, "Zero-fill empty periods in the trend")
}

// selection builds and validates the filter selection. Amount bounds that
// are not given default to the bounds of the loaded data.
func (f *selectionFlags) selection(cmd *cobra.Command, ds *types.Dataset) (filter.Selection, error) {
	sel := filter.Default()
	flags := cmd.Flags()

	if flags.Changed("city") {
		sel.Cities = filter.Only(f.cities...)
	}
	if flags.Changed("industry") {
		sel.Industries = filter.Only(f.industries...)
	}
	if flags.Changed("investment-type") {
		sel.InvestmentTypes = filter.Only(f.investmentTypes...)
	}

	years, err := filter.ParseYearRange(f.years)
	if err != nil {
		return sel, err
	}
	sel.Years = years

	if f.minAmount != "" || f.maxAmount != "" {
		bounds := filter.Options(ds)
		lo, hi := decimal.Zero, bounds.MaxAmount
		if f.minAmount != "" {
			if lo, err = decimal.NewFromString(f.minAmount); err != nil {
				return sel, fmt.Errorf("invalid --min-amount %q", f.minAmount)
			}
		}
		if f.maxAmount != "" {
			if hi, err = decimal.NewFromString(f.maxAmount); err != nil {
				return sel, fmt.Errorf("invalid --max-amount %q", f.maxAmount)
			}
		}
		sel.Amount = filter.Amounts(lo, hi)
	}

	if err := validation.Selection(sel); err != nil {
		return sel, fmt.Errorf("invalid selection: %w", err)
	}
	return sel, nil
}

// options merges the view flags over the configured defaults.
func (f *selectionFlags) options(cmd *cobra.Command, base dashboard.Options) (dashboard.Options, error) {
	opts := base
	if f.topN > 0 {
		opts.TopN = f.topN
	}
	if f.preview >= 0 {
		opts.PreviewRows = f.preview
	}
	if f.bucket != "" {
		b, err := aggregate.ParseBucket(f.bucket)
		if err != nil {
			return opts, err
		}
		opts.Bucket = b
	}
	if cmd.Flags().Changed("fill-gaps") {
		opts.FillGaps = f.fillGaps
	}
	return opts, nil
}

// buildDashboard runs the full filter and aggregate pass for a command.
func buildDashboard(cmd *cobra.Command, a *app, f *selectionFlags) (*dashboard.Dashboard, error) {
	sel, err := f.selection(cmd, a.dataset)
	if err != nil {
		return nil, err
	}

	base, err := dashboard.OptionsFromConfig(a.cfg.Dashboard)
	if err != nil {
		return nil, err
	}
	opts, err := f.options(cmd, base)
	if err != nil {
		return nil, err
	}

	dash := dashboard.Build(a.dataset, sel, opts)
	a.logger.Info("dashboard built",
		"dashboard_id", dash.RunID,
		"selection", sel.String(),
		"matched", dash.Stats.Matched,
		"elapsed", dash.Stats.Elapsed,
	)
	if dash.NoData {
		a.logger.Warn(dash.Message)
	}
	return dash, nil
}
