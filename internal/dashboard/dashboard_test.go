package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/funding-dashboard/internal/aggregate"
	"github.com/ginjaninja78/funding-dashboard/internal/config"
	"github.com/ginjaninja78/funding-dashboard/internal/filter"
	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

func record(row int, name, city, industry, invType, investor string, amount int64, day string) types.Record {
	d := decimal.NewFromInt(amount)
	r := types.Record{
		Row:            row,
		StartupName:    name,
		City:           city,
		Industry:       industry,
		InvestmentType: invType,
		InvestorName:   investor,
		AmountUSD:      &d,
	}
	if day != "" {
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			panic(err)
		}
		r.Date = &t
	}
	return r
}

func scenario() *types.Dataset {
	return &types.Dataset{
		Source: "startup_funding.csv",
		Columns: types.Resolution{
			types.FieldStartupName:    "Startup Name",
			types.FieldIndustry:       "Industry Vertical",
			types.FieldCity:           "City Location",
			types.FieldInvestmentType: "InvestmentnType",
			types.FieldInvestorName:   "Investors Name",
			types.FieldAmountUSD:      "Amount in USD",
			types.FieldDate:           "Date",
		},
		Records: []types.Record{
			record(2, "A", "Pune", "Tech", "Seed", "Accel", 100, "2019-01-15"),
			record(3, "B", "Pune", "Tech", "Series A", "Accel", 200, "2019-02-10"),
			record(4, "C", "Mumbai", "Retail", "Seed", "Sequoia", 50, "2018-01-20"),
		},
		Excluded: []types.RowIssue{{Row: 5, Field: types.FieldAmountUSD, Reason: "unparseable amount"}},
	}
}

func labelsAndValues(v aggregate.View) [][2]string {
	out := make([][2]string, 0, len(v.Points))
	for _, p := range v.Points {
		out = append(out, [2]string{p.Label, p.Value.String()})
	}
	return out
}

func TestBuild_Selection(t *testing.T) {
	sel := filter.Default()
	sel.Cities = filter.Only("Pune")
	sel.Years = filter.Years(2019, 2019)
	sel.Amount = filter.Amounts(decimal.Zero, decimal.NewFromInt(1000))

	dash := Build(scenario(), sel, DefaultOptions())

	assert.False(t, dash.NoData)
	assert.Empty(t, dash.Message)
	assert.NotEmpty(t, dash.RunID)
	assert.Equal(t, "startup_funding.csv", dash.Source)
	assert.Equal(t, "2019 - 2019", dash.Period)
	assert.Equal(t, Stats{Loaded: 3, Excluded: 1, Matched: 2, Elapsed: dash.Stats.Elapsed}, dash.Stats)
	assert.Len(t, dash.Preview, 2)
	require.Len(t, dash.Views, 6)

	top, ok := dash.View(ViewTopStartups)
	require.True(t, ok)
	assert.Equal(t, "Top 10 Funded Startups (2019 - 2019)", top.Title)
	assert.Equal(t, [][2]string{{"B", "200"}, {"A", "100"}}, labelsAndValues(top))

	trend, ok := dash.View(ViewFundingTrend)
	require.True(t, ok)
	assert.Equal(t, "Monthly Funding Trend", trend.Title)
	assert.Equal(t, [][2]string{{"2019-01", "100"}, {"2019-02", "200"}}, labelsAndValues(trend))

	investors, _ := dash.View(ViewTopInvestors)
	assert.Equal(t, [][2]string{{"Accel", "300"}}, labelsAndValues(investors))

	share, _ := dash.View(ViewInvestmentTypeShare)
	assert.Equal(t, []string{"Seed", "Series A"}, share.Labels())
}

func TestBuild_EmptySelectionHasNoData(t *testing.T) {
	sel := filter.Default()
	sel.Cities = filter.Only()

	dash := Build(scenario(), sel, DefaultOptions())

	assert.True(t, dash.NoData)
	assert.Equal(t, NoDataMessage, dash.Message)
	assert.Equal(t, 0, dash.Stats.Matched)
	assert.NotNil(t, dash.Preview)
	assert.Empty(t, dash.Preview)
	for _, v := range dash.Views {
		assert.True(t, v.Available, v.Name)
		assert.True(t, v.Empty(), v.Name)
	}
}

func TestBuild_DefaultSelection(t *testing.T) {
	ds := scenario()

	dash := Build(ds, filter.Default(), Options{TopN: 1, PreviewRows: 10, Bucket: aggregate.BucketYear})

	assert.Equal(t, "2018 - 2019", dash.Period)
	assert.Equal(t, 3, dash.Stats.Matched)
	assert.Len(t, dash.Preview, 3)

	top, _ := dash.View(ViewTopStartups)
	assert.Equal(t, "Top 1 Funded Startups (2018 - 2019)", top.Title)
	assert.Equal(t, []string{"B"}, top.Labels())

	trend, _ := dash.View(ViewFundingTrend)
	assert.Equal(t, "Yearly Funding Trend", trend.Title)
	assert.Equal(t, [][2]string{{"2018", "50"}, {"2019", "300"}}, labelsAndValues(trend))

	// The loaded dataset is left untouched.
	assert.Len(t, ds.Records, 3)
	assert.Len(t, ds.Excluded, 1)
}

func TestBuild_FillGaps(t *testing.T) {
	opts := DefaultOptions()
	opts.Bucket = aggregate.BucketQuarter
	opts.FillGaps = true

	dash := Build(scenario(), filter.Default(), opts)

	trend, _ := dash.View(ViewFundingTrend)
	assert.Equal(t, []string{"2018-Q1", "2018-Q2", "2018-Q3", "2018-Q4", "2019-Q1"}, trend.Labels())
}

func TestBuild_UnavailableViews(t *testing.T) {
	ds := scenario()
	ds.Columns = types.Resolution{
		types.FieldStartupName: "Startup Name",
		types.FieldCity:        "City",
		types.FieldAmountUSD:   "Amount",
	}

	dash := Build(ds, filter.Default(), Options{})

	names := make([]string, 0)
	for _, v := range dash.AvailableViews() {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{ViewTopStartups, ViewCityShare}, names)
	assert.Equal(t, "", dash.Period)

	top, _ := dash.View(ViewTopStartups)
	assert.Equal(t, "Top 10 Funded Startups", top.Title)

	_, ok := dash.View("nope")
	assert.False(t, ok)
}

func TestBuild_NilDataset(t *testing.T) {
	dash := Build(nil, filter.Default(), DefaultOptions())

	assert.True(t, dash.NoData)
	assert.Empty(t, dash.AvailableViews())
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := OptionsFromConfig(config.DashboardConfig{TopN: 7, PreviewRows: 2, Bucket: "quarter", FillGaps: true})
	require.NoError(t, err)
	assert.Equal(t, Options{TopN: 7, PreviewRows: 2, Bucket: aggregate.BucketQuarter, FillGaps: true}, opts)

	_, err = OptionsFromConfig(config.DashboardConfig{Bucket: "fortnight"})
	assert.Error(t, err)
}
