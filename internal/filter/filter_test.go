package filter_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/funding-dashboard/internal/filter"
	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

var allColumns = types.Resolution{
	types.FieldStartupName:    "Startup Name",
	types.FieldIndustry:       "Industry Vertical",
	types.FieldCity:           "City Location",
	types.FieldInvestmentType: "InvestmentnType",
	types.FieldInvestorName:   "Investors Name",
	types.FieldAmountUSD:      "Amount in USD",
	types.FieldDate:           "Date",
}

func amount(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func scenarioDataset() *types.Dataset {
	return &types.Dataset{
		Columns: allColumns,
		Records: []types.Record{
			{Row: 2, StartupName: "A", City: "Pune", Industry: "Tech", AmountUSD: amount(100), Date: date("2019-01-15")},
			{Row: 3, StartupName: "B", City: "Pune", Industry: "Tech", AmountUSD: amount(200), Date: date("2019-02-10")},
			{Row: 4, StartupName: "C", City: "Mumbai", Industry: "Retail", AmountUSD: amount(50), Date: date("2019-01-20")},
		},
	}
}

func mixedDataset() *types.Dataset {
	return &types.Dataset{
		Columns: allColumns,
		Records: []types.Record{
			{Row: 2, StartupName: "Ola", City: "Bengaluru", Industry: "Transport", InvestmentType: "Series C", AmountUSD: amount(400), Date: date("2015-03-01")},
			{Row: 3, StartupName: "Paytm", City: "Noida", Industry: "FinTech", InvestmentType: "Private Equity", AmountUSD: amount(1000), Date: date("2017-05-09")},
			{Row: 4, StartupName: "Zomato", City: "Gurgaon", Industry: "Food", InvestmentType: "Series D", AmountUSD: amount(150), Date: date("2018-11-20")},
			{Row: 5, StartupName: "Byju", City: "Bengaluru", Industry: "EdTech", InvestmentType: "", AmountUSD: amount(75), Date: nil},
			{Row: 6, StartupName: "Swiggy", City: "Bengaluru", Industry: "Food", InvestmentType: "Series C", AmountUSD: amount(250), Date: date("2019-06-30")},
		},
	}
}

func names(ds *types.Dataset) []string {
	out := make([]string, 0, ds.Len())
	for _, r := range ds.Records {
		out = append(out, r.StartupName)
	}
	return out
}

func TestApply_Scenario(t *testing.T) {
	sel := filter.Default()
	sel.Cities = filter.Only("Pune")
	sel.Years = filter.Years(2019, 2019)
	sel.Amount = filter.Amounts(decimal.Zero, decimal.NewFromInt(1000))

	got := filter.Apply(scenarioDataset(), sel)

	assert.Equal(t, []string{"A", "B"}, names(got))
}

func TestApply_EmptyChoiceExcludesEverything(t *testing.T) {
	sel := filter.Default()
	sel.Cities = filter.Only()

	got := filter.Apply(scenarioDataset(), sel)

	require.NotNil(t, got)
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, allColumns, got.Columns)
}

func TestApply_DefaultReturnsEverythingInOrder(t *testing.T) {
	ds := mixedDataset()

	got := filter.Apply(ds, filter.Default())

	assert.Equal(t, ds.Records, got.Records)
}

func TestApply_ExplicitOptionsKeepRecordsWithValues(t *testing.T) {
	ds := mixedDataset()

	got := filter.Apply(ds, filter.Explicit(filter.Options(ds)))

	// Byju has no investment type and no date, so every explicit list drops it.
	assert.Equal(t, []string{"Ola", "Paytm", "Zomato", "Swiggy"}, names(got))
}

func TestApply_Predicates(t *testing.T) {
	tests := []struct {
		name string
		sel  func(s *filter.Selection)
		want []string
	}{
		{
			name: "city is case insensitive",
			sel:  func(s *filter.Selection) { s.Cities = filter.Only("bengaluru") },
			want: []string{"Ola", "Byju", "Swiggy"},
		},
		{
			name: "values within a choice are OR-combined",
			sel:  func(s *filter.Selection) { s.Cities = filter.Only("Noida", "Gurgaon") },
			want: []string{"Paytm", "Zomato"},
		},
		{
			name: "predicates are AND-combined",
			sel: func(s *filter.Selection) {
				s.Cities = filter.Only("Bengaluru")
				s.Industries = filter.Only("Food")
			},
			want: []string{"Swiggy"},
		},
		{
			name: "year range is inclusive and null dates fail",
			sel:  func(s *filter.Selection) { s.Years = filter.Years(2017, 2018) },
			want: []string{"Paytm", "Zomato"},
		},
		{
			name: "amount range is inclusive",
			sel: func(s *filter.Selection) {
				s.Amount = filter.Amounts(decimal.NewFromInt(150), decimal.NewFromInt(400))
			},
			want: []string{"Ola", "Zomato", "Swiggy"},
		},
		{
			name: "null investment type fails an active predicate",
			sel:  func(s *filter.Selection) { s.InvestmentTypes = filter.Only("Series C", "") },
			want: []string{"Ola", "Swiggy"},
		},
		{
			name: "no match is a valid result",
			sel:  func(s *filter.Selection) { s.Industries = filter.Only("SpaceTech") },
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := filter.Default()
			tt.sel(&sel)
			assert.Equal(t, tt.want, names(filter.Apply(mixedDataset(), sel)))
		})
	}
}

func TestApply_AbsentColumnLeavesPredicateInactive(t *testing.T) {
	ds := mixedDataset()
	ds.Columns = types.Resolution{
		types.FieldStartupName: "Startup",
		types.FieldCity:        "City",
		types.FieldAmountUSD:   "Amount",
	}
	sel := filter.Default()
	sel.InvestmentTypes = filter.Only("Seed")
	sel.Years = filter.Years(2030, 2031)

	got := filter.Apply(ds, sel)

	assert.Equal(t, ds.Len(), got.Len())
}

func TestApply_SubsetAndExhaustive(t *testing.T) {
	ds := mixedDataset()
	sel := filter.Default()
	sel.Cities = filter.Only("Bengaluru", "Noida")
	sel.Amount = filter.Amounts(decimal.NewFromInt(100), decimal.NewFromInt(2000))

	got := filter.Apply(ds, sel)

	assert.Equal(t, []string{"Ola", "Paytm", "Swiggy"}, names(got))

	kept := map[int]bool{}
	for _, r := range got.Records {
		kept[r.Row] = true
	}
	for _, r := range ds.Records {
		alone := filter.Apply(ds.WithRecords([]types.Record{r}), sel)
		assert.Equal(t, alone.Len() == 1, kept[r.Row], "row %d", r.Row)
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	ds := mixedDataset()
	before := append([]types.Record(nil), ds.Records...)

	sel := filter.Default()
	sel.Cities = filter.Only("Noida")
	_ = filter.Apply(ds, sel)

	assert.Equal(t, before, ds.Records)
}

func TestApply_NilDataset(t *testing.T) {
	got := filter.Apply(nil, filter.Default())
	require.NotNil(t, got)
	assert.Equal(t, 0, got.Len())
}

func TestPreview(t *testing.T) {
	ds := mixedDataset()

	assert.Len(t, filter.Preview(ds, 2), 2)
	assert.Equal(t, "Ola", filter.Preview(ds, 2)[0].StartupName)
	assert.Len(t, filter.Preview(ds, 50), ds.Len())
	assert.Nil(t, filter.Preview(ds, 0))
	assert.Nil(t, filter.Preview(nil, 3))
}

func TestOptions(t *testing.T) {
	b := filter.Options(mixedDataset())

	assert.Equal(t, []string{"Bengaluru", "Gurgaon", "Noida"}, b.Cities)
	assert.Equal(t, []string{"EdTech", "FinTech", "Food", "Transport"}, b.Industries)
	assert.Equal(t, []string{"Private Equity", "Series C", "Series D"}, b.InvestmentTypes)
	assert.True(t, b.HasYears)
	assert.Equal(t, 2015, b.MinYear)
	assert.Equal(t, 2019, b.MaxYear)
	assert.True(t, b.MinAmount.Equal(decimal.NewFromInt(75)))
	assert.True(t, b.MaxAmount.Equal(decimal.NewFromInt(1000)))
}
