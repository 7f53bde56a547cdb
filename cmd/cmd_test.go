package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/funding-dashboard/internal/aggregate"
	"github.com/ginjaninja78/funding-dashboard/internal/dashboard"
	"github.com/ginjaninja78/funding-dashboard/internal/filter"
	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

const sampleCSV = `Startup Name,City Location,Industry Vertical,Amount in USD,Date
A,Pune,Tech,100,2019-01-15
B,Pune,Tech,200,2019-02-10
C,Mumbai,Retail,50,2019-01-20
`

func parseSelection(t *testing.T, ds *types.Dataset, args ...string) (filter.Selection, error) {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	var f selectionFlags
	f.register(c)
	require.NoError(t, c.Flags().Parse(args))
	return f.selection(c, ds)
}

func amountDataset() *types.Dataset {
	d := decimal.NewFromInt(900)
	return &types.Dataset{
		Columns: types.Resolution{types.FieldAmountUSD: "Amount"},
		Records: []types.Record{{StartupName: "A", City: "Pune", AmountUSD: &d}},
	}
}

func TestSelectionFlags(t *testing.T) {
	ds := amountDataset()

	sel, err := parseSelection(t, ds)
	require.NoError(t, err)
	assert.True(t, sel.IsDefault())

	sel, err = parseSelection(t, ds, "--city", "Pune,Mumbai", "--industry", "FinTech", "--years", "2015:2017")
	require.NoError(t, err)
	assert.Equal(t, filter.Only("Pune", "Mumbai"), sel.Cities)
	assert.Equal(t, filter.Only("FinTech"), sel.Industries)
	assert.False(t, sel.InvestmentTypes.Active())
	assert.Equal(t, filter.Years(2015, 2017), sel.Years)

	sel, err = parseSelection(t, ds, "--city=")
	require.NoError(t, err)
	assert.True(t, sel.Cities.Active())
	assert.Empty(t, sel.Cities.Values)

	sel, err = parseSelection(t, ds, "--min-amount", "100")
	require.NoError(t, err)
	assert.Equal(t, "100", sel.Amount.Min.String())
	assert.Equal(t, "900", sel.Amount.Max.String())
}

func TestSelectionFlags_Invalid(t *testing.T) {
	ds := amountDataset()

	for _, args := range [][]string{
		{"--years", "soon"},
		{"--years", "2019:2015"},
		{"--min-amount", "lots"},
		{"--min-amount", "500", "--max-amount", "100"},
	} {
		_, err := parseSelection(t, ds, args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestSelectionFlags_Options(t *testing.T) {
	c := &cobra.Command{Use: "test"}
	var f selectionFlags
	f.register(c)
	require.NoError(t, c.Flags().Parse([]string{"--top", "3", "--preview", "0", "--bucket", "quarter", "--fill-gaps"}))

	opts, err := f.options(c, dashboard.DefaultOptions())

	require.NoError(t, err)
	assert.Equal(t, dashboard.Options{TopN: 3, PreviewRows: 0, Bucket: aggregate.BucketQuarter, FillGaps: true}, opts)
}

func TestSummaryCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "startup_funding.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"summary", "--data", path, "--city", "Pune", "--years", "2019"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	text := out.String()
	assert.Contains(t, text, "2 matched of 3 loaded")
	assert.Contains(t, text, "== Top 10 Funded Startups (2019 - 2019) ==")
	assert.Contains(t, text, "2019-02")
}
