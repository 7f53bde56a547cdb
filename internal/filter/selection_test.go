package filter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsInactive(t *testing.T) {
	sel := Default()
	assert.True(t, sel.IsDefault())
	assert.Equal(t, "cities=all industries=all investment_types=all years=all amount=all", sel.String())
}

func TestOnlyWithNoValuesIsActive(t *testing.T) {
	c := Only()
	assert.True(t, c.Active())
	assert.Empty(t, c.Values)
	assert.Equal(t, "[]", c.String())
}

func TestOnlyCopiesValues(t *testing.T) {
	values := []string{"Pune"}
	c := Only(values...)
	values[0] = "Mumbai"
	assert.Equal(t, []string{"Pune"}, c.Values)
}

func TestRangeContains(t *testing.T) {
	y := Years(2015, 2017)
	assert.True(t, y.Contains(2015))
	assert.True(t, y.Contains(2017))
	assert.False(t, y.Contains(2018))
	assert.True(t, AllYears().Contains(1800))

	a := Amounts(decimal.NewFromInt(10), decimal.NewFromInt(20))
	assert.True(t, a.Contains(decimal.NewFromInt(10)))
	assert.True(t, a.Contains(decimal.NewFromInt(20)))
	assert.False(t, a.Contains(decimal.RequireFromString("20.01")))
	assert.True(t, AnyAmount().Contains(decimal.NewFromInt(-5)))
}

func TestParseYearRange(t *testing.T) {
	tests := []struct {
		in      string
		want    YearRange
		wantErr bool
	}{
		{in: "", want: AllYears()},
		{in: "all", want: AllYears()},
		{in: "2015:2019", want: Years(2015, 2019)},
		{in: "2015-2019", want: Years(2015, 2019)},
		{in: " 2018 ", want: Years(2018, 2018)},
		{in: "20x5", wantErr: true},
		{in: "2015:", wantErr: true},
		{in: ":2019", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseYearRange(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
