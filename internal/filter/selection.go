package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SELECTION
// =============================================================================
//
// A Selection is the user's current filter state. Every component carries an
// explicit All flag: All means "no filter applied", which is different from
// listing every option that currently exists. A categorical Choice with All
// unset and no values excludes everything.
//
// =============================================================================

// Selection is the complete filter state produced by the UI layer.
type Selection struct {
	Cities          Choice      `json:"cities"`
	Industries      Choice      `json:"industries"`
	InvestmentTypes Choice      `json:"investment_types"`
	Years           YearRange   `json:"years"`
	Amount          AmountRange `json:"amount"`
}

// Choice restricts a categorical field to a set of values.
type Choice struct {
	// All disables the predicate. Values is ignored when All is set.
	All bool `json:"all"`

	// Values are the allowed values, matched case-insensitively.
	Values []string `json:"values,omitempty"`
}

// YearRange is an inclusive range of calendar years.
type YearRange struct {
	All bool `json:"all"`
	Min int  `json:"min,omitempty" validate:"omitempty,gte=1900,lte=9999"`
	Max int  `json:"max,omitempty" validate:"omitempty,gte=1900,lte=9999"`
}

// AmountRange is an inclusive range of funding amounts in USD.
type AmountRange struct {
	All bool            `json:"all"`
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Default returns the selection that applies no filter at all.
func Default() Selection {
	return Selection{
		Cities:          AnyValue(),
		Industries:      AnyValue(),
		InvestmentTypes: AnyValue(),
		Years:           AllYears(),
		Amount:          AnyAmount(),
	}
}

// AnyValue returns a Choice that does not filter.
func AnyValue() Choice { return Choice{All: true} }

// Only returns a Choice that keeps the given values. Calling Only with no
// arguments yields a Choice that keeps nothing.
func Only(values ...string) Choice {
	return Choice{Values: append([]string{}, values...)}
}

// AllYears returns a YearRange that does not filter.
func AllYears() YearRange { return YearRange{All: true} }

// Years returns the inclusive year range [min, max].
func Years(min, max int) YearRange { return YearRange{Min: min, Max: max} }

// AnyAmount returns an AmountRange that does not filter.
func AnyAmount() AmountRange { return AmountRange{All: true} }

// Amounts returns the inclusive amount range [min, max].
func Amounts(min, max decimal.Decimal) AmountRange {
	return AmountRange{Min: min, Max: max}
}

// Active reports whether the choice filters anything.
func (c Choice) Active() bool { return !c.All }

// Active reports whether the range filters anything.
func (y YearRange) Active() bool { return !y.All }

// Contains reports whether year lies in the inclusive range.
func (y YearRange) Contains(year int) bool {
	return y.All || (year >= y.Min && year <= y.Max)
}

// Active reports whether the range filters anything.
func (a AmountRange) Active() bool { return !a.All }

// Contains reports whether amount lies in the inclusive range.
func (a AmountRange) Contains(amount decimal.Decimal) bool {
	if a.All {
		return true
	}
	return amount.GreaterThanOrEqual(a.Min) && amount.LessThanOrEqual(a.Max)
}

// IsDefault reports whether no predicate is active.
func (s Selection) IsDefault() bool {
	return !s.Cities.Active() && !s.Industries.Active() && !s.InvestmentTypes.Active() &&
		!s.Years.Active() && !s.Amount.Active()
}

// String renders the selection for logs and report headers.
func (s Selection) String() string {
	parts := []string{
		"cities=" + s.Cities.String(),
		"industries=" + s.Industries.String(),
		"investment_types=" + s.InvestmentTypes.String(),
		"years=" + s.Years.String(),
		"amount=" + s.Amount.String(),
	}
	return strings.Join(parts, " ")
}

// String renders the choice as "all" or a bracketed value list.
func (c Choice) String() string {
	if c.All {
		return "all"
	}
	return "[" + strings.Join(c.Values, ",") + "]"
}

// String renders the range as "all" or "min-max".
func (y YearRange) String() string {
	if y.All {
		return "all"
	}
	return strconv.Itoa(y.Min) + "-" + strconv.Itoa(y.Max)
}

// String renders the range as "all" or "min-max".
func (a AmountRange) String() string {
	if a.All {
		return "all"
	}
	return fmt.Sprintf("%s-%s", a.Min.String(), a.Max.String())
}

// ParseYearRange parses "2015:2019", "2015-2019" or a single year "2019".
func ParseYearRange(s string) (YearRange, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return AllYears(), nil
	}

	sep := strings.IndexAny(s, ":-")
	if sep < 0 {
		y, err := strconv.Atoi(s)
		if err != nil {
			return YearRange{}, fmt.Errorf("invalid year %q", s)
		}
		return Years(y, y), nil
	}

	min, err := strconv.Atoi(strings.TrimSpace(s[:sep]))
	if err != nil {
		return YearRange{}, fmt.Errorf("invalid start year in %q", s)
	}
	max, err := strconv.Atoi(strings.TrimSpace(s[sep+1:]))
	if err != nil {
		return YearRange{}, fmt.Errorf("invalid end year in %q", s)
	}
	return Years(min, max), nil
}
