// =============================================================================
// Startup Funding Dashboard - Filter Engine
// =============================================================================
//
// Apply narrows a dataset to the records matching a Selection.
//
// SEMANTICS:
//   - Active predicates are AND-combined; values within a Choice are
//     OR-combined.
//   - A predicate is active only when its Selection component is not the
//     All sentinel.
//   - A predicate over a field the source file does not have is inactive.
//   - A record with a null value fails any active predicate on that field.
//   - The output preserves input order. An empty output is valid.
//
// Apply is a single pass over the records and materializes the result once.
//
// =============================================================================

package filter

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

// predicate tests one record.
type predicate func(r *types.Record) bool

// Apply returns the records of ds that satisfy every active predicate of sel.
func Apply(ds *types.Dataset, sel Selection) *types.Dataset {
	if ds == nil {
		return &types.Dataset{}
	}

	preds := predicates(ds.Columns, sel)
	if len(preds) == 0 {
		return ds.WithRecords(ds.Records)
	}

	out := make([]types.Record, 0, len(ds.Records))
	for i := range ds.Records {
		r := &ds.Records[i]
		if matches(r, preds) {
			out = append(out, *r)
		}
	}
	return ds.WithRecords(out)
}

func matches(r *types.Record, preds []predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// predicates builds the active predicate list, cheapest first.
func predicates(cols types.Resolution, sel Selection) []predicate {
	var preds []predicate

	if sel.Cities.Active() && cols.Has(types.FieldCity) {
		preds = append(preds, choicePredicate(types.FieldCity, sel.Cities))
	}
	if sel.Years.Active() && cols.Has(types.FieldDate) {
		years := sel.Years
		preds = append(preds, func(r *types.Record) bool {
			y, ok := r.Year()
			return ok && years.Contains(y)
		})
	}
	if sel.Industries.Active() && cols.Has(types.FieldIndustry) {
		preds = append(preds, choicePredicate(types.FieldIndustry, sel.Industries))
	}
	if sel.InvestmentTypes.Active() && cols.Has(types.FieldInvestmentType) {
		preds = append(preds, choicePredicate(types.FieldInvestmentType, sel.InvestmentTypes))
	}
	if sel.Amount.Active() && cols.Has(types.FieldAmountUSD) {
		amount := sel.Amount
		preds = append(preds, func(r *types.Record) bool {
			v, ok := r.Amount()
			return ok && amount.Contains(v)
		})
	}

	return preds
}

func choicePredicate(f types.Field, c Choice) predicate {
	allowed := toLowerSet(c.Values)
	return func(r *types.Record) bool {
		v := r.Text(f)
		if v == "" {
			return false
		}
		_, ok := allowed[strings.ToLower(v)]
		return ok
	}
}

// toLowerSet converts a string slice to a lowercase lookup set.
func toLowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(strings.TrimSpace(item))] = struct{}{}
	}
	return set
}

// Preview returns the first n records of ds in order.
func Preview(ds *types.Dataset, n int) []types.Record {
	if ds == nil || n <= 0 {
		return nil
	}
	if n > len(ds.Records) {
		n = len(ds.Records)
	}
	return ds.Records[:n]
}

// =============================================================================
// OPTIONS
// =============================================================================

// Bounds describes the values available for each filter, used to populate
// the selection widgets.
type Bounds struct {
	Cities          []string        `json:"cities"`
	Industries      []string        `json:"industries"`
	InvestmentTypes []string        `json:"investment_types"`
	HasYears        bool            `json:"has_years"`
	MinYear         int             `json:"min_year,omitempty"`
	MaxYear         int             `json:"max_year,omitempty"`
	MinAmount       decimal.Decimal `json:"min_amount"`
	MaxAmount       decimal.Decimal `json:"max_amount"`
}

// Options computes the distinct, sorted option lists and the year and amount
// bounds of ds. Fields absent from the source produce empty lists.
func Options(ds *types.Dataset) Bounds {
	var b Bounds
	if ds == nil {
		return b
	}

	cities := map[string]struct{}{}
	industries := map[string]struct{}{}
	invTypes := map[string]struct{}{}
	first := true

	for i := range ds.Records {
		r := &ds.Records[i]
		addNonEmpty(cities, r.City)
		addNonEmpty(industries, r.Industry)
		addNonEmpty(invTypes, r.InvestmentType)

		if y, ok := r.Year(); ok {
			if !b.HasYears || y < b.MinYear {
				b.MinYear = y
			}
			if !b.HasYears || y > b.MaxYear {
				b.MaxYear = y
			}
			b.HasYears = true
		}
		if v, ok := r.Amount(); ok {
			if first || v.LessThan(b.MinAmount) {
				b.MinAmount = v
			}
			if first || v.GreaterThan(b.MaxAmount) {
				b.MaxAmount = v
			}
			first = false
		}
	}

	b.Cities = sortedKeys(cities)
	b.Industries = sortedKeys(industries)
	b.InvestmentTypes = sortedKeys(invTypes)
	return b
}

// Explicit returns a selection that lists every option of b explicitly.
// On the dataset b was computed from it keeps every record that has a value
// for each filtered field.
func Explicit(b Bounds) Selection {
	sel := Selection{
		Cities:          Only(b.Cities...),
		Industries:      Only(b.Industries...),
		InvestmentTypes: Only(b.InvestmentTypes...),
		Years:           AllYears(),
		Amount:          Amounts(b.MinAmount, b.MaxAmount),
	}
	if b.HasYears {
		sel.Years = Years(b.MinYear, b.MaxYear)
	}
	return sel
}

func addNonEmpty(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
