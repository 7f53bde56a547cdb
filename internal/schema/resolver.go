// =============================================================================
// Startup Funding Dashboard - Schema Resolver
// =============================================================================
//
// Funding exports name their columns inconsistently ("City", "City Location",
// "Location"; "Amount in USD", "Amount", ...). The resolver maps the raw
// header row onto the canonical fields in types.Field exactly once, at load
// time, using a fixed alias table.
//
// MATCHING:
//   1. Headers and aliases are normalized (lowercase, "_"/"-" become spaces,
//      whitespace collapsed).
//   2. Exact matches are bound first, field by field, alias by alias.
//   3. Remaining fields fall back to word matching: the header's words
//      contain the alias's words in order. Headers carrying an excluded word
//      for the field ("Updated" for dates, "INR" for USD amounts) are
//      skipped.
//   4. Each source column binds to at most one field.
//
// A field with no match is simply absent from the Resolution. Callers skip
// the views that need it instead of failing.
//
// =============================================================================

package schema

import (
	"slices"
	"strings"
	"unicode"

	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

// =============================================================================
// ALIAS TABLE
// =============================================================================

// DefaultAliases lists the recognized source column names per canonical field,
// most specific first.
var DefaultAliases = map[types.Field][]string{
	types.FieldAmountUSD: {
		"Amount in USD",
		"AmountInUSD",
		"Amount (USD)",
		"Funding Amount",
		"Amount",
	},
	types.FieldCity: {
		"City Location",
		"City",
		"HQ City",
		"Location",
	},
	types.FieldStartupName: {
		"Startup Name",
		"Company Name",
		"Startup",
		"Company",
	},
	types.FieldIndustry: {
		"Industry Vertical",
		"Industry",
		"Vertical",
		"Sector",
	},
	types.FieldInvestmentType: {
		"Investment Type",
		"InvestmentnType",
		"Funding Type",
		"Funding Round",
		"Round",
	},
	types.FieldInvestorName: {
		"Investors Name",
		"Investor Name",
		"Lead Investor",
		"Investors",
		"Investor",
	},
	types.FieldDate: {
		"Date",
		"Funding Date",
		"Announced Date",
		"Date dd/mm/yyyy",
	},
}

// FallbackExclusions lists header words that disqualify a column from the
// word-match fallback for a field.
var FallbackExclusions = map[types.Field][]string{
	types.FieldAmountUSD: {"inr", "rs", "rupees", "crore", "crores", "lakh", "lakhs", "eur", "gbp"},
	types.FieldDate:      {"update", "updated", "modified", "created"},
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver holds the alias table used to map headers to canonical fields.
type Resolver struct {
	aliases map[types.Field][]string
}

// NewResolver creates a resolver from the default alias table. Extra aliases
// are tried before the defaults for their field.
func NewResolver(extra map[types.Field][]string) *Resolver {
	aliases := make(map[types.Field][]string, len(DefaultAliases))
	for _, f := range types.AllFields {
		merged := make([]string, 0, len(extra[f])+len(DefaultAliases[f]))
		merged = append(merged, extra[f]...)
		merged = append(merged, DefaultAliases[f]...)
		aliases[f] = merged
	}
	return &Resolver{aliases: aliases}
}

// Resolve maps raw column names to canonical fields using the default table.
func Resolve(headers []string) types.Resolution {
	return NewResolver(nil).Resolve(headers)
}

// Resolve maps raw column names to canonical fields.
//
// PARAMETERS:
//   - headers: The column names as they appear in the source file.
//
// RETURNS:
//   - A Resolution holding the source column for every matched field.
func (r *Resolver) Resolve(headers []string) types.Resolution {
	normalized := make([]string, len(headers))
	words := make([][]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalize(h)
		words[i] = tokens(normalized[i])
	}

	res := make(types.Resolution)
	claimed := make([]bool, len(headers))

	bind := func(match func(f types.Field, i int, alias string) bool) {
		for _, f := range types.AllFields {
			if res.Has(f) {
				continue
			}
		aliasLoop:
			for _, alias := range r.aliases[f] {
				a := normalize(alias)
				if a == "" {
					continue
				}
				for i, h := range normalized {
					if claimed[i] || h == "" {
						continue
					}
					if match(f, i, a) {
						res[f] = headers[i]
						claimed[i] = true
						break aliasLoop
					}
				}
			}
		}
	}

	// Exact matches win over word matches regardless of field order.
	bind(func(_ types.Field, i int, a string) bool {
		return normalized[i] == a
	})
	bind(func(f types.Field, i int, a string) bool {
		for _, w := range FallbackExclusions[f] {
			if slices.Contains(words[i], w) {
				return false
			}
		}
		return containsWords(words[i], tokens(a))
	})

	return res
}

// Missing returns the fields from the list that the resolution lacks.
func Missing(res types.Resolution, fields ...types.Field) []types.Field {
	var missing []types.Field
	for _, f := range fields {
		if !res.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// tokens splits a normalized header into words of letters and digits.
func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsWords reports whether want appears as a contiguous run in words.
func containsWords(words, want []string) bool {
	if len(want) == 0 || len(want) > len(words) {
		return false
	}
	for i := 0; i+len(want) <= len(words); i++ {
		if slices.Equal(words[i:i+len(want)], want) {
			return true
		}
	}
	return false
}

// normalize lowercases a header and collapses separators to single spaces.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ", "\t", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
