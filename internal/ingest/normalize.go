// =============================================================================
// Startup Funding Dashboard - Text Normalization
// =============================================================================
//
// Funding exports are inconsistent: "Bangalore" vs "Bengaluru", "eCommerce"
// vs "E-Commerce", stray double spaces. Normalization rules from
// configuration clean the text fields before they are filtered and grouped.
//
// Each rule targets one canonical text field and lists actions applied in
// order. Supported action types:
//
//   - trim:            strip surrounding whitespace
//   - collapse_spaces: replace runs of whitespace with a single space
//   - uppercase, lowercase, title
//   - replace:         replace every Find with Value
//   - lookup:          map the whole value through LookupTable
//                      (exact key first, then the case-insensitive match
//                      with the smallest key)
//
// =============================================================================

package ingest

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ginjaninja78/funding-dashboard/internal/config"
	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

// Normalizer applies configured normalization rules to text fields.
type Normalizer struct {
	rules map[types.Field][]config.NormalizationAction
}

// NewNormalizer creates a Normalizer. Rules naming unknown fields are
// ignored; config validation rejects them earlier.
func NewNormalizer(rules []config.NormalizationRule) *Normalizer {
	n := &Normalizer{rules: make(map[types.Field][]config.NormalizationAction)}
	for _, rule := range rules {
		f, ok := types.ParseField(rule.Field)
		if !ok || !f.IsText() {
			continue
		}
		n.rules[f] = append(n.rules[f], rule.Actions...)
	}
	return n
}

// Normalize applies every action configured for the field to value.
//
// PARAMETERS:
//   - f: The canonical field the value belongs to.
//   - value: The raw cell value.
//
// RETURNS:
//   - The normalized value.
//   - An error if an action is malformed.
func (n *Normalizer) Normalize(f types.Field, value string) (string, error) {
	if n == nil {
		return value, nil
	}
	result := value
	for _, action := range n.rules[f] {
		var err error
		result, err = ApplyAction(result, action)
		if err != nil {
			return "", fmt.Errorf("normalization '%s' on %s failed: %w", action.Type, f, err)
		}
	}
	return result, nil
}

// NormalizeRecord normalizes the record's text fields in place.
func (n *Normalizer) NormalizeRecord(r *types.Record) error {
	if n == nil || len(n.rules) == 0 {
		return nil
	}
	for f := range n.rules {
		v, err := n.Normalize(f, r.Text(f))
		if err != nil {
			return err
		}
		r.SetText(f, v)
	}
	return nil
}

// ApplyAction applies a single normalization action.
func ApplyAction(value string, action config.NormalizationAction) (string, error) {
	switch action.Type {
	case "trim":
		return strings.TrimSpace(value), nil

	case "collapse_spaces":
		return strings.Join(strings.Fields(value), " "), nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "title":
		return cases.Title(language.Und).String(strings.ToLower(value)), nil

	case "replace":
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case "lookup":
		if replacement, ok := action.LookupTable[value]; ok {
			return replacement, nil
		}
		var keys []string
		for k := range action.LookupTable {
			if strings.EqualFold(k, value) {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			return value, nil
		}
		return action.LookupTable[slices.Min(keys)], nil

	default:
		return "", fmt.Errorf("unknown normalization type: %s", action.Type)
	}
}
