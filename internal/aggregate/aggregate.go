// =============================================================================
// Startup Funding Dashboard - Aggregator
// =============================================================================
//
// The aggregator turns a (filtered) dataset into named views ready for an
// external renderer. Every operation is pure: same input, same output.
//
// OPERATIONS:
//   - TopNBySum:       group by a text field, sum the amount, rank
//                      descending, keep the first n.
//   - TimeBucketedSum: group by calendar month (or quarter/year), sum the
//                      amount, order chronologically.
//   - CategoryShare:   count records per category value.
//
// UNAVAILABLE VIEWS:
//   When a field an operation needs is absent from the dataset's column
//   resolution, the operation returns a View with Available=false and no
//   points. Callers skip or placeholder such views.
//
// ORDERING:
//   Groups are collected in order of first appearance, then sorted with a
//   stable sort, so ties keep first-appearance order.
//
// =============================================================================

package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

// =============================================================================
// VIEW TYPES
// =============================================================================

// Kind identifies the shape of a view.
type Kind string

const (
	KindTopN       Kind = "top_n"
	KindTimeSeries Kind = "time_series"
	KindShare      Kind = "share"
)

// View is a named, ordered sequence of labelled values.
type View struct {
	Name      string      `json:"name"`
	Title     string      `json:"title,omitempty"`
	Kind      Kind        `json:"kind"`
	Field     types.Field `json:"field"`
	Available bool        `json:"available"`
	Points    []Point     `json:"points"`
}

// Point is one entry of a view.
//
// For top-N and time series views Value is the summed amount and Count the
// number of records contributing. For share views Value equals Count and
// Share is the fraction of all counted records.
type Point struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"`
	Share float64         `json:"share,omitempty"`
}

// Empty reports whether the view has no points.
func (v View) Empty() bool {
	return len(v.Points) == 0
}

// Total sums the values of every point.
func (v View) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range v.Points {
		total = total.Add(p.Value)
	}
	return total
}

// Labels returns the point labels in order.
func (v View) Labels() []string {
	labels := make([]string, len(v.Points))
	for i, p := range v.Points {
		labels[i] = p.Label
	}
	return labels
}

func unavailable(kind Kind, f types.Field) View {
	return View{Kind: kind, Field: f, Available: false, Points: []Point{}}
}

// =============================================================================
// TOP N BY SUM
// =============================================================================

// TopNBySum groups ds by the group field, sums the amount field per group,
// sorts descending by sum and keeps at most n groups. A non-positive n yields
// an available view with no points.
//
// Records with an empty group value are skipped. If either field is absent,
// or amount is not a numeric field, the view is unavailable.
func TopNBySum(ds *types.Dataset, group, amount types.Field, n int) View {
	if !usable(ds, group) || !usable(ds, amount) || !group.IsText() || !amount.IsNumeric() {
		return unavailable(KindTopN, group)
	}

	if n <= 0 {
		return View{Kind: KindTopN, Field: group, Available: true, Points: []Point{}}
	}

	groups := sumBy(ds, amount, func(r *types.Record) (string, bool) {
		label := r.Text(group)
		return label, label != ""
	})

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Value.GreaterThan(groups[j].Value)
	})

	if len(groups) > n {
		groups = groups[:n]
	}

	return View{Kind: KindTopN, Field: group, Available: true, Points: groups}
}

// =============================================================================
// CATEGORY SHARE
// =============================================================================

// CategoryShare counts records per value of the category field. Every value
// is kept; points are ordered by count descending with ties in order of
// first appearance. Records with an empty category are not counted.
func CategoryShare(ds *types.Dataset, category types.Field) View {
	if !usable(ds, category) || !category.IsText() {
		return unavailable(KindShare, category)
	}

	index := make(map[string]int)
	points := make([]Point, 0)
	total := 0

	for i := range ds.Records {
		label := ds.Records[i].Text(category)
		if label == "" {
			continue
		}
		idx, ok := index[label]
		if !ok {
			idx = len(points)
			index[label] = idx
			points = append(points, Point{Label: label})
		}
		points[idx].Count++
		total++
	}

	for i := range points {
		points[i].Value = decimal.NewFromInt(int64(points[i].Count))
		points[i].Share = float64(points[i].Count) / float64(total)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Count > points[j].Count
	})

	return View{Kind: KindShare, Field: category, Available: true, Points: points}
}

// =============================================================================
// HELPERS
// =============================================================================

// usable reports whether the field exists in the dataset's source columns.
func usable(ds *types.Dataset, f types.Field) bool {
	return ds != nil && ds.Columns.Has(f)
}

// sumBy sums the amount per key in order of first appearance.
func sumBy(ds *types.Dataset, amount types.Field, key func(r *types.Record) (string, bool)) []Point {
	points := make([]Point, 0)
	if ds == nil {
		return points
	}

	index := make(map[string]int)
	for i := range ds.Records {
		r := &ds.Records[i]
		label, ok := key(r)
		if !ok {
			continue
		}
		v, ok := r.Amount()
		if !ok {
			continue
		}
		idx, seen := index[label]
		if !seen {
			idx = len(points)
			index[label] = idx
			points = append(points, Point{Label: label, Value: decimal.Zero})
		}
		points[idx].Value = points[idx].Value.Add(v)
		points[idx].Count++
	}
	return points
}
