package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

// Bucket is the calendar granularity of a time series.
type Bucket string

const (
	BucketMonth   Bucket = "month"
	BucketQuarter Bucket = "quarter"
	BucketYear    Bucket = "year"
)

// ParseBucket converts a config or flag value to a Bucket.
func ParseBucket(s string) (Bucket, error) {
	switch Bucket(strings.ToLower(strings.TrimSpace(s))) {
	case "", BucketMonth:
		return BucketMonth, nil
	case BucketQuarter:
		return BucketQuarter, nil
	case BucketYear:
		return BucketYear, nil
	}
	return "", fmt.Errorf("unknown bucket %q (want month, quarter or year)", s)
}

// Span is an inclusive date range. When passed to TimeBucketedSum every
// bucket between From and To appears in the output, zero-filled.
type Span struct {
	From time.Time
	To   time.Time
}

// bucketKey identifies a bucket with a sortable ordinal.
type bucketKey struct {
	ordinal int
	label   string
}

func keyFor(t time.Time, b Bucket) bucketKey {
	y, m := t.Year(), int(t.Month())
	switch b {
	case BucketYear:
		return bucketKey{ordinal: y * 100, label: fmt.Sprintf("%04d", y)}
	case BucketQuarter:
		q := (m-1)/3 + 1
		return bucketKey{ordinal: y*100 + q, label: fmt.Sprintf("%04d-Q%d", y, q)}
	default:
		return bucketKey{ordinal: y*100 + m, label: fmt.Sprintf("%04d-%02d", y, m)}
	}
}

// next returns the key of the bucket following k.
func next(k bucketKey, b Bucket) bucketKey {
	y, part := k.ordinal/100, k.ordinal%100
	switch b {
	case BucketYear:
		return keyFor(time.Date(y+1, 1, 1, 0, 0, 0, 0, time.UTC), b)
	case BucketQuarter:
		return keyFor(time.Date(y, time.Month(part*3+1), 1, 0, 0, 0, 0, time.UTC), b)
	default:
		return keyFor(time.Date(y, time.Month(part+1), 1, 0, 0, 0, 0, time.UTC), b)
	}
}

// TimeBucketedSum sums the amount field per calendar bucket of the date
// field, ordered chronologically ascending with unique keys.
//
// Without a span only buckets that have records appear. With a span every
// bucket from span.From through span.To appears, zero-filled; records outside
// the span are ignored.
//
// Records with a null date are skipped. If either field is absent, or the
// fields have the wrong kinds, the view is unavailable.
func TimeBucketedSum(ds *types.Dataset, date, amount types.Field, bucket Bucket, span *Span) View {
	if bucket == "" {
		bucket = BucketMonth
	}
	if !usable(ds, date) || !usable(ds, amount) || !date.IsTemporal() || !amount.IsNumeric() {
		return unavailable(KindTimeSeries, date)
	}

	var lo, hi int
	if span != nil {
		lo, hi = keyFor(span.From, bucket).ordinal, keyFor(span.To, bucket).ordinal
	}

	sums := make(map[int]*Point)
	for i := range ds.Records {
		r := &ds.Records[i]
		if r.Date == nil {
			continue
		}
		v, ok := r.Amount()
		if !ok {
			continue
		}
		k := keyFor(*r.Date, bucket)
		if span != nil && (k.ordinal < lo || k.ordinal > hi) {
			continue
		}
		p, ok := sums[k.ordinal]
		if !ok {
			p = &Point{Label: k.label, Value: decimal.Zero}
			sums[k.ordinal] = p
		}
		p.Value = p.Value.Add(v)
		p.Count++
	}

	points := make([]Point, 0, len(sums))
	if span != nil {
		if lo > hi {
			return View{Kind: KindTimeSeries, Field: date, Available: true, Points: points}
		}
		for k := keyFor(span.From, bucket); k.ordinal <= hi; k = next(k, bucket) {
			if p, ok := sums[k.ordinal]; ok {
				points = append(points, *p)
			} else {
				points = append(points, Point{Label: k.label, Value: decimal.Zero})
			}
		}
	} else {
		ordinals := make([]int, 0, len(sums))
		for o := range sums {
			ordinals = append(ordinals, o)
		}
		sort.Ints(ordinals)
		for _, o := range ordinals {
			points = append(points, *sums[o])
		}
	}

	return View{Kind: KindTimeSeries, Field: date, Available: true, Points: points}
}

// DataSpan returns the span from the earliest to the latest dated record, or
// nil when no record has a date.
func DataSpan(ds *types.Dataset) *Span {
	if ds == nil {
		return nil
	}
	var span *Span
	for i := range ds.Records {
		d := ds.Records[i].Date
		if d == nil {
			continue
		}
		if span == nil {
			span = &Span{From: *d, To: *d}
			continue
		}
		if d.Before(span.From) {
			span.From = *d
		}
		if d.After(span.To) {
			span.To = *d
		}
	}
	return span
}
