// Package agg reduces the points of one bucket to a single value per field.
package agg

import (
	"errors"
	"fmt"

	"github.com/huangsam/tally/schema"
	"github.com/shopspring/decimal"
)

// ErrUnsupportedAggregation is returned for a mode outside the closed set of aggregation modes.
var ErrUnsupportedAggregation = errors.New("unsupported aggregation")

// Aggregate reduces the matched points to one value per field using the given mode.
// The points must already be in input order; first and last depend on it.
func Aggregate(points []schema.Point, fields []string, mode schema.AggregationMode) (map[string]Value, error) {
	out := make(map[string]Value, len(fields))

	switch mode {
	case schema.SumAgg:
		for _, f := range fields {
			out[f] = sumField(points, f)
		}
	case schema.CountAgg:
		n := Of(float64(len(points)))
		for _, f := range fields {
			out[f] = n
		}
	case schema.FirstAgg:
		for _, f := range fields {
			out[f] = firstField(points, f)
		}
	case schema.LastAgg:
		for _, f := range fields {
			out[f] = lastField(points, f)
		}
	case schema.MaxAgg:
		for _, f := range fields {
			out[f] = maxField(points, f)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAggregation, mode)
	}

	return out, nil
}

// AggregatePair computes the display and storage aggregates of one bucket.
// When both halves use the same mode the work is done once and shared.
func AggregatePair(points []schema.Point, fields []string, pair schema.Aggregation) (display, storage map[string]Value, err error) {
	display, err = Aggregate(points, fields, pair.Display)
	if err != nil {
		return nil, nil, err
	}
	if pair.IsSingle() {
		return display, display, nil
	}
	storage, err = Aggregate(points, fields, pair.Storage)
	if err != nil {
		return nil, nil, err
	}
	return display, storage, nil
}

// sumField adds up numeric values exactly; missing and non-numeric values count as zero.
func sumField(points []schema.Point, field string) Value {
	total := decimal.Zero
	for _, p := range points {
		raw, ok := p.Field(field)
		if !ok {
			continue
		}
		if n, ok := ToNumber(raw); ok {
			total = total.Add(decimal.NewFromFloat(n))
		}
	}
	return Of(total.InexactFloat64())
}

// firstField returns the first defined value in input order, or Absent.
func firstField(points []schema.Point, field string) Value {
	for _, p := range points {
		if raw, ok := p.Field(field); ok {
			return Coerce(raw)
		}
	}
	return Absent
}

// lastField returns the last defined value in input order, or Absent.
func lastField(points []schema.Point, field string) Value {
	for i := len(points) - 1; i >= 0; i-- {
		if raw, ok := points[i].Field(field); ok {
			return Coerce(raw)
		}
	}
	return Absent
}

// maxField returns the largest numeric value, floored at zero.
func maxField(points []schema.Point, field string) Value {
	best := 0.0
	for _, p := range points {
		raw, ok := p.Field(field)
		if !ok {
			continue
		}
		if n, ok := ToNumber(raw); ok && n > best {
			best = n
		}
	}
	return Of(best)
}
