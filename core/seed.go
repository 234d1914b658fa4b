package core

import (
	"time"

	"github.com/huangsam/tally/core/agg"
)

// HistoricalSeed returns the value of field at the latest point at or before
// windowStart that carries a finite numeric value for it, or zero when no such
// point exists. Ties on the instant keep the earliest point in input order.
func HistoricalSeed(points []TimedPoint, field string, windowStart time.Time) float64 {
	var (
		seed  float64
		found bool
		best  time.Time
	)
	for _, tp := range points {
		if tp.At.After(windowStart) {
			continue
		}
		raw, ok := tp.Point.Field(field)
		if !ok {
			continue
		}
		n, ok := agg.ToNumber(raw)
		if !ok {
			continue
		}
		if !found || tp.At.After(best) {
			seed, best, found = n, tp.At, true
		}
	}
	return seed
}
