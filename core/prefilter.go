package core

import (
	"time"

	"github.com/huangsam/tally/schema"
)

// PrefilterPoints drops points whose bucket lies after the window's last tick.
// Points before the window are kept because the historical seed reads them,
// so the built series is the same with or without the filter.
func PrefilterPoints(points []schema.Point, windowEnd time.Time, g schema.Granularity, loc *time.Location) ([]schema.Point, error) {
	if loc == nil {
		loc = time.UTC
	}
	timed, err := NormalizePoints(points, loc)
	if err != nil {
		return nil, err
	}

	last := BucketStart(windowEnd.In(loc), g)
	kept := make([]schema.Point, 0, len(points))
	for _, tp := range timed {
		if BucketStart(tp.At.In(loc), g).After(last) {
			continue
		}
		kept = append(kept, tp.Point)
	}
	return kept, nil
}
