package core

import (
	"fmt"
	"time"

	"github.com/huangsam/tally/schema"
)

// GenerateTicks lists every bucket boundary of the given granularity from the
// start of the interval to its end, both ends inclusive, in ascending order.
func GenerateTicks(iv Interval, g schema.Granularity) ([]time.Time, error) {
	if _, ok := schema.ValidGranularities[g]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGranularity, g)
	}
	if iv.End.Before(iv.Start) {
		return nil, nil
	}

	var ticks []time.Time
	for cur := BucketStart(iv.Start, g); !cur.After(iv.End); cur = nextBucket(cur, g) {
		ticks = append(ticks, cur)
	}
	return ticks, nil
}

// BucketStart truncates t to the start of the bucket containing it, in t's location.
// Unknown granularities fall back to the instant itself.
func BucketStart(t time.Time, g schema.Granularity) time.Time {
	y, m, d := t.Date()
	switch g {
	case schema.HourGranularity:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
	case schema.DayGranularity:
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	case schema.MonthGranularity:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	default:
		return t
	}
}

func nextBucket(t time.Time, g schema.Granularity) time.Time {
	switch g {
	case schema.HourGranularity:
		return t.Add(time.Hour)
	case schema.DayGranularity:
		return t.AddDate(0, 0, 1)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// SameBucket reports whether instant falls in the bucket of tick:
// the same hour of the same day, the same calendar day, or the same calendar
// month of the same year. Both are compared in the tick's location.
func SameBucket(tick, instant time.Time, g schema.Granularity) bool {
	if _, ok := schema.ValidGranularities[g]; !ok {
		return false
	}
	return BucketStart(tick, g).Equal(BucketStart(instant.In(tick.Location()), g))
}
