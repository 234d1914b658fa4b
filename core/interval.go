package core

import (
	"fmt"
	"time"

	"github.com/huangsam/tally/schema"
)

// Interval is the inclusive lookback window of a series.
type Interval struct {
	Start time.Time
	End   time.Time
}

// ComputeInterval derives the lookback window from the reference clock.
//
// End is now truncated to the start of its hour for hour granularity and to the
// start of its day otherwise. Start is End minus length units with
// calendar-correct month and year arithmetic: the day of month is kept, or
// clamped to the last valid day of the target month.
func ComputeInterval(now time.Time, g schema.Granularity, unit schema.IntervalUnit, length int) (Interval, error) {
	var end time.Time
	if g == schema.HourGranularity {
		end = BucketStart(now, schema.HourGranularity)
	} else {
		end = BucketStart(now, schema.DayGranularity)
	}

	var start time.Time
	switch unit {
	case schema.YearUnit:
		start = addMonthsClamped(end, -12*length)
	case schema.MonthUnit:
		start = addMonthsClamped(end, -length)
	case schema.WeekUnit:
		start = end.AddDate(0, 0, -7*length)
	case schema.DayUnit:
		start = end.AddDate(0, 0, -length)
	default:
		return Interval{}, fmt.Errorf("%w: %q", ErrUnsupportedIntervalUnit, unit)
	}

	return Interval{Start: start, End: end}, nil
}

// addMonthsClamped shifts t by the given number of months, clamping the day to
// the length of the target month instead of overflowing into the next one.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
