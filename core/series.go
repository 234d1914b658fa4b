package core

import (
	"fmt"
	"time"

	"github.com/huangsam/tally/core/agg"
	"github.com/huangsam/tally/internal/contract"
	"github.com/huangsam/tally/internal/label"
	"github.com/huangsam/tally/schema"
	"golang.org/x/text/language"
)

// Options are the injected collaborators of one series build.
type Options struct {
	// Now is the reference clock. Zero means time.Now().
	Now time.Time

	// Location is the calendar all bucketing happens in. Nil means UTC.
	Location *time.Location

	// Locale is passed through to Format.
	Locale language.Tag

	// Format renders tick labels. Nil means label.Format.
	Format contract.LabelFormatter
}

// TimedPoint is a point paired with its normalized instant.
type TimedPoint struct {
	At    time.Time
	Point schema.Point
}

// BuildSeries turns unordered points into one record per tick of the configured
// window. Any invalid timestamp or unsupported mode fails the whole call.
func BuildSeries(points []schema.Point, fields []string, cfg schema.SeriesConfig, opts Options) ([]schema.OutputRecord, error) {
	_, records, err := buildSeries(points, fields, cfg, opts)
	return records, err
}

// BuildSeriesResult is BuildSeries plus the window the records cover.
func BuildSeriesResult(points []schema.Point, fields []string, cfg schema.SeriesConfig, opts Options) (schema.SeriesResult, error) {
	iv, records, err := buildSeries(points, fields, cfg, opts)
	if err != nil {
		return schema.SeriesResult{}, err
	}
	return schema.SeriesResult{
		Fields:      fields,
		Config:      cfg,
		Locale:      opts.Locale.String(),
		WindowStart: iv.Start,
		WindowEnd:   iv.End,
		Records:     records,
	}, nil
}

// ValidateSeriesConfig checks every enumerated setting against its closed set.
func ValidateSeriesConfig(cfg schema.SeriesConfig) error {
	if _, ok := schema.ValidGranularities[cfg.Granularity]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedGranularity, cfg.Granularity)
	}
	if _, ok := schema.ValidIntervalUnits[cfg.IntervalUnit]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedIntervalUnit, cfg.IntervalUnit)
	}
	if cfg.IntervalLength < 0 {
		return fmt.Errorf("interval length must not be negative (received %d)", cfg.IntervalLength)
	}
	for _, mode := range []schema.AggregationMode{cfg.Aggregation.Display, cfg.Aggregation.Storage} {
		if _, ok := schema.ValidAggregationModes[mode]; !ok {
			return fmt.Errorf("%w: %q", ErrUnsupportedAggregation, mode)
		}
	}
	if _, ok := schema.ValidAccumulationModes[cfg.Accumulation]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedAccumulation, cfg.Accumulation)
	}
	return nil
}

// validateFields rejects field names that collide with the record label key.
func validateFields(fields []string) error {
	for _, f := range fields {
		if f == schema.TimestampKey {
			return fmt.Errorf("%w: %q", ErrReservedField, f)
		}
	}
	return nil
}

// NormalizePoints resolves every point's instant, failing on the first invalid one.
func NormalizePoints(points []schema.Point, loc *time.Location) ([]TimedPoint, error) {
	timed := make([]TimedPoint, 0, len(points))
	for i, p := range points {
		at, err := NormalizeTimestamp(p.Timestamp(), loc)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		timed = append(timed, TimedPoint{At: at, Point: p})
	}
	return timed, nil
}

func buildSeries(points []schema.Point, fields []string, cfg schema.SeriesConfig, opts Options) (Interval, []schema.OutputRecord, error) {
	if err := ValidateSeriesConfig(cfg); err != nil {
		return Interval{}, nil, err
	}
	if err := validateFields(fields); err != nil {
		return Interval{}, nil, err
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	format := opts.Format
	if format == nil {
		format = label.Format
	}

	timed, err := NormalizePoints(points, loc)
	if err != nil {
		return Interval{}, nil, err
	}

	iv, err := ComputeInterval(now.In(loc), cfg.Granularity, cfg.IntervalUnit, cfg.IntervalLength)
	if err != nil {
		return Interval{}, nil, err
	}
	ticks, err := GenerateTicks(iv, cfg.Granularity)
	if err != nil {
		return Interval{}, nil, err
	}

	carry := make(CarryState, len(fields))
	for _, f := range fields {
		if cfg.Historical {
			carry[f] = HistoricalSeed(timed, f, iv.Start)
		} else {
			carry[f] = 0
		}
	}

	buckets := indexBuckets(timed, cfg.Granularity, loc)

	records := make([]schema.OutputRecord, 0, len(ticks))
	for _, tick := range ticks {
		matched := buckets[tick.Unix()]
		display, storage, err := agg.AggregatePair(matched, fields, cfg.Aggregation)
		if err != nil {
			return Interval{}, nil, err
		}

		values := make(map[string]float64, len(fields))
		for _, f := range fields {
			v, err := Emit(display[f], carry[f], cfg.Accumulation)
			if err != nil {
				return Interval{}, nil, err
			}
			values[f] = v
			carry[f] = NextCarry(storage[f], carry[f])
		}

		records = append(records, schema.OutputRecord{
			Timestamp: format(tick, cfg.Granularity, opts.Locale),
			Values:    values,
		})
	}

	return iv, records, nil
}

// indexBuckets groups points by the start of their bucket, keeping input order
// within each bucket. Ticks are bucket starts, so a tick's key selects exactly
// the points SameBucket would match.
func indexBuckets(timed []TimedPoint, g schema.Granularity, loc *time.Location) map[int64][]schema.Point {
	buckets := make(map[int64][]schema.Point)
	for _, tp := range timed {
		key := BucketStart(tp.At.In(loc), g).Unix()
		buckets[key] = append(buckets[key], tp.Point)
	}
	return buckets
}
