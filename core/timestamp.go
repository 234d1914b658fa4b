package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/tally/core/agg"
)

// Digit-count thresholds for numeric epochs. An integer part with at least
// microDigits digits is read as microseconds, with at least milliDigits digits
// as milliseconds, and anything shorter as seconds.
const (
	microDigits = 16
	milliDigits = 13
)

// maxEpochMillis bounds the representable instants to +/- 100,000,000 days around the epoch.
const maxEpochMillis = 8.64e15

// timestampLayouts are the calendar-date encodings tried before numeric parsing.
// Layouts without an offset are read in the reference location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// NormalizeTimestamp converts a raw timestamp into an instant.
//
// Native times pass through unchanged. Strings are parsed as calendar dates
// first; anything else is coerced to a number and read as an epoch whose unit
// is inferred from the digit count of its integer part (see EpochMillis).
func NormalizeTimestamp(raw any, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("%w: nil time", ErrInvalidTimestamp)
		}
		return *v, nil
	case []byte:
		return normalizeString(string(v), loc)
	case string:
		return normalizeString(v, loc)
	case bool, nil:
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, raw)
	}

	n, ok := agg.ToNumber(raw)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %v (%T)", ErrInvalidTimestamp, raw, raw)
	}
	return epochToTime(n, loc)
}

func normalizeString(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrInvalidTimestamp)
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return epochToTime(n, loc)
}

func epochToTime(n float64, loc *time.Location) (time.Time, error) {
	ms := EpochMillis(n)
	if math.Abs(ms) > maxEpochMillis {
		return time.Time{}, fmt.Errorf("%w: %v is out of range", ErrInvalidTimestamp, n)
	}
	sec := math.Floor(ms / 1000)
	nsec := math.Round((ms - sec*1000) * 1e6)
	return time.Unix(int64(sec), int64(nsec)).In(loc), nil
}

// EpochMillis converts a numeric epoch to milliseconds using the digit-count heuristic.
// The heuristic is ambiguous near the thresholds: a 13-digit seconds value would be
// read as milliseconds. That ambiguity is accepted.
func EpochMillis(n float64) float64 {
	switch digits := IntegerDigits(n); {
	case digits >= microDigits:
		return n / 1000
	case digits >= milliDigits:
		return n
	default:
		return n * 1000
	}
}

// IntegerDigits returns the number of decimal digits in the integer part of n.
func IntegerDigits(n float64) int {
	return len(strconv.FormatFloat(math.Trunc(math.Abs(n)), 'f', 0, 64))
}
