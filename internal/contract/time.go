package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxRelativeValue bounds N in "N units ago" so the offset cannot overflow a time.Duration.
const maxRelativeValue = 10000

// relativeTimeRe captures "N [units] ago", e.g. "2 days ago" or "1 month ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// ParseRelativeTime converts strings like "2 days ago" into a time.Time in the past.
// Month and year steps use calendar arithmetic; the rest are fixed durations.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)

	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid relative time value %q: %w", matches[1], err)
	}
	if value > maxRelativeValue {
		return time.Time{}, fmt.Errorf("relative time value %d exceeds %d", value, maxRelativeValue)
	}

	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.Add(time.Duration(-value) * 7 * 24 * time.Hour), nil
	case "day":
		return now.Add(time.Duration(-value) * 24 * time.Hour), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	default: // minute
		return now.Add(time.Duration(-value) * time.Minute), nil
	}
}

// ParseReferenceTime resolves the --now flag: empty or "now" is the wall clock,
// otherwise an absolute RFC 3339 instant or a relative "N units ago".
func ParseReferenceTime(s string, wall time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "now") {
		return wall, nil
	}
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := ParseRelativeTime(s, wall)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference time %q. Expected absolute ISO8601 or 'N [units] ago'", s)
	}
	return t, nil
}

// durationRe captures "N [units]".
var durationRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?$`)

// ParseDuration converts strings like "12 hours" or "720h" into a time.Duration.
// It tries time.ParseDuration first and falls back to the human-readable form,
// approximating a month as 30 days and a year as 365 days.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, errors.New("duration must be positive")
		}
		return d, nil
	}

	matches := durationRe.FindStringSubmatch(strings.ToLower(s))
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration value %q: %w", matches[1], err)
	}

	const day = 24 * time.Hour
	var unit time.Duration
	switch matches[2] {
	case "year":
		unit = 365 * day
	case "month":
		unit = 30 * day
	case "week":
		unit = 7 * day
	case "day":
		unit = day
	case "hour":
		unit = time.Hour
	default: // minute
		unit = time.Minute
	}

	if value == 0 {
		return 0, errors.New("duration must be positive")
	}
	if value > maxRelativeValue {
		return 0, fmt.Errorf("duration value %d exceeds %d", value, maxRelativeValue)
	}
	return time.Duration(value) * unit, nil
}
