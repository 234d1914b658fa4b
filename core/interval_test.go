package core

import (
	"testing"
	"time"

	"github.com/huangsam/tally/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestComputeInterval(t *testing.T) {
	now := time.Date(2024, time.March, 31, 15, 42, 7, 0, time.UTC)

	tests := []struct {
		name      string
		g         schema.Granularity
		unit      schema.IntervalUnit
		length    int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"day window", schema.DayGranularity, schema.DayUnit, 2, date(2024, 3, 29, 0), date(2024, 3, 31, 0)},
		{"week window", schema.DayGranularity, schema.WeekUnit, 1, date(2024, 3, 24, 0), date(2024, 3, 31, 0)},
		{"month clamps to end of february", schema.DayGranularity, schema.MonthUnit, 1, date(2024, 2, 29, 0), date(2024, 3, 31, 0)},
		{"month keeps clock time for hours", schema.HourGranularity, schema.MonthUnit, 1, date(2024, 2, 29, 15), date(2024, 3, 31, 15)},
		{"three months back", schema.MonthGranularity, schema.MonthUnit, 3, date(2023, 12, 31, 0), date(2024, 3, 31, 0)},
		{"year", schema.MonthGranularity, schema.YearUnit, 1, date(2023, 3, 31, 0), date(2024, 3, 31, 0)},
		{"zero length", schema.DayGranularity, schema.DayUnit, 0, date(2024, 3, 31, 0), date(2024, 3, 31, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := ComputeInterval(now, tt.g, tt.unit, tt.length)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, iv.Start)
			assert.Equal(t, tt.wantEnd, iv.End)
		})
	}
}

func TestComputeIntervalLeapYear(t *testing.T) {
	now := date(2024, 2, 29, 8)
	iv, err := ComputeInterval(now, schema.DayGranularity, schema.YearUnit, 1)
	require.NoError(t, err)
	assert.Equal(t, date(2023, 2, 28, 0), iv.Start)
}

func TestComputeIntervalNonLeapFebruary(t *testing.T) {
	now := date(2023, 3, 31, 0)
	iv, err := ComputeInterval(now, schema.DayGranularity, schema.MonthUnit, 1)
	require.NoError(t, err)
	assert.Equal(t, date(2023, 2, 28, 0), iv.Start)
}

func TestComputeIntervalUnsupportedUnit(t *testing.T) {
	_, err := ComputeInterval(time.Now(), schema.DayGranularity, "fortnight", 1)
	assert.ErrorIs(t, err, ErrUnsupportedIntervalUnit)
}

func TestAddMonthsClamped(t *testing.T) {
	assert.Equal(t, date(2024, 4, 30, 0), addMonthsClamped(date(2024, 3, 31, 0), 1))
	assert.Equal(t, date(2023, 11, 30, 0), addMonthsClamped(date(2024, 1, 30, 0), -2))
	assert.Equal(t, date(2025, 1, 15, 0), addMonthsClamped(date(2024, 1, 15, 0), 12))
}
