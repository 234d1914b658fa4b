package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimestamp(t *testing.T) {
	ref := time.Date(2023, time.November, 14, 22, 13, 20, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want time.Time
	}{
		{"seconds int", 1700000000, ref},
		{"seconds string", "1700000000", ref},
		{"milliseconds int64", int64(1700000000000), ref},
		{"milliseconds string", "1700000000000", ref},
		{"microseconds", int64(1700000000000000), ref},
		{"microseconds float", 1.7e15, ref},
		{"json number", json.Number("1700000000"), ref},
		{"rfc3339", "2023-11-14T22:13:20Z", ref},
		{"rfc3339 offset", "2023-11-15T00:13:20+02:00", ref},
		{"rfc3339 fractional", "2023-11-14T22:13:20.000Z", ref},
		{"no offset", "2023-11-14T22:13:20", ref},
		{"space separated", "2023-11-14 22:13:20", ref},
		{"date only", "2023-11-14", time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC)},
		{"native", ref, ref},
		{"native pointer", &ref, ref},
		{"fractional seconds", 1700000000.5, ref.Add(500 * time.Millisecond)},
		{"zero", 0, time.Unix(0, 0)},
		{"negative seconds", -86400, time.Unix(-86400, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTimestamp(tt.in, time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestNormalizeTimestampInvalid(t *testing.T) {
	var nilTime *time.Time
	inputs := []any{"not a date", "", "   ", nil, true, struct{}{}, nilTime, 1e30, "NaN"}

	for _, in := range inputs {
		_, err := NormalizeTimestamp(in, time.UTC)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, "input %#v", in)
	}
}

func TestNormalizeTimestampLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)

	got, err := NormalizeTimestamp("2024-01-01T10:00:00", loc)
	require.NoError(t, err)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 5, got.UTC().Hour())

	got, err = NormalizeTimestamp("2024-01-01T10:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, 10, got.UTC().Hour(), "an explicit offset wins over the reference location")

	got, err = NormalizeTimestamp(1700000000, nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())
}

func TestEpochMillisThresholds(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"12 digits are seconds", 999999999999, 999999999999000},
		{"13 digits are milliseconds", 1000000000000, 1000000000000},
		{"15 digits are milliseconds", 999999999999999, 999999999999999},
		{"16 digits are microseconds", 1000000000000000, 1000000000000},
		{"fraction ignored for digit count", 123.999, 123999},
		{"sign ignored for digit count", -1700000000000, -1700000000000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EpochMillis(tt.in), 1e-6)
		})
	}
}

func TestIntegerDigits(t *testing.T) {
	assert.Equal(t, 1, IntegerDigits(0))
	assert.Equal(t, 1, IntegerDigits(0.99))
	assert.Equal(t, 10, IntegerDigits(1700000000))
	assert.Equal(t, 13, IntegerDigits(-1700000000000))
	assert.Equal(t, 16, IntegerDigits(1700000000000000))
}

func FuzzNormalizeTimestamp(f *testing.F) {
	f.Add("1700000000")
	f.Add("1700000000000")
	f.Add("2023-11-14T22:13:20Z")
	f.Add("2023-11-14")
	f.Add("")
	f.Add("garbage")
	f.Add("-1e20")

	f.Fuzz(func(t *testing.T, s string) {
		got, err := NormalizeTimestamp(s, time.UTC)
		if err != nil {
			assert.ErrorIs(t, err, ErrInvalidTimestamp)
			return
		}
		// Normalizing the same input twice is stable.
		again, err := NormalizeTimestamp(s, time.UTC)
		require.NoError(t, err)
		assert.True(t, got.Equal(again))
	})
}
