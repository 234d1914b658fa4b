package agg

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/huangsam/tally/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bucket() []schema.Point {
	return []schema.Point{
		{"timestamp": 1, "a": 2.0, "b": "7"},
		{"timestamp": 2, "a": 3, "c": nil},
		{"timestamp": 3, "a": "-1", "b": 4},
	}
}

func TestAggregate(t *testing.T) {
	fields := []string{"a", "b", "c"}

	tests := []struct {
		mode schema.AggregationMode
		want map[string]Value
	}{
		{schema.SumAgg, map[string]Value{"a": Of(4), "b": Of(11), "c": Of(0)}},
		{schema.CountAgg, map[string]Value{"a": Of(3), "b": Of(3), "c": Of(3)}},
		{schema.FirstAgg, map[string]Value{"a": Of(2), "b": Of(7), "c": Absent}},
		{schema.LastAgg, map[string]Value{"a": Of(-1), "b": Of(4), "c": Absent}},
		{schema.MaxAgg, map[string]Value{"a": Of(3), "b": Of(7), "c": Of(0)}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got, err := Aggregate(bucket(), fields, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregateUnsupported(t *testing.T) {
	_, err := Aggregate(bucket(), []string{"a"}, "median")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedAggregation)
	assert.Contains(t, err.Error(), "median")
}

func TestAggregateEmptyBucket(t *testing.T) {
	for _, mode := range schema.AllAggregationModes {
		got, err := Aggregate(nil, []string{"a"}, mode)
		require.NoError(t, err)
		assert.False(t, got["a"].Truthy(), "mode %s should be falsy on an empty bucket", mode)
	}
}

func TestSumIsExactAndIdempotent(t *testing.T) {
	points := []schema.Point{{"v": 0.1}, {"v": 0.2}}

	first, err := Aggregate(points, []string{"v"}, schema.SumAgg)
	require.NoError(t, err)
	second, err := Aggregate(points, []string{"v"}, schema.SumAgg)
	require.NoError(t, err)

	assert.Equal(t, 0.3, first["v"].Number)
	assert.Equal(t, first, second)
}

func TestMaxFlooredAtZero(t *testing.T) {
	points := []schema.Point{{"v": -5}, {"v": "abc"}, {"v": -1}}
	got, err := Aggregate(points, []string{"v"}, schema.MaxAgg)
	require.NoError(t, err)
	assert.Equal(t, Of(0), got["v"])
}

func TestFirstNonNumericIsDefinedButFalsy(t *testing.T) {
	points := []schema.Point{{"v": "n/a"}, {"v": 5}}
	got, err := Aggregate(points, []string{"v"}, schema.FirstAgg)
	require.NoError(t, err)
	assert.True(t, got["v"].Defined)
	assert.True(t, math.IsNaN(got["v"].Number))
	assert.False(t, got["v"].Truthy())
}

func TestAggregatePair(t *testing.T) {
	display, storage, err := AggregatePair(bucket(), []string{"a"}, schema.PairAggregation(schema.LastAgg, schema.SumAgg))
	require.NoError(t, err)
	assert.Equal(t, Of(-1), display["a"])
	assert.Equal(t, Of(4), storage["a"])

	display, storage, err = AggregatePair(bucket(), []string{"a"}, schema.SingleAggregation(schema.CountAgg))
	require.NoError(t, err)
	assert.Equal(t, display, storage)

	_, _, err = AggregatePair(bucket(), []string{"a"}, schema.PairAggregation(schema.SumAgg, "avg"))
	assert.ErrorIs(t, err, ErrUnsupportedAggregation)
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{"float", 1.5, 1.5, true},
		{"int", 3, 3, true},
		{"int64", int64(-4), -4, true},
		{"uint8", uint8(9), 9, true},
		{"numeric string", " 12.5 ", 12.5, true},
		{"json number", json.Number("7"), 7, true},
		{"bytes", []byte("8"), 8, true},
		{"true", true, 1, true},
		{"false", false, 0, true},
		{"empty string", "", 0, false},
		{"garbage", "abc", 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf string", "Inf", 0, false},
		{"struct", struct{}{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumber(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruthy(t *testing.T) {
	assert.True(t, Of(1).Truthy())
	assert.True(t, Of(-2).Truthy())
	assert.False(t, Of(0).Truthy())
	assert.False(t, Absent.Truthy())
	assert.False(t, Value{Number: math.NaN(), Defined: true}.Truthy())
	assert.False(t, Value{Number: 5}.Truthy(), "undefined values are never truthy")
}
