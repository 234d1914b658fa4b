package core

import (
	"database/sql"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/huangsam/tally/internal/iocache"
	"github.com/huangsam/tally/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestGenerateCacheKey(t *testing.T) {
	end := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	cfg := dayConfig(7, schema.SumAgg)
	points := corePoints()

	key, err := generateCacheKey(points, []string{"visits"}, cfg, end, language.English)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	again, err := generateCacheKey(corePoints(), []string{"visits"}, cfg, end, language.English)
	require.NoError(t, err)
	assert.Equal(t, key, again, "same inputs give the same key")

	variants := map[string]func() (string, error){
		"window end": func() (string, error) {
			return generateCacheKey(points, []string{"visits"}, cfg, end.AddDate(0, 0, 1), language.English)
		},
		"fields": func() (string, error) {
			return generateCacheKey(points, []string{"sales"}, cfg, end, language.English)
		},
		"config": func() (string, error) {
			return generateCacheKey(points, []string{"visits"}, dayConfig(8, schema.SumAgg), end, language.English)
		},
		"locale": func() (string, error) {
			return generateCacheKey(points, []string{"visits"}, cfg, end, language.German)
		},
		"points": func() (string, error) {
			return generateCacheKey(points[:1], []string{"visits"}, cfg, end, language.English)
		},
	}
	for name, fn := range variants {
		t.Run(name, func(t *testing.T) {
			other, err := fn()
			require.NoError(t, err)
			assert.NotEqual(t, key, other)
		})
	}
}

func TestGenerateCacheKeyUnencodablePoint(t *testing.T) {
	points := []schema.Point{{"timestamp": 1700000000, "v": math.NaN()}}
	_, err := generateCacheKey(points, []string{"v"}, dayConfig(1, schema.SumAgg), time.Now(), language.English)
	assert.Error(t, err)
}

func TestCheckCacheHit(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(schema.SeriesResult{Fields: []string{"v"}})
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		version int
		ts      int64
		err     error
		ttl     time.Duration
		wantHit bool
	}{
		{name: "fresh", data: data, version: currentCacheVersion, ts: now.Add(-time.Minute).Unix(), ttl: time.Hour, wantHit: true},
		{name: "stale", data: data, version: currentCacheVersion, ts: now.Add(-2 * time.Hour).Unix(), ttl: time.Hour},
		{name: "default ttl", data: data, version: currentCacheVersion, ts: now.Add(-23 * time.Hour).Unix(), wantHit: true},
		{name: "old version", data: data, version: currentCacheVersion + 1, ts: now.Unix(), ttl: time.Hour},
		{name: "corrupt", data: []byte("{"), version: currentCacheVersion, ts: now.Unix(), ttl: time.Hour},
		{name: "miss", err: sql.ErrNoRows, ttl: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockCacheStore{}
			store.On("Get", "k").Return(tt.data, tt.version, tt.ts, tt.err)

			hit := checkCacheHit(store, "k", tt.ttl, now)
			if tt.wantHit {
				require.NotNil(t, hit)
				assert.Equal(t, []string{"v"}, hit.Fields)
			} else {
				assert.Nil(t, hit)
			}
		})
	}
}

func TestStoreResult(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := &iocache.MockCacheStore{}
	store.On("Set", "k", mock.MatchedBy(func(b []byte) bool {
		var r schema.SeriesResult
		return json.Unmarshal(b, &r) == nil && len(r.Records) == 1
	}), currentCacheVersion, now.Unix()).Return(nil)

	result := schema.SeriesResult{Records: []schema.OutputRecord{{Timestamp: "a", Values: map[string]float64{"v": 1}}}}
	require.NoError(t, storeResult(store, "k", result, now))
	store.AssertExpectations(t)
}
