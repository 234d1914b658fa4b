package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/tally/internal/contract"
	"github.com/huangsam/tally/schema"
	"github.com/zeebo/xxh3"
	"golang.org/x/text/language"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// defaultCacheTTL applies when the config carries no TTL, as in MCP and HTTP requests.
const defaultCacheTTL = 24 * time.Hour

// cacheKeyInput is everything a built series depends on. The window end stands
// in for the reference clock: every tick is derived from it.
type cacheKeyInput struct {
	Points    []schema.Point      `json:"points"`
	Fields    []string            `json:"fields"`
	Series    schema.SeriesConfig `json:"series"`
	WindowEnd int64               `json:"window_end"`
	Locale    string              `json:"locale"`
}

// generateCacheKey hashes the build inputs into a 128-bit hex key.
// Points that cannot be encoded (NaN values, for one) make the build uncacheable.
func generateCacheKey(points []schema.Point, fields []string, series schema.SeriesConfig, windowEnd time.Time, locale language.Tag) (string, error) {
	data, err := json.Marshal(cacheKeyInput{
		Points:    points,
		Fields:    fields,
		Series:    series,
		WindowEnd: windowEnd.Unix(),
		Locale:    locale.String(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	sum := xxh3.Hash128(data)
	return fmt.Sprintf("%016x%016x", sum.Hi, sum.Lo), nil
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string, ttl time.Duration, now time.Time) *schema.SeriesResult {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	// Validate version and staleness
	if version == currentCacheVersion && now.Sub(time.Unix(ts, 0)) <= ttl {
		var result schema.SeriesResult
		if err := json.Unmarshal(data, &result); err == nil {
			return &result // Cache hit
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// storeResult writes a built series to the cache.
func storeResult(store contract.CacheStore, key string, result schema.SeriesResult, now time.Time) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode series: %w", err)
	}
	return store.Set(key, data, currentCacheVersion, now.Unix())
}
