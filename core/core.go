// Package core has core logic for bucketing, aggregation and carry-forward.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/tally/internal/contract"
	"github.com/huangsam/tally/internal/outwriter"
	"github.com/huangsam/tally/internal/source"
	"github.com/huangsam/tally/schema"
)

// ExecutorFunc defines the function signature for executing a series command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteSeries loads the configured source, builds the series and prints it.
// It serves as the main entry point for the 'series' command.
func ExecuteSeries(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := GetSeriesResult(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintSeriesResults(result, cfg, duration)
}

// GetSeriesResult loads the configured source and builds its series without printing.
func GetSeriesResult(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.SeriesResult, error) {
	src, err := source.New(source.FromConfig(cfg))
	if err != nil {
		return schema.SeriesResult{}, err
	}
	points, err := src.Points(ctx)
	if err != nil {
		return schema.SeriesResult{}, fmt.Errorf("failed to load points from %s: %w", src.Describe(), err)
	}
	return BuildFromPoints(ctx, cfg, mgr, points, src.Describe())
}

// BuildFromPoints runs one tracked and cached build over points already in memory.
// origin names where the points came from for headers and run history.
func BuildFromPoints(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, points []schema.Point, origin string) (schema.SeriesResult, error) {
	if err := ctx.Err(); err != nil {
		return schema.SeriesResult{}, err
	}
	if err := ValidateSeriesConfig(cfg.Series); err != nil {
		return schema.SeriesResult{}, err
	}

	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	iv, err := ComputeInterval(now.UTC(), cfg.Series.Granularity, cfg.Series.IntervalUnit, cfg.Series.IntervalLength)
	if err != nil {
		return schema.SeriesResult{}, err
	}

	if !shouldSuppressHeader(ctx) {
		logSeriesHeader(cfg, origin, len(points), iv)
	}

	// --- 1. Optional pre-filter ---
	if cfg.Prefilter {
		points, err = PrefilterPoints(points, iv.End, cfg.Series.Granularity, time.UTC)
		if err != nil {
			return schema.SeriesResult{}, err
		}
	}

	// --- 2. Cache lookup ---
	var store contract.CacheStore
	if mgr != nil && !shouldSkipCache(ctx) {
		store = mgr.GetSeriesStore()
	}
	var key string
	if store != nil {
		key, err = generateCacheKey(points, cfg.Fields, cfg.Series, iv.End, cfg.Locale)
		if err != nil {
			contract.LogWarn("Series caching skipped", err)
		} else if hit := checkCacheHit(store, key, cfg.CacheTTL, time.Now()); hit != nil {
			return *hit, nil
		}
	}

	// --- 3. Begin run tracking (if configured) ---
	var runs contract.RunStore
	if mgr != nil {
		runs = mgr.GetRunStore()
	}
	var runID string
	if runs != nil {
		params := cfg.SeriesParams()
		params["origin"] = origin
		runID, err = runs.BeginRun(time.Now(), params)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		}
	}

	// --- 4. Build ---
	result, err := BuildSeriesResult(points, cfg.Fields, cfg.Series, Options{
		Now:      now,
		Location: time.UTC,
		Locale:   cfg.Locale,
	})
	if err != nil {
		return schema.SeriesResult{}, err
	}

	// --- 5. Store and finish tracking ---
	if store != nil && key != "" {
		if err := storeResult(store, key, result, time.Now()); err != nil {
			contract.LogWarn("Failed to cache series", err)
		}
	}
	if runs != nil && runID != "" {
		if err := runs.RecordSeries(runID, result.Records); err != nil {
			contract.LogWarn("Failed to record series values", err)
		}
		if err := runs.EndRun(runID, time.Now(), len(result.Records)); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}

	return result, nil
}
