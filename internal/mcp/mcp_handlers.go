package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/tally/core"
	"github.com/huangsam/tally/internal/contract"
	"github.com/huangsam/tally/internal/source"
	"github.com/huangsam/tally/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handleBuildSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := h.baseCfg.SeriesRawInput()
	if v := request.GetString("fields", ""); v != "" {
		raw.Fields = v
	}
	if v := request.GetString("granularity", ""); v != "" {
		raw.Granularity = v
	}
	if v := request.GetString("interval_unit", ""); v != "" {
		raw.IntervalUnit = v
	}
	if v := request.GetInt("interval_length", 0); v != 0 {
		raw.IntervalLength = v
	}
	if v := request.GetString("aggregation", ""); v != "" {
		raw.Aggregation = v
	}
	if v := request.GetString("storage_aggregation", ""); v != "" {
		raw.StorageAggregation = v
	}
	if v := request.GetString("accumulation", ""); v != "" {
		raw.Accumulation = v
	}
	raw.Historical = request.GetBool("historical", raw.Historical)
	if v := request.GetString("locale", ""); v != "" {
		raw.Locale = v
	}
	if v := request.GetString("now", ""); v != "" {
		raw.Now = v
	}

	cfg := h.baseCfg.Clone()
	if err := contract.ProcessSeriesInputs(cfg, raw, time.Now()); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid series parameters: %v", err)), nil
	}

	points, origin, err := loadPoints(ctx, request.GetString("points", ""), request.GetString("input", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := core.BuildFromPoints(core.WithSuppressHeader(ctx), cfg, h.mgr, points, origin)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("series build failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// loadPoints reads inline JSON points or a server-side file, preferring inline points.
func loadPoints(ctx context.Context, inline, input string) ([]schema.Point, string, error) {
	switch {
	case inline != "":
		points, err := source.DecodeJSON([]byte(inline))
		if err != nil {
			return nil, "", fmt.Errorf("invalid points: %w", err)
		}
		return points, "mcp request", nil
	case input != "":
		opts := source.Options{Format: contract.InferSourceFormat(input, ""), Path: input}
		points, err := source.Load(ctx, opts)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load %s: %w", input, err)
		}
		return points, input, nil
	default:
		return nil, "", fmt.Errorf("either points or input is required")
	}
}

// modesCatalog lists every closed enumeration a series configuration accepts.
type modesCatalog struct {
	Granularities     []schema.Granularity      `json:"granularities"`
	IntervalUnits     []schema.IntervalUnit     `json:"interval_units"`
	AggregationModes  []schema.AggregationMode  `json:"aggregation_modes"`
	AccumulationModes []schema.AccumulationMode `json:"accumulation_modes"`
}

func (h *toolHandler) handleListModes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	catalog := modesCatalog{
		Granularities:     schema.AllGranularities,
		IntervalUnits:     []schema.IntervalUnit{schema.DayUnit, schema.WeekUnit, schema.MonthUnit, schema.YearUnit},
		AggregationModes:  schema.AllAggregationModes,
		AccumulationModes: schema.AllAccumulationModes,
	}
	jsonData, _ := json.MarshalIndent(catalog, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
