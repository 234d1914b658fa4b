// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/tally/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the tally MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Tally Series Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: build_series ---
	s.AddTool(mcp.NewTool("build_series",
		mcp.WithDescription("Bucket timestamped points into evenly spaced ticks and aggregate one value per field and tick."),
		mcp.WithString("points", mcp.Description("JSON array of point objects, each with a 'timestamp' entry. Either points or input is required.")),
		mcp.WithString("input", mcp.Description("Path to a JSON, CSV, YAML or Parquet file of points readable by the server.")),
		mcp.WithString("fields", mcp.Description("Comma-separated field names to aggregate.")),
		mcp.WithString("granularity", mcp.Description("Bucket width."), mcp.Enum("hour", "day", "month")),
		mcp.WithString("interval_unit", mcp.Description("Unit of the lookback window."), mcp.Enum("year", "month", "week", "day")),
		mcp.WithNumber("interval_length", mcp.Description("Number of interval units to look back.")),
		mcp.WithString("aggregation", mcp.Description("Aggregation mode (sum, count, first, last, max) or 'display:storage'.")),
		mcp.WithString("storage_aggregation", mcp.Description("Aggregation used for the carried value; overrides the storage half of aggregation."), mcp.Enum("first", "last", "sum", "count", "max")),
		mcp.WithString("accumulation", mcp.Description("Carry-forward mode."), mcp.Enum("none", "total", "max", "current")),
		mcp.WithBoolean("historical", mcp.Description("Seed the carry from the latest value before the window.")),
		mcp.WithString("locale", mcp.Description("BCP 47 locale for tick labels (e.g. en-US, de).")),
		mcp.WithString("now", mcp.Description("Reference time as RFC 3339 or 'N units ago'. Defaults to the current time.")),
	), h.handleBuildSeries)

	// --- 2. Tool: list_modes ---
	s.AddTool(mcp.NewTool("list_modes",
		mcp.WithDescription("List the supported granularities, interval units, aggregation and accumulation modes."),
	), h.handleListModes)

	return s
}

// StartMCPServer starts the tally MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
