package cmd

import (
	"github.com/huangsam/tally/core"
	"github.com/huangsam/tally/internal/contract"
	"github.com/spf13/cobra"
)

// seriesCmd builds one series from a file, standard input or a database query.
var seriesCmd = &cobra.Command{
	Use:   "series [input]",
	Short: "Bucket points into ticks and aggregate one value per field",
	Long: `Build an evenly spaced time series from timestamped points.

The window ends at the current tick (or --now) and reaches back --interval-length
units of --interval-unit. Every tick in the window is emitted, even when no point
falls into it, so the output has no gaps.

Points are read from the positional argument (JSON, CSV, YAML or Parquet, optionally
gzip, bzip2 or xz compressed), from standard input when it is omitted or "-", or from
a database with --source-backend and --query.

Examples:
  # Daily page views for the last 30 days
  tally series visits.json --fields views

  # Hourly running total of signups over the last 2 days
  tally series events.csv -f signups -g hour -n 2 --accumulation total

  # Monthly peak of a gauge, keeping the latest reading for storage
  tally series metrics.yaml -f cpu -g month --interval-unit year -n 1 -a max:last

  # Read from PostgreSQL and write JSON
  tally series --source-backend postgresql --source-db-connect "$PG" \
    --query "SELECT created_at AS timestamp, amount FROM orders" -f amount --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSeries(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build series", err)
		}
	},
}
