// Package cmd defines the command-line interface for tally.
package cmd

import (
	"github.com/huangsam/tally/internal/contract"
	"github.com/huangsam/tally/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("fields", "f", "", "Comma-separated list of fields to aggregate")
	rootCmd.PersistentFlags().StringP("granularity", "g", string(schema.DayGranularity), "Bucket width: hour or day or month")
	rootCmd.PersistentFlags().String("interval-unit", string(schema.DayUnit), "Lookback unit: year or month or week or day")
	rootCmd.PersistentFlags().IntP("interval-length", "n", contract.DefaultIntervalLength, "Number of interval units to look back")
	rootCmd.PersistentFlags().StringP("aggregation", "a", string(schema.SumAgg), "Aggregation: sum or count or first or last or max, or display:storage")
	rootCmd.PersistentFlags().String("storage-aggregation", "", "Storage aggregation override (same modes as --aggregation)")
	rootCmd.PersistentFlags().String("accumulation", "", "Carry-forward mode: total or max or current or none")
	rootCmd.PersistentFlags().Bool("historical", false, "Seed the carry from the latest value before the window")
	rootCmd.PersistentFlags().String("locale", "en-US", "BCP 47 locale for tick labels")
	rootCmd.PersistentFlags().String("now", "", "Reference time in ISO8601 or time ago (default: current time)")
	rootCmd.PersistentFlags().String("input-format", "", "Input format: json or csv or yaml or parquet or sql (default: from extension)")
	rootCmd.PersistentFlags().String("source-backend", "", "Read points from a database: sqlite or mysql or postgresql or clickhouse")
	rootCmd.PersistentFlags().String("source-db-connect", "", "Database connection string for the point source")
	rootCmd.PersistentFlags().String("query", "", "SQL query returning a timestamp column and the field columns")
	rootCmd.PersistentFlags().Bool("prefilter", false, "Drop points after the window before bucketing")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored values in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL, "How long a cached series stays valid (e.g., '12 hours')")
	rootCmd.PersistentFlags().Int("cache-size", contract.DefaultCacheSize, "Number of series kept in the in-memory cache tier (minimum 128)")
	rootCmd.PersistentFlags().String("run-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address the HTTP API listens on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
