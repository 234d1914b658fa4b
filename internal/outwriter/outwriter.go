// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/tally/internal/contract"
	"github.com/huangsam/tally/internal/parquet"
	"github.com/huangsam/tally/schema"
)

// PrintSeriesResults outputs a built series, dispatching based on the output format configured.
func PrintSeriesResults(result schema.SeriesResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON series"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForSeries(w, result, fmtFloat)
		}, "Wrote CSV series"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteSeriesParquet(result.Records, result.Fields, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		logWrote("Wrote Parquet series", cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSeriesTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// WriteSeriesResults renders a series to w in the configured format.
// Parquet needs a seekable file, so it is only reachable through PrintSeriesResults.
func WriteSeriesResults(w io.Writer, result schema.SeriesResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, result)
	case schema.CSVOut:
		return writeCSVResultsForSeries(w, result, fmtFloat)
	case schema.ParquetOut:
		return fmt.Errorf("parquet output requires --output-file")
	default:
		return writeSeriesTable(w, result, cfg, fmtFloat, duration)
	}
}
