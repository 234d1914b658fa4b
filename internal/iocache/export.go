package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/tally/internal/contract"
	"github.com/huangsam/tally/internal/parquet"
)

// ExecuteRunExport performs the actual export of run history to Parquet files.
func ExecuteRunExport(store contract.RunStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not configured. Set --run-backend")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total value records: %d\n", status.TableSizes[runValuesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	values, err := store.GetAllRunValues()
	if err != nil {
		return fmt.Errorf("failed to retrieve run values: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetValues := parquet.ConvertRunValueRecords(values)

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteSeriesRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	valuesFile := outputFile + ".run_values.parquet"
	if err := parquet.WriteSeriesValuesParquet(parquetValues, valuesFile); err != nil {
		return fmt.Errorf("failed to write run values: %w", err)
	}
	fmt.Printf("Exported %d value records to: %s\n", len(parquetValues), valuesFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	return nil
}
