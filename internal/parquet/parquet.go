// Package parquet provides data structures and functions for moving tally
// series data in and out of Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/huangsam/tally/schema"
	"github.com/parquet-go/parquet-go"
)

// SeriesRun represents a single series build with metadata.
// This struct maps to the tally_runs database table.
type SeriesRun struct {
	// RunID is the unique identifier for this run
	RunID string `parquet:"run_id,snappy"`

	// StartTime is when the build began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the build completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the build in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TickCount is the number of ticks the series produced
	TickCount int32 `parquet:"tick_count,snappy"`

	// ConfigParams contains the JSON-encoded series configuration (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// SeriesValue is one emitted value of one field at one tick.
// This struct maps to the tally_run_values database table.
type SeriesValue struct {
	RunID     string  `parquet:"run_id,snappy"`
	TickIndex int32   `parquet:"tick_index,snappy"`
	Label     string  `parquet:"label,snappy"`
	Field     string  `parquet:"field,snappy"`
	Value     float64 `parquet:"value,snappy"`
}

// SeriesRow is the long-format row written by `tally series --output parquet`.
type SeriesRow struct {
	TickIndex int32   `parquet:"tick_index,snappy"`
	Label     string  `parquet:"label,snappy"`
	Field     string  `parquet:"field,snappy"`
	Value     float64 `parquet:"value,snappy"`
}

// writeParquet writes a slice of rows to a Parquet file with a schema inferred
// from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteSeriesRunsParquet writes a slice of SeriesRun structs to a Parquet file.
func WriteSeriesRunsParquet(data []SeriesRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSeriesValuesParquet writes a slice of SeriesValue structs to a Parquet file.
func WriteSeriesValuesParquet(data []SeriesValue, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSeriesParquet writes a built series in long format, one row per (tick, field).
func WriteSeriesParquet(records []schema.OutputRecord, fields []string, outputPath string) error {
	return writeParquet(ConvertOutputRecords(records, fields), outputPath)
}

// ConvertOutputRecords flattens output records into long-format rows in field order.
func ConvertOutputRecords(records []schema.OutputRecord, fields []string) []SeriesRow {
	rows := make([]SeriesRow, 0, len(records)*len(fields))
	for i, rec := range records {
		for _, f := range fields {
			rows = append(rows, SeriesRow{
				TickIndex: int32(i),
				Label:     rec.Timestamp,
				Field:     f,
				Value:     rec.Values[f],
			})
		}
	}
	return rows
}

// ConvertRunRecords converts schema.RunRecord to SeriesRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []SeriesRun {
	result := make([]SeriesRun, len(records))
	for i, record := range records {
		result[i] = SeriesRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.DurationMs,
			TickCount:     record.TickCount,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertRunValueRecords converts schema.RunValueRecord to SeriesValue for Parquet export.
func ConvertRunValueRecords(records []schema.RunValueRecord) []SeriesValue {
	result := make([]SeriesValue, len(records))
	for i, record := range records {
		result[i] = SeriesValue{
			RunID:     record.RunID,
			TickIndex: record.TickIndex,
			Label:     record.Label,
			Field:     record.Field,
			Value:     record.Value,
		}
	}
	return result
}

// readBatchSize is the number of rows pulled from the file per ReadRows call.
const readBatchSize = 256

// ReadPoints loads every row of a Parquet file as a point. Column names become
// point keys (nested columns are joined with "."), null values are left out and
// byte arrays are read as strings.
func ReadPoints(input io.ReaderAt) ([]schema.Point, error) {
	reader := parquet.NewReader(input)
	defer func() { _ = reader.Close() }()

	columns := reader.Schema().Columns()
	names := make([]string, len(columns))
	for i, path := range columns {
		names[i] = strings.Join(path, ".")
	}

	points := make([]schema.Point, 0, reader.NumRows())
	rows := make([]parquet.Row, readBatchSize)
	for {
		n, err := reader.ReadRows(rows)
		for _, row := range rows[:n] {
			points = append(points, rowToPoint(row, names))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return points, nil
}

// rowToPoint maps the leaf values of one row onto their column names.
func rowToPoint(row parquet.Row, names []string) schema.Point {
	p := make(schema.Point, len(names))
	for _, v := range row {
		col := v.Column()
		if v.IsNull() || col < 0 || col >= len(names) {
			continue
		}
		p[names[col]] = valueOf(v)
	}
	return p
}

// valueOf converts a physical Parquet value into a plain Go value.
func valueOf(v parquet.Value) any {
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return v.Int32()
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return v.Float()
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
