package schema

// Custom string types for type safety.
type (
	// Granularity is the width of one bucket in a series.
	Granularity string

	// IntervalUnit is the calendar unit used to size the lookback window.
	IntervalUnit string

	// AggregationMode reduces the points of one bucket to a single value per field.
	AggregationMode string

	// AccumulationMode controls how a bucket's value combines with the carried value.
	AccumulationMode string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string

	// SourceFormat is the encoding of the input points.
	SourceFormat string
)

// All granularities supported.
const (
	HourGranularity  Granularity = "hour"
	DayGranularity   Granularity = "day" // default
	MonthGranularity Granularity = "month"
)

// All interval units supported.
const (
	YearUnit  IntervalUnit = "year"
	MonthUnit IntervalUnit = "month"
	WeekUnit  IntervalUnit = "week"
	DayUnit   IntervalUnit = "day" // default
)

// All aggregation modes supported.
const (
	FirstAgg AggregationMode = "first"
	LastAgg  AggregationMode = "last"
	SumAgg   AggregationMode = "sum" // default
	CountAgg AggregationMode = "count"
	MaxAgg   AggregationMode = "max"
)

// All accumulation modes supported. The empty value means no accumulation.
const (
	NoAccumulation      AccumulationMode = ""
	TotalAccumulation   AccumulationMode = "total"
	MaxAccumulation     AccumulationMode = "max"
	CurrentAccumulation AccumulationMode = "current"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	ClickHouseBackend DatabaseBackend = "clickhouse" // point sources only
	NoneBackend       DatabaseBackend = "none"
)

// All point source formats supported.
const (
	JSONSource    SourceFormat = "json" // default
	CSVSource     SourceFormat = "csv"
	YAMLSource    SourceFormat = "yaml"
	ParquetSource SourceFormat = "parquet"
	SQLSource     SourceFormat = "sql"
)

// ValidGranularities lists all valid granularities.
var ValidGranularities = map[Granularity]struct{}{
	HourGranularity:  {},
	DayGranularity:   {},
	MonthGranularity: {},
}

// ValidIntervalUnits lists all valid interval units.
var ValidIntervalUnits = map[IntervalUnit]struct{}{
	YearUnit:  {},
	MonthUnit: {},
	WeekUnit:  {},
	DayUnit:   {},
}

// ValidAggregationModes lists all valid aggregation modes.
var ValidAggregationModes = map[AggregationMode]struct{}{
	FirstAgg: {},
	LastAgg:  {},
	SumAgg:   {},
	CountAgg: {},
	MaxAgg:   {},
}

// ValidAccumulationModes lists all valid accumulation modes, including none.
var ValidAccumulationModes = map[AccumulationMode]struct{}{
	NoAccumulation:      {},
	TotalAccumulation:   {},
	MaxAccumulation:     {},
	CurrentAccumulation: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid backends for the cache and run stores.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSourceBackends lists all valid backends for SQL point sources.
var ValidSourceBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	ClickHouseBackend: {},
}

// ValidSourceFormats lists all valid point source formats.
var ValidSourceFormats = map[SourceFormat]struct{}{
	JSONSource:    {},
	CSVSource:     {},
	YAMLSource:    {},
	ParquetSource: {},
	SQLSource:     {},
}

// AllAggregationModes returns the aggregation modes in display order.
var AllAggregationModes = []AggregationMode{SumAgg, CountAgg, FirstAgg, LastAgg, MaxAgg}

// AllAccumulationModes returns the non-empty accumulation modes in display order.
var AllAccumulationModes = []AccumulationMode{TotalAccumulation, MaxAccumulation, CurrentAccumulation}

// AllGranularities returns the granularities from finest to coarsest.
var AllGranularities = []Granularity{HourGranularity, DayGranularity, MonthGranularity}
