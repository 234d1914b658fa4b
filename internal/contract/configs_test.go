package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/tally/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// validInput returns a raw input that passes validation; tests tweak one field at a time.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Input:          "points.json",
		Fields:         "visits",
		Granularity:    "day",
		IntervalUnit:   "day",
		IntervalLength: 7,
		Aggregation:    "sum",
		Precision:      2,
		Output:         "text",
		Color:          "no",
		CacheBackend:   "none",
	}
}

func TestProcessAndValidateCacheSize(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		expected int
	}{
		{name: "unset uses default", size: 0, expected: DefaultCacheSize},
		{name: "small raised to minimum", size: 8, expected: MinCacheSize},
		{name: "minimum kept", size: MinCacheSize, expected: MinCacheSize},
		{name: "large kept", size: 5000, expected: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.CacheSize = tt.size
			cfg := &Config{}
			require.NoError(t, ProcessAndValidate(cfg, in))
			assert.Equal(t, tt.expected, cfg.CacheSize)
		})
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "invalid granularity", mutate: func(in *ConfigRawInput) { in.Granularity = "minute" }, expectError: true},
		{name: "invalid interval unit", mutate: func(in *ConfigRawInput) { in.IntervalUnit = "decade" }, expectError: true},
		{name: "zero interval length", mutate: func(in *ConfigRawInput) { in.IntervalLength = 0 }, expectError: true},
		{name: "invalid aggregation", mutate: func(in *ConfigRawInput) { in.Aggregation = "median" }, expectError: true},
		{name: "pair aggregation", mutate: func(in *ConfigRawInput) { in.Aggregation = "last:max" }},
		{name: "invalid storage aggregation", mutate: func(in *ConfigRawInput) { in.StorageAggregation = "avg" }, expectError: true},
		{name: "none accumulation", mutate: func(in *ConfigRawInput) { in.Accumulation = "none" }},
		{name: "invalid accumulation", mutate: func(in *ConfigRawInput) { in.Accumulation = "rolling" }, expectError: true},
		{name: "missing fields", mutate: func(in *ConfigRawInput) { in.Fields = " , " }, expectError: true},
		{name: "reserved field", mutate: func(in *ConfigRawInput) { in.Fields = "timestamp" }, expectError: true},
		{name: "invalid locale", mutate: func(in *ConfigRawInput) { in.Locale = "not a locale!" }, expectError: true},
		{name: "invalid now", mutate: func(in *ConfigRawInput) { in.Now = "last tuesday" }, expectError: true},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet without file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{name: "precision too high", mutate: func(in *ConfigRawInput) { in.Precision = MaxPrecision + 1 }, expectError: true},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "sometimes" }, expectError: true},
		{name: "invalid cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: true},
		{name: "clickhouse cannot cache", mutate: func(in *ConfigRawInput) { in.CacheBackend = "clickhouse" }, expectError: true},
		{name: "invalid cache ttl", mutate: func(in *ConfigRawInput) { in.CacheTTL = "forever" }, expectError: true},
		{name: "invalid input format", mutate: func(in *ConfigRawInput) { in.InputFormat = "xml" }, expectError: true},
		{
			name: "sql source without query",
			mutate: func(in *ConfigRawInput) {
				in.SourceBackend = "sqlite"
				in.Input = "points.db"
			},
			expectError: true,
		},
		{
			name: "sql source with query",
			mutate: func(in *ConfigRawInput) {
				in.SourceBackend = "sqlite"
				in.Input = "points.db"
				in.Query = "SELECT * FROM points"
			},
		},
		{
			name: "mysql source with bad dsn",
			mutate: func(in *ConfigRawInput) {
				in.SourceBackend = "mysql"
				in.SourceDBConnect = "user:pass@localhost/db"
				in.Query = "SELECT * FROM points"
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, in)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidateResolvedValues(t *testing.T) {
	in := validInput()
	in.Fields = "visits, sales,visits"
	in.Granularity = "HOUR"
	in.Aggregation = "last:max"
	in.Accumulation = "current"
	in.Historical = true
	in.Locale = "de-DE"
	in.Now = "2024-06-15T10:30:00Z"
	in.Input = "points.csv"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, in))

	assert.Equal(t, []string{"visits", "sales"}, cfg.Fields)
	assert.Equal(t, schema.HourGranularity, cfg.Series.Granularity)
	assert.Equal(t, schema.PairAggregation(schema.LastAgg, schema.MaxAgg), cfg.Series.Aggregation)
	assert.Equal(t, schema.CurrentAccumulation, cfg.Series.Accumulation)
	assert.True(t, cfg.Series.Historical)
	assert.Equal(t, language.MustParse("de-DE"), cfg.Locale)
	assert.True(t, cfg.Now.Equal(time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)))
	assert.Equal(t, schema.CSVSource, cfg.SourceFormat)
	assert.Equal(t, DefaultCacheSize, cfg.CacheSize)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.False(t, cfg.UseColors)
}

func TestProcessAndValidateDefaults(t *testing.T) {
	in := validInput()
	in.Color = ""

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, in))

	assert.True(t, cfg.Now.IsZero(), "an unset reference time follows the wall clock")
	assert.Equal(t, language.AmericanEnglish, cfg.Locale)
	assert.Equal(t, schema.NoAccumulation, cfg.Series.Accumulation)
	assert.True(t, cfg.UseColors)
}

func TestStorageAggregationOverridesPair(t *testing.T) {
	in := validInput()
	in.Aggregation = "last"
	in.StorageAggregation = "max"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, in))
	assert.Equal(t, schema.PairAggregation(schema.LastAgg, schema.MaxAgg), cfg.Series.Aggregation)
}

func TestSQLiteStoresMustNotShareFile(t *testing.T) {
	shared := filepath.Join(t.TempDir(), "shared.db")

	in := validInput()
	in.CacheBackend = "sqlite"
	in.CacheDBConnect = shared
	in.RunBackend = "sqlite"
	in.RunDBConnect = shared

	err := ProcessAndValidate(&Config{}, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different SQLite database files")
}

func TestParseAggregation(t *testing.T) {
	tests := []struct {
		input       string
		expected    schema.Aggregation
		expectError bool
	}{
		{"sum", schema.SingleAggregation(schema.SumAgg), false},
		{" MAX ", schema.SingleAggregation(schema.MaxAgg), false},
		{"last:max", schema.PairAggregation(schema.LastAgg, schema.MaxAgg), false},
		{"first:count", schema.PairAggregation(schema.FirstAgg, schema.CountAgg), false},
		{"", schema.Aggregation{}, true},
		{"avg", schema.Aggregation{}, true},
		{"sum:avg", schema.Aggregation{}, true},
		{"sum:max:last", schema.Aggregation{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAggregation(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestInferSourceFormat(t *testing.T) {
	assert.Equal(t, schema.JSONSource, InferSourceFormat("-", ""))
	assert.Equal(t, schema.JSONSource, InferSourceFormat("points.json", ""))
	assert.Equal(t, schema.CSVSource, InferSourceFormat("points.CSV", ""))
	assert.Equal(t, schema.YAMLSource, InferSourceFormat("points.yml", ""))
	assert.Equal(t, schema.ParquetSource, InferSourceFormat("points.parquet", ""))
	assert.Equal(t, schema.SQLSource, InferSourceFormat("points.csv", schema.MySQLBackend))
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		connStr     string
		expectError bool
	}{
		{"sqlite needs nothing", schema.SQLiteBackend, "", false},
		{"none needs nothing", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/tally", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/tally", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 user=u password=p dbname=tally", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"clickhouse valid", schema.ClickHouseBackend, "clickhouse://default:@localhost:9000/default", false},
		{"clickhouse wrong scheme", schema.ClickHouseBackend, "tcp://localhost:9000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Fields: []string{"visits"}, Precision: 2}
	clone := cfg.Clone()
	clone.Fields[0] = "sales"
	clone.Precision = 4

	assert.Equal(t, "visits", cfg.Fields[0])
	assert.Equal(t, 2, cfg.Precision)
}

func TestSeriesParams(t *testing.T) {
	cfg := &Config{
		SourceFormat: schema.JSONSource,
		InputPath:    "points.json",
		Fields:       []string{"visits", "sales"},
		Series: schema.SeriesConfig{
			Granularity:    schema.DayGranularity,
			IntervalUnit:   schema.WeekUnit,
			IntervalLength: 2,
			Aggregation:    schema.PairAggregation(schema.LastAgg, schema.MaxAgg),
		},
		Locale: language.AmericanEnglish,
	}

	params := cfg.SeriesParams()
	assert.Equal(t, "visits,sales", params["fields"])
	assert.Equal(t, "last:max", params["aggregation"])
	assert.Equal(t, "points.json", params["input"])
	assert.NotContains(t, params, "now")
}

func TestSeriesRawInputRoundTrip(t *testing.T) {
	wall := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	in := validInput()
	in.Fields = "visits,orders"
	in.Aggregation = "last:max"
	in.Accumulation = "total"
	in.Historical = true
	in.Locale = "de"
	in.Now = "2024-06-01T08:30:00.5Z"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, in))

	again := &Config{}
	require.NoError(t, ProcessSeriesInputs(again, cfg.SeriesRawInput(), wall))
	assert.Equal(t, cfg.Fields, again.Fields)
	assert.Equal(t, cfg.Series, again.Series)
	assert.Equal(t, cfg.Locale, again.Locale)
	assert.True(t, cfg.Now.Equal(again.Now))

	// Overrides land on top of the resolved values
	raw := cfg.SeriesRawInput()
	raw.Granularity = "hour"
	raw.Now = ""
	require.NoError(t, ProcessSeriesInputs(again, raw, wall))
	assert.Equal(t, schema.HourGranularity, again.Series.Granularity)
	assert.True(t, again.Now.IsZero())
	assert.Equal(t, schema.PairAggregation(schema.LastAgg, schema.MaxAgg), again.Series.Aggregation)
}
