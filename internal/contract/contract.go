// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/tally/schema"
	"golang.org/x/text/language"
)

// LabelFormatter renders one tick as a chart label. Implementations must be
// deterministic for a given (instant, granularity, locale).
type LabelFormatter func(t time.Time, g schema.Granularity, locale language.Tag) string

// PointSource loads the raw points a series is built from.
// This allows the core logic to be tested without files or databases.
type PointSource interface {
	// Points returns every point of the source in its stored order.
	Points(ctx context.Context) ([]schema.Point, error)

	// Describe returns a short human-readable name for logs and run history.
	Describe() string
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetSeriesStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking series builds and their output.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (string, error)

	// RecordSeries stores every value of the built series under the run
	RecordSeries(runID string, records []schema.OutputRecord) error

	// EndRun updates the run with completion data
	EndRun(runID string, endTime time.Time, tickCount int) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllRunValues returns every recorded value ordered by run, tick and field
	GetAllRunValues() ([]schema.RunValueRecord, error)

	// Close closes the underlying connection
	Close() error
}
