package iocache

import (
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/tally/internal/contract"
	"github.com/huangsam/tally/schema"
)

// seriesTable is the name of the table for series caching.
const seriesTable = "series_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetCacheDBFilePath returns the path to the SQLite DB file for series caching.
func GetCacheDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run history.
func GetRunsDBFilePath() string {
	return contract.GetRunsDBFilePath()
}

// InitStores initializes the global cache manager with the series cache and run stores.
// cacheBackend can be empty to disable the series cache entirely.
// runBackend can be empty to disable run tracking.
// A positive memorySize puts an in-memory LRU of that many entries in front of the cache.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, memorySize int, runBackend schema.DatabaseBackend, runConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		series, err := newSeriesStore(cacheBackend, cacheConnStr, memorySize)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize series caching: %w", err)
			return
		}

		var runs contract.RunStore
		if runBackend != "" {
			runs, err = NewRunStore(runBackend, runConnStr)
			if err != nil {
				if series != nil {
					_ = series.Close()
				}
				initErr = fmt.Errorf("failed to initialize run store: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.series = series
		Manager.runs = runs
	})

	return initErr
}

// newSeriesStore opens the durable cache and optionally fronts it with memory.
func newSeriesStore(backend schema.DatabaseBackend, connStr string, memorySize int) (contract.CacheStore, error) {
	if backend == "" {
		return nil, nil
	}
	durable, err := NewCacheStore(seriesTable, backend, connStr)
	if err != nil {
		return nil, err
	}
	if memorySize <= 0 || backend == schema.NoneBackend {
		return durable, nil
	}
	front, err := NewMemoryCacheStore(durable, memorySize)
	if err != nil {
		_ = durable.Close()
		return nil, err
	}
	return front, nil
}

// CloseCaching should be called on application shutdown.
func CloseCaching() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.series != nil {
			_ = Manager.series.Close()
		}
		if Manager.runs != nil {
			_ = Manager.runs.Close()
		}
	})
}

// ClearCache clears the series cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearStore(backend, dbFilePath, connStr, seriesTable)
}

// ClearRuns clears the run history for the specified backend, including its
// migration bookkeeping so the next open starts from an empty schema.
func ClearRuns(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearStore(backend, dbFilePath, connStr, runValuesTable, runsTable, runMigrationsTable)
}

func clearStore(backend schema.DatabaseBackend, dbFilePath, connStr string, tables ...string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		for _, table := range tables {
			if err := clearSQLTable(backend, connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(backend schema.DatabaseBackend, connStr, tableName string) error {
	db, err := openDB(backend, connStr, "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}
