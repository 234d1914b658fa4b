package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/tally/internal/contract"
	"github.com/huangsam/tally/schema"
)

// Table names for run tracking.
const (
	runsTable      = "tally_runs"
	runValuesTable = "tally_run_values"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore opens the run store and migrates it to the latest schema.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (*RunStoreImpl, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetRunsDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := migrateRunsUp(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

func (rs *RunStoreImpl) table(name string) string {
	return quoteTableName(name, rs.backend)
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (string, error) {
	if rs.disabled() {
		return "", nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config params: %w", err)
	}

	runID := uuid.New().String()
	query := rebind(fmt.Sprintf(`INSERT INTO %s (run_id, start_time, tick_count, config_params) VALUES (?, ?, 0, ?)`, rs.table(runsTable)), rs.backend)
	if _, err := rs.db.Exec(query, runID, formatTime(startTime, rs.backend), string(configJSON)); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordSeries stores every (tick, field) value of a built series in one transaction.
func (rs *RunStoreImpl) RecordSeries(runID string, records []schema.OutputRecord) (err error) {
	if rs.disabled() || len(records) == 0 {
		return nil
	}

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := rebind(fmt.Sprintf(`INSERT INTO %s (run_id, tick_index, label, field, value) VALUES (?, ?, ?, ?, ?)`, rs.table(runValuesTable)), rs.backend)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare value insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, rec := range records {
		for _, field := range rec.FieldNames() {
			if _, err = stmt.Exec(runID, i, rec.Timestamp, field, rec.Values[field]); err != nil {
				return fmt.Errorf("failed to insert value %s at tick %d: %w", field, i, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run values: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID string, endTime time.Time, tickCount int) error {
	if rs.disabled() {
		return nil
	}

	var start timeColumn
	query := rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, rs.table(runsTable)), rs.backend)
	if err := rs.db.QueryRow(query, runID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}

	durationMs := endTime.Sub(start.Time).Milliseconds()
	update := rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, tick_count = ? WHERE run_id = ?`, rs.table(runsTable)), rs.backend)
	if _, err := rs.db.Exec(update, formatTime(endTime, rs.backend), durationMs, tickCount, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.disabled() {
		return status, nil
	}

	version, err := runSchemaVersion(rs.db, rs.backend)
	if err != nil {
		return status, fmt.Errorf("failed to get schema version: %w", err)
	}
	status.SchemaVersion = version

	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", rs.table(runsTable))).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest timeColumn
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC LIMIT 1", rs.table(runsTable))
		if err := rs.db.QueryRow(lastQuery).Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = last.Time

		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", rs.table(runsTable))
		if err := rs.db.QueryRow(oldestQuery).Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest.Time

		ticksQuery := fmt.Sprintf("SELECT COALESCE(SUM(tick_count), 0) FROM %s", rs.table(runsTable))
		if err := rs.db.QueryRow(ticksQuery).Scan(&status.TotalTicks); err != nil {
			return status, fmt.Errorf("failed to get total ticks: %w", err)
		}
	}

	for _, table := range []string{runsTable, runValuesTable} {
		var count int64
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", rs.table(table))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store, oldest first.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, tick_count, config_params FROM %s ORDER BY start_time, run_id", rs.table(runsTable))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var start, end timeColumn
		if err := rows.Scan(&record.RunID, &start, &end, &record.DurationMs, &record.TickCount, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		record.StartTime = start.Time
		record.EndTime = end.ptr()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllRunValues retrieves all recorded values ordered by run, tick and field.
func (rs *RunStoreImpl) GetAllRunValues() ([]schema.RunValueRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, tick_index, label, field, value FROM %s ORDER BY run_id, tick_index, field", rs.table(runValuesTable))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query run values: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunValueRecord
	for rows.Next() {
		var record schema.RunValueRecord
		if err := rows.Scan(&record.RunID, &record.TickIndex, &record.Label, &record.Field, &record.Value); err != nil {
			return nil, fmt.Errorf("failed to scan run value: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run values: %w", err)
	}
	return results, nil
}
