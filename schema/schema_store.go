package schema

import "time"

// RunRecord represents a row from the tally_runs table.
type RunRecord struct {
	RunID        string
	StartTime    time.Time
	EndTime      *time.Time
	DurationMs   *int32
	TickCount    int32
	ConfigParams *string
}

// RunValueRecord represents a row from the tally_run_values table:
// one field value of one tick in one run.
type RunValueRecord struct {
	RunID     string
	TickIndex int32
	Label     string
	Field     string
	Value     float64
}
