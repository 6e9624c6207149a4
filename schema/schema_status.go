package schema

import "time"

// StoreStatus represents the status of the metrics store.
type StoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalBatches  int              `json:"total_batches"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}
