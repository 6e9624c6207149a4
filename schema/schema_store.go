package schema

import "time"

// RunRecord represents a row from the teamsmell_runs table.
type RunRecord struct {
	RunID        int64      `json:"run_id"`
	Repository   string     `json:"repository"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	DurationMs   *int32     `json:"duration_ms,omitempty"`
	BatchCount   int32      `json:"batch_count"`
	ConfigParams *string    `json:"config_params,omitempty"`
}

// BatchMetricRecord represents a row from the teamsmell_batch_metrics table.
type BatchMetricRecord struct {
	RunID      int64     `json:"run_id"`
	BatchIndex int32     `json:"batch_index"`
	BatchStart time.Time `json:"batch_start"`
	Name       string    `json:"name"`
	Value      float64   `json:"value"`
}
