package schema

import "time"

// BatchResult is the complete view of one analyzed batch.
type BatchResult struct {
	Index           int         `json:"index"`
	Start           time.Time   `json:"start"`
	FirstCommitDate time.Time   `json:"first_commit_date"`
	LastCommitDate  time.Time   `json:"last_commit_date"`
	CoreDevs        []string    `json:"core_devs"`
	Smells          []SmellCode `json:"smells"`
	Metrics         []MetricRow `json:"metrics"`
}

// Metric returns the value of the named metric and whether it is present.
func (b BatchResult) Metric(name string) (float64, bool) {
	for _, m := range b.Metrics {
		if m.Name == name {
			return m.Value, true
		}
	}
	return 0, false
}

// RunResult is everything a single analysis run produced.
type RunResult struct {
	Owner      string        `json:"owner"`
	Repository string        `json:"repository"`
	RunID      int64         `json:"run_id,omitempty"`
	Batches    []BatchResult `json:"batches"`
}
