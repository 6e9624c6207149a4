package core

import (
	"time"

	"github.com/huangsam/teamsmell/schema"
)

// beginRun registers the run with the metrics store. Store failures are
// logged and disable recording for the run.
func (a *analysis) beginRun(start time.Time) int64 {
	if a.deps.Store == nil {
		return 0
	}
	params := map[string]any{
		"repository_url": a.cfg.RepositoryURL,
		"batch":          a.cfg.Batch.String(),
		"max_distance":   a.cfg.MaxDistance,
		"workers":        a.cfg.Workers,
		"git_backend":    string(a.cfg.GitBackend),
		"remote":         a.deps.Source != nil,
	}
	if !a.cfg.StartDate.IsZero() {
		params["start_date"] = a.cfg.StartDate.Format(time.DateOnly)
	}
	runID, err := a.deps.Store.BeginRun(start, a.cfg.Owner+"/"+a.cfg.Name, params)
	if err != nil {
		a.log.Warnw("Run tracking initialization failed", "error", err)
		return 0
	}
	return runID
}

// record writes every batch to the metrics store.
func (a *analysis) record(runID int64, batches []schema.BatchResult) {
	for _, b := range batches {
		a.deps.Recorder.BatchAnalyzed()
		if runID <= 0 {
			continue
		}
		if err := a.deps.Store.RecordBatch(runID, b); err != nil {
			a.log.Warnw("Failed to record batch", "run_id", runID, "batch", b.Index, "error", err)
		}
	}
}

func (a *analysis) endRun(runID int64, batches int) {
	if runID <= 0 {
		return
	}
	if err := a.deps.Store.EndRun(runID, a.deps.Now(), batches); err != nil {
		a.log.Warnw("Failed to finalize run tracking", "run_id", runID, "error", err)
	}
}
