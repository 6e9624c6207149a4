package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/teamsmell/schema"
)

// BeginRun implements the MetricsStore interface.
func (s *Store) BeginRun(startTime time.Time, repository string, configParams map[string]any) (int64, error) {
	if s.disabled() {
		return 0, nil
	}
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	table := quoteTableName(runsTable, s.backend)
	var runID int64
	switch s.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (repository, start_time, config_params) VALUES ($1, $2, $3) RETURNING run_id`, table)
		err = s.db.QueryRow(query, repository, formatTime(startTime, s.backend), string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (repository, start_time, config_params) VALUES (?, ?, ?)`, table)
		var result sql.Result
		result, err = s.db.Exec(query, repository, formatTime(startTime, s.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordBatch implements the MetricsStore interface. The batch row and its
// metric rows are written in one transaction.
func (s *Store) RecordBatch(runID int64, batch schema.BatchResult) error {
	if s.disabled() {
		return nil
	}
	coreDevs, err := json.Marshal(nonNil(batch.CoreDevs))
	if err != nil {
		return fmt.Errorf("failed to marshal core developers: %w", err)
	}
	smells, err := json.Marshal(nonNil(batch.Smells))
	if err != nil {
		return fmt.Errorf("failed to marshal smells: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	batchQuery := rebind(fmt.Sprintf(`INSERT INTO %s (run_id, batch_index, batch_start, first_commit, last_commit, core_devs, smells)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, quoteTableName(batchesTable, s.backend)), s.backend)
	if _, err := tx.Exec(batchQuery,
		runID, batch.Index,
		formatTime(batch.Start, s.backend),
		formatNullTime(batch.FirstCommitDate, s.backend),
		formatNullTime(batch.LastCommitDate, s.backend),
		string(coreDevs), string(smells),
	); err != nil {
		return fmt.Errorf("failed to insert batch %d of run %d: %w", batch.Index, runID, err)
	}

	metricQuery := rebind(fmt.Sprintf(`INSERT INTO %s (run_id, batch_index, name, value) VALUES (?, ?, ?, ?)`,
		quoteTableName(batchMetricsTable, s.backend)), s.backend)
	stmt, err := tx.Prepare(metricQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare metric insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, m := range batch.Metrics {
		if _, err := stmt.Exec(runID, batch.Index, m.Name, m.Value); err != nil {
			return fmt.Errorf("failed to insert metric %s of batch %d: %w", m.Name, batch.Index, err)
		}
	}
	return tx.Commit()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// EndRun implements the MetricsStore interface.
func (s *Store) EndRun(runID int64, endTime time.Time, batchCount int) error {
	if s.disabled() {
		return nil
	}
	table := quoteTableName(runsTable, s.backend)

	var start dbTime
	query := rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, table), s.backend)
	if err := s.db.QueryRow(query, runID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	durationMs := endTime.Sub(start.Time).Milliseconds()

	update := rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, batch_count = ? WHERE run_id = ?`, table), s.backend)
	if _, err := s.db.Exec(update, formatTime(endTime, s.backend), durationMs, batchCount, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}
