package store

import (
	"encoding/json"
	"fmt"

	"github.com/huangsam/teamsmell/schema"
)

// GetStatus implements the MetricsStore interface.
func (s *Store) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}
	if s.disabled() {
		return status, nil
	}

	runs := quoteTableName(runsTable, s.backend)
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest dbTime
		row := s.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = last.Time

		row = s.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs))
		if err := row.Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest.Time
	}

	for _, table := range Tables {
		var count int64
		if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, s.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalBatches = int(status.TableSizes[batchesTable])
	return status, nil
}

// GetAllRuns implements the MetricsStore interface.
func (s *Store) GetAllRuns() ([]schema.RunRecord, error) {
	if s.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT run_id, repository, start_time, end_time, run_duration_ms, batch_count, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, s.backend))
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var (
			record     schema.RunRecord
			start, end dbTime
		)
		if err := rows.Scan(&record.RunID, &record.Repository, &start, &end, &record.DurationMs, &record.BatchCount, &record.ConfigParams); err != nil {
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

// GetBatchMetrics implements the MetricsStore interface.
func (s *Store) GetBatchMetrics(runID int64) ([]schema.BatchMetricRecord, error) {
	if s.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT m.run_id, m.batch_index, b.batch_start, m.name, m.value
		FROM %s m JOIN %s b ON b.run_id = m.run_id AND b.batch_index = m.batch_index`,
		quoteTableName(batchMetricsTable, s.backend), quoteTableName(batchesTable, s.backend))
	var args []any
	if runID > 0 {
		query += " WHERE m.run_id = ?"
		args = append(args, runID)
	}
	query = rebind(query+" ORDER BY m.run_id, m.batch_index, m.name", s.backend)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query batch metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.BatchMetricRecord
	for rows.Next() {
		var (
			record schema.BatchMetricRecord
			start  dbTime
		)
		if err := rows.Scan(&record.RunID, &record.BatchIndex, &start, &record.Name, &record.Value); err != nil {
			return nil, fmt.Errorf("failed to scan batch metric: %w", err)
		}
		record.BatchStart = start.Time
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batch metrics: %w", err)
	}
	return results, nil
}

// GetBatches returns the stored batches of a run with their metric rows.
func (s *Store) GetBatches(runID int64) ([]schema.BatchResult, error) {
	if s.disabled() {
		return nil, nil
	}
	query := rebind(fmt.Sprintf(`SELECT batch_index, batch_start, first_commit, last_commit, core_devs, smells
		FROM %s WHERE run_id = ? ORDER BY batch_index`, quoteTableName(batchesTable, s.backend)), s.backend)
	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.BatchResult
	for rows.Next() {
		var (
			b                   schema.BatchResult
			start, first, last  dbTime
			coreDevs, smellJSON string
		)
		if err := rows.Scan(&b.Index, &start, &first, &last, &coreDevs, &smellJSON); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		b.Start, b.FirstCommitDate, b.LastCommitDate = start.Time, first.Time, last.Time
		if err := json.Unmarshal([]byte(coreDevs), &b.CoreDevs); err != nil {
			return nil, fmt.Errorf("failed to decode core developers of batch %d: %w", b.Index, err)
		}
		if err := json.Unmarshal([]byte(smellJSON), &b.Smells); err != nil {
			return nil, fmt.Errorf("failed to decode smells of batch %d: %w", b.Index, err)
		}
		results = append(results, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batches: %w", err)
	}

	metrics, err := s.GetBatchMetrics(runID)
	if err != nil {
		return nil, err
	}
	for _, m := range metrics {
		if idx := int(m.BatchIndex); idx >= 0 && idx < len(results) && results[idx].Index == idx {
			results[idx].Metrics = append(results[idx].Metrics, schema.MetricRow{Name: m.Name, Value: m.Value})
		}
	}
	return results, nil
}
