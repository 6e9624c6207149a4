// Package parquet exports stored teamsmell runs and batch metric rows to Parquet
// files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/teamsmell/schema"
	"github.com/parquet-go/parquet-go"
)

// Run is one analysis run. It maps to the teamsmell_runs table.
type Run struct {
	RunID      int64  `parquet:"run_id,snappy"`
	Repository string `parquet:"repository,snappy"`

	// Timestamps keep nanosecond precision.
	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	DurationMs *int32 `parquet:"duration_ms,optional,snappy"`
	BatchCount int32  `parquet:"batch_count,snappy"`

	// ConfigParams is the JSON-encoded configuration of the run
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// BatchMetric is one name/value row of a batch. It maps to the
// teamsmell_batch_metrics table joined with its batch start date.
type BatchMetric struct {
	RunID      int64     `parquet:"run_id,snappy"`
	BatchIndex int32     `parquet:"batch_index,snappy"`
	BatchStart time.Time `parquet:"batch_start,snappy"`
	Name       string    `parquet:"name,dict,snappy"`
	Value      float64   `parquet:"value,snappy"`
}

// ConvertRunRecords maps stored runs to Parquet rows.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	out := make([]Run, len(records))
	for i, r := range records {
		out[i] = Run{
			RunID:        r.RunID,
			Repository:   r.Repository,
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			DurationMs:   r.DurationMs,
			BatchCount:   r.BatchCount,
			ConfigParams: r.ConfigParams,
		}
	}
	return out
}

// ConvertBatchMetricRecords maps stored metric rows to Parquet rows.
func ConvertBatchMetricRecords(records []schema.BatchMetricRecord) []BatchMetric {
	out := make([]BatchMetric, len(records))
	for i, r := range records {
		out[i] = BatchMetric{
			RunID:      r.RunID,
			BatchIndex: r.BatchIndex,
			BatchStart: r.BatchStart,
			Name:       r.Name,
			Value:      r.Value,
		}
	}
	return out
}

// Write writes rows to a Parquet file whose schema is inferred from T's struct tags.
func Write[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// WriteRuns writes runs to outputPath.
func WriteRuns(data []Run, outputPath string) error {
	return Write(data, outputPath)
}

// WriteBatchMetrics writes batch metric rows to outputPath.
func WriteBatchMetrics(data []BatchMetric, outputPath string) error {
	return Write(data, outputPath)
}

// BatchMetricsFromResults flattens in-memory batch results into Parquet rows.
func BatchMetricsFromResults(runID int64, batches []schema.BatchResult) []BatchMetric {
	var out []BatchMetric
	for _, b := range batches {
		for _, m := range b.Metrics {
			out = append(out, BatchMetric{
				RunID:      runID,
				BatchIndex: int32(b.Index),
				BatchStart: b.Start,
				Name:       m.Name,
				Value:      m.Value,
			})
		}
	}
	return out
}
