package store

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/internal/parquet"
	"github.com/huangsam/teamsmell/schema"
)

// ExportParquet writes every stored run to <prefix>.runs.parquet and every
// metric row to <prefix>.batch_metrics.parquet.
func ExportParquet(st contract.MetricsStore, prefix string, out io.Writer) error {
	if prefix == "" {
		return errors.New("--output-file is required for export command")
	}
	status, err := st.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no stored runs found to export")
	}

	runs, err := st.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	metrics, err := st.GetBatchMetrics(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve batch metrics: %w", err)
	}

	runsFile := prefix + ".runs.parquet"
	if err := parquet.WriteRuns(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %s runs to: %s\n", humanize.Comma(int64(len(runs))), runsFile)

	metricsFile := prefix + ".batch_metrics.parquet"
	if err := parquet.WriteBatchMetrics(parquet.ConvertBatchMetricRecords(metrics), metricsFile); err != nil {
		return fmt.Errorf("failed to write batch metrics: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %s metric rows to: %s\n", humanize.Comma(int64(len(metrics))), metricsFile)
	return nil
}

// PrintStatus writes a human-readable store summary.
func PrintStatus(out io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(out, "Store Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(out, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(out, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(out, "Last Run ID: %d\n", status.LastRunID)
		_, _ = fmt.Fprintf(out, "Last Run: %s (%s)\n", status.LastRunTime.Format("2006-01-02 15:04:05"), humanize.Time(status.LastRunTime))
		_, _ = fmt.Fprintf(out, "Oldest Run: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(out, "Total Batches: %d\n", status.TotalBatches)
	}
	_, _ = fmt.Fprintln(out, "Table Sizes:")
	for _, table := range Tables {
		if size, ok := status.TableSizes[table]; ok {
			_, _ = fmt.Fprintf(out, "  %s: %s rows\n", table, humanize.Comma(size))
		}
	}
}
