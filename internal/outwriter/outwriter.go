// Package outwriter renders analysis runs as text tables, JSON, CSV or Parquet.
package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/schema"
)

// WriteHeader prints the two-line summary of what is about to be analyzed.
func WriteHeader(w io.Writer, cfg *contract.Config) {
	_, _ = fmt.Fprintf(w, "🔎 Repo: %s/%s (Batch: %s)\n", cfg.Owner, cfg.Name, cfg.Batch)
	since := "first commit"
	if !cfg.StartDate.IsZero() {
		since = cfg.StartDate.Format(contract.DateFormat)
	}
	remote := "local history only"
	if cfg.HasRemote() {
		remote = "pull requests, issues and releases"
	}
	_, _ = fmt.Fprintf(w, "📅 Since: %s (%s)\n", since, remote)
}

// WriteRunResults outputs a run, dispatching on the configured output format.
func WriteRunResults(res *schema.RunResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtValue := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunJSON(w, res)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunCSV(w, res, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeRunParquet(res, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunTable(w, res, cfg, fmtValue, duration)
		}, "Wrote table")
	}
	return nil
}
