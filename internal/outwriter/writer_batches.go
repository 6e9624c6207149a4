package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/internal/parquet"
	"github.com/huangsam/teamsmell/schema"
)

// writeRunJSON writes the run with every batch, smell and metric row.
func writeRunJSON(w io.Writer, res *schema.RunResult) error {
	return writeJSON(w, res)
}

// writeRunCSV writes one row per batch metric, followed by one row per smell.
func writeRunCSV(w io.Writer, res *schema.RunResult, fmtFloat func(float64) string) error {
	header := []string{"batch", "batch_start", "name", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, b := range res.Batches {
			idx := strconv.Itoa(b.Index)
			start := b.Start.Format(contract.DateTimeFormat)
			for _, m := range b.Metrics {
				if err := cw.Write([]string{idx, start, m.Name, fmtFloat(m.Value)}); err != nil {
					return err
				}
			}
			if len(b.CoreDevs) > 0 {
				if err := cw.Write([]string{idx, start, "CoreDevs", strings.Join(b.CoreDevs, "|")}); err != nil {
					return err
				}
			}
			for _, s := range b.Smells {
				if err := cw.Write([]string{idx, start, "Smell", string(s)}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeRunParquet writes the metric rows of a run to path as a Parquet file.
func writeRunParquet(res *schema.RunResult, path string) error {
	if path == "" {
		return errors.New("parquet output requires an output file")
	}
	if err := parquet.WriteBatchMetrics(parquet.BatchMetricsFromResults(res.RunID, res.Batches), path); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", path)
	return nil
}
