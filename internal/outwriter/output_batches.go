package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// smellLabels renders the smells of a batch for the table.
func smellLabels(smells []schema.SmellCode, useColors bool) string {
	if len(smells) == 0 {
		if useColors {
			return contract.NoSmellColor.Sprint("none")
		}
		return "none"
	}
	labels := make([]string, len(smells))
	for i, s := range smells {
		if useColors {
			labels[i] = contract.GetColorSmellLabel(s)
		} else {
			labels[i] = contract.GetPlainSmellLabel(s)
		}
	}
	return strings.Join(labels, ", ")
}

// writeRunTable writes a summary table with one row per batch followed by the
// full metric table of every batch.
func writeRunTable(w io.Writer, res *schema.RunResult, cfg *contract.Config, fmtValue func(float64) string, duration time.Duration) error {
	summary := tablewriter.NewWriter(w)
	summary.Header([]string{"Batch", "Start", "Commits", "Authors", "Core Devs", "Smells"})
	summary.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})

	totalCommits := 0.0
	var data [][]string
	for _, b := range res.Batches {
		commits, _ := b.Metric("CommitCount")
		authors, _ := b.Metric("AuthorCount")
		totalCommits += commits
		data = append(data, []string{
			strconv.Itoa(b.Index),
			b.Start.Format(contract.DateFormat),
			fmtValue(commits),
			fmtValue(authors),
			strconv.Itoa(len(b.CoreDevs)),
			smellLabels(b.Smells, cfg.UseColors),
		})
	}
	if err := summary.Bulk(data); err != nil {
		return err
	}
	if err := summary.Render(); err != nil {
		return err
	}

	nameWidth := getMaxNameWidth(cfg)
	for _, b := range res.Batches {
		if _, err := fmt.Fprintf(w, "\n%s\n", contract.HeaderColor.Sprintf("Batch %d (%s)", b.Index, b.Start.Format(contract.DateFormat))); err != nil {
			return err
		}
		if len(b.CoreDevs) > 0 {
			if _, err := fmt.Fprintf(w, "Core developers: %s\n", strings.Join(b.CoreDevs, ", ")); err != nil {
				return err
			}
		}
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Metric", "Value"})
		table.Configure(func(c *tablewriter.Config) {
			c.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight}
		})
		rows := make([][]string, len(b.Metrics))
		for i, m := range b.Metrics {
			rows[i] = []string{contract.TruncateText(m.Name, nameWidth), fmtValue(m.Value)}
		}
		if err := table.Bulk(rows); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nAnalyzed %s commits of %s/%s in %d batches in %v with %d workers. Store backend: %s\n",
		humanize.Comma(int64(totalCommits)), res.Owner, res.Repository, len(res.Batches),
		duration.Round(time.Millisecond), cfg.Workers, cfg.StoreBackend)
	return err
}
