// Package core runs the community smell analysis of a repository. It batches
// the commit history, analyzes every stream against the shared batch grid and
// hands the metrics of each batch to the smell classifier and the metrics store.
package core

import (
	"context"
	"os"
	"time"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/internal/outwriter"
)

// ExecuteAnalysis runs the analysis and writes the report in the configured format.
// It serves as the main entry point for the 'analyze' command.
func ExecuteAnalysis(ctx context.Context, cfg *contract.Config, deps Deps) error {
	start := time.Now()
	outwriter.WriteHeader(os.Stderr, cfg)

	res, err := Run(ctx, cfg, deps)
	if err != nil {
		return err
	}
	if err := outwriter.WriteRunResults(res, cfg, time.Since(start)); err != nil {
		return err
	}
	if cfg.MetricsTextfile != "" {
		return deps.Recorder.WriteTextfile(cfg.MetricsTextfile)
	}
	return nil
}
