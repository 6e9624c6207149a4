package core

import (
	"context"
	"fmt"

	"github.com/huangsam/teamsmell/core/result"
	"github.com/huangsam/teamsmell/internal/batch"
	"github.com/huangsam/teamsmell/schema"
)

// analyzeTags places the repository tags on the batch grid and records the tag
// count, FN and the commits each tag introduced.
func (a *analysis) analyzeTags(ctx context.Context, daysActive []int) error {
	tags, err := a.deps.Git.Tags(ctx, a.cfg.RepositoryPath)
	if err != nil {
		return fmt.Errorf("failed to read tags: %w", err)
	}
	grid := batch.NewGrid[schema.Tag](a.dates, a.cfg.Batch, a.now)
	for _, t := range tags {
		grid.Place(t.Date, t)
	}

	for idx, cell := range grid.Cells() {
		counts := make([]int, len(cell))
		for i, t := range cell {
			counts[i] = t.CommitCount
		}
		fn := a.ratio(float64(len(cell)), float64(daysActive[idx]), "Batch has no active days, FN set to 0", "batch", idx, "tags", len(cell))
		if err := runSteps([]func() error{
			func() error { return a.acc.AddValue(idx, result.TagCount, float64(len(cell))) },
			func() error { return a.acc.AddValue(idx, result.FN, fn*100) },
			func() error { return addStats(a.acc, idx, "TagCommitCount", counts) },
		}); err != nil {
			return err
		}
	}
	return nil
}
