package core

import (
	"context"
	"fmt"

	"github.com/huangsam/teamsmell/core/result"
	"github.com/huangsam/teamsmell/internal/fetch"
	"github.com/huangsam/teamsmell/internal/stats"
)

// positiveMarkers asks the politeness oracle about a batch of comments. It is
// 0 without an oracle or without comments.
func (a *analysis) positiveMarkers(ctx context.Context, comments []string) (float64, error) {
	if a.deps.Politeness == nil || len(comments) == 0 {
		return 0, nil
	}
	return a.deps.Politeness.PositiveMarkers(ctx, comments)
}

// analyzePoliteness records ACCL, the mean of the mean pull request and issue
// comment lengths, and the relative positive counts of both streams.
func (a *analysis) analyzePoliteness(ctx context.Context, prs, issues []streamBatch) error {
	for idx := range a.dates {
		prLen := stats.Mean(fetch.CommentLengths(prs[idx].Comments))
		issueLen := stats.Mean(fetch.CommentLengths(issues[idx].Comments))

		rpcPR, err := a.positiveMarkers(ctx, prs[idx].Comments)
		if err != nil {
			return fmt.Errorf("politeness of PR batch %d: %w", idx, err)
		}
		rpcIssue, err := a.positiveMarkers(ctx, issues[idx].Comments)
		if err != nil {
			return fmt.Errorf("politeness of Issue batch %d: %w", idx, err)
		}
		if err := runSteps([]func() error{
			func() error { return a.acc.AddValue(idx, result.ACCL, (prLen+issueLen)/2) },
			func() error { return a.acc.AddValue(idx, result.RPCPR, rpcPR) },
			func() error { return a.acc.AddValue(idx, result.RPCIssue, rpcIssue) },
		}); err != nil {
			return err
		}
	}
	return nil
}
