package core

import (
	"context"
	"slices"
	"time"

	"github.com/huangsam/teamsmell/core/result"
	"github.com/huangsam/teamsmell/internal/fetch"
	"github.com/huangsam/teamsmell/schema"
)

// releaseCommits counts the commits and commit authors in [from, to) of a
// commit list sorted by commit time. A zero from means since the first commit.
func releaseCommits(commits []schema.Commit, from, to time.Time) (count, authors int) {
	at := func(c schema.Commit, t time.Time) int { return c.CommittedAt.Compare(t) }
	lo := 0
	if !from.IsZero() {
		lo, _ = slices.BinarySearchFunc(commits, from, at)
	}
	hi, _ := slices.BinarySearchFunc(commits, to, at)
	if hi <= lo {
		return 0, 0
	}
	seen := make(map[string]struct{})
	for _, c := range commits[lo:hi] {
		seen[c.Author] = struct{}{}
	}
	return hi - lo, len(seen)
}

// analyzeReleases records the releases of every batch with the commits made
// since the release before each of them.
func (a *analysis) analyzeReleases(ctx context.Context, commits []schema.Commit) error {
	grid, err := fetch.CollectReleases(ctx, a.deps.Source, a.cfg.Owner, a.cfg.Name, a.dates, a.cfg.Batch, a.now)
	if err != nil {
		return err
	}
	all, _ := grid.Batches()
	var released []time.Time
	for _, cell := range all {
		for _, r := range cell {
			released = append(released, r.CreatedAt)
		}
	}
	slices.SortFunc(released, time.Time.Compare)
	previous := func(t time.Time) time.Time {
		i, _ := slices.BinarySearchFunc(released, t, time.Time.Compare)
		if i == 0 {
			return time.Time{}
		}
		return released[i-1]
	}

	for idx, cell := range grid.Cells() {
		authors := make(map[string]struct{})
		var commitCounts, authorCounts []int
		for _, r := range cell {
			if r.Author != "" {
				authors[a.resolver.Resolve(r.Author)] = struct{}{}
			}
			n, who := releaseCommits(commits, previous(r.CreatedAt), r.CreatedAt)
			commitCounts = append(commitCounts, n)
			authorCounts = append(authorCounts, who)
		}
		if err := runSteps([]func() error{
			func() error { return a.acc.AddValue(idx, result.NumberReleases, float64(len(cell))) },
			func() error { return a.acc.AddValue(idx, result.NumberReleaseAuthors, float64(len(authors))) },
			func() error { return addStats(a.acc, idx, "ReleaseAuthorCount", authorCounts) },
			func() error { return addStats(a.acc, idx, "ReleaseCommitCount", commitCounts) },
		}); err != nil {
			return err
		}
	}
	return nil
}
