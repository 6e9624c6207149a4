package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/teamsmell/core/result"
	"github.com/huangsam/teamsmell/internal/batch"
	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/internal/identity"
	"github.com/huangsam/teamsmell/internal/stats"
	"github.com/huangsam/teamsmell/schema"
	"go.uber.org/zap"
)

// ErrNoData is returned when the repository has no commits to analyze.
var ErrNoData = errors.New("no data found")

// analysis is the state of one run. It is driven from a single goroutine.
type analysis struct {
	cfg      *contract.Config
	deps     Deps
	acc      *result.Accumulator
	log      *zap.SugaredLogger
	resolver *identity.Resolver
	dates    []time.Time
	now      time.Time
}

// Run analyzes the repository of cfg and returns the metrics and smells of every batch.
// Stages run in order: identities, commit batches, commit and tag analysis,
// commit centrality, remote streams, politeness, developers, smells.
func Run(ctx context.Context, cfg *contract.Config, deps Deps) (*schema.RunResult, error) {
	deps, err := deps.validate()
	if err != nil {
		return nil, err
	}
	started := deps.Now()
	a := &analysis{
		cfg:  cfg,
		deps: deps,
		acc:  result.New(),
		log:  deps.Log.With("repository", cfg.Owner+"/"+cfg.Name),
		now:  started,
	}

	// --- 1. Identities and commits ---
	a.resolver, err = identity.Load(cfg.AliasFile)
	if err != nil {
		return nil, err
	}
	if err := deps.Git.Open(ctx, cfg.RepositoryURL, cfg.RepositoryPath, cfg.Token); err != nil {
		return nil, err
	}
	raw, err := deps.Git.Commits(ctx, cfg.RepositoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read commits: %w", err)
	}
	commits := slices.Collect(a.resolver.Commits(slices.Values(raw)))
	slices.SortStableFunc(commits, func(x, y schema.Commit) int {
		return x.CommittedAt.Compare(y.CommittedAt)
	})

	// --- 2. Batch grid ---
	batches, dates := batch.Dynamic(slices.Values(commits), committedAt, cfg.Batch, cfg.StartDate)
	if len(dates) == 0 {
		return nil, ErrNoData
	}
	if err := a.acc.RegisterBatches(dates); err != nil {
		return nil, err
	}
	a.dates = dates
	a.log.Infow("Batched commits", "commits", len(commits), "batches", len(dates), "width", cfg.Batch.String())

	runID := a.beginRun(started)

	// --- 3. Local analyzers ---
	authors := make([]map[string]*authorInfo, len(batches))
	daysActive := make([]int, len(batches))
	coreDevs := make([][]string, len(batches))
	for idx, b := range batches {
		cb, err := a.analyzeCommits(ctx, idx, b)
		if err != nil {
			return nil, err
		}
		authors[idx], daysActive[idx] = cb.authors, cb.daysActive
		if coreDevs[idx], err = a.analyzeCommitCentrality(idx, b); err != nil {
			return nil, err
		}
	}
	if err := a.analyzeTags(ctx, daysActive); err != nil {
		return nil, err
	}

	// --- 4. Remote analyzers ---
	prs := make([]streamBatch, len(dates))
	issues := make([]streamBatch, len(dates))
	if deps.Source != nil {
		if err := a.analyzeReleases(ctx, commits); err != nil {
			return nil, err
		}
		if prs, err = a.analyzeStream(ctx, schema.PullRequests); err != nil {
			return nil, err
		}
		if issues, err = a.analyzeStream(ctx, schema.Issues); err != nil {
			return nil, err
		}
		if err := a.analyzePoliteness(ctx, prs, issues); err != nil {
			return nil, err
		}
	} else {
		a.log.Warnw("No collaboration source, skipping release, pull request and issue analysis")
	}

	// --- 5. Per-batch synthesis ---
	for idx := range dates {
		lists := slices.Concat(prs[idx].Participants, issues[idx].Participants)
		if err := a.analyzeCombinedCentrality(idx, lists); err != nil {
			return nil, err
		}
		if err := a.analyzeDevs(idx, authors[idx], participantSet(lists), coreDevs[idx]); err != nil {
			return nil, err
		}
		if err := a.detectSmells(ctx, idx); err != nil {
			return nil, err
		}
	}

	// --- 6. Hand-off ---
	out := &schema.RunResult{
		Owner:      cfg.Owner,
		Repository: cfg.Name,
		RunID:      runID,
		Batches:    a.acc.Snapshot(),
	}
	a.record(runID, out.Batches)
	a.endRun(runID, len(out.Batches))
	deps.Recorder.RunFinished(deps.Now().Sub(started))
	return out, nil
}

func committedAt(c schema.Commit) time.Time {
	return c.CommittedAt
}

func participantSet(lists [][]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range lists {
		for _, p := range list {
			set[p] = struct{}{}
		}
	}
	return set
}

// addStats records the descriptive statistics of a series; empty series are skipped.
func addStats[N stats.Number](acc *result.Accumulator, idx int, metric string, data []N) error {
	row, ok := stats.Describe(metric, data)
	if !ok {
		return nil
	}
	return acc.AddMetricData(idx, row)
}

// ratio divides with the zero guard and warns when the guard applies.
func (a *analysis) ratio(num, den float64, msg string, keysAndValues ...any) float64 {
	v, ok := stats.Ratio(num, den)
	if !ok {
		a.log.Warnw(msg, keysAndValues...)
	}
	return v
}
