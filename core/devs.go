package core

import (
	"github.com/huangsam/teamsmell/core/result"
	"github.com/huangsam/teamsmell/internal/graph"
)

// analyzeDevs relates the commit authors of a batch to the developers seen on
// pull requests and issues and to the core developers of the commit graph.
func (a *analysis) analyzeDevs(idx int, authors map[string]*authorInfo, devs map[string]struct{}, core []string) error {
	experienced := 0
	total, sponsoredCommits, experiencedCommits := 0, 0, 0
	for login, info := range authors {
		total += info.commits
		if info.sponsored {
			sponsoredCommits += info.commits
		}
		if info.experienced {
			experiencedCommits += info.commits
			if _, ok := devs[login]; ok {
				experienced++
			}
		}
	}
	busFactor := graph.BusFactor(len(devs), len(core), a.log.With("batch", idx))
	sponsoredTFC := a.ratio(float64(sponsoredCommits), float64(total), "No commits in batch, sponsored TFC set to 0", "batch", idx)
	experiencedTFC := a.ratio(float64(experiencedCommits), float64(total), "No commits in batch, experienced TFC set to 0", "batch", idx)

	return runSteps([]func() error{
		func() error { return a.acc.AddValue(idx, result.NumberActiveExperiencedDevs, float64(experienced)) },
		func() error { return a.acc.AddValue(idx, result.BusFactorNumber, busFactor) },
		func() error { return a.acc.AddValue(idx, result.SponsoredTFC, sponsoredTFC*100) },
		func() error { return a.acc.AddValue(idx, result.ExperiencedTFC, experiencedTFC*100) },
	})
}
