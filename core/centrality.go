package core

import (
	"github.com/huangsam/teamsmell/internal/graph"
	"github.com/huangsam/teamsmell/schema"
)

// recordGraph stores the scalar and statistics rows of a graph analysis.
func (a *analysis) recordGraph(idx int, an graph.Analysis) error {
	for _, m := range an.Metrics() {
		if err := a.acc.AddValue(idx, m.Name, m.Value); err != nil {
			return err
		}
	}
	for _, row := range an.Stats() {
		if err := a.acc.AddMetricData(idx, row); err != nil {
			return err
		}
	}
	return nil
}

// analyzeCommitCentrality builds the commit graph of a batch and returns its
// high-centrality authors, which are the batch's core developers.
func (a *analysis) analyzeCommitCentrality(idx int, commits []schema.Commit) ([]string, error) {
	related, items := graph.CommitRelations(commits)
	an := graph.Analyze(graph.CommitPrefix, related, items, a.log)
	if err := a.recordGraph(idx, an); err != nil {
		return nil, err
	}
	for _, dev := range an.HighCentrality {
		if err := a.acc.AddCoreDev(idx, dev); err != nil {
			return nil, err
		}
	}
	return an.HighCentrality, nil
}

// analyzeCombinedCentrality builds the graph over the pull request and issue
// participant lists of a batch.
func (a *analysis) analyzeCombinedCentrality(idx int, lists [][]string) error {
	related, items := graph.ParticipantRelations(lists)
	return a.recordGraph(idx, graph.Analyze(graph.CombinedPrefix, related, items, a.log))
}
