package graph

import (
	"slices"
	"time"

	"github.com/huangsam/teamsmell/internal/stats"
	"github.com/huangsam/teamsmell/schema"
	"go.uber.org/zap"
)

// HighCentralityThreshold is the degree centrality above which an author is core.
const HighCentralityThreshold = 0.5

// Metric prefixes of the graph variants.
const (
	CommitPrefix   = "commitCentrality"
	PRPrefix       = "PRs"
	IssuePrefix    = "Issues"
	CombinedPrefix = "issuesAndPRsCentrality"
)

// Relations maps each author to the set of authors it is related to.
// Every author is a key, including those without relations.
type Relations map[string]map[string]struct{}

func (r Relations) relate(author string, others ...string) {
	set, ok := r[author]
	if !ok {
		set = make(map[string]struct{})
		r[author] = set
	}
	for _, o := range others {
		if o != author {
			set[o] = struct{}{}
		}
	}
}

// CommitRelations relates the author of every commit to the authors of other
// people's commits within one calendar month either side of it. Items counts
// the commits of each author.
func CommitRelations(commits []schema.Commit) (Relations, map[string]int) {
	sorted := slices.Clone(commits)
	slices.SortStableFunc(sorted, func(a, b schema.Commit) int {
		return a.CommittedAt.Compare(b.CommittedAt)
	})

	related := Relations{}
	items := map[string]int{}
	for _, c := range sorted {
		items[c.Author]++
		related.relate(c.Author)

		earliest := c.CommittedAt.AddDate(0, -1, 0)
		latest := c.CommittedAt.AddDate(0, 1, 0)
		lo, _ := slices.BinarySearchFunc(sorted, earliest, func(x schema.Commit, t time.Time) int {
			return x.CommittedAt.Compare(t)
		})
		for _, other := range sorted[lo:] {
			if other.CommittedAt.After(latest) {
				break
			}
			related.relate(c.Author, other.Author)
		}
	}
	return related, items
}

// ParticipantRelations relates every pair of authors sharing a participant
// list. Each list is deduplicated; items counts the lists each author is in.
func ParticipantRelations(lists [][]string) (Relations, map[string]int) {
	related := Relations{}
	items := map[string]int{}
	for _, list := range lists {
		unique := dedupe(list)
		for _, author := range unique {
			items[author]++
			related.relate(author, unique...)
		}
	}
	return related, items
}

func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Build creates the graph of a relation set. Nodes are added in sorted order.
func Build(related Relations) *Graph {
	g := New()
	authors := make([]string, 0, len(related))
	for author := range related {
		authors = append(authors, author)
	}
	slices.Sort(authors)
	for _, author := range authors {
		g.AddNode(author)
	}
	for _, author := range authors {
		others := make([]string, 0, len(related[author]))
		for o := range related[author] {
			others = append(others, o)
		}
		slices.Sort(others)
		for _, o := range others {
			g.AddEdge(author, o)
		}
	}
	return g
}

// Analysis is everything derived from one batch graph.
type Analysis struct {
	Prefix         string
	Graph          *Graph
	Degree         map[string]float64
	Closeness      map[string]float64
	Betweenness    map[string]float64
	Communities    [][]string
	CommunityItems []int
	HighCentrality []string
	Density        float64
	TFN            float64
	TFC            float64
	PercentageHigh float64
}

// Analyze computes the centrality and community metrics of a relation set.
// Degenerate inputs yield zero-valued ratios with a warning.
func Analyze(prefix string, related Relations, items map[string]int, log *zap.SugaredLogger) Analysis {
	g := Build(related)
	an := Analysis{
		Prefix:      prefix,
		Graph:       g,
		Degree:      g.Degree(),
		Closeness:   g.Closeness(),
		Betweenness: g.Betweenness(),
		Density:     g.Density(),
		Communities: g.Communities(),
	}
	if len(an.Communities) == 0 {
		log.Warnw("Graph has no communities", "prefix", prefix, "nodes", g.NodeCount())
	}
	for _, community := range an.Communities {
		total := 0
		for _, author := range community {
			total += items[author]
		}
		an.CommunityItems = append(an.CommunityItems, total)
	}

	for _, author := range g.Nodes() {
		if an.Degree[author] > HighCentralityThreshold {
			an.HighCentrality = append(an.HighCentrality, author)
		}
	}

	var ok bool
	an.PercentageHigh, ok = stats.Ratio(float64(len(an.HighCentrality)), float64(len(related)))
	if !ok {
		log.Warnw("No related authors, percentage of high centrality authors set to 0", "prefix", prefix)
	}

	an.TFN = float64(len(items) - len(an.HighCentrality))

	highItems, allItems := 0, 0
	for _, n := range items {
		allItems += n
	}
	for _, author := range an.HighCentrality {
		highItems += items[author]
	}
	an.TFC, ok = stats.Ratio(float64(highItems), float64(allItems))
	if !ok {
		log.Warnw("No author items, TFC set to 0", "prefix", prefix)
	}
	an.TFC *= 100
	return an
}

// Metrics returns the scalar rows of the analysis.
func (an Analysis) Metrics() []schema.MetricRow {
	return []schema.MetricRow{
		{Name: an.Prefix + "_Density", Value: an.Density},
		{Name: an.Prefix + "_CommunityCount", Value: float64(len(an.Communities))},
		{Name: an.Prefix + "_TFN", Value: an.TFN},
		{Name: an.Prefix + "_TFC", Value: an.TFC},
		{Name: an.Prefix + "_NumberHighCentralityAuthors", Value: float64(len(an.HighCentrality))},
		{Name: an.Prefix + "_PercentageHighCentralityAuthors", Value: an.PercentageHigh},
	}
}

// Stats returns the descriptive statistics rows of the analysis. Empty series
// produce no row.
func (an Analysis) Stats() []schema.StatRow {
	nodes := an.Graph.Nodes()
	series := func(m map[string]float64) []float64 {
		out := make([]float64, len(nodes))
		for i, id := range nodes {
			out[i] = m[id]
		}
		return out
	}
	sizes := make([]int, len(an.Communities))
	for i, c := range an.Communities {
		sizes[i] = len(c)
	}

	var rows []schema.StatRow
	add := func(row schema.StatRow, ok bool) {
		if ok {
			rows = append(rows, row)
		}
	}
	add(stats.Describe(an.Prefix+"_Closeness", series(an.Closeness)))
	add(stats.Describe(an.Prefix+"_Betweenness", series(an.Betweenness)))
	add(stats.Describe(an.Prefix+"_Centrality", series(an.Degree)))
	add(stats.Describe(an.Prefix+"_CommunityAuthorCount", sizes))
	add(stats.Describe(an.Prefix+"_CommunityAuthorItemCount", an.CommunityItems))
	return rows
}

// BusFactor is (devs - core) / devs, and 0 with a warning when there are no devs.
func BusFactor(devs, core int, log *zap.SugaredLogger) float64 {
	v, ok := stats.Ratio(float64(devs-core), float64(devs))
	if !ok {
		log.Warnw("No developers in batch, bus factor set to 0")
	}
	return v
}
