package core

import (
	"context"
	"fmt"

	"github.com/huangsam/teamsmell/internal/fetch"
	"github.com/huangsam/teamsmell/internal/graph"
	"github.com/huangsam/teamsmell/schema"
)

// streamBatch is what later stages need from one batch of a stream.
type streamBatch struct {
	Participants [][]string // resolved participant lists of entities that have any
	Comments     []string   // scored comments, chunked
}

// streamStatNames are the statistics series of a collaboration stream.
type streamStatNames struct {
	commentsLength string
	duration       string
	commentsCount  string
	commitsCount   string // pull requests only
	sentiments     string
	participants   string
	positive       string
	negative       string
	graphPrefix    string
}

var streamStats = map[schema.Stream]streamStatNames{
	schema.PullRequests: {
		commentsLength: "PRCommentsLength",
		duration:       "PRDuration",
		commentsCount:  "PRCommentsCount",
		commitsCount:   "PRCommitsCount",
		sentiments:     "PRCommentSentiments",
		participants:   "PRParticipantsCount",
		positive:       "PRCountPositiveComments",
		negative:       "PRCountNegativeComments",
		graphPrefix:    graph.PRPrefix,
	},
	schema.Issues: {
		commentsLength: "IssueCommentsLength",
		duration:       "IssueDuration",
		commentsCount:  "IssueCommentsCount",
		sentiments:     "IssueCommentSentiments",
		participants:   "IssueParticipantCount",
		positive:       "IssueCountPositiveComments",
		negative:       "IssueCountNegativeComments",
		graphPrefix:    graph.IssuePrefix,
	},
}

// analyzeStream fetches one collaboration stream onto the batch grid and
// analyzes every declared batch of it in order. Overflow entities are only
// counted by Collect; they belong to no batch row.
func (a *analysis) analyzeStream(ctx context.Context, stream schema.Stream) ([]streamBatch, error) {
	grid, err := fetch.Collect(ctx, a.deps.Source, stream, a.cfg.Owner, a.cfg.Name, a.dates, a.cfg.Batch, a.now, a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s stream: %w", stream, err)
	}
	out := make([]streamBatch, grid.Len())
	for idx, entities := range grid.Cells() {
		a.log.Debugw("Analyzing collaboration batch", "stream", stream, "batch", idx, "entities", len(entities))
		if out[idx], err = a.analyzeStreamBatch(ctx, stream, idx, entities); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (a *analysis) analyzeStreamBatch(ctx context.Context, stream schema.Stream, idx int, entities []schema.Collaboration) (streamBatch, error) {
	names := streamStats[stream]
	var (
		sb     streamBatch
		groups [][]string
	)
	var durations, rawCounts, commitCounts, participantCounts []int
	for _, e := range entities {
		if len(e.Participants) > 0 {
			sb.Participants = append(sb.Participants, a.resolver.Logins(e.Participants))
		}
		participantCounts = append(participantCounts, len(participantSet([][]string{e.Participants})))
		durations = append(durations, daysBetween(e.CreatedAt, e.ClosedAt))
		rawCounts = append(rawCounts, len(e.Comments))
		commitCounts = append(commitCounts, e.CommitCount)

		chunks := fetch.Chunk(e.Comments, fetch.MaxCommentBytes)
		groups = append(groups, chunks)
		sb.Comments = append(sb.Comments, chunks...)
	}

	perEntity, err := fetch.ScoreEntities(ctx, a.deps.Sentiment, groups, a.cfg.Workers, a.deps.Recorder)
	if err != nil {
		return streamBatch{}, fmt.Errorf("%s batch %d: %w", stream, idx, err)
	}

	var scores []int
	if len(sb.Comments) > 0 {
		a.deps.Recorder.SentimentCall()
		if scores, err = a.deps.Sentiment.Score(ctx, sb.Comments); err != nil {
			return streamBatch{}, fmt.Errorf("%s batch %d comment sentiment: %w", stream, idx, err)
		}
	}
	positive, negative := fetch.CountSigns(scores)

	toxicity, err := fetch.ToxicShare(ctx, a.deps.Toxicity, sb.Comments, a.deps.Recorder, a.log)
	if err != nil {
		return streamBatch{}, fmt.Errorf("%s batch %d: %w", stream, idx, err)
	}
	negativeRatio := a.ratio(float64(perEntity.GenerallyNegative), float64(len(entities)),
		"No entities in batch, generally negative ratio set to 0", "stream", stream, "batch", idx)

	related, items := graph.ParticipantRelations(sb.Participants)
	centrality := graph.Analyze(names.graphPrefix, related, items, a.log)

	acc := a.acc
	steps := []func() error{
		func() error { return acc.AddEntityCount(stream, idx, len(entities)) },
		func() error { return acc.AddCommentCount(stream, idx, len(sb.Comments)) },
		func() error { return acc.AddCommentSentiment(stream, idx, positive, negative) },
		func() error { return acc.AddNegativeRatio(stream, idx, negativeRatio) },
		func() error { return acc.AddToxicityPercentage(stream, idx, toxicity) },
		func() error { return addStats(acc, idx, names.commentsLength, fetch.CommentLengths(sb.Comments)) },
		func() error { return addStats(acc, idx, names.duration, durations) },
		func() error { return addStats(acc, idx, names.commentsCount, rawCounts) },
		func() error { return addStats(acc, idx, names.sentiments, scores) },
		func() error { return addStats(acc, idx, names.participants, participantCounts) },
		func() error { return addStats(acc, idx, names.positive, perEntity.Positive) },
		func() error { return addStats(acc, idx, names.negative, perEntity.Negative) },
		func() error { return a.recordGraph(idx, centrality) },
	}
	if names.commitsCount != "" {
		steps = append(steps, func() error { return addStats(acc, idx, names.commitsCount, commitCounts) })
	}
	if err := runSteps(steps); err != nil {
		return streamBatch{}, err
	}
	return sb, nil
}
