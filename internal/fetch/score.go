package fetch

import (
	"context"
	"fmt"
	"sync"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sentiment thresholds on the signed oracle scale.
const (
	PositiveScore = 1
	NegativeScore = -1
)

// ToxicThreshold is the toxicity probability from which a comment counts as toxic.
const ToxicThreshold = 0.5

// EntitySentiment holds the per-entity comment sentiment of one batch. The
// lists are unordered; entities without comments contribute zeros.
type EntitySentiment struct {
	Positive          []int
	Negative          []int
	GenerallyNegative int
}

// CountSigns returns how many scores are positive and how many negative.
func CountSigns(scores []int) (positive, negative int) {
	for _, s := range scores {
		switch {
		case s >= PositiveScore:
			positive++
		case s <= NegativeScore:
			negative++
		}
	}
	return positive, negative
}

// ScoreEntities scores every entity's comment group with at most workers
// concurrent oracle calls and blocks until all groups are done.
func ScoreEntities(
	ctx context.Context,
	oracle contract.SentimentOracle,
	groups [][]string,
	workers int,
	rec *telemetry.Recorder,
) (EntitySentiment, error) {
	var (
		mu  sync.Mutex
		out EntitySentiment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, comments := range groups {
		if len(comments) == 0 {
			mu.Lock()
			out.Positive = append(out.Positive, 0)
			out.Negative = append(out.Negative, 0)
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			rec.SentimentCall()
			scores, err := oracle.Score(gctx, comments)
			if err != nil {
				return err
			}
			pos, neg := CountSigns(scores)

			mu.Lock()
			defer mu.Unlock()
			out.Positive = append(out.Positive, pos)
			out.Negative = append(out.Negative, neg)
			if float64(neg)/float64(len(comments)) > 0.5 {
				out.GenerallyNegative++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return EntitySentiment{}, fmt.Errorf("sentiment scoring failed: %w", err)
	}
	return out, nil
}

// ToxicShare returns the fraction of comments scored at or above ToxicThreshold.
// Without an oracle or without comments the share is 0.
func ToxicShare(
	ctx context.Context,
	oracle contract.ToxicityOracle,
	comments []string,
	rec *telemetry.Recorder,
	log *zap.SugaredLogger,
) (float64, error) {
	if oracle == nil {
		return 0, nil
	}
	if len(comments) == 0 {
		log.Debugw("No comments to score for toxicity")
		return 0, nil
	}
	if p, ok := oracle.(contract.RunPacer); ok {
		if err := p.Begin(ctx); err != nil {
			return 0, fmt.Errorf("toxicity pacing failed: %w", err)
		}
	}
	toxic := 0
	for _, c := range comments {
		rec.ToxicityCall()
		v, err := oracle.Toxicity(ctx, c)
		if err != nil {
			return 0, fmt.Errorf("toxicity scoring failed: %w", err)
		}
		if v >= ToxicThreshold {
			toxic++
		}
	}
	return float64(toxic) / float64(len(comments)), nil
}
