package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/teamsmell/internal/fetch"
	"github.com/huangsam/teamsmell/schema"
)

// Author classification.
const (
	experienceDays   = 150
	sponsoredShare   = 0.95
	workdayFirstHour = 9
	workdayLastHour  = 17
)

// authorInfo is what one batch knows about one author.
type authorInfo struct {
	commits          int
	sponsoredCommits int
	earliest         time.Time
	latest           time.Time
	activeDays       int
	sponsored        bool
	experienced      bool
}

type timezoneInfo struct {
	commits int
	authors map[string]struct{}
}

type commitBatch struct {
	authors    map[string]*authorInfo
	daysActive int
}

// isSponsoredCommit reports whether a commit was authored in office hours of a
// non-UTC timezone.
func isSponsoredCommit(t time.Time) bool {
	_, offset := t.Zone()
	return offset != 0 && t.Hour() >= workdayFirstHour && t.Hour() <= workdayLastHour
}

// daysBetween counts whole days from a to b.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// analyzeCommits records the commit, author and timezone metrics of one batch.
func (a *analysis) analyzeCommits(ctx context.Context, idx int, commits []schema.Commit) (commitBatch, error) {
	authors := make(map[string]*authorInfo)
	timezones := make(map[int]*timezoneInfo)
	var (
		messages    []string
		first, last time.Time
	)
	for _, c := range commits {
		if first.IsZero() || c.CommittedAt.Before(first) {
			first = c.CommittedAt
		}
		if last.IsZero() || c.CommittedAt.After(last) {
			last = c.CommittedAt
		}

		_, offset := c.AuthoredAt.Zone()
		tz, ok := timezones[offset]
		if !ok {
			tz = &timezoneInfo{authors: make(map[string]struct{})}
			timezones[offset] = tz
		}
		tz.commits++
		tz.authors[c.Author] = struct{}{}

		if strings.TrimSpace(c.Message) != "" {
			messages = append(messages, c.Message)
		}

		info, ok := authors[c.Author]
		if !ok {
			info = &authorInfo{earliest: c.AuthoredAt, latest: c.AuthoredAt}
			authors[c.Author] = info
		}
		info.commits++
		if c.AuthoredAt.Before(info.earliest) {
			info.earliest = c.AuthoredAt
		}
		if c.AuthoredAt.After(info.latest) {
			info.latest = c.AuthoredAt
		}
		if isSponsoredCommit(c.AuthoredAt) {
			info.sponsoredCommits++
		}
	}

	var scores []int
	if len(messages) > 0 {
		a.deps.Recorder.SentimentCall()
		var err error
		scores, err = a.deps.Sentiment.Score(ctx, messages)
		if err != nil {
			return commitBatch{}, fmt.Errorf("commit message sentiment of batch %d: %w", idx, err)
		}
	}
	var positive, negative []int
	for _, s := range scores {
		switch {
		case s >= fetch.PositiveScore:
			positive = append(positive, s)
		case s <= fetch.NegativeScore:
			negative = append(negative, s)
		}
	}

	sponsored := 0
	activeDays := make([]int, 0, len(authors))
	commitCounts := make([]int, 0, len(authors))
	for _, info := range authors {
		if float64(info.sponsoredCommits)/float64(info.commits) >= sponsoredShare {
			info.sponsored = true
			sponsored++
		}
		info.activeDays = daysBetween(info.earliest, info.latest) + 1
		info.experienced = info.activeDays >= experienceDays
		activeDays = append(activeDays, info.activeDays)
		commitCounts = append(commitCounts, info.commits)
	}
	tzAuthors := make([]int, 0, len(timezones))
	tzCommits := make([]int, 0, len(timezones))
	for _, tz := range timezones {
		tzAuthors = append(tzAuthors, len(tz.authors))
		tzCommits = append(tzCommits, tz.commits)
	}

	daysActive := 0
	if !first.IsZero() {
		daysActive = daysBetween(first, last)
	}
	share := a.ratio(float64(sponsored), float64(len(authors)), "No authors in batch, sponsored share set to 0", "batch", idx)

	acc := a.acc
	steps := []func() error{
		func() error { return acc.AddCommitCount(idx, len(commits)) },
		func() error { return acc.AddTimezoneCount(idx, len(timezones)) },
		func() error { return acc.AddAuthorCount(idx, len(authors)) },
		func() error { return acc.AddSponsoredAuthorCount(idx, sponsored) },
		func() error { return acc.AddPercentageSponsoredAuthors(idx, share) },
		func() error { return acc.AddDaysActive(idx, daysActive) },
		func() error { return addStats(acc, idx, "AuthorActiveDays", activeDays) },
		func() error { return addStats(acc, idx, "AuthorCommitCount", commitCounts) },
		func() error { return addStats(acc, idx, "TimezoneAuthorCount", tzAuthors) },
		func() error { return addStats(acc, idx, "TimezoneCommitCount", tzCommits) },
		func() error { return addStats(acc, idx, "CommitMessageSentiment", scores) },
		func() error { return addStats(acc, idx, "CommitMessageSentimentsPositive", positive) },
		func() error { return addStats(acc, idx, "CommitMessageSentimentsNegative", negative) },
	}
	if !first.IsZero() {
		steps = append(steps,
			func() error { return acc.AddFirstCommitDate(idx, first) },
			func() error { return acc.AddLastCommitDate(idx, last) },
		)
	}
	if err := runSteps(steps); err != nil {
		return commitBatch{}, err
	}
	return commitBatch{authors: authors, daysActive: daysActive}, nil
}

// runSteps runs accumulator writes in order and stops at the first failure.
func runSteps(steps []func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
