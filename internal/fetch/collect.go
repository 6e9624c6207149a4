package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/huangsam/teamsmell/internal/batch"
	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/schema"
	"go.uber.org/zap"
)

// MaxCommentBytes is the largest comment handed to a scoring oracle in one piece.
const MaxCommentBytes = 20 * 1024

// Collect streams one collaboration stream into a grid over the shared batch dates.
func Collect(
	ctx context.Context,
	src contract.CollaborationSource,
	stream schema.Stream,
	owner, name string,
	dates []time.Time,
	width schema.Window,
	now time.Time,
	log *zap.SugaredLogger,
) (*batch.Grid[schema.Collaboration], error) {
	grid := batch.NewGrid[schema.Collaboration](dates, width, now)
	place := func(c schema.Collaboration) { grid.Place(c.CreatedAt, c) }

	var err error
	switch stream {
	case schema.PullRequests:
		err = src.PullRequests(ctx, owner, name, place)
	case schema.Issues:
		err = src.Issues(ctx, owner, name, place)
	default:
		return nil, fmt.Errorf("unknown collaboration stream %q", stream)
	}
	if err != nil {
		return nil, err
	}
	if n := len(grid.Overflow()); n > 0 {
		log.Infow("Entities outside every batch window", "stream", stream, "count", n)
	}
	return grid, nil
}

// CollectReleases streams the releases into a grid over the shared batch dates.
func CollectReleases(
	ctx context.Context,
	src contract.CollaborationSource,
	owner, name string,
	dates []time.Time,
	width schema.Window,
	now time.Time,
) (*batch.Grid[schema.Release], error) {
	grid := batch.NewGrid[schema.Release](dates, width, now)
	err := src.Releases(ctx, owner, name, func(r schema.Release) { grid.Place(r.CreatedAt, r) })
	if err != nil {
		return nil, err
	}
	return grid, nil
}

// Chunk drops blank comments and splits every comment larger than maxBytes into
// near-equal parts of at most maxBytes bytes. Cuts fall on rune boundaries and
// the last part keeps the remainder.
func Chunk(comments []string, maxBytes int) []string {
	out := make([]string, 0, len(comments))
	for _, c := range comments {
		if strings.TrimSpace(c) == "" {
			continue
		}
		parts := (len(c) + maxBytes - 1) / maxBytes
		if parts <= 1 {
			out = append(out, c)
			continue
		}
		size := len(c) / parts
		for len(c) > maxBytes {
			end := size
			for end > 0 && !utf8.RuneStart(c[end]) {
				end--
			}
			if end == 0 {
				_, end = utf8.DecodeRuneInString(c)
			}
			out = append(out, c[:end])
			c = c[end:]
		}
		out = append(out, c)
	}
	return out
}

// CommentLengths returns the rune length of every comment.
func CommentLengths(comments []string) []int {
	out := make([]int, len(comments))
	for i, c := range comments {
		out[i] = utf8.RuneCountInString(c)
	}
	return out
}
