package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/huangsam/teamsmell/internal/oracle"
	"github.com/huangsam/teamsmell/internal/telemetry"
	"github.com/huangsam/teamsmell/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// newTestClient wires a go-github client against handler.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *observer.ObservedLogs) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	core, logs := observer.New(zapcore.DebugLevel)
	opts = append([]Option{WithBaseURL(srv.URL), WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewClient(srv.Client(), "token", 0, zap.New(core).Sugar(), opts...), logs
}

func decodeRequest(t *testing.T, r *http.Request) graphQLRequest {
	t.Helper()
	var req graphQLRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

const prPageOne = `{"data":{"repository":{"pullRequests":{
  "pageInfo":{"endCursor":"c1","hasNextPage":true},
  "nodes":[{"number":1,"createdAt":"2024-01-05T10:00:00Z","closedAt":"2024-01-07T10:00:00Z",
    "participants":{"nodes":[{"login":"alice"},{"login":null},null,{"login":"bob"}]},
    "commits":{"totalCount":3},
    "comments":{"nodes":[{"bodyText":"looks good"},{"bodyText":"thanks"}]}}]}}}}`

const prPageTwo = `{"data":{"repository":{"pullRequests":{
  "pageInfo":{"endCursor":"c2","hasNextPage":false},
  "nodes":[{"number":2,"createdAt":"2024-02-01T00:00:00Z","closedAt":null,
    "participants":{"nodes":[{"login":"carol"}]},
    "commits":{"totalCount":1},
    "comments":{"nodes":[]}}]}}}}`

func TestPullRequestsPaginates(t *testing.T) {
	var cursors []any
	rec := telemetry.New()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graphql", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		req := decodeRequest(t, r)
		assert.Contains(t, req.Query, "pullRequests(first: 100, after: $after)")
		assert.Equal(t, "acme", req.Variables["owner"])
		cursors = append(cursors, req.Variables["after"])
		if req.Variables["after"] == nil {
			_, _ = w.Write([]byte(prPageOne))
			return
		}
		_, _ = w.Write([]byte(prPageTwo))
	}, WithRecorder(rec))

	var got []schema.Collaboration
	err := client.PullRequests(context.Background(), "acme", "widgets", func(c schema.Collaboration) {
		got = append(got, c)
	})
	require.NoError(t, err)
	assert.Equal(t, []any{nil, "c1"}, cursors)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Number)
	assert.Equal(t, []string{"alice", "bob"}, got[0].Participants)
	assert.Equal(t, []string{"looks good", "thanks"}, got[0].Comments)
	assert.Equal(t, 3, got[0].CommitCount)
	assert.False(t, got[0].Open)

	assert.True(t, got[1].Open)
	assert.Equal(t, fixedNow, got[1].ClosedAt)

	expected := `
# HELP teamsmell_pages_fetched_total Remote pages fetched per collaboration stream.
# TYPE teamsmell_pages_fetched_total counter
teamsmell_pages_fetched_total{stream="PR"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "teamsmell_pages_fetched_total"))
}

func TestIssuesRepositoryNotFound(t *testing.T) {
	client, logs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"repository":null},"errors":[{"type":"NOT_FOUND","message":"Could not resolve to a Repository"}]}`))
	})

	calls := 0
	err := client.Issues(context.Background(), "acme", "missing", func(schema.Collaboration) { calls++ })
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Equal(t, 1, logs.FilterMessage("Repository not found, assuming no entities").Len())
}

func TestGraphQLErrorWithoutData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"repository":null},"errors":[{"type":"FORBIDDEN","message":"Resource not accessible"}]}`))
	})
	err := client.Issues(context.Background(), "acme", "widgets", func(schema.Collaboration) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Resource not accessible")
}

func TestRemoteErrorCarriesStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"upstream unavailable"}`))
	})
	err := client.PullRequests(context.Background(), "acme", "widgets", func(schema.Collaboration) {})
	var remote *RemoteError
	require.True(t, errors.As(err, &remote), "got %v", err)
	assert.Equal(t, http.StatusBadGateway, remote.Status)
	assert.Equal(t, "upstream unavailable", remote.Body)
}

func TestReleases(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"repository":{"releases":{
		  "pageInfo":{"endCursor":"","hasNextPage":false},
		  "nodes":[
		    {"name":"First","tagName":"v1","createdAt":"2024-01-01T00:00:00Z","author":{"login":"alice"}},
		    {"name":"","tagName":"v2","createdAt":"2024-03-01T00:00:00Z","author":null}]}}}}`))
	})
	var got []schema.Release
	require.NoError(t, client.Releases(context.Background(), "acme", "widgets", func(r schema.Release) {
		got = append(got, r)
	}))
	require.Len(t, got, 2)
	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, "alice", got[0].Author)
	assert.True(t, got[0].CreatedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "v2", got[1].Name)
	assert.Empty(t, got[1].Author)
}

func TestCommitLogin(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/widgets/commits/abc":
			_, _ = w.Write([]byte(`{"sha":"abc","author":{"login":"alice"}}`))
		case "/repos/acme/widgets/commits/nologin":
			_, _ = w.Write([]byte(`{"sha":"nologin","author":null}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"No commit found"}`))
		}
	})
	ctx := context.Background()

	login, err := client.CommitLogin(ctx, "acme", "widgets", "abc")
	require.NoError(t, err)
	assert.Equal(t, "alice", login)

	login, err = client.CommitLogin(ctx, "acme", "widgets", "nologin")
	require.NoError(t, err)
	assert.Empty(t, login)

	_, err = client.CommitLogin(ctx, "acme", "widgets", "zzz")
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusNotFound, remote.Status)
}

func TestPager(t *testing.T) {
	p := newPager()
	assert.True(t, p.more())
	assert.Nil(t, p.after())

	p.advance(pageInfo{EndCursor: "x", HasNextPage: true})
	assert.True(t, p.more())
	require.NotNil(t, p.after())
	assert.Equal(t, "x", *p.after())

	p.advance(pageInfo{EndCursor: "y", HasNextPage: false})
	assert.False(t, p.more())

	q := newPager()
	q.advance(pageInfo{HasNextPage: true})
	assert.False(t, q.more(), "a page without a cursor cannot continue")

	r := newPager()
	r.stop()
	assert.False(t, r.more())
}

type fakeSource struct {
	prs      []schema.Collaboration
	issues   []schema.Collaboration
	releases []schema.Release
	err      error
}

func (f *fakeSource) PullRequests(_ context.Context, _, _ string, visit func(schema.Collaboration)) error {
	for _, c := range f.prs {
		visit(c)
	}
	return f.err
}

func (f *fakeSource) Issues(_ context.Context, _, _ string, visit func(schema.Collaboration)) error {
	for _, c := range f.issues {
		visit(c)
	}
	return f.err
}

func (f *fakeSource) Releases(_ context.Context, _, _ string, visit func(schema.Release)) error {
	for _, r := range f.releases {
		visit(r)
	}
	return f.err
}

func day(d int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func TestCollectPlacesIntoGrid(t *testing.T) {
	src := &fakeSource{issues: []schema.Collaboration{
		{Number: 1, CreatedAt: day(1)},
		{Number: 2, CreatedAt: day(40)},
		{Number: 3, CreatedAt: day(400)},
		{Number: 4, CreatedAt: day(-5)},
	}}
	core, logs := observer.New(zapcore.InfoLevel)
	dates := []time.Time{day(0), day(30)}
	grid, err := Collect(context.Background(), src, schema.Issues, "acme", "widgets", dates, schema.Window{Days: 30}, fixedNow, zap.New(core).Sugar())
	require.NoError(t, err)

	cells := grid.Cells()
	require.Len(t, cells, 2)
	assert.Equal(t, 1, cells[0][0].Number)
	assert.Equal(t, 2, cells[1][0].Number)
	assert.Len(t, grid.Overflow(), 2)
	assert.Equal(t, 1, logs.Len())

	_, err = Collect(context.Background(), src, schema.Stream("Wiki"), "a", "b", dates, schema.Window{Days: 30}, fixedNow, zap.NewNop().Sugar())
	assert.Error(t, err)

	src.err = errors.New("boom")
	_, err = Collect(context.Background(), src, schema.PullRequests, "a", "b", dates, schema.Window{Days: 30}, fixedNow, zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestCollectReleases(t *testing.T) {
	src := &fakeSource{releases: []schema.Release{{Name: "v1", CreatedAt: day(2)}, {Name: "v2", CreatedAt: day(31)}}}
	grid, err := CollectReleases(context.Background(), src, "acme", "widgets", []time.Time{day(0)}, schema.Window{Days: 30}, fixedNow)
	require.NoError(t, err)
	assert.Len(t, grid.Cells()[0], 1)
	assert.Len(t, grid.Overflow(), 1)
}

func TestChunk(t *testing.T) {
	big := strings.Repeat("a", 2*MaxCommentBytes+10)
	tests := []struct {
		name     string
		comments []string
		lens     []int
	}{
		{name: "blank dropped", comments: []string{"", "  \n", "ok"}, lens: []int{2}},
		{name: "exact limit kept", comments: []string{strings.Repeat("b", MaxCommentBytes)}, lens: []int{MaxCommentBytes}},
		{name: "split in three", comments: []string{big}, lens: []int{13656, 13656, 13658}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.comments, MaxCommentBytes)
			require.Len(t, got, len(tt.lens))
			for i, n := range tt.lens {
				assert.Len(t, got[i], n)
			}
		})
	}
}

func TestChunkKeepsRunesIntact(t *testing.T) {
	text := strings.Repeat("é", MaxCommentBytes) // two bytes each
	parts := Chunk([]string{text}, MaxCommentBytes)
	require.Len(t, parts, 2)
	total := 0
	for _, p := range parts {
		assert.True(t, utf8.ValidString(p))
		total += utf8.RuneCountInString(p)
	}
	assert.Equal(t, MaxCommentBytes, total)
	assert.Equal(t, []int{2, 3}, CommentLengths([]string{"ab", "héé"}))
}

func TestChunkRespectsByteBudget(t *testing.T) {
	text := strings.Repeat("😀", 8192) + strings.Repeat("a", 8192) // 40960 bytes
	parts := Chunk([]string{text}, MaxCommentBytes)
	require.GreaterOrEqual(t, len(parts), 2)
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), MaxCommentBytes)
		assert.True(t, utf8.ValidString(p))
	}
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestScoreEntities(t *testing.T) {
	o := &oracle.Static{Positive: []string{"great"}, Negative: []string{"bad"}}
	groups := [][]string{
		{"great work", "bad idea", "bad style"},
		{},
		{"great", "fine"},
	}
	got, err := ScoreEntities(context.Background(), o, groups, 2, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 0, 1}, got.Positive)
	assert.ElementsMatch(t, []int{2, 0, 0}, got.Negative)
	assert.Equal(t, 1, got.GenerallyNegative)
	assert.Equal(t, 2, o.Calls(), "empty groups are not scored")
}

type failingSentiment struct{ calls atomic.Int32 }

func (f *failingSentiment) Score(context.Context, []string) ([]int, error) {
	f.calls.Add(1)
	return nil, errors.New("oracle down")
}

func TestScoreEntitiesFails(t *testing.T) {
	_, err := ScoreEntities(context.Background(), &failingSentiment{}, [][]string{{"x"}, {"y"}}, 0, nil)
	assert.ErrorContains(t, err, "oracle down")
}

// slowSentiment scores every text positive after a short delay.
type slowSentiment struct{}

func (slowSentiment) Score(_ context.Context, texts []string) ([]int, error) {
	time.Sleep(time.Millisecond)
	scores := make([]int, len(texts))
	for i := range scores {
		scores[i] = PositiveScore
	}
	return scores, nil
}

func TestScoreEntitiesInterleavesEmptyGroups(t *testing.T) {
	groups := make([][]string, 200)
	for i := range groups {
		if i%2 == 0 {
			groups[i] = []string{"a"}
		}
	}
	got, err := ScoreEntities(context.Background(), slowSentiment{}, groups, 15, nil)
	require.NoError(t, err)
	require.Len(t, got.Positive, 200)
	require.Len(t, got.Negative, 200)

	scored := 0
	for _, p := range got.Positive {
		scored += p
	}
	assert.Equal(t, 100, scored)
	assert.Zero(t, got.GenerallyNegative)
}

func TestCountSigns(t *testing.T) {
	pos, neg := CountSigns([]int{-4, -1, 0, 1, 3})
	assert.Equal(t, 2, pos)
	assert.Equal(t, 2, neg)
}

func TestToxicShare(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop().Sugar()
	o := &oracle.Static{Toxic: []string{"idiot"}}

	share, err := ToxicShare(ctx, o, []string{"you idiot", "fine", "ok", "meh"}, nil, log)
	require.NoError(t, err)
	assert.Equal(t, 0.25, share)

	share, err = ToxicShare(ctx, nil, []string{"you idiot"}, nil, log)
	require.NoError(t, err)
	assert.Zero(t, share)

	share, err = ToxicShare(ctx, o, nil, nil, log)
	require.NoError(t, err)
	assert.Zero(t, share)
}

func TestToxicShareStartsPacedRun(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 30, 0, time.UTC)
	var waits int
	sleep := func(_ context.Context, d time.Duration) error {
		now = now.Add(d)
		return nil
	}
	o := oracle.NewPaced(&oracle.Static{Toxic: []string{"idiot"}}, 0,
		oracle.WithClock(func() time.Time { return now }, sleep),
		oracle.WithWaitHook(func(time.Duration) { waits++ }))
	log := zap.NewNop().Sugar()

	for range 2 {
		share, err := ToxicShare(context.Background(), o, []string{"idiot", "fine", "ok"}, nil, log)
		require.NoError(t, err)
		assert.InDelta(t, 1.0/3, share, 1e-9)
	}
	assert.Equal(t, 2, waits)
}
