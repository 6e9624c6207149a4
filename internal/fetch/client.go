// Package fetch retrieves pull requests, issues and releases from GitHub and
// scores the comments of the retrieved entities.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/internal/telemetry"
	"github.com/huangsam/teamsmell/schema"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Stream label used for releases in telemetry and logs.
const releaseStream = "Release"

// Client talks to the GitHub GraphQL and REST APIs through go-github.
type Client struct {
	gh      *github.Client
	limiter *rate.Limiter
	now     func() time.Time
	log     *zap.SugaredLogger
	rec     *telemetry.Recorder
}

var (
	_ contract.CollaborationSource = &Client{} // Compile-time check
	_ contract.LoginLookup         = &Client{} // Compile-time check
)

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. GitHub Enterprise or a test server.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		if u, err := url.Parse(raw); err == nil {
			c.gh.BaseURL = u
		}
	}
}

// WithClock replaces the time used for still-open entities.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithRecorder counts fetched pages and entities.
func WithRecorder(rec *telemetry.Recorder) Option {
	return func(c *Client) { c.rec = rec }
}

// NewClient creates a client that waits interval between requests; zero disables pacing.
func NewClient(httpClient *http.Client, token string, interval time.Duration, log *zap.SugaredLogger, opts ...Option) *Client {
	gh := github.NewClient(httpClient)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	c := &Client{
		gh:      gh,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type graphQLResponse[T any] struct {
	Data struct {
		Repository *T `json:"repository"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// query posts one GraphQL request. A nil repository means the repository is unknown.
func query[T any](ctx context.Context, c *Client, q string, vars map[string]any) (*T, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := c.gh.NewRequest(http.MethodPost, "graphql", graphQLRequest{Query: q, Variables: vars})
	if err != nil {
		return nil, err
	}
	var resp graphQLResponse[T]
	if _, err := c.gh.Do(ctx, req, &resp); err != nil {
		return nil, asRemoteError(err)
	}
	if resp.Data.Repository == nil {
		if len(resp.Errors) > 0 && resp.Errors[0].Type != "NOT_FOUND" {
			return nil, fmt.Errorf("graphql query failed: %s", resp.Errors[0].Message)
		}
		return nil, nil
	}
	return resp.Data.Repository, nil
}

type loginNode struct {
	Login *string `json:"login"`
}

type textNode struct {
	BodyText string `json:"bodyText"`
}

type collaborationNode struct {
	Number       int        `json:"number"`
	CreatedAt    time.Time  `json:"createdAt"`
	ClosedAt     *time.Time `json:"closedAt"`
	Participants struct {
		Nodes []*loginNode `json:"nodes"`
	} `json:"participants"`
	Comments struct {
		Nodes []textNode `json:"nodes"`
	} `json:"comments"`
	Commits *struct {
		TotalCount int `json:"totalCount"`
	} `json:"commits"`
}

type connection[N any] struct {
	PageInfo pageInfo `json:"pageInfo"`
	Nodes    []N      `json:"nodes"`
}

type pullRequestPage struct {
	Connection connection[collaborationNode] `json:"pullRequests"`
}

type issuePage struct {
	Connection connection[collaborationNode] `json:"issues"`
}

type releasePage struct {
	Connection connection[releaseNode] `json:"releases"`
}

type releaseNode struct {
	Name      string     `json:"name"`
	TagName   string     `json:"tagName"`
	CreatedAt time.Time  `json:"createdAt"`
	Author    *loginNode `json:"author"`
}

const pullRequestQuery = `query($owner: String!, $name: String!, $after: String) {
  repository(owner: $owner, name: $name) {
    pullRequests(first: 100, after: $after) {
      pageInfo { endCursor hasNextPage }
      nodes {
        number
        createdAt
        closedAt
        participants(first: 100) { nodes { login } }
        commits { totalCount }
        comments(first: 100) { nodes { bodyText } }
      }
    }
  }
}`

const issueQuery = `query($owner: String!, $name: String!, $after: String) {
  repository(owner: $owner, name: $name) {
    issues(first: 100, after: $after) {
      pageInfo { endCursor hasNextPage }
      nodes {
        number
        createdAt
        closedAt
        participants(first: 100) { nodes { login } }
        comments(first: 100) { nodes { bodyText } }
      }
    }
  }
}`

const releaseQuery = `query($owner: String!, $name: String!, $after: String) {
  repository(owner: $owner, name: $name) {
    releases(first: 100, after: $after, orderBy: {field: CREATED_AT, direction: ASC}) {
      pageInfo { endCursor hasNextPage }
      nodes {
        name
        tagName
        createdAt
        author { login }
      }
    }
  }
}`

// PullRequests implements the CollaborationSource interface.
func (c *Client) PullRequests(ctx context.Context, owner, name string, visit func(schema.Collaboration)) error {
	return walk(ctx, c, pullRequestQuery, string(schema.PullRequests), owner, name,
		func(p *pullRequestPage) connection[collaborationNode] { return p.Connection },
		func(n collaborationNode) { visit(c.collaboration(n)) })
}

// Issues implements the CollaborationSource interface.
func (c *Client) Issues(ctx context.Context, owner, name string, visit func(schema.Collaboration)) error {
	return walk(ctx, c, issueQuery, string(schema.Issues), owner, name,
		func(p *issuePage) connection[collaborationNode] { return p.Connection },
		func(n collaborationNode) { visit(c.collaboration(n)) })
}

// Releases implements the CollaborationSource interface.
func (c *Client) Releases(ctx context.Context, owner, name string, visit func(schema.Release)) error {
	return walk(ctx, c, releaseQuery, releaseStream, owner, name,
		func(p *releasePage) connection[releaseNode] { return p.Connection },
		func(n releaseNode) {
			r := schema.Release{Name: n.Name, CreatedAt: n.CreatedAt}
			if r.Name == "" {
				r.Name = n.TagName
			}
			if n.Author != nil && n.Author.Login != nil {
				r.Author = *n.Author.Login
			}
			visit(r)
		})
}

// walk requests pages until the connection is exhausted or the repository is unknown.
func walk[P, N any](
	ctx context.Context,
	c *Client,
	q, stream, owner, name string,
	conn func(*P) connection[N],
	visit func(N),
) error {
	pages := newPager()
	for pages.more() {
		page, err := query[P](ctx, c, q, map[string]any{"owner": owner, "name": name, "after": pages.after()})
		if err != nil {
			return fmt.Errorf("failed to fetch %s page of %s/%s: %w", stream, owner, name, err)
		}
		if page == nil {
			c.log.Warnw("Repository not found, assuming no entities", "stream", stream, "owner", owner, "name", name)
			pages.stop()
			break
		}
		cn := conn(page)
		c.rec.PageFetched(stream)
		c.rec.EntitiesFetched(stream, len(cn.Nodes))
		for _, n := range cn.Nodes {
			visit(n)
		}
		pages.advance(cn.PageInfo)
	}
	return nil
}

func (c *Client) collaboration(n collaborationNode) schema.Collaboration {
	out := schema.Collaboration{
		Number:    n.Number,
		CreatedAt: n.CreatedAt,
	}
	if n.ClosedAt != nil {
		out.ClosedAt = *n.ClosedAt
	} else {
		out.ClosedAt = c.now()
		out.Open = true
	}
	for _, p := range n.Participants.Nodes {
		if p != nil && p.Login != nil && *p.Login != "" {
			out.Participants = append(out.Participants, *p.Login)
		}
	}
	for _, cm := range n.Comments.Nodes {
		out.Comments = append(out.Comments, cm.BodyText)
	}
	if n.Commits != nil {
		out.CommitCount = n.Commits.TotalCount
	}
	return out
}

// CommitLogin implements the LoginLookup interface. Commits whose author has
// no account yield an empty login.
func (c *Client) CommitLogin(ctx context.Context, owner, name, sha string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	commit, _, err := c.gh.Repositories.GetCommit(ctx, owner, name, sha, nil)
	if err != nil {
		return "", fmt.Errorf("failed to look up commit %s: %w", sha, asRemoteError(err))
	}
	return commit.GetAuthor().GetLogin(), nil
}
