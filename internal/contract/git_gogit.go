package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/huangsam/teamsmell/schema"
)

// GoGitClient implements GitClient in-process with go-git, so no git binary is required.
type GoGitClient struct{}

var _ GitClient = &GoGitClient{} // Compile-time check

// NewGoGitClient creates a new go-git backed client.
func NewGoGitClient() *GoGitClient {
	return &GoGitClient{}
}

// NewGitClient returns the client for the configured backend.
func NewGitClient(backend schema.GitBackend) GitClient {
	if backend == schema.GoGit {
		return NewGoGitClient()
	}
	return NewLocalGitClient()
}

// Open implements the GitClient interface.
func (c *GoGitClient) Open(ctx context.Context, repoURL, path, token string) error {
	if _, err := git.PlainOpen(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create clone directory: %w", err)
	}
	opts := &git.CloneOptions{URL: repoURL}
	if token != "" {
		opts.Auth = &http.BasicAuth{Username: "x-access-token", Password: token}
	}
	if _, err := git.PlainCloneContext(ctx, path, false, opts); err != nil {
		return fmt.Errorf("clone of %s failed: %w", repoURL, err)
	}
	return nil
}

// Commits implements the GitClient interface.
func (c *GoGitClient) Commits(ctx context.Context, path string) ([]schema.Commit, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", path, err)
	}
	iter, err := repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read log of %q: %w", path, err)
	}
	defer iter.Close()

	var commits []schema.Commit
	err = iter.ForEach(func(cm *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, schema.Commit{
			Hash:        cm.Hash.String(),
			AuthorName:  cm.Author.Name,
			AuthorEmail: cm.Author.Email,
			AuthoredAt:  cm.Author.When,
			CommittedAt: cm.Committer.When,
			Message:     strings.TrimSpace(cm.Message),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

type goGitTag struct {
	tag    schema.Tag
	target plumbing.Hash
}

// Tags implements the GitClient interface.
func (c *GoGitClient) Tags(ctx context.Context, path string) ([]schema.Tag, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", path, err)
	}
	refs, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags of %q: %w", path, err)
	}
	defer refs.Close()

	var found []goGitTag
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		// Annotated tags carry their own date, lightweight ones use the commit's.
		if annotated, err := repo.TagObject(ref.Hash()); err == nil {
			target, err := annotated.Commit()
			if err != nil {
				return nil // tags of trees or blobs carry no history
			}
			found = append(found, goGitTag{
				tag:    schema.Tag{Name: name, Date: annotated.Tagger.When},
				target: target.Hash,
			})
			return nil
		}
		target, err := repo.CommitObject(ref.Hash())
		if err != nil {
			return nil
		}
		found = append(found, goGitTag{
			tag:    schema.Tag{Name: name, Date: target.Committer.When},
			target: target.Hash,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].tag.Date.Before(found[j].tag.Date)
	})

	tags := make([]schema.Tag, len(found))
	var seen map[plumbing.Hash]struct{}
	for i, t := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Commits introduced by a tag are those not reachable from the previous tag.
		if i > 0 {
			seen, err = reachable(repo, found[i-1].target)
			if err != nil {
				return nil, fmt.Errorf("failed to walk tag %s: %w", found[i-1].tag.Name, err)
			}
		}
		count, err := countCommits(repo, t.target, seen)
		if err != nil {
			return nil, fmt.Errorf("failed to count commits of tag %s: %w", t.tag.Name, err)
		}
		t.tag.CommitCount = count
		tags[i] = t.tag
	}
	return tags, nil
}

func reachable(repo *git.Repository, from plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	set := make(map[plumbing.Hash]struct{})
	err = iter.ForEach(func(cm *object.Commit) error {
		set[cm.Hash] = struct{}{}
		return nil
	})
	return set, err
}

func countCommits(repo *git.Repository, from plumbing.Hash, exclude map[plumbing.Hash]struct{}) (int, error) {
	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	count := 0
	err = iter.ForEach(func(cm *object.Commit) error {
		if _, ok := exclude[cm.Hash]; !ok {
			count++
		}
		return nil
	})
	return count, err
}
