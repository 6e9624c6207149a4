package contract

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/teamsmell/schema"
)

// Field and record separators used in git format strings.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command inside repoPath and returns its stdout.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// Open implements the GitClient interface.
func (c *LocalGitClient) Open(ctx context.Context, repoURL, path, token string) error {
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create clone directory: %w", err)
	}
	cloneURL, err := authenticatedURL(repoURL, token)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, "git", "clone", "--quiet", cloneURL, path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git clone of %s failed: %s", repoURL, strings.TrimSpace(string(out)))
	}
	return nil
}

// Commits implements the GitClient interface.
func (c *LocalGitClient) Commits(ctx context.Context, path string) ([]schema.Commit, error) {
	out, err := c.Run(ctx, path,
		"log",
		"--pretty=format:%x1e%H%x1f%an%x1f%ae%x1f%aI%x1f%cI%x1f%B",
	)
	if err != nil {
		return nil, err
	}
	return parseCommitLog(string(out))
}

// parseCommitLog parses the record/field separated output of Commits.
func parseCommitLog(out string) ([]schema.Commit, error) {
	var commits []schema.Commit
	for record := range strings.SplitSeq(out, recordSep) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, fieldSep, 6)
		if len(fields) < 5 {
			return nil, fmt.Errorf("malformed commit record %q", record)
		}
		authored, err := time.Parse(time.RFC3339, fields[3])
		if err != nil {
			return nil, fmt.Errorf("invalid author date for %s: %w", fields[0], err)
		}
		committed, err := time.Parse(time.RFC3339, fields[4])
		if err != nil {
			return nil, fmt.Errorf("invalid commit date for %s: %w", fields[0], err)
		}
		commit := schema.Commit{
			Hash:        fields[0],
			AuthorName:  fields[1],
			AuthorEmail: fields[2],
			AuthoredAt:  authored,
			CommittedAt: committed,
		}
		if len(fields) == 6 {
			commit.Message = strings.TrimSpace(fields[5])
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// Tags implements the GitClient interface.
func (c *LocalGitClient) Tags(ctx context.Context, path string) ([]schema.Tag, error) {
	out, err := c.Run(ctx, path,
		"for-each-ref",
		"--sort=creatordate",
		"--format=%(refname:short)%1f%(creatordate:iso-strict)",
		"refs/tags",
	)
	if err != nil {
		return nil, err
	}

	var tags []schema.Tag
	for line := range strings.SplitSeq(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		name, dateStr, ok := strings.Cut(line, fieldSep)
		if !ok {
			return nil, fmt.Errorf("malformed tag line %q", line)
		}
		date, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid date for tag %s: %w", name, err)
		}
		tags = append(tags, schema.Tag{Name: name, Date: date})
	}

	for i := range tags {
		rng := "refs/tags/" + tags[i].Name
		if i > 0 {
			rng = "refs/tags/" + tags[i-1].Name + ".." + rng
		}
		out, err := c.Run(ctx, path, "rev-list", "--count", rng)
		if err != nil {
			return nil, err
		}
		count, err := strconv.Atoi(strings.TrimSpace(string(out)))
		if err != nil {
			return nil, fmt.Errorf("invalid commit count for tag %s: %w", tags[i].Name, err)
		}
		tags[i].CommitCount = count
	}
	return tags, nil
}

// authenticatedURL embeds the token as basic auth so private repositories can be cloned.
func authenticatedURL(repoURL, token string) (string, error) {
	if token == "" {
		return repoURL, nil
	}
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidRepositoryURL, repoURL, err)
	}
	u.User = url.UserPassword("x-access-token", token)
	return u.String(), nil
}
