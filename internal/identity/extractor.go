package identity

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/schema"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Extractor builds an alias file from commit history. Authors whose commits
// map to the same remote login are grouped under that login; the rest are
// merged by local-part similarity.
type Extractor struct {
	lookup      contract.LoginLookup
	maxDistance float64
	log         *zap.SugaredLogger
}

// NewExtractor creates an alias extractor.
func NewExtractor(lookup contract.LoginLookup, maxDistance float64, log *zap.SugaredLogger) *Extractor {
	return &Extractor{lookup: lookup, maxDistance: maxDistance, log: log}
}

// Extract returns a canonical -> aliases mapping for the authors of commits.
func (e *Extractor) Extract(ctx context.Context, owner, name string, commits []schema.Commit) (map[string][]string, error) {
	// one commit per distinct author
	shaByEmail := map[string]string{}
	for _, c := range commits {
		id := Canonical(c.AuthorName, c.AuthorEmail)
		if _, ok := shaByEmail[id]; !ok {
			shaByEmail[id] = c.Hash
		}
	}
	emails := make([]string, 0, len(shaByEmail))
	for email := range shaByEmail {
		emails = append(emails, email)
	}
	slices.Sort(emails)
	e.log.Infow("Looking up author logins", "authors", len(emails))

	aliases := map[string][]string{}
	assigned := map[string]string{} // email -> alias key
	var unmatched []string
	for _, email := range emails {
		login, err := e.lookup.CommitLogin(ctx, owner, name, shaByEmail[email])
		if err != nil {
			return nil, fmt.Errorf("failed to look up login of %s: %w", email, err)
		}
		if login == "" {
			unmatched = append(unmatched, email)
			continue
		}
		aliases[login] = append(aliases[login], email)
		assigned[email] = login
	}

	for _, a := range unmatched {
		if _, ok := assigned[a]; ok {
			continue
		}
		if key, ok := e.matchAssigned(a, assigned); ok {
			aliases[key] = append(aliases[key], a)
			assigned[a] = key
			continue
		}
		if key, ok := e.matchKey(a, aliases); ok {
			aliases[key] = append(aliases[key], a)
			assigned[a] = key
			continue
		}
		for _, b := range unmatched {
			if a == b {
				continue
			}
			if _, ok := assigned[b]; ok {
				continue
			}
			if AreSimilar(a, b, e.maxDistance) {
				aliases[a] = append(aliases[a], b)
				assigned[a] = a
				assigned[b] = a
				break
			}
		}
	}
	e.log.Infow("Extracted aliases", "canonical", len(aliases), "unmatched", len(unmatched))
	return aliases, nil
}

func (e *Extractor) matchAssigned(a string, assigned map[string]string) (string, bool) {
	keys := make([]string, 0, len(assigned))
	for k := range assigned {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if AreSimilar(a, k, e.maxDistance) {
			return assigned[k], true
		}
	}
	return "", false
}

func (e *Extractor) matchKey(a string, aliases map[string][]string) (string, bool) {
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if AreSimilar(a, k, e.maxDistance) {
			return k, true
		}
	}
	return "", false
}

// WriteAliases replaces the alias file at path with aliases.
func WriteAliases(path string, aliases map[string][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create alias directory: %w", err)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(aliases); err != nil {
		return fmt.Errorf("failed to encode aliases: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
