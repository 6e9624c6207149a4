// Package identity merges aliased author identities into canonical ones.
package identity

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/huangsam/teamsmell/schema"
	"gopkg.in/yaml.v3"
)

// ErrAliasParse is returned when the alias file is not a canonical -> aliases mapping.
var ErrAliasParse = errors.New("malformed alias file")

// Canonical returns the canonical key of a raw author: the trimmed, lower-cased
// email, or the name when there is no email.
func Canonical(name, email string) string {
	id := email
	if strings.TrimSpace(id) == "" {
		id = name
	}
	return strings.ToLower(strings.TrimSpace(id))
}

// Resolver maps any known alias to its canonical identity.
type Resolver struct {
	aliases map[string]string
}

// NewResolver transposes a canonical -> aliases mapping. Canonical keys always
// resolve to themselves, so resolving twice gives the same identity.
func NewResolver(aliases map[string][]string) *Resolver {
	r := &Resolver{aliases: make(map[string]string)}
	for canonical, list := range aliases {
		for _, alias := range list {
			alias = Canonical("", alias)
			if alias != "" {
				r.aliases[alias] = Canonical("", canonical)
			}
		}
	}
	for canonical := range aliases {
		key := Canonical("", canonical)
		r.aliases[key] = key
	}
	return r
}

// Load reads the alias file at path. A missing or empty file yields a resolver
// that passes identities through unchanged.
func Load(path string) (*Resolver, error) {
	aliases, err := LoadAliases(path)
	if err != nil {
		return nil, err
	}
	return NewResolver(aliases), nil
}

// LoadAliases parses the YAML alias file at path.
func LoadAliases(path string) (map[string][]string, error) {
	if path == "" {
		return map[string][]string{}, nil
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string][]string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read alias file %s: %w", path, err)
	}
	content = []byte(strings.TrimPrefix(string(content), "\ufeff"))

	aliases := map[string][]string{}
	if err := yaml.Unmarshal(content, &aliases); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrAliasParse, path, err)
	}
	if aliases == nil {
		aliases = map[string][]string{}
	}
	return aliases, nil
}

// Len is the number of known aliases, canonical keys included.
func (r *Resolver) Len() int {
	return len(r.aliases)
}

// Resolve returns the canonical identity of id.
func (r *Resolver) Resolve(id string) string {
	id = Canonical("", id)
	if canonical, ok := r.aliases[id]; ok {
		return canonical
	}
	return id
}

// Commits lazily sets the resolved Author of every commit. The returned sequence
// can be ranged over again exactly when the source can; the source is not modified.
func (r *Resolver) Commits(source iter.Seq[schema.Commit]) iter.Seq[schema.Commit] {
	return func(yield func(schema.Commit) bool) {
		for c := range source {
			c.Author = r.Resolve(Canonical(c.AuthorName, c.AuthorEmail))
			if !yield(c) {
				return
			}
		}
	}
}

// Logins returns a resolved copy of a participant login list.
func (r *Resolver) Logins(logins []string) []string {
	out := make([]string, len(logins))
	for i, login := range logins {
		out[i] = r.Resolve(login)
	}
	return out
}
