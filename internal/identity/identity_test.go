package identity

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/huangsam/teamsmell/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aliases.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name, author, email, expected string
	}{
		{"email wins", "Alice", " Alice@Example.COM ", "alice@example.com"},
		{"name fallback", " Bob Builder ", "", "bob builder"},
		{"blank email", "Carol", "   ", "carol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Canonical(tt.author, tt.email))
		})
	}
}

func TestLoadAliases(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		aliases, err := LoadAliases(filepath.Join(t.TempDir(), "nope.yml"))
		require.NoError(t, err)
		assert.Empty(t, aliases)
	})

	t.Run("empty path", func(t *testing.T) {
		aliases, err := LoadAliases("")
		require.NoError(t, err)
		assert.Empty(t, aliases)
	})

	t.Run("empty file", func(t *testing.T) {
		aliases, err := LoadAliases(writeFile(t, ""))
		require.NoError(t, err)
		assert.Empty(t, aliases)
	})

	t.Run("byte order mark", func(t *testing.T) {
		aliases, err := LoadAliases(writeFile(t, "\ufeffcanonical1:\n  - a@x.com\n"))
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"canonical1": {"a@x.com"}}, aliases)
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := LoadAliases(writeFile(t, "- just\n- a list\n"))
		assert.ErrorIs(t, err, ErrAliasParse)
	})
}

func TestResolverAliasFile(t *testing.T) {
	r, err := Load(writeFile(t, "canonical1:\n  - a@x.com\n  - B@X.com\n"))
	require.NoError(t, err)

	commits := []schema.Commit{
		{Hash: "1", AuthorName: "A", AuthorEmail: "a@x.com"},
		{Hash: "2", AuthorName: "B", AuthorEmail: "b@x.com"},
		{Hash: "3", AuthorName: "C", AuthorEmail: "C@x.com"},
	}
	var resolved []string
	for c := range r.Commits(slices.Values(commits)) {
		resolved = append(resolved, c.Author)
	}
	assert.Equal(t, []string{"canonical1", "canonical1", "c@x.com"}, resolved)
	assert.Empty(t, commits[0].Author, "source commits must not be modified")
}

func TestResolverWithoutAliases(t *testing.T) {
	r := NewResolver(nil)
	assert.Equal(t, "a@x.com", r.Resolve(" A@x.com"))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, []string{"alice", "bob"}, r.Logins([]string{"Alice", "bob"}))
}

func TestResolverCommitsRestartable(t *testing.T) {
	r := NewResolver(map[string][]string{"dev": {"a@x.com"}})
	seq := r.Commits(slices.Values([]schema.Commit{{AuthorEmail: "a@x.com"}, {AuthorEmail: "b@x.com"}}))

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)

	// Early exit stops consuming the source.
	count := 0
	for range seq {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestResolverIdempotent(t *testing.T) {
	id := rapid.StringMatching(`[a-e]{1,3}(@x\.com)?`)
	rapid.Check(t, func(t *rapid.T) {
		aliases := rapid.MapOf(id, rapid.SliceOfN(id, 0, 4)).Draw(t, "aliases")
		r := NewResolver(aliases)
		for _, raw := range rapid.SliceOfN(id, 1, 10).Draw(t, "ids") {
			once := r.Resolve(raw)
			assert.Equal(t, once, r.Resolve(once), "resolving %q twice", raw)
		}
		for canonical := range maps.Keys(aliases) {
			assert.Equal(t, canonical, r.Resolve(canonical))
		}
	})
}

func TestAreSimilar(t *testing.T) {
	tests := []struct {
		a, b     string
		max      float64
		expected bool
	}{
		{"john.doe@x.com", "john.doe@y.org", 0, true},
		{"john.doe@x.com", "johndoe@y.org", 0.2, true},
		{"john.doe@x.com", "jane@x.com", 0.2, false},
		{"alice", "alice", 0, true},
		{"a@b@c.com", "a@b@d.com", 0, true},
		{"", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.a+"~"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, AreSimilar(tt.a, tt.b, tt.max))
		})
	}
	assert.InDelta(t, 1.0/8.0, Distance("john.doe@x", "johndoe@y"), 1e-9)
}
