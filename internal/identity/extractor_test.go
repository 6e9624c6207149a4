package identity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockLookup struct {
	mock.Mock
}

var _ contract.LoginLookup = &mockLookup{} // Compile-time check

func (m *mockLookup) CommitLogin(ctx context.Context, owner, name, sha string) (string, error) {
	ret := m.Called(ctx, owner, name, sha)
	return ret.String(0), ret.Error(1)
}

func TestExtractorExtract(t *testing.T) {
	ctx := context.Background()
	commits := []schema.Commit{
		{Hash: "s1", AuthorEmail: "alice@work.com"},
		{Hash: "s2", AuthorEmail: "alice@home.com"},
		{Hash: "s3", AuthorEmail: "alice.w@home.com"},
		{Hash: "s4", AuthorEmail: "bob@x.com"},
		{Hash: "s5", AuthorEmail: "bob1@y.com"},
		{Hash: "s6", AuthorEmail: "zed@z.com"},
		{Hash: "s7", AuthorEmail: "alice@work.com"},
	}
	lookup := &mockLookup{}
	lookup.On("CommitLogin", ctx, "acme", "widgets", "s1").Return("alice-gh", nil)
	lookup.On("CommitLogin", ctx, "acme", "widgets", "s2").Return("alice-gh", nil)
	lookup.On("CommitLogin", ctx, "acme", "widgets", "s3").Return("", nil)
	lookup.On("CommitLogin", ctx, "acme", "widgets", "s4").Return("", nil)
	lookup.On("CommitLogin", ctx, "acme", "widgets", "s5").Return("", nil)
	lookup.On("CommitLogin", ctx, "acme", "widgets", "s6").Return("", nil)

	e := NewExtractor(lookup, 0.3, zap.NewNop().Sugar())
	aliases, err := e.Extract(ctx, "acme", "widgets", commits)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"alice@home.com", "alice@work.com", "alice.w@home.com"}, aliases["alice-gh"])
	assert.Equal(t, []string{"bob@x.com"}, aliases["bob1@y.com"])
	assert.NotContains(t, aliases, "zed@z.com")
	lookup.AssertExpectations(t)

	// The extracted file feeds the resolver.
	path := filepath.Join(t.TempDir(), "nested", "aliases.yml")
	require.NoError(t, WriteAliases(path, aliases))
	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alice-gh", r.Resolve("alice.w@home.com"))
	assert.Equal(t, "bob1@y.com", r.Resolve("bob@x.com"))
	assert.Equal(t, "zed@z.com", r.Resolve("zed@z.com"))
}

func TestExtractorLookupError(t *testing.T) {
	ctx := context.Background()
	lookup := &mockLookup{}
	lookup.On("CommitLogin", ctx, "acme", "widgets", "s1").Return("", errors.New("boom"))

	e := NewExtractor(lookup, 0, zap.NewNop().Sugar())
	_, err := e.Extract(ctx, "acme", "widgets", []schema.Commit{{Hash: "s1", AuthorEmail: "a@x.com"}})
	assert.Error(t, err)
}
