package contract

import (
	"context"

	"github.com/huangsam/teamsmell/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock of GitClient.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Open implements the GitClient interface.
func (m *MockGitClient) Open(ctx context.Context, url, path, token string) error {
	return m.Called(ctx, url, path, token).Error(0)
}

// Commits implements the GitClient interface.
func (m *MockGitClient) Commits(ctx context.Context, path string) ([]schema.Commit, error) {
	ret := m.Called(ctx, path)
	commits, _ := ret.Get(0).([]schema.Commit)
	return commits, ret.Error(1)
}

// Tags implements the GitClient interface.
func (m *MockGitClient) Tags(ctx context.Context, path string) ([]schema.Tag, error) {
	ret := m.Called(ctx, path)
	tags, _ := ret.Get(0).([]schema.Tag)
	return tags, ret.Error(1)
}
