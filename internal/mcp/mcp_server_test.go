package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/teamsmell/internal/contract"
	mcp_internal "github.com/huangsam/teamsmell/internal/mcp"
	"github.com/huangsam/teamsmell/internal/store"
	"github.com/huangsam/teamsmell/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, st contract.MetricsStore, analyze mcp_internal.Analyzer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	baseCfg := &contract.Config{OutputPath: "output", Batch: schema.Window{Months: 3}}
	s := mcp_internal.NewMCPServer(baseCfg, st, analyze)

	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)
	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestAnalyzeRepository(t *testing.T) {
	var got *contract.Config
	analyze := func(_ context.Context, cfg *contract.Config) (*schema.RunResult, error) {
		got = cfg
		return &schema.RunResult{Owner: cfg.Owner, Repository: cfg.Name, RunID: 3}, nil
	}

	res := call(t, nil, analyze, "analyze_repository", map[string]any{
		"repo_url":   "https://github.com/acme/widgets",
		"batch":      "30 days",
		"start_date": "2024-01-15",
	})
	require.False(t, res.IsError, text(res))

	require.NotNil(t, got)
	assert.Equal(t, "acme", got.Owner)
	assert.Equal(t, schema.Window{Days: 30}, got.Batch)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got.StartDate)

	var decoded schema.RunResult
	require.NoError(t, json.Unmarshal([]byte(text(res)), &decoded))
	assert.Equal(t, int64(3), decoded.RunID)
	assert.Equal(t, "widgets", decoded.Repository)
}

func TestAnalyzeRepositoryErrors(t *testing.T) {
	failing := func(context.Context, *contract.Config) (*schema.RunResult, error) {
		return nil, errors.New("clone failed")
	}
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing url", map[string]any{}, "invalid analysis parameters"},
		{"bad batch", map[string]any{"repo_url": "https://github.com/acme/widgets", "batch": "forever"}, "invalid batch width"},
		{"analysis failure", map[string]any{"repo_url": "https://github.com/acme/widgets"}, "analysis failed: clone failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, nil, failing, "analyze_repository", tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, text(res), tt.want)
		})
	}
}

func TestListRunsAndMetrics(t *testing.T) {
	st := &store.MockMetricsStore{}
	st.On("GetAllRuns").Return([]schema.RunRecord{{RunID: 1, Repository: "acme/widgets", BatchCount: 2}}, nil)
	st.On("GetBatchMetrics", int64(1)).Return([]schema.BatchMetricRecord{{RunID: 1, Name: "CommitCount", Value: 12}}, nil)

	res := call(t, st, nil, "list_runs", nil)
	require.False(t, res.IsError)
	var runs []schema.RunRecord
	require.NoError(t, json.Unmarshal([]byte(text(res)), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "acme/widgets", runs[0].Repository)

	res = call(t, st, nil, "get_run_metrics", map[string]any{"run_id": 1.0})
	require.False(t, res.IsError)
	var rows []schema.BatchMetricRecord
	require.NoError(t, json.Unmarshal([]byte(text(res)), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 12.0, rows[0].Value)

	res = call(t, st, nil, "get_run_metrics", map[string]any{"run_id": 0.0})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "run_id must be at least 1")
	st.AssertExpectations(t)
}

func TestStoreTools(t *testing.T) {
	st := &store.MockMetricsStore{}
	st.On("GetStatus").Return(schema.StoreStatus{Backend: "sqlite", Connected: true, TotalRuns: 4}, nil)
	st.On("GetAllRuns").Return(nil, errors.New("locked"))

	res := call(t, st, nil, "store_status", nil)
	require.False(t, res.IsError)
	assert.Contains(t, text(res), `"total_runs": 4`)

	res = call(t, st, nil, "list_runs", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "failed to list runs: locked")

	res = call(t, nil, nil, "store_status", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "no metrics store configured")
}
