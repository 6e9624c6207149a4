package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

var errNoStore = errors.New("no metrics store configured")

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	store   contract.MetricsStore
	analyze Analyzer
}

func jsonResult(data any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	err := contract.RevalidateAnalysis(cfg,
		request.GetString("repo_url", ""),
		request.GetString("batch", ""),
		request.GetString("start_date", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid analysis parameters: %v", err)), nil
	}

	res, err := h.analyze(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return jsonResult(res)
}

func (h *toolHandler) handleListRuns(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.store == nil {
		return mcp.NewToolResultError(errNoStore.Error()), nil
	}
	runs, err := h.store.GetAllRuns()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}
	return jsonResult(runs)
}

func (h *toolHandler) handleGetRunMetrics(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.store == nil {
		return mcp.NewToolResultError(errNoStore.Error()), nil
	}
	runID := request.GetInt("run_id", 0)
	if runID < 1 {
		return mcp.NewToolResultError("run_id must be at least 1"), nil
	}
	rows, err := h.store.GetBatchMetrics(int64(runID))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read run %d: %v", runID, err)), nil
	}
	return jsonResult(rows)
}

func (h *toolHandler) handleStoreStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.store == nil {
		return mcp.NewToolResultError(errNoStore.Error()), nil
	}
	status, err := h.store.GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read store status: %v", err)), nil
	}
	return jsonResult(status)
}
