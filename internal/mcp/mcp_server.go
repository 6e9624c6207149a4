// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Analyzer runs a complete analysis for an already validated config.
type Analyzer func(ctx context.Context, cfg *contract.Config) (*schema.RunResult, error)

// NewMCPServer initializes and configures the teamsmell MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, st contract.MetricsStore, analyze Analyzer) *server.MCPServer {
	s := server.NewMCPServer(
		"Teamsmell Community Smells Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		store:   st,
		analyze: analyze,
	}

	s.AddTool(mcp.NewTool("analyze_repository",
		mcp.WithDescription("Mine a repository's history and collaboration streams into per-batch metrics and community smells."),
		mcp.WithString("repo_url", mcp.Description("Repository URL of the form https://host/owner/name."), mcp.Required()),
		mcp.WithString("batch", mcp.Description("Batch width (e.g., '3 months', '30 days'). Defaults to the server configuration.")),
		mcp.WithString("start_date", mcp.Description("Ignore commits before this date (YYYY-MM-DD).")),
	), h.handleAnalyzeRepository)

	s.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List the analysis runs recorded in the metrics store."),
	), h.handleListRuns)

	s.AddTool(mcp.NewTool("get_run_metrics",
		mcp.WithDescription("Return the per-batch metric rows of a recorded run."),
		mcp.WithNumber("run_id", mcp.Description("ID of the run, as returned by list_runs."), mcp.Required()),
	), h.handleGetRunMetrics)

	s.AddTool(mcp.NewTool("store_status",
		mcp.WithDescription("Report the backend, size and run counts of the metrics store."),
	), h.handleStoreStatus)

	return s
}

// StartMCPServer serves the teamsmell MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, st contract.MetricsStore, analyze Analyzer) error {
	s := NewMCPServer(baseCfg, st, analyze)
	return server.ServeStdio(s)
}
