package cmd

import (
	"context"

	"github.com/huangsam/teamsmell/core"
	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/internal/mcp"
	"github.com/huangsam/teamsmell/internal/store"
	"github.com/huangsam/teamsmell/schema"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the teamsmell MCP server",
	Long:  `Launch an MCP server that allows AI agents to analyze repositories and query recorded runs via standard tools.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// No header is written in MCP mode since stdio carries the protocol.
		if err := unmarshalInput(nil); err != nil {
			return err
		}
		return contract.ProcessSettings(cfg, input)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		st, err := store.Open(cfg.StoreBackend, cfg.StoreDBConnect)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		return mcp.StartMCPServer(rootCtx, cfg, st, analyzeWithStore(st))
	},
}

// analyzeWithStore runs analyses that record into the already opened store.
func analyzeWithStore(st contract.MetricsStore) mcp.Analyzer {
	return func(ctx context.Context, runCfg *contract.Config) (*schema.RunResult, error) {
		depsCfg := runCfg.Clone()
		depsCfg.StoreBackend = schema.NoneBackend
		deps, cleanup, err := core.NewDeps(depsCfg, log)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		deps.Store = st
		return core.Run(ctx, runCfg, deps)
	}
}
