package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/teamsmell/core"
	"github.com/spf13/cobra"
)

// analyzeCmd mines a repository for community smells.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <repo-url>",
	Short: "Mine a repository's history and collaboration for community smells",
	Long: `Clone or update the repository under --output-path, slice its history into
batches of --batch width and measure every batch: commits, tags, releases, pull
requests, issues, social graphs, sentiment and toxicity.

Remote analyzers need a token (GITHUB_TOKEN). Without one only the local
history is analyzed.

Examples:
  # Quarterly batches of the whole history
  teamsmell analyze https://github.com/acme/widgets --batch "3 months"

  # JSON report of the last two years
  teamsmell analyze https://github.com/acme/widgets --start-date 2024-01-01 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		deps, cleanup, err := core.NewDeps(cfg, log)
		exitOnError("Failed to set up analysis", err)
		defer cleanup()

		err = core.ExecuteAnalysis(rootCtx, cfg, deps)
		if errors.Is(err, core.ErrNoData) {
			fmt.Println("No commits found to analyze.")
			return
		}
		if err != nil {
			cleanup()
			exitOnError("Analysis failed", err)
		}
	},
}
