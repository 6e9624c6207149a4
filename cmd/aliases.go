package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/internal/fetch"
	"github.com/huangsam/teamsmell/internal/identity"
	"github.com/spf13/cobra"
)

var errAliasToken = errors.New("a token is required to look up commit authors")

// aliasesCmd builds the author alias file of a repository.
var aliasesCmd = &cobra.Command{
	Use:   "aliases <repo-url>",
	Short: "Extract author aliases of a repository into an alias file",
	Long: `Group the commit identities of a repository by the account that authored
them, then merge the remaining ones whose email local-parts are closer than
--max-distance. The result is written to --alias-file and is picked up by the
next analyze run.

Examples:
  GITHUB_TOKEN=... teamsmell aliases https://github.com/acme/widgets --max-distance 0.2`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if !cfg.HasRemote() {
			contract.LogFatal("Cannot extract aliases", errAliasToken)
		}

		git := contract.NewGitClient(cfg.GitBackend)
		err := git.Open(rootCtx, cfg.RepositoryURL, cfg.RepositoryPath, cfg.Token)
		exitOnError("Failed to open repository", err)
		commits, err := git.Commits(rootCtx, cfg.RepositoryPath)
		exitOnError("Failed to read commits", err)

		client := fetch.NewClient(&http.Client{Timeout: 60 * time.Second}, cfg.Token, cfg.RequestInterval, log)
		aliases, err := identity.NewExtractor(client, cfg.MaxDistance, log).Extract(rootCtx, cfg.Owner, cfg.Name, commits)
		exitOnError("Failed to extract aliases", err)

		err = identity.WriteAliases(cfg.AliasFile, aliases)
		exitOnError("Failed to write alias file", err)

		merged := 0
		for _, list := range aliases {
			merged += len(list)
		}
		fmt.Printf("Wrote %d identities with %d aliases to %s\n", len(aliases), merged, cfg.AliasFile)
	},
}
