// Package cmd defines the command-line interface for teamsmell.
package cmd

import (
	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(aliasesCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output-path", contract.DefaultOutputPath, "Directory holding clones, results and the alias file")
	rootCmd.PersistentFlags().String("alias-file", "", "Path to the author alias file (default <output-path>/<owner>/<name>/aliases.yml)")
	rootCmd.PersistentFlags().String("batch", contract.DefaultBatch, "Batch width (e.g., '3 months', '30 days')")
	rootCmd.PersistentFlags().Int("batch-months", 0, "Batch width in months, overrides --batch when positive")
	rootCmd.PersistentFlags().String("start-date", "", "Ignore commits before this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().Float64("max-distance", contract.DefaultMaxDistance, "Maximum normalized distance for alias merging")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("token", "", "GitHub token for remote analyzers (prefer GITHUB_TOKEN)")
	rootCmd.PersistentFlags().String("toxicity-key", "", "Perspective API key (prefer TEAMSMELL_TOXICITY_KEY)")
	rootCmd.PersistentFlags().String("sentistrength-path", "", "Directory holding SentiStrength.jar and its data")
	rootCmd.PersistentFlags().String("classifier-cmd", "", "Command that reads batch features as JSON and prints smell codes")
	rootCmd.PersistentFlags().String("politeness-cmd", "", "Command that scores comment politeness")
	rootCmd.PersistentFlags().String("request-interval", contract.DefaultRequestInterval.String(), "Pause between remote requests")
	rootCmd.PersistentFlags().String("git-backend", string(schema.LocalGit), "Git backend: local or gogit")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Metrics store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("metrics-textfile", "", "Write Prometheus run metrics to this file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
