package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/internal/logger"
	"github.com/huangsam/teamsmell/schema"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// log is the process logger, installed before any command runs.
var log = zap.NewNop().Sugar()

// flushLog flushes the installed logger.
var flushLog = func() {}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "teamsmell",
	Short: "Mine repository history and collaboration for community smells.",
	Long: `Teamsmell slices a repository's history into time batches and measures how its
community collaborates in each of them: commits, tags, releases, pull requests and
issues, social graphs, sentiment and toxicity. Each batch is then classified into
community smells such as Organizational Silo, Lone Wolf or Radio Silence.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PersistentPreRunE:  setupLogging,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig registers config file locations, environment bindings and defaults.
func initConfig() {
	// A missing .env is fine; flags, env and config files still apply.
	_ = godotenv.Load()

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".teamsmell")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("TEAMSMELL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv("token", "TEAMSMELL_TOKEN", "GITHUB_TOKEN"); err != nil {
		contract.LogFatal("Error binding token environment", err)
	}

	viper.SetDefault("batch", contract.DefaultBatch)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("max-distance", contract.DefaultMaxDistance)
	viper.SetDefault("output-path", contract.DefaultOutputPath)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("git-backend", schema.LocalGit)
	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("request-interval", contract.DefaultRequestInterval.String())
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", "info")
	viper.SetDefault("log-format", "console")
}

// loadConfigFile reads the config file when one exists.
func loadConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// setupLogging reads the config file and installs the process logger.
func setupLogging(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	installed, flush, err := logger.Install(logger.Config{
		Level:  viper.GetString("log-level"),
		Format: viper.GetString("log-format"),
		Output: viper.GetString("log-file"),
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	log, flushLog = installed, flush
	return nil
}

// unmarshalInput resolves all config sources into the raw input struct.
func unmarshalInput(args []string) error {
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if len(args) == 1 {
		input.RepositoryURL = args[0]
	}
	return nil
}

// sharedSetup unmarshals config and runs validation for commands that take a repository URL.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	if err := unmarshalInput(args); err != nil {
		return err
	}
	return contract.ProcessAndValidate(cfg, input)
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	defer func() { flushLog() }()
	return rootCmd.Execute()
}

// exitOnError reports a failed command the way LogFatal does, pointing at the log.
func exitOnError(msg string, err error) {
	if err == nil {
		return
	}
	hint := "see the log output above for details"
	if f := viper.GetString("log-file"); f != "" {
		hint = "see " + f + " for details"
	}
	contract.LogFatal(msg+" ("+hint+")", err)
}
