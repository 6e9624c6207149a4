package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/internal/store"
	"github.com/huangsam/teamsmell/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetup loads minimal configuration needed for store operations.
// It skips repository validation and the rest of the analysis config.
func storeSetup(_ *cobra.Command, _ []string) error {
	backend, err := contract.ParseDatabaseBackend(viper.GetString("store-backend"))
	if err != nil {
		return err
	}
	connStr := viper.GetString("store-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}
	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// openStore connects to the configured store or exits.
func openStore() *store.Store {
	st, err := store.Open(cfg.StoreBackend, cfg.StoreDBConnect)
	if err != nil {
		contract.LogFatal("Failed to open metrics store", err)
	}
	return st
}

// storeCmd focuses on metrics store management.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the metrics store of recorded runs",
	Long: `Manage the metrics store that records every analysis run.

Each run stores its repository, configuration and timing, and every batch
stores its metric rows, core developers and detected smells.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics
  export  - Export runs and metric rows to Parquet
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  # Check store status
  teamsmell store status

  # Export for analysis in pandas/DuckDB
  teamsmell store export --output-file smells`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display store statistics and connection details",
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		st := openStore()
		defer func() { _ = st.Close() }()
		status, err := st.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		store.PrintStatus(os.Stdout, status)
	},
}

// storeExportCmd exports recorded runs to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs and metric rows to Parquet files",
	Long: `Write the metrics store to two Parquet files named after --output-file:
<prefix>.runs.parquet and <prefix>.batch_metrics.parquet.

Examples:
  teamsmell store export --output-file smells`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		st := openStore()
		defer func() { _ = st.Close() }()
		if err := store.ExportParquet(st, cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export store", err)
		}
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	Long: `Delete every recorded run, batch and metric row.

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := store.Clear(cfg.StoreBackend, contract.GetStoreDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeMigrateCmd runs the schema migrations.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations",
	Long: `Apply or roll back the embedded schema migrations of the store backend.

Examples:
  # Migrate to the latest version
  teamsmell store migrate

  # Roll back everything
  teamsmell store migrate --target-version 0`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.StoreBackend == schema.NoneBackend {
			contract.LogFatal("Cannot migrate", fmt.Errorf("store backend is none"))
		}
		if err := store.Migrate(cfg.StoreBackend, cfg.StoreDBConnect, viper.GetInt("target-version"), os.Stdout); err != nil {
			contract.LogFatal("Migration failed", err)
		}
	},
}
