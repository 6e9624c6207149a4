package contract

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/teamsmell/schema"
)

// Default values for configuration.
const (
	DefaultBatch           = "9999 months"
	DefaultWorkers         = 15
	DefaultOutputPath      = "output"
	DefaultRequestInterval = 2 * time.Second
	DefaultPrecision       = 2
	DefaultMaxDistance     = 0.25
)

// DateFormat is the layout of --start-date and of rendered batch dates.
const DateFormat = "2006-01-02"

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ErrInvalidRepositoryURL is returned when the repository URL has no owner/name path.
var ErrInvalidRepositoryURL = errors.New("invalid repository url")

// Config holds the runtime configuration for an analysis run.
// This struct is the "final, validated" config.
type Config struct {
	RepositoryURL string
	Owner         string
	Name          string

	OutputPath     string
	RepositoryPath string // <output>/<owner>/<name>, where the clone lives
	ResultsPath    string // <repository>/results
	MetricsPath    string // <results>/metrics
	AliasFile      string

	Batch       schema.Window
	StartDate   time.Time // zero means no lower bound
	MaxDistance float64
	Workers     int

	Token             string // Please use env var as this is plaintext
	ToxicityKey       string // Please use env var as this is plaintext
	SentiStrengthPath string
	ClassifierCommand string
	PolitenessCommand string
	RequestInterval   time.Duration

	GitBackend schema.GitBackend

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	MetricsTextfile string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file, .env).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepositoryURL string

	OutputPath        string  `mapstructure:"output-path"`
	AliasFile         string  `mapstructure:"alias-file"`
	Batch             string  `mapstructure:"batch"`
	BatchMonths       int     `mapstructure:"batch-months"`
	StartDate         string  `mapstructure:"start-date"`
	MaxDistance       float64 `mapstructure:"max-distance"`
	Workers           int     `mapstructure:"workers"`
	Token             string  `mapstructure:"token"`
	ToxicityKey       string  `mapstructure:"toxicity-key"`
	SentiStrengthPath string  `mapstructure:"sentistrength-path"`
	ClassifierCommand string  `mapstructure:"classifier-cmd"`
	PolitenessCommand string  `mapstructure:"politeness-cmd"`
	RequestInterval   string  `mapstructure:"request-interval"`
	GitBackend        string  `mapstructure:"git-backend"`
	Output            string  `mapstructure:"output"`
	OutputFile        string  `mapstructure:"output-file"`
	Precision         int     `mapstructure:"precision"`
	Width             int     `mapstructure:"width"`
	Color             string  `mapstructure:"color"`
	StoreBackend      string  `mapstructure:"store-backend"`
	StoreDBConnect    string  `mapstructure:"store-db-connect"`
	MetricsTextfile   string  `mapstructure:"metrics-textfile"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// HasRemote reports whether remote collaboration streams can be fetched.
func (c *Config) HasRemote() bool {
	return c.Token != ""
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := ProcessSettings(cfg, input); err != nil {
		return err
	}
	return resolveRepository(cfg, input)
}

// ProcessSettings validates everything except the repository, for commands
// that receive repositories per request.
func ProcessSettings(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputPath = input.OutputPath
	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputPath
	}
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processBatching(cfg, input); err != nil {
		return err
	}
	if err := processOracles(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// RevalidateAnalysis re-derives the repository layout and, when given, the batch
// width and start date of a cloned config for a request made after startup.
func RevalidateAnalysis(cfg *Config, repoURL, batch, startDate string) error {
	if err := resolveRepository(cfg, &ConfigRawInput{RepositoryURL: repoURL}); err != nil {
		return err
	}
	if batch != "" {
		window, err := ParseWindow(batch)
		if err != nil {
			return err
		}
		cfg.Batch = window
	}
	if startDate != "" {
		t, err := time.ParseInLocation(DateFormat, startDate, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid start date '%s'. expected YYYY-MM-DD: %w", startDate, err)
		}
		cfg.StartDate = t
	}
	return nil
}

// ParseRepositoryURL extracts owner and name from https://host/owner/name[.git].
func ParseRepositoryURL(raw string) (owner, name string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("%w %q: %v", ErrInvalidRepositoryURL, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", "", fmt.Errorf("%w %q: expected https://host/owner/name", ErrInvalidRepositoryURL, raw)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w %q: missing owner or repository name", ErrInvalidRepositoryURL, raw)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// resolveRepository derives repository identity and the filesystem layout.
func resolveRepository(cfg *Config, input *ConfigRawInput) error {
	owner, name, err := ParseRepositoryURL(input.RepositoryURL)
	if err != nil {
		return err
	}
	cfg.RepositoryURL = strings.TrimSpace(input.RepositoryURL)
	cfg.Owner = owner
	cfg.Name = name

	cfg.RepositoryPath = filepath.Join(cfg.OutputPath, owner, name)
	cfg.ResultsPath = filepath.Join(cfg.RepositoryPath, "results")
	cfg.MetricsPath = filepath.Join(cfg.ResultsPath, "metrics")

	cfg.AliasFile = input.AliasFile
	if cfg.AliasFile == "" {
		cfg.AliasFile = filepath.Join(cfg.RepositoryPath, "aliases.yml")
	}
	return nil
}

// validateSimpleInputs processes and validates the scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.MetricsTextfile = input.MetricsTextfile

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.MaxDistance < 0 || input.MaxDistance > 1 {
		return fmt.Errorf("max-distance must be between 0 and 1 (received %.2f)", input.MaxDistance)
	}
	cfg.MaxDistance = input.MaxDistance

	if input.Precision < 0 || input.Precision > 6 {
		return fmt.Errorf("precision must be between 0 and 6 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}

	cfg.GitBackend = schema.GitBackend(strings.ToLower(input.GitBackend))
	if _, ok := schema.ValidGitBackends[cfg.GitBackend]; !ok {
		return fmt.Errorf("invalid git backend '%s'. must be local or gogit", input.GitBackend)
	}
	return nil
}

// processBatching resolves the batch width and the optional start date.
func processBatching(cfg *Config, input *ConfigRawInput) error {
	batch := strings.TrimSpace(input.Batch)
	if input.BatchMonths > 0 {
		batch = fmt.Sprintf("%d months", input.BatchMonths)
	}
	if batch == "" {
		batch = DefaultBatch
	}
	window, err := ParseWindow(batch)
	if err != nil {
		return err
	}
	cfg.Batch = window

	if input.StartDate != "" {
		t, err := time.ParseInLocation(DateFormat, input.StartDate, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid start date '%s'. expected YYYY-MM-DD: %w", input.StartDate, err)
		}
		cfg.StartDate = t
	}
	return nil
}

// processOracles copies the remote credentials and oracle settings.
func processOracles(cfg *Config, input *ConfigRawInput) error {
	cfg.Token = strings.TrimSpace(input.Token)
	cfg.ToxicityKey = strings.TrimSpace(input.ToxicityKey)
	cfg.SentiStrengthPath = input.SentiStrengthPath
	cfg.ClassifierCommand = strings.TrimSpace(input.ClassifierCommand)
	cfg.PolitenessCommand = strings.TrimSpace(input.PolitenessCommand)

	cfg.RequestInterval = DefaultRequestInterval
	if input.RequestInterval != "" {
		d, err := time.ParseDuration(input.RequestInterval)
		if err != nil {
			return fmt.Errorf("invalid request interval '%s': %w", input.RequestInterval, err)
		}
		if d < 0 {
			return fmt.Errorf("request interval cannot be negative (received %s)", d)
		}
		cfg.RequestInterval = d
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseDatabaseBackend normalizes a backend name; empty means no store.
func ParseDatabaseBackend(s string) (schema.DatabaseBackend, error) {
	if s == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(s))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", s)
	}
	return backend, nil
}

// validateBackendConfigs validates the metrics store configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend, err := ParseDatabaseBackend(input.StoreBackend)
	if err != nil {
		return err
	}
	cfg.StoreBackend = backend
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}
