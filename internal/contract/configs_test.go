package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/teamsmell/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		RepositoryURL: "https://github.com/acme/widgets",
		Batch:         "3 months",
		Workers:       DefaultWorkers,
		Precision:     DefaultPrecision,
		Output:        "text",
		GitBackend:    "local",
		Color:         "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{"valid minimal config", func(*ConfigRawInput) {}, false},
		{"missing repository", func(in *ConfigRawInput) { in.RepositoryURL = "" }, true},
		{"repository without name", func(in *ConfigRawInput) { in.RepositoryURL = "https://github.com/acme" }, true},
		{"zero workers", func(in *ConfigRawInput) { in.Workers = 0 }, true},
		{"negative distance", func(in *ConfigRawInput) { in.MaxDistance = -1 }, true},
		{"distance above one", func(in *ConfigRawInput) { in.MaxDistance = 1.5 }, true},
		{"precision too high", func(in *ConfigRawInput) { in.Precision = 7 }, true},
		{"invalid output", func(in *ConfigRawInput) { in.Output = "xml" }, true},
		{"parquet without file", func(in *ConfigRawInput) { in.Output = "parquet" }, true},
		{"parquet with file", func(in *ConfigRawInput) {
			in.Output = "parquet"
			in.OutputFile = "out.parquet"
		}, false},
		{"invalid git backend", func(in *ConfigRawInput) { in.GitBackend = "svn" }, true},
		{"invalid batch", func(in *ConfigRawInput) { in.Batch = "3 fortnights" }, true},
		{"zero batch", func(in *ConfigRawInput) { in.Batch = "0 months" }, true},
		{"invalid start date", func(in *ConfigRawInput) { in.StartDate = "01/02/2020" }, true},
		{"invalid color", func(in *ConfigRawInput) { in.Color = "sometimes" }, true},
		{"invalid request interval", func(in *ConfigRawInput) { in.RequestInterval = "soon" }, true},
		{"negative request interval", func(in *ConfigRawInput) { in.RequestInterval = "-1s" }, true},
		{"invalid store backend", func(in *ConfigRawInput) { in.StoreBackend = "oracle" }, true},
		{"mysql without connection", func(in *ConfigRawInput) { in.StoreBackend = "mysql" }, true},
		{"sqlite store", func(in *ConfigRawInput) { in.StoreBackend = "sqlite" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDerivedFields(t *testing.T) {
	input := validInput()
	input.StartDate = "2021-03-01"
	input.Token = "  secret  "
	input.RequestInterval = "500ms"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "acme", cfg.Owner)
	assert.Equal(t, "widgets", cfg.Name)
	assert.Equal(t, filepath.Join(DefaultOutputPath, "acme", "widgets"), cfg.RepositoryPath)
	assert.Equal(t, filepath.Join(cfg.RepositoryPath, "results"), cfg.ResultsPath)
	assert.Equal(t, filepath.Join(cfg.ResultsPath, "metrics"), cfg.MetricsPath)
	assert.Equal(t, filepath.Join(cfg.RepositoryPath, "aliases.yml"), cfg.AliasFile)
	assert.Equal(t, schema.Window{Months: 3}, cfg.Batch)
	assert.Equal(t, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, "secret", cfg.Token)
	assert.True(t, cfg.HasRemote())
	assert.Equal(t, 500*time.Millisecond, cfg.RequestInterval)
	assert.Equal(t, schema.NoneBackend, cfg.StoreBackend)
	assert.True(t, cfg.UseColors)
}

func TestProcessAndValidateBatchMonthsOverride(t *testing.T) {
	input := validInput()
	input.BatchMonths = 6
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, schema.Window{Months: 6}, cfg.Batch)
	assert.Equal(t, DefaultRequestInterval, cfg.RequestInterval)
	assert.False(t, cfg.HasRemote())
}

func TestParseRepositoryURL(t *testing.T) {
	tests := []struct {
		raw   string
		owner string
		name  string
		ok    bool
	}{
		{"https://github.com/acme/widgets", "acme", "widgets", true},
		{"https://github.com/acme/widgets.git", "acme", "widgets", true},
		{"https://github.com/acme/widgets/", "acme", "widgets", true},
		{"github.com/acme/widgets", "", "", false},
		{"https://github.com/", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			owner, name, err := ParseRepositoryURL(tt.raw)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidRepositoryURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		conn        string
		expectError bool
	}{
		{"sqlite ignores connection", schema.SQLiteBackend, "", false},
		{"none ignores connection", schema.NoneBackend, "", false},
		{"valid mysql", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/teamsmell", false},
		{"mysql without tcp", schema.MySQLBackend, "user:pass@localhost/teamsmell", true},
		{"valid postgres", schema.PostgreSQLBackend, "host=localhost dbname=teamsmell", false},
		{"postgres without dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in       string
		expected schema.Window
		ok       bool
	}{
		{"3 months", schema.Window{Months: 3}, true},
		{"1 month", schema.Window{Months: 1}, true},
		{"2 years", schema.Window{Months: 24}, true},
		{"2 weeks", schema.Window{Days: 14}, true},
		{"30 days", schema.Window{Days: 30}, true},
		{"9999 months", schema.Window{Months: 9999}, true},
		{"0 days", schema.Window{}, false},
		{"months", schema.Window{}, false},
		{"3 decades", schema.Window{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, err := ParseWindow(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, w)
		})
	}
}

func TestRevalidateAnalysis(t *testing.T) {
	base := &Config{OutputPath: "out", Batch: schema.Window{Months: 3}}

	cfg := base.Clone()
	require.NoError(t, RevalidateAnalysis(cfg, "https://github.com/acme/gadgets.git", "", ""))
	assert.Equal(t, "acme", cfg.Owner)
	assert.Equal(t, "gadgets", cfg.Name)
	assert.Equal(t, filepath.Join("out", "acme", "gadgets"), cfg.RepositoryPath)
	assert.Equal(t, filepath.Join("out", "acme", "gadgets", "aliases.yml"), cfg.AliasFile)
	assert.Equal(t, schema.Window{Months: 3}, cfg.Batch)
	assert.True(t, cfg.StartDate.IsZero())

	cfg = base.Clone()
	require.NoError(t, RevalidateAnalysis(cfg, "https://github.com/acme/gadgets", "2 weeks", "2024-02-01"))
	assert.Equal(t, schema.Window{Days: 14}, cfg.Batch)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, schema.Window{Months: 3}, base.Batch)

	assert.ErrorIs(t, RevalidateAnalysis(base.Clone(), "gadgets", "", ""), ErrInvalidRepositoryURL)
	assert.Error(t, RevalidateAnalysis(base.Clone(), "https://github.com/acme/gadgets", "soon", ""))
	assert.Error(t, RevalidateAnalysis(base.Clone(), "https://github.com/acme/gadgets", "", "01/02/2024"))
}
