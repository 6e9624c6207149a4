// Package contract provides interfaces and shared utilities for the teamsmell internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/teamsmell/schema"
)

// GitClient defines the repository operations the analysis needs.
// This allows the core analysis logic to be tested without needing a real repository.
type GitClient interface {
	// Open clones url into path when path holds no repository yet, otherwise it reuses the clone.
	Open(ctx context.Context, url, path, token string) error

	// Commits returns every commit reachable from HEAD, in no particular order.
	Commits(ctx context.Context, path string) ([]schema.Commit, error)

	// Tags returns all tags sorted by date, each with the number of commits it introduced.
	Tags(ctx context.Context, path string) ([]schema.Tag, error)
}

// CollaborationSource streams remote collaboration entities page by page.
// A repository the source does not know yields no entities and no error.
type CollaborationSource interface {
	PullRequests(ctx context.Context, owner, name string, visit func(schema.Collaboration)) error
	Issues(ctx context.Context, owner, name string, visit func(schema.Collaboration)) error
	Releases(ctx context.Context, owner, name string, visit func(schema.Release)) error
}

// LoginLookup resolves the remote account login that authored a commit.
type LoginLookup interface {
	CommitLogin(ctx context.Context, owner, name, sha string) (string, error)
}

// SentimentOracle scores texts on a signed scale; one score per input.
// Scores >= 1 are positive and scores <= -1 are negative.
type SentimentOracle interface {
	Score(ctx context.Context, texts []string) ([]int, error)
}

// ToxicityOracle returns the toxicity probability of a single comment in [0,1].
type ToxicityOracle interface {
	Toxicity(ctx context.Context, text string) (float64, error)
}

// RunPacer is implemented by oracles that must be told when a scoring run starts.
type RunPacer interface {
	Begin(ctx context.Context) error
}

// PolitenessOracle counts positive politeness markers across texts.
type PolitenessOracle interface {
	PositiveMarkers(ctx context.Context, texts []string) (float64, error)
}

// SmellClassifier predicts community smells from a fixed-order feature vector.
type SmellClassifier interface {
	Predict(ctx context.Context, features []float64) ([]schema.SmellCode, error)
}

// MetricsStore defines the durable sink for analysis runs and their per-batch metric rows.
type MetricsStore interface {
	// BeginRun creates a new run and returns its unique ID.
	BeginRun(startTime time.Time, repository string, configParams map[string]any) (int64, error)

	// RecordBatch stores the name/value rows of one batch.
	RecordBatch(runID int64, batch schema.BatchResult) error

	// EndRun updates the run with completion data.
	EndRun(runID int64, endTime time.Time, batchCount int) error

	// GetStatus returns status information about the store.
	GetStatus() (schema.StoreStatus, error)

	// GetAllRuns returns every stored run ordered by ID.
	GetAllRuns() ([]schema.RunRecord, error)

	// GetBatchMetrics returns the metric rows of a run, or of every run when runID is 0.
	GetBatchMetrics(runID int64) ([]schema.BatchMetricRecord, error)

	// Close closes the underlying connection.
	Close() error
}
