package core

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/internal/fetch"
	"github.com/huangsam/teamsmell/internal/oracle"
	"github.com/huangsam/teamsmell/internal/store"
	"github.com/huangsam/teamsmell/internal/telemetry"
	"go.uber.org/zap"
)

// Deps are the collaborators of an analysis run. Source, Toxicity, Politeness,
// Classifier and Store are optional.
type Deps struct {
	Git        contract.GitClient
	Source     contract.CollaborationSource
	Sentiment  contract.SentimentOracle
	Toxicity   contract.ToxicityOracle
	Politeness contract.PolitenessOracle
	Classifier contract.SmellClassifier
	Store      contract.MetricsStore
	Recorder   *telemetry.Recorder
	Log        *zap.SugaredLogger
	Now        func() time.Time
}

var errNoGit = errors.New("a git client is required")

var errNoSentiment = errors.New("a sentiment oracle is required")

func (d Deps) validate() (Deps, error) {
	if d.Git == nil {
		return d, errNoGit
	}
	if d.Sentiment == nil {
		return d, errNoSentiment
	}
	if d.Classifier == nil {
		d.Classifier = oracle.NoopClassifier{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d, nil
}

// NewDeps wires the production collaborators for cfg. The returned function
// releases the metrics store.
func NewDeps(cfg *contract.Config, log *zap.SugaredLogger) (Deps, func(), error) {
	rec := telemetry.New()
	deps := Deps{
		Git:       contract.NewGitClient(cfg.GitBackend),
		Sentiment: oracle.NewSentiStrength(sentiStrengthDir(cfg)),
		Recorder:  rec,
		Log:       log,
		Now:       time.Now,
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}
	if cfg.HasRemote() {
		deps.Source = fetch.NewClient(httpClient, cfg.Token, cfg.RequestInterval, log, fetch.WithRecorder(rec))
	} else {
		log.Warnw("No token configured, remote analyzers will be skipped")
	}
	if cfg.ToxicityKey != "" {
		deps.Toxicity = oracle.NewPaced(
			oracle.NewPerspective(cfg.ToxicityKey, httpClient),
			oracle.DefaultToxicityBudget,
			oracle.WithWaitHook(rec.RateLimitWait),
		)
	}
	if argv := oracle.SplitCommand(cfg.PolitenessCommand); len(argv) > 0 {
		deps.Politeness = oracle.NewCommandPoliteness(argv...)
	}
	if argv := oracle.SplitCommand(cfg.ClassifierCommand); len(argv) > 0 {
		deps.Classifier = oracle.NewCommandClassifier(argv...)
	} else {
		log.Warnw("No classifier command configured, no smells will be detected")
		deps.Classifier = oracle.NoopClassifier{}
	}

	st, err := store.Open(cfg.StoreBackend, cfg.StoreDBConnect)
	if err != nil {
		return Deps{}, func() {}, err
	}
	deps.Store = st
	return deps, func() { _ = st.Close() }, nil
}

// sentiStrengthDir falls back to <output>/sentistrength when no path is configured.
func sentiStrengthDir(cfg *contract.Config) string {
	if cfg.SentiStrengthPath != "" {
		return cfg.SentiStrengthPath
	}
	return filepath.Join(cfg.OutputPath, "sentistrength")
}
