// Package telemetry counts the work of an analysis run with Prometheus collectors.
package telemetry

import (
	"fmt"
	"time"

	"github.com/huangsam/teamsmell/schema"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns an independent registry so repeated runs never collide.
type Recorder struct {
	registry *prometheus.Registry

	pages          *prometheus.CounterVec
	entities       *prometheus.CounterVec
	sentimentCalls prometheus.Counter
	toxicityCalls  prometheus.Counter
	rateLimitWaits prometheus.Counter
	batches        prometheus.Counter
	lastRun        prometheus.Gauge
}

// New creates a recorder with every collector registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamsmell",
			Name:      "pages_fetched_total",
			Help:      "Remote pages fetched per collaboration stream.",
		}, []string{"stream"}),
		entities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "teamsmell",
			Name:      "entities_fetched_total",
			Help:      "Pull requests, issues and releases retrieved.",
		}, []string{"stream"}),
		sentimentCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "teamsmell",
			Name:      "sentiment_calls_total",
			Help:      "Calls made to the sentiment oracle.",
		}),
		toxicityCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "teamsmell",
			Name:      "toxicity_calls_total",
			Help:      "Calls made to the toxicity oracle.",
		}),
		rateLimitWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "teamsmell",
			Name:      "rate_limit_waits_total",
			Help:      "Times a remote quota forced a wait.",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "teamsmell",
			Name:      "batches_analyzed_total",
			Help:      "Batches written to the metrics sink.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "teamsmell",
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the most recent run.",
		}),
	}
	r.registry.MustRegister(r.pages, r.entities, r.sentimentCalls, r.toxicityCalls, r.rateLimitWaits, r.batches, r.lastRun)
	return r
}

// Registry exposes the gatherer, e.g. for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// PageFetched counts one remote page of a stream; releases use the "Release" label.
func (r *Recorder) PageFetched(stream string) {
	if r == nil {
		return
	}
	r.pages.WithLabelValues(stream).Inc()
}

// EntitiesFetched counts retrieved entities of a stream.
func (r *Recorder) EntitiesFetched(stream string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.entities.WithLabelValues(stream).Add(float64(n))
}

// SentimentCall counts one sentiment oracle call.
func (r *Recorder) SentimentCall() {
	if r == nil {
		return
	}
	r.sentimentCalls.Inc()
}

// ToxicityCall counts one toxicity oracle call.
func (r *Recorder) ToxicityCall() {
	if r == nil {
		return
	}
	r.toxicityCalls.Inc()
}

// RateLimitWait counts one quota wait of any duration.
func (r *Recorder) RateLimitWait(time.Duration) {
	if r == nil {
		return
	}
	r.rateLimitWaits.Inc()
}

// BatchAnalyzed counts one batch handed to the sink.
func (r *Recorder) BatchAnalyzed() {
	if r == nil {
		return
	}
	r.batches.Inc()
}

// RunFinished records the wall time of a run.
func (r *Recorder) RunFinished(d time.Duration) {
	if r == nil {
		return
	}
	r.lastRun.Set(d.Seconds())
}

// StreamLabel is the label value of a collaboration stream.
func StreamLabel(s schema.Stream) string {
	return string(s)
}

// WriteTextfile writes the registry in the Prometheus text format, for the
// node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
