package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/teamsmell/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.PageFetched(StreamLabel(schema.PullRequests))
	r.PageFetched(StreamLabel(schema.PullRequests))
	r.PageFetched(StreamLabel(schema.Issues))
	r.EntitiesFetched("PR", 5)
	r.EntitiesFetched("PR", 0)
	r.SentimentCall()
	r.ToxicityCall()
	r.ToxicityCall()
	r.RateLimitWait(time.Second)
	r.BatchAnalyzed()
	r.RunFinished(1500 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.pages.WithLabelValues("PR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pages.WithLabelValues("Issue")))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.entities.WithLabelValues("PR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sentimentCalls))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.toxicityCalls))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rateLimitWaits))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.batches))
	assert.Equal(t, 1.5, testutil.ToFloat64(r.lastRun))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.PageFetched("PR")
		r.EntitiesFetched("PR", 1)
		r.SentimentCall()
		r.ToxicityCall()
		r.RateLimitWait(0)
		r.BatchAnalyzed()
		r.RunFinished(time.Second)
	})
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.BatchAnalyzed()
	path := filepath.Join(t.TempDir(), "teamsmell.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "teamsmell_batches_analyzed_total 1")
}
