package oracle

import (
	"context"
	"strings"
	"sync"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/schema"
)

// Static is a deterministic oracle for tests and dry runs. Texts are scored by
// keyword: a text containing any Positive word scores +2, any Negative word -2,
// anything else 0. Toxicity is 0.9 for texts containing a Toxic word.
type Static struct {
	Positive []string
	Negative []string
	Toxic    []string
	Markers  float64
	Smells   []schema.SmellCode

	mu       sync.Mutex
	calls    int
	features [][]float64
}

var (
	_ contract.SentimentOracle  = &Static{} // Compile-time check
	_ contract.ToxicityOracle   = &Static{} // Compile-time check
	_ contract.PolitenessOracle = &Static{} // Compile-time check
	_ contract.SmellClassifier  = &Static{} // Compile-time check
)

func containsAny(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// Score implements the SentimentOracle interface.
func (s *Static) Score(_ context.Context, texts []string) ([]int, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	out := make([]int, len(texts))
	for i, t := range texts {
		switch {
		case containsAny(t, s.Negative):
			out[i] = -2
		case containsAny(t, s.Positive):
			out[i] = 2
		}
	}
	return out, nil
}

// Toxicity implements the ToxicityOracle interface.
func (s *Static) Toxicity(_ context.Context, text string) (float64, error) {
	if containsAny(text, s.Toxic) {
		return 0.9, nil
	}
	return 0.1, nil
}

// PositiveMarkers implements the PolitenessOracle interface.
func (s *Static) PositiveMarkers(_ context.Context, texts []string) (float64, error) {
	if len(texts) == 0 {
		return 0, nil
	}
	return s.Markers, nil
}

// Predict implements the SmellClassifier interface and remembers the features it saw.
func (s *Static) Predict(_ context.Context, features []float64) ([]schema.SmellCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features = append(s.features, append([]float64(nil), features...))
	return s.Smells, nil
}

// Calls is the number of Score calls made so far.
func (s *Static) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Features returns every feature vector passed to Predict.
func (s *Static) Features() [][]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]float64(nil), s.features...)
}
