package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/teamsmell/internal/contract"
	"github.com/huangsam/teamsmell/schema"
)

// CommandClassifier predicts smells with an external program. The program reads
// {"features":[...]} on stdin and writes {"smells":["OSE",...]} on stdout.
type CommandClassifier struct {
	argv []string
}

var _ contract.SmellClassifier = &CommandClassifier{} // Compile-time check

// NewCommandClassifier creates a classifier running argv.
func NewCommandClassifier(argv ...string) *CommandClassifier {
	return &CommandClassifier{argv: argv}
}

type classifierInput struct {
	Features []float64 `json:"features"`
}

type classifierOutput struct {
	Smells []schema.SmellCode `json:"smells"`
}

// Predict implements the SmellClassifier interface.
func (c *CommandClassifier) Predict(ctx context.Context, features []float64) ([]schema.SmellCode, error) {
	in, err := json.Marshal(classifierInput{Features: features})
	if err != nil {
		return nil, err
	}
	out, err := runCommand(ctx, c.argv, in)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	var parsed classifierOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("classifier output malformed: %w", err)
	}
	for _, s := range parsed.Smells {
		if _, ok := schema.ValidSmells[s]; !ok {
			return nil, fmt.Errorf("classifier returned unknown smell %q", s)
		}
	}
	return parsed.Smells, nil
}

// NoopClassifier detects nothing. It is used when no classifier is configured.
type NoopClassifier struct{}

var _ contract.SmellClassifier = NoopClassifier{} // Compile-time check

// Predict implements the SmellClassifier interface.
func (NoopClassifier) Predict(context.Context, []float64) ([]schema.SmellCode, error) {
	return nil, nil
}
