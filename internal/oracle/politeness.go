package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/teamsmell/internal/contract"
)

// CommandPoliteness counts positive politeness markers with an external program.
// The program reads {"texts":[...]} on stdin and writes {"positive_markers":N}.
type CommandPoliteness struct {
	argv []string
}

var _ contract.PolitenessOracle = &CommandPoliteness{} // Compile-time check

// NewCommandPoliteness creates an oracle running argv.
func NewCommandPoliteness(argv ...string) *CommandPoliteness {
	return &CommandPoliteness{argv: argv}
}

// PositiveMarkers implements the PolitenessOracle interface.
func (c *CommandPoliteness) PositiveMarkers(ctx context.Context, texts []string) (float64, error) {
	if len(texts) == 0 {
		return 0, nil
	}
	in, err := json.Marshal(struct {
		Texts []string `json:"texts"`
	}{Texts: texts})
	if err != nil {
		return 0, err
	}
	out, err := runCommand(ctx, c.argv, in)
	if err != nil {
		return 0, fmt.Errorf("politeness: %w", err)
	}
	var parsed struct {
		PositiveMarkers *float64 `json:"positive_markers"`
	}
	if err := json.Unmarshal(out, &parsed); err != nil {
		return 0, fmt.Errorf("politeness output malformed: %w", err)
	}
	if parsed.PositiveMarkers == nil {
		return 0, fmt.Errorf("politeness output has no positive_markers")
	}
	return *parsed.PositiveMarkers, nil
}
