// Package oracle holds the adapters for the external scoring engines: sentiment,
// toxicity, politeness and the smell classifier.
package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrEmptyCommand is returned when a command-backed oracle has nothing to run.
var ErrEmptyCommand = errors.New("oracle command is empty")

// runCommand feeds stdin to an external process and returns its stdout.
func runCommand(ctx context.Context, argv []string, stdin []byte) ([]byte, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, ErrEmptyCommand
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s failed: %w", argv[0], err)
		}
		return nil, fmt.Errorf("%s failed: %w: %s", argv[0], err, msg)
	}
	return out, nil
}

// SplitCommand splits a configured command line on whitespace.
func SplitCommand(line string) []string {
	return strings.Fields(line)
}
