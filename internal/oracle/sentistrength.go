package oracle

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/huangsam/teamsmell/internal/contract"
)

// SentiStrength scores texts with the SentiStrength jar on the signed -4..+4 scale.
type SentiStrength struct {
	java string
	jar  string
	data string
}

var _ contract.SentimentOracle = &SentiStrength{} // Compile-time check

// NewSentiStrength expects dir to hold SentiStrength.jar and the SentiStrength_Data folder.
func NewSentiStrength(dir string) *SentiStrength {
	return &SentiStrength{
		java: "java",
		jar:  filepath.Join(dir, "SentiStrength.jar"),
		data: filepath.Join(dir, "SentiStrength_Data") + string(filepath.Separator),
	}
}

// Score implements the SentimentOracle interface with a single process per call.
func (s *SentiStrength) Score(ctx context.Context, texts []string) ([]int, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var in bytes.Buffer
	for _, t := range texts {
		in.WriteString(flatten(t))
		in.WriteByte('\n')
	}
	out, err := runCommand(ctx, []string{s.java, "-jar", s.jar, "stdin", "sentidata", s.data, "scale"}, in.Bytes())
	if err != nil {
		return nil, fmt.Errorf("sentistrength: %w", err)
	}
	return parseScaleOutput(out, len(texts))
}

// flatten keeps one text per line; an empty line would make the jar skip a score.
func flatten(text string) string {
	text = strings.Join(strings.Fields(text), "+")
	if text == "" {
		return "+"
	}
	return text
}

// parseScaleOutput reads the trailing scale field of every output line.
func parseScaleOutput(out []byte, want int) ([]int, error) {
	scores := make([]int, 0, want)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			return nil, fmt.Errorf("sentistrength: unexpected output line %q", sc.Text())
		}
		scores = append(scores, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(scores) != want {
		return nil, fmt.Errorf("sentistrength: got %d scores for %d texts", len(scores), want)
	}
	return scores, nil
}
