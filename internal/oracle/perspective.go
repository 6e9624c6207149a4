package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/huangsam/teamsmell/internal/contract"
)

// PerspectiveEndpoint is the Comment Analyzer API.
const PerspectiveEndpoint = "https://commentanalyzer.googleapis.com/v1alpha1/comments:analyze"

// PerspectiveError is a non-success answer of the Comment Analyzer API.
type PerspectiveError struct {
	Status  int
	Code    int
	Reason  string
	Message string
	Body    string
}

func (e *PerspectiveError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("perspective: %d %s: %s", e.Status, e.Reason, e.Message)
	}
	return fmt.Sprintf("perspective: status %d: %s", e.Status, e.Body)
}

// Perspective scores comment toxicity with the Comment Analyzer API.
type Perspective struct {
	endpoint string
	key      string
	client   *http.Client
}

var _ contract.ToxicityOracle = &Perspective{} // Compile-time check

// NewPerspective creates a client; a nil httpClient uses a 30 second timeout.
func NewPerspective(key string, httpClient *http.Client) *Perspective {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Perspective{endpoint: PerspectiveEndpoint, key: key, client: httpClient}
}

// WithEndpoint points the client somewhere else, e.g. a test server.
func (p *Perspective) WithEndpoint(endpoint string) *Perspective {
	p.endpoint = endpoint
	return p
}

type analyzeRequest struct {
	Comment             analyzeText         `json:"comment"`
	Languages           []string            `json:"languages"`
	RequestedAttributes map[string]struct{} `json:"requestedAttributes"`
}

type analyzeText struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	AttributeScores map[string]struct {
		SummaryScore struct {
			Value float64 `json:"value"`
		} `json:"summaryScore"`
	} `json:"attributeScores"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Toxicity implements the ToxicityOracle interface.
func (p *Perspective) Toxicity(ctx context.Context, text string) (float64, error) {
	payload, err := json.Marshal(analyzeRequest{
		Comment:             analyzeText{Text: text},
		Languages:           []string{"en"},
		RequestedAttributes: map[string]struct{}{"TOXICITY": {}},
	})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"?key="+url.QueryEscape(p.key), bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("perspective request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("perspective response unreadable: %w", err)
	}

	var parsed analyzeResponse
	decodeErr := json.Unmarshal(body, &parsed)
	if resp.StatusCode != http.StatusOK || (decodeErr == nil && parsed.Error != nil) {
		perr := &PerspectiveError{Status: resp.StatusCode, Body: string(body)}
		if decodeErr == nil && parsed.Error != nil {
			perr.Code = parsed.Error.Code
			perr.Reason = parsed.Error.Status
			perr.Message = parsed.Error.Message
		}
		return 0, perr
	}
	if decodeErr != nil {
		return 0, fmt.Errorf("perspective response malformed: %w", decodeErr)
	}
	score, ok := parsed.AttributeScores["TOXICITY"]
	if !ok {
		return 0, fmt.Errorf("perspective response has no TOXICITY score")
	}
	return score.SummaryScore.Value, nil
}
