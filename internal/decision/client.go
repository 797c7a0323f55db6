// Package decision is a client for the DecisionRules solver REST API.
package decision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SaurabhKalal/rag-chatbot/internal/errors"
)

const (
	// solverStrategy selects the rule-resolution strategy on the solver.
	solverStrategy = "STANDARD"
	// solverVersion pins the published version of the decision model.
	solverVersion = "1"

	defaultTimeout = 30 * time.Second
)

type Config struct {
	// BaseURL of the solver API, e.g. https://api.decisionrules.io.
	BaseURL string
	// APIKey is the solver API key.
	APIKey string
	// ModelID identifies the decision model to solve against.
	ModelID string
}

// Client invokes one decision model with a fixed strategy and version.
type Client struct {
	baseURL    string
	apiKey     string
	modelID    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		modelID:    cfg.ModelID,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.With("source", "decision.Client"),
	}
}

// Solve submits the payload to the rules engine and returns the raw JSON
// response body. The payload is expected to already be in the solver's
// envelope shape.
func (c *Client) Solve(ctx context.Context, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal solver payload")
	}

	url := fmt.Sprintf("%s/rule/solve/%s/%s", c.baseURL, c.modelID, solverVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create solver request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Strategy", solverStrategy)

	c.logger.LogAttrs(ctx, slog.LevelDebug, "solving decision model", slog.String("model_id", c.modelID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call solver", slog.String("model_id", c.modelID))
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.LogAttrs(ctx, slog.LevelError, "close solver response body", errors.SlogError(closeErr))
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read solver response")
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.New("solver returned error status",
			slog.Int("status", resp.StatusCode), slog.String("body", string(raw)))
	}

	return raw, nil
}
