// Package genai calls a local Ollama inference endpoint. The endpoint is an
// untrusted collaborator: it can be slow, down, or return garbage, so every
// failure collapses into ErrUnavailable and callers surface a single
// "analysis unavailable" message instead of transport detail.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable is the only error class callers see. The underlying cause
// is logged, never propagated to users.
var ErrUnavailable = errors.New("analysis unavailable")

// Client talks to an Ollama server's /api/chat endpoint.
type Client struct {
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	log        *slog.Logger
}

// New creates a Client. timeout bounds each Chat call; model generation can
// take minutes on modest hardware, so callers should configure it generously
// but must configure it.
func New(baseURL, model string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		timeout:    timeout,
		httpClient: &http.Client{},
		log:        log,
	}
}

type chatRequest struct {
	Model    string          `json:"model"`
	Messages []chatMessage   `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Chat sends one user prompt and returns the model's reply text. A non-nil
// format is an Ollama structured-output JSON schema; the reply is then a
// JSON document matching it. The call is bounded by the client timeout and
// the caller's context, whichever ends first.
func (c *Client) Chat(ctx context.Context, prompt string, format json.RawMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
		Format:   format,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encoding request", ErrUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: building request", ErrUnavailable)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("ollama unreachable", "error", err)
		return "", ErrUnavailable
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn("ollama read failed", "error", err)
		return "", ErrUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("ollama returned error", "status", resp.StatusCode, "body", truncate(respBody, 200))
		return "", ErrUnavailable
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		c.log.Warn("ollama response unparseable", "error", err)
		return "", ErrUnavailable
	}
	if parsed.Message.Content == "" {
		c.log.Warn("ollama returned empty message")
		return "", ErrUnavailable
	}
	return parsed.Message.Content, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
