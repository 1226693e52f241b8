// internal/ai/anthropic.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicAPIURL  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"

	// Served fallback for model names that do not belong to this provider.
	anthropicDefaultModel = "claude-3-5-sonnet-20241022"
)

type anthropicProvider struct {
	apiKey     string
	httpClient *http.Client
}

// NewAnthropic builds the Anthropic-backed provider over plain HTTP.
func NewAnthropic(apiKey string, timeout time.Duration) Provider {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &anthropicProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *anthropicProvider) Name() string { return "anthropic" }

// NormalizeModel replaces anything that is not a claude model name with
// the served default.
func (p *anthropicProvider) NormalizeModel(model string) string {
	if !strings.HasPrefix(strings.TrimSpace(model), "claude") {
		return anthropicDefaultModel
	}
	return strings.TrimSpace(model)
}

func (p *anthropicProvider) Generate(ctx context.Context, req Request) (string, error) {
	body := map[string]any{
		"model":      req.Model,
		"max_tokens": req.MaxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &statusError{provider: "anthropic", code: resp.StatusCode, body: string(bodyBytes)}
	}

	var apiResp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(apiResp.Content) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(apiResp.Content[0].Text), nil
}
