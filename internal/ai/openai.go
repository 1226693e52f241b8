// internal/ai/openai.go
package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const openaiSystemPrompt = "You are a professional nutritionist and fitness trainer. Return only valid JSON."

type openaiProvider struct {
	client       *openai.Client
	defaultModel string
}

// NewOpenAI builds the OpenAI-backed provider.
func NewOpenAI(apiKey, defaultModel string) Provider {
	if defaultModel == "" {
		defaultModel = openai.GPT4o
	}
	return &openaiProvider{
		client:       openai.NewClient(apiKey),
		defaultModel: defaultModel,
	}
}

func (p *openaiProvider) Name() string { return "openai" }

// NormalizeModel falls back to the configured default for blank or
// obviously foreign model names.
func (p *openaiProvider) NormalizeModel(model string) string {
	model = strings.TrimSpace(model)
	if model == "" || strings.HasPrefix(model, "claude") {
		return p.defaultModel
	}
	return model
}

func (p *openaiProvider) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openaiSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classifyOpenAIError maps the SDK's error types onto statusError so the
// retry loop can see HTTP status codes.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &statusError{provider: "openai", code: apiErr.HTTPStatusCode, body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &statusError{provider: "openai", code: reqErr.HTTPStatusCode, body: reqErr.Error()}
	}
	return err
}
