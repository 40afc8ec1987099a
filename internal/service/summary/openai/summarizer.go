// Package openai summarizes transcripts with the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"voice-relay-service/internal/service/summary"
)

// ProviderName is the AI_SERVICE value selecting this provider.
const ProviderName = "OPENAI"

const (
	defaultModel = "gpt-3.5-turbo"
	temperature  = 0.5
)

// Config holds OpenAI chat settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Summarizer implements summary.Summarizer.
type Summarizer struct {
	client *goopenai.Client
	model  string
}

// New creates an OpenAI summarizer.
func New(cfg Config) *Summarizer {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Summarizer{client: goopenai.NewClientWithConfig(clientCfg), model: model}
}

func (s *Summarizer) Name() string { return ProviderName }

// Summarize returns choices[0].message.content, trimmed.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: s.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: summary.SystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   summary.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", &summary.ProviderError{Provider: ProviderName, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", summary.ErrEmptySummary
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", summary.ErrEmptySummary
	}
	return out, nil
}
