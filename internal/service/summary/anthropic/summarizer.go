// Package anthropic summarizes transcripts with the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"voice-relay-service/internal/service/summary"
)

// ProviderName is the AI_SERVICE value selecting this provider.
const ProviderName = "ANTHROPIC"

const defaultModel = "claude-3-haiku-20240307"

// Config holds Anthropic settings. BaseURL is the API host; a trailing /v1
// is accepted and stripped.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Summarizer implements summary.Summarizer.
type Summarizer struct {
	client anthropic.Client
	model  anthropic.Model
}

// New creates an Anthropic summarizer. SDK retries are disabled: a failed
// summary falls back to a transcript-only reply.
func New(cfg Config) *Summarizer {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 120 * time.Second}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSuffix(strings.TrimRight(cfg.BaseURL, "/"), "/v1"); base != "" {
		opts = append(opts, option.WithBaseURL(base+"/"))
	}

	return &Summarizer{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(model),
	}
}

func (s *Summarizer) Name() string { return ProviderName }

// Summarize returns the first text block of the model's answer.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: summary.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: summary.SystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &summary.ProviderError{Provider: ProviderName, StatusCode: apiErr.StatusCode, Body: apiErr.Error()}
		}
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		if out := strings.TrimSpace(block.Text); out != "" {
			return out, nil
		}
	}
	return "", summary.ErrEmptySummary
}
