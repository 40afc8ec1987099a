// Package mock provides an offline summarizer for local development.
package mock

import (
	"context"
	"strings"

	"voice-relay-service/internal/service/summary"
)

// ProviderName is the AI_SERVICE value selecting this provider.
const ProviderName = "MOCK"

// Summarizer returns the first sentence of the transcript.
type Summarizer struct{}

func New() *Summarizer { return &Summarizer{} }

func (s *Summarizer) Name() string { return ProviderName }

func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", summary.ErrEmptySummary
	}
	if i := strings.IndexAny(text, ".!?"); i >= 0 {
		return text[:i+1], nil
	}
	return text, nil
}
