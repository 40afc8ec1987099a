// Package summary defines the interface for transcript summarization providers.
package summary

import (
	"context"
	"errors"
	"fmt"
)

// SystemPrompt is the instruction sent to every summarization model.
const SystemPrompt = "Summarize the message in 1-2 sentences max."

// MaxTokens bounds the summary completion.
const MaxTokens = 2000

var (
	// ErrUnsupportedProvider is a configuration error: the selected provider
	// name is not one this service knows.
	ErrUnsupportedProvider = errors.New("summary: unsupported summarization provider")

	// ErrEmptySummary signals a successful call that produced no text.
	ErrEmptySummary = errors.New("summary: empty summary")
)

// Summarizer condenses a transcript into a short summary.
type Summarizer interface {
	Name() string
	Summarize(ctx context.Context, text string) (string, error)
}

// ProviderError is returned when a provider answers with a non-2xx status.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s summary: status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// UnsupportedProvider wraps ErrUnsupportedProvider with the offending name.
func UnsupportedProvider(name string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
}
