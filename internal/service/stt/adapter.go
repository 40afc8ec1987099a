// Package stt defines the interface for speech-to-text providers.
package stt

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedProvider is a configuration error: the selected provider
	// name is not one this service knows.
	ErrUnsupportedProvider = errors.New("stt: unsupported transcription provider")

	// ErrEmptyTranscript signals that the provider answered but produced no text.
	ErrEmptyTranscript = errors.New("stt: empty transcript")
)

// Transcriber turns an audio buffer into text. Implementations never retry.
type Transcriber interface {
	// Name returns the provider name used in logs and metrics.
	Name() string

	// Transcribe returns the transcript, or an error when there is none.
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// ProviderError is returned when a provider answers with a non-2xx status.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s transcription: status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// UnsupportedProvider wraps ErrUnsupportedProvider with the offending name.
func UnsupportedProvider(name string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
}
