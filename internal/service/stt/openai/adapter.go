// Package openai provides a Whisper transcription provider backed by the
// OpenAI audio API.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"voice-relay-service/internal/service/stt"
)

// ProviderName is the VOICE_TRANSCRIPTION_SERVICE value selecting this provider.
const ProviderName = "OPENAI"

const (
	defaultModel = goopenai.Whisper1
	// WhatsApp voice notes are Ogg/Opus.
	uploadFileName = "audio.ogg"
	transcriptHint = "The transcript should have natural paragraph breaks and bullet points for any action steps. The output should be easy to read and follow."
)

// Config holds OpenAI transcription settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Adapter implements stt.Transcriber with a multipart upload to
// /audio/transcriptions.
type Adapter struct {
	client *goopenai.Client
	model  string
}

// New creates an OpenAI transcription adapter.
func New(cfg Config) *Adapter {
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
	return &Adapter{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (a *Adapter) Name() string { return ProviderName }

// Transcribe uploads audio and returns the "text" field of the JSON response.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte) (string, error) {
	resp, err := a.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    a.model,
		FilePath: uploadFileName,
		Reader:   bytes.NewReader(audio),
		Prompt:   transcriptHint,
		Format:   goopenai.AudioResponseFormatJSON,
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", &stt.ProviderError{Provider: ProviderName, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		var reqErr *goopenai.RequestError
		if errors.As(err, &reqErr) {
			return "", &stt.ProviderError{Provider: ProviderName, StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
		}
		return "", fmt.Errorf("openai transcription: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", stt.ErrEmptyTranscript
	}
	return text, nil
}
