// Package providers selects transcription and summarization implementations
// from configuration. Selection happens once, at startup.
package providers

import (
	"context"
	"net/http"

	"voice-relay-service/internal/config"
	"voice-relay-service/internal/service/stt"
	"voice-relay-service/internal/service/stt/deepgram"
	"voice-relay-service/internal/service/stt/google"
	sttmock "voice-relay-service/internal/service/stt/mock"
	sttopenai "voice-relay-service/internal/service/stt/openai"
	"voice-relay-service/internal/service/summary"
	"voice-relay-service/internal/service/summary/anthropic"
	summarymock "voice-relay-service/internal/service/summary/mock"
	summaryopenai "voice-relay-service/internal/service/summary/openai"
)

// NewTranscriber returns the provider named by cfg.Provider. Unknown names
// yield an error wrapping stt.ErrUnsupportedProvider.
func NewTranscriber(ctx context.Context, cfg config.TranscriptionConfig, hc *http.Client) (stt.Transcriber, error) {
	switch cfg.Provider {
	case config.TranscriptionOpenAI:
		return sttopenai.New(sttopenai.Config{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIAPIBase,
			Model:      cfg.WhisperModel,
			HTTPClient: hc,
		}), nil
	case config.TranscriptionDeepgram:
		dg := deepgram.Config{
			APIKey:  cfg.DeepgramAPIKey,
			BaseURL: cfg.DeepgramAPIBase,
			Model:   cfg.DeepgramModel,
		}
		if hc != nil {
			dg.Timeout = hc.Timeout
		}
		return deepgram.New(dg), nil
	case config.TranscriptionGoogle:
		a, err := google.New(ctx, google.Config{
			LanguageCode:    cfg.LanguageCode,
			SampleRateHz:    cfg.SampleRateHz,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case config.TranscriptionMock:
		return sttmock.New(), nil
	default:
		return nil, stt.UnsupportedProvider(cfg.Provider)
	}
}

// NewSummarizer returns the provider named by cfg.Provider, or nil when
// summaries are disabled. Unknown names yield an error wrapping
// summary.ErrUnsupportedProvider.
func NewSummarizer(cfg config.SummaryConfig, hc *http.Client) (summary.Summarizer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Provider {
	case config.SummaryOpenAI:
		return summaryopenai.New(summaryopenai.Config{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIAPIBase,
			Model:      cfg.OpenAIModel,
			HTTPClient: hc,
		}), nil
	case config.SummaryAnthropic:
		return anthropic.New(anthropic.Config{
			APIKey:     cfg.AnthropicAPIKey,
			BaseURL:    cfg.AnthropicAPIBase,
			Model:      cfg.AnthropicModel,
			HTTPClient: hc,
		}), nil
	case config.SummaryMock:
		return summarymock.New(), nil
	default:
		return nil, summary.UnsupportedProvider(cfg.Provider)
	}
}
