package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"voice-relay-service/internal/config"
	"voice-relay-service/internal/service/stt"
	"voice-relay-service/internal/service/summary"
)

func TestNewTranscriber_Dispatch(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
	}{
		{config.TranscriptionOpenAI, "OPENAI"},
		{config.TranscriptionDeepgram, "DEEPGRAM"},
		{config.TranscriptionMock, "MOCK"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			tr, err := NewTranscriber(context.Background(), config.TranscriptionConfig{Provider: tt.provider}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tr.Name() != tt.wantName {
				t.Errorf("expected %s, got %s", tt.wantName, tr.Name())
			}
		})
	}
}

func TestNewSummarizer_Dispatch(t *testing.T) {
	for _, p := range []string{config.SummaryOpenAI, config.SummaryAnthropic, config.SummaryMock} {
		t.Run(p, func(t *testing.T) {
			s, err := NewSummarizer(config.SummaryConfig{Enabled: true, Provider: p}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Name() != p {
				t.Errorf("expected %s, got %s", p, s.Name())
			}
		})
	}
}

func TestNewSummarizer_DisabledIgnoresProvider(t *testing.T) {
	s, err := NewSummarizer(config.SummaryConfig{Enabled: false, Provider: "NOPE"}, nil)
	if err != nil || s != nil {
		t.Fatalf("expected nil summarizer and no error, got %v, %v", s, err)
	}
}

// An unknown provider name is a configuration error, and a failing provider
// call is a runtime error; callers must be able to tell them apart.
func TestUnknownProvider_DistinctFromCallFailure(t *testing.T) {
	_, err := NewTranscriber(context.Background(), config.TranscriptionConfig{Provider: "WHISPERX"}, nil)
	if !errors.Is(err, stt.ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
	_, err = NewSummarizer(config.SummaryConfig{Enabled: true, Provider: "GEMINI"}, nil)
	if !errors.Is(err, summary.ErrUnsupportedProvider) {
		t.Fatalf("expected summary ErrUnsupportedProvider, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr, err := NewTranscriber(context.Background(), config.TranscriptionConfig{
		Provider:      config.TranscriptionOpenAI,
		OpenAIAPIKey:  "k",
		OpenAIAPIBase: srv.URL + "/v1",
		WhisperModel:  "whisper-1",
	}, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	_, callErr := tr.Transcribe(context.Background(), []byte("x"))
	if callErr == nil {
		t.Fatal("expected provider failure")
	}
	if errors.Is(callErr, stt.ErrUnsupportedProvider) {
		t.Error("runtime failure must not match the configuration error")
	}
	var perr *stt.ProviderError
	if !errors.As(callErr, &perr) {
		t.Errorf("expected ProviderError, got %v", callErr)
	}
}
