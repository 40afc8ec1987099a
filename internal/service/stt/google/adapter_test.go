package google

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"

	"voice-relay-service/internal/service/stt"
)

var _ stt.Transcriber = (*Adapter)(nil)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LanguageCode != "en-US" {
		t.Errorf("expected default language 'en-US', got %s", cfg.LanguageCode)
	}
	if cfg.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", cfg.SampleRateHz)
	}
	if cfg.AudioEncoding != "OGG_OPUS" {
		t.Errorf("expected default encoding 'OGG_OPUS', got %s", cfg.AudioEncoding)
	}
}

func TestParseAudioEncoding(t *testing.T) {
	tests := []struct {
		input    string
		expected speechpb.RecognitionConfig_AudioEncoding
	}{
		{"LINEAR16", speechpb.RecognitionConfig_LINEAR16},
		{"MULAW", speechpb.RecognitionConfig_MULAW},
		{"FLAC", speechpb.RecognitionConfig_FLAC},
		{"AMR", speechpb.RecognitionConfig_AMR},
		{"AMR_WB", speechpb.RecognitionConfig_AMR_WB},
		{"OGG_OPUS", speechpb.RecognitionConfig_OGG_OPUS},
		{"WEBM_OPUS", speechpb.RecognitionConfig_WEBM_OPUS},
		{"ogg_opus", speechpb.RecognitionConfig_OGG_OPUS}, // fallback
		{"", speechpb.RecognitionConfig_OGG_OPUS},         // fallback
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseAudioEncoding(tt.input)
			if got != tt.expected {
				t.Errorf("parseAudioEncoding(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTranscribe_JoinsResults(t *testing.T) {
	var seen *speechpb.RecognizeRequest
	a := newAdapter(Config{LanguageCode: "es-ES"}, func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		seen = req
		return &speechpb.RecognizeResponse{
			Results: []*speechpb.SpeechRecognitionResult{
				{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "hola "}, {Transcript: "ola"}}},
				{},
				{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "qué tal"}}},
			},
		}, nil
	})

	got, err := a.Transcribe(context.Background(), []byte("OggS"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hola qué tal" {
		t.Errorf("unexpected transcript %q", got)
	}
	if seen.GetConfig().GetLanguageCode() != "es-ES" || seen.GetConfig().GetSampleRateHertz() != 16000 {
		t.Errorf("unexpected config %+v", seen.GetConfig())
	}
	if seen.GetConfig().GetEncoding() != speechpb.RecognitionConfig_OGG_OPUS {
		t.Errorf("expected OGG_OPUS encoding, got %v", seen.GetConfig().GetEncoding())
	}
	if string(seen.GetAudio().GetContent()) != "OggS" {
		t.Errorf("audio content not forwarded")
	}
}

func TestTranscribe_NoResults(t *testing.T) {
	a := newAdapter(Config{}, func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return &speechpb.RecognizeResponse{}, nil
	})

	if _, err := a.Transcribe(context.Background(), []byte("x")); !errors.Is(err, stt.ErrEmptyTranscript) {
		t.Errorf("expected ErrEmptyTranscript, got %v", err)
	}
}

func TestTranscribe_RecognizeError(t *testing.T) {
	boom := errors.New("permission denied")
	a := newAdapter(Config{}, func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return nil, boom
	})

	_, err := a.Transcribe(context.Background(), []byte("x"))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped recognize error, got %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("close without client should be a no-op, got %v", err)
	}
}
