package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var managedEnv = []string{
	"ENV_FILE", "SERVICE_PRINCIPAL", "HTTP_PORT", "METRICS_PORT", "LOG_LEVEL", "LOG_FORMAT",
	"WEBHOOK_SECRET", "WHATSAPP_APP_SECRET", "WHATSAPP_ACCESS_TOKEN", "WHATSAPP_PHONE_NUMBER_ID",
	"WHATSAPP_API_BASE", "WHITELISTED_PHONE_NUMBERS",
	"VOICE_TRANSCRIPTION_SERVICE", "OPENAI_API_KEY", "OPENAI_API_BASE", "WHISPER_MODEL",
	"DEEPGRAM_API_KEY", "DEEPGRAM_MODEL", "STT_LANGUAGE_CODE", "STT_SAMPLE_RATE_HZ",
	"GENERATE_SUMMARY", "AI_SERVICE", "OPENAI_MODEL", "ANTHROPIC_API_KEY", "ANTHROPIC_MODEL",
	"HTTP_CLIENT_TIMEOUT", "KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_PRINCIPAL",
}

// clearEnv unsets every variable Load reads and points ENV_FILE at a file
// that does not exist, so a developer's .env never leaks into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range managedEnv {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Service.Principal != "svc-voice-relay" {
		t.Errorf("expected default principal 'svc-voice-relay', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default port '8080', got %s", cfg.Service.HTTPPort)
	}
	if cfg.WhatsApp.APIBase != "https://graph.facebook.com/v18.0" {
		t.Errorf("unexpected graph base %s", cfg.WhatsApp.APIBase)
	}
	if cfg.Transcription.Provider != TranscriptionOpenAI {
		t.Errorf("expected default transcription provider OPENAI, got %s", cfg.Transcription.Provider)
	}
	if cfg.Transcription.WhisperModel != "whisper-1" {
		t.Errorf("expected default whisper model 'whisper-1', got %s", cfg.Transcription.WhisperModel)
	}
	if cfg.Transcription.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", cfg.Transcription.SampleRateHz)
	}
	if cfg.Summary.Enabled {
		t.Error("expected summaries disabled by default")
	}
	if cfg.Summary.Provider != SummaryOpenAI {
		t.Errorf("expected default summary provider OPENAI, got %s", cfg.Summary.Provider)
	}
	if cfg.Summary.OpenAIModel != "gpt-3.5-turbo" {
		t.Errorf("expected default openai model 'gpt-3.5-turbo', got %s", cfg.Summary.OpenAIModel)
	}
	if cfg.Summary.AnthropicModel != "claude-3-haiku-20240307" {
		t.Errorf("unexpected default anthropic model %s", cfg.Summary.AnthropicModel)
	}
	if cfg.HTTPClient.Timeout != 2*time.Minute {
		t.Errorf("expected default client timeout 2m, got %v", cfg.HTTPClient.Timeout)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected kafka disabled by default")
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("VOICE_TRANSCRIPTION_SERVICE", "deepgram")
	t.Setenv("DEEPGRAM_MODEL", "nova-2")
	t.Setenv("STT_SAMPLE_RATE_HZ", "48000")
	t.Setenv("GENERATE_SUMMARY", "true")
	t.Setenv("AI_SERVICE", "anthropic")
	t.Setenv("WHITELISTED_PHONE_NUMBERS", "111, 222")
	t.Setenv("HTTP_CLIENT_TIMEOUT", "15s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg := Load()

	if cfg.Service.HTTPPort != "9999" {
		t.Errorf("expected port '9999', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Transcription.Provider != TranscriptionDeepgram {
		t.Errorf("expected provider names to be upper-cased, got %s", cfg.Transcription.Provider)
	}
	if cfg.Transcription.DeepgramModel != "nova-2" {
		t.Errorf("expected deepgram model 'nova-2', got %s", cfg.Transcription.DeepgramModel)
	}
	if cfg.Transcription.SampleRateHz != 48000 {
		t.Errorf("expected sample rate 48000, got %d", cfg.Transcription.SampleRateHz)
	}
	if !cfg.Summary.Enabled || cfg.Summary.Provider != SummaryAnthropic {
		t.Errorf("expected anthropic summaries enabled, got %+v", cfg.Summary)
	}
	if cfg.WhatsApp.AllowedSenders != "111, 222" {
		t.Errorf("expected raw allow-list to be kept, got %q", cfg.WhatsApp.AllowedSenders)
	}
	if cfg.HTTPClient.Timeout != 15*time.Second {
		t.Errorf("expected timeout 15s, got %v", cfg.HTTPClient.Timeout)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_GenerateSummaryRequiresLiteralTrue(t *testing.T) {
	for _, v := range []string{"1", "TRUE", "yes", "True"} {
		t.Run(v, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GENERATE_SUMMARY", v)
			if Load().Summary.Enabled {
				t.Errorf("GENERATE_SUMMARY=%q should not enable summaries", v)
			}
		})
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STT_SAMPLE_RATE_HZ", "not-a-number")
	t.Setenv("HTTP_CLIENT_TIMEOUT", "invalid")
	t.Setenv("KAFKA_ENABLED", "invalid")

	cfg := Load()

	if cfg.Transcription.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate on invalid input, got %d", cfg.Transcription.SampleRateHz)
	}
	if cfg.HTTPClient.Timeout != 2*time.Minute {
		t.Errorf("expected default timeout on invalid input, got %v", cfg.HTTPClient.Timeout)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected kafka disabled on invalid input")
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServicePrincipal(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVICE_PRINCIPAL", "my-service")

	cfg := Load()

	if cfg.Kafka.Principal != "my-service" {
		t.Errorf("expected Kafka principal to fall back to service principal, got %s", cfg.Kafka.Principal)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "relay.env")
	content := "WEBHOOK_SECRET=from-file\nHTTP_PORT=7000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("HTTP_PORT", "7001")
	t.Cleanup(func() { os.Unsetenv("WEBHOOK_SECRET") })

	cfg := Load()

	if cfg.WhatsApp.VerifyToken != "from-file" {
		t.Errorf("expected verify token from env file, got %q", cfg.WhatsApp.VerifyToken)
	}
	if cfg.Service.HTTPPort != "7001" {
		t.Errorf("expected process env to win over env file, got %s", cfg.Service.HTTPPort)
	}
}

func validConfig(t *testing.T) *Configuration {
	t.Helper()
	clearEnv(t)
	t.Setenv("WEBHOOK_SECRET", "verify")
	t.Setenv("WHATSAPP_ACCESS_TOKEN", "token")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "12345")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	return Load()
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Configuration)
		wantErr string
	}{
		{"valid", func(c *Configuration) {}, ""},
		{"missing verify token", func(c *Configuration) { c.WhatsApp.VerifyToken = "" }, "VerifyToken"},
		{"missing access token", func(c *Configuration) { c.WhatsApp.AccessToken = "" }, "AccessToken"},
		{"bad port", func(c *Configuration) { c.Service.HTTPPort = "http" }, "HTTPPort"},
		{"bad log level", func(c *Configuration) { c.Observability.LogLevel = "loud" }, "LogLevel"},
		{"openai key missing", func(c *Configuration) { c.Transcription.OpenAIAPIKey = "" }, "OPENAI_API_KEY"},
		{"deepgram key missing", func(c *Configuration) { c.Transcription.Provider = TranscriptionDeepgram }, "DEEPGRAM_API_KEY"},
		{"anthropic key missing", func(c *Configuration) {
			c.Summary.Enabled = true
			c.Summary.Provider = SummaryAnthropic
		}, "ANTHROPIC_API_KEY"},
		{"anthropic key ignored when disabled", func(c *Configuration) { c.Summary.Provider = SummaryAnthropic }, ""},
		{"unknown provider left to factories", func(c *Configuration) { c.Transcription.Provider = "WHISPERX" }, ""},
		{"kafka without brokers", func(c *Configuration) { c.Kafka.Enabled = true }, "KAFKA_BROKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_JoinsProviderErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.Transcription.Provider = TranscriptionDeepgram
	cfg.Summary.Enabled = true
	cfg.Summary.Provider = SummaryAnthropic

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 2 {
		t.Fatalf("expected two joined errors, got %v", err)
	}
}

func TestEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL_VAR", tt.envValue)
			got := envOrDefaultBool("TEST_BOOL_VAR", tt.def)
			if got != tt.expected {
				t.Errorf("envOrDefaultBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}
