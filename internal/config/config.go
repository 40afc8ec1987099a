// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Transcription provider names accepted by VOICE_TRANSCRIPTION_SERVICE.
const (
	TranscriptionOpenAI   = "OPENAI"
	TranscriptionDeepgram = "DEEPGRAM"
	TranscriptionGoogle   = "GOOGLE"
	TranscriptionMock     = "MOCK"
)

// Summary provider names accepted by AI_SERVICE.
const (
	SummaryOpenAI    = "OPENAI"
	SummaryAnthropic = "ANTHROPIC"
	SummaryMock      = "MOCK"
)

// Configuration is the full service configuration.
type Configuration struct {
	Service       ServiceConfig
	WhatsApp      WhatsAppConfig
	Transcription TranscriptionConfig
	Summary       SummaryConfig
	HTTPClient    HTTPClientConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Principal   string `validate:"required"`
	HTTPPort    string `validate:"required,numeric"`
	Environment string
}

// WhatsAppConfig holds the Cloud API credentials and webhook secrets.
type WhatsAppConfig struct {
	VerifyToken   string `validate:"required"`
	AppSecret     string
	AccessToken   string `validate:"required"`
	PhoneNumberID string `validate:"required"`
	APIBase       string `validate:"required,url"`

	// AllowedSenders is the raw comma-separated allow-list. Empty allows everyone.
	AllowedSenders string
}

type TranscriptionConfig struct {
	Provider string `validate:"required"`

	OpenAIAPIKey  string
	OpenAIAPIBase string `validate:"required,url"`
	WhisperModel  string `validate:"required"`

	DeepgramAPIKey  string
	DeepgramAPIBase string `validate:"required,url"`
	DeepgramModel   string

	GoogleCredentialsFile string
	LanguageCode          string `validate:"required"`
	SampleRateHz          int32  `validate:"gt=0"`
}

type SummaryConfig struct {
	Enabled  bool
	Provider string `validate:"required"`

	OpenAIAPIKey  string
	OpenAIAPIBase string `validate:"required,url"`
	OpenAIModel   string `validate:"required"`

	AnthropicAPIKey  string
	AnthropicAPIBase string `validate:"required,url"`
	AnthropicModel   string `validate:"required"`
}

type HTTPClientConfig struct {
	Timeout time.Duration `validate:"gt=0"`
}

type KafkaConfig struct {
	Enabled        bool
	Brokers        []string
	TopicDelivered string
	TopicDropped   string
	Principal      string
}

type ObservabilityConfig struct {
	MetricsPort string `validate:"required,numeric"`
	LogLevel    string `validate:"oneof=trace debug info warn error"`
	LogFormat   string `validate:"oneof=json console"`
}

// Load reads configuration from the environment. If ENV_FILE (default ".env")
// exists it is loaded first; variables already set in the environment win.
func Load() *Configuration {
	envFile := envOrDefault("ENV_FILE", ".env")
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-voice-relay")
	openAIKey := os.Getenv("OPENAI_API_KEY")
	openAIBase := envOrDefault("OPENAI_API_BASE", "https://api.openai.com/v1")

	return &Configuration{
		Service: ServiceConfig{
			Principal:   principal,
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			Environment: os.Getenv("ENV"),
		},
		WhatsApp: WhatsAppConfig{
			VerifyToken:    os.Getenv("WEBHOOK_SECRET"),
			AppSecret:      os.Getenv("WHATSAPP_APP_SECRET"),
			AccessToken:    os.Getenv("WHATSAPP_ACCESS_TOKEN"),
			PhoneNumberID:  os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			APIBase:        envOrDefault("WHATSAPP_API_BASE", "https://graph.facebook.com/v18.0"),
			AllowedSenders: os.Getenv("WHITELISTED_PHONE_NUMBERS"),
		},
		Transcription: TranscriptionConfig{
			Provider:              strings.ToUpper(envOrDefault("VOICE_TRANSCRIPTION_SERVICE", TranscriptionOpenAI)),
			OpenAIAPIKey:          openAIKey,
			OpenAIAPIBase:         openAIBase,
			WhisperModel:          envOrDefault("WHISPER_MODEL", "whisper-1"),
			DeepgramAPIKey:        os.Getenv("DEEPGRAM_API_KEY"),
			DeepgramAPIBase:       envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com"),
			DeepgramModel:         os.Getenv("DEEPGRAM_MODEL"),
			GoogleCredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
			LanguageCode:          envOrDefault("STT_LANGUAGE_CODE", "en-US"),
			SampleRateHz:          int32(envOrDefaultInt("STT_SAMPLE_RATE_HZ", 16000)),
		},
		Summary: SummaryConfig{
			// Only the literal "true" enables summaries.
			Enabled:          os.Getenv("GENERATE_SUMMARY") == "true",
			Provider:         strings.ToUpper(envOrDefault("AI_SERVICE", SummaryOpenAI)),
			OpenAIAPIKey:     openAIKey,
			OpenAIAPIBase:    openAIBase,
			OpenAIModel:      envOrDefault("OPENAI_MODEL", "gpt-3.5-turbo"),
			AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
			AnthropicAPIBase: envOrDefault("ANTHROPIC_API_BASE", "https://api.anthropic.com"),
			AnthropicModel:   envOrDefault("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
		},
		HTTPClient: HTTPClientConfig{
			Timeout: envOrDefaultDuration("HTTP_CLIENT_TIMEOUT", 2*time.Minute),
		},
		Kafka: KafkaConfig{
			Enabled:        envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:        splitList(os.Getenv("KAFKA_BROKERS")),
			TopicDelivered: envOrDefault("KAFKA_TOPIC_DELIVERED", "voice.transcript.delivered"),
			TopicDropped:   envOrDefault("KAFKA_TOPIC_DROPPED", "voice.message.dropped"),
			Principal:      envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
			LogLevel:    strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
			LogFormat:   strings.ToLower(envOrDefault("LOG_FORMAT", "json")),
		},
	}
}

// Validate checks struct constraints and the credentials required by the
// selected providers. Unknown provider names are left to the provider
// factories so they surface as their own error kind.
func (c *Configuration) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var errs []error
	switch c.Transcription.Provider {
	case TranscriptionOpenAI:
		if c.Transcription.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for OPENAI transcription"))
		}
	case TranscriptionDeepgram:
		if c.Transcription.DeepgramAPIKey == "" {
			errs = append(errs, errors.New("DEEPGRAM_API_KEY is required for DEEPGRAM transcription"))
		}
	}
	if c.Summary.Enabled {
		switch c.Summary.Provider {
		case SummaryOpenAI:
			if c.Summary.OpenAIAPIKey == "" {
				errs = append(errs, errors.New("OPENAI_API_KEY is required for OPENAI summaries"))
			}
		case SummaryAnthropic:
			if c.Summary.AnthropicAPIKey == "" {
				errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for ANTHROPIC summaries"))
			}
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set"))
	}
	return errors.Join(errs...)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
