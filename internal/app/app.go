package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"voice-relay-service/internal/config"
	"voice-relay-service/internal/observability/logging"
	"voice-relay-service/internal/observability/metrics"
	"voice-relay-service/internal/service/relay"
	"voice-relay-service/internal/service/whatsapp"
)

// Relay processes decoded webhook payloads.
type Relay interface {
	Handle(ctx context.Context, payload *whatsapp.Payload) []relay.Outcome
}

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Configuration
	Relay       Relay
	Metrics     *metrics.Metrics
}

// New constructs a new Application. The global logger must already be
// initialised. A nil m selects metrics.DefaultMetrics.
func New(cfg *config.Configuration, r Relay, m *metrics.Metrics) *Application {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	a := &Application{
		Cfg:     cfg,
		Relay:   r,
		Metrics: m,
		Logger:  logging.WithComponent("application"),
	}

	a.Logger.Info().
		Str("environment", cfg.Service.Environment).
		Msg("Voice relay service application created")
	return a
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	startLogger := a.Logger.With().
		Str("method", "Start").
		Logger()

	a.StartupTime = time.Now().UTC()

	if a.Cfg.WhatsApp.AppSecret == "" {
		startLogger.Warn().
			Msg("WHATSAPP_APP_SECRET is not set, webhook signatures will NOT be verified")
	}

	startLogger.Info().
		Time("startupTime", a.StartupTime).
		Str("transcription", a.Cfg.Transcription.Provider).
		Bool("summary", a.Cfg.Summary.Enabled).
		Str("summaryProvider", a.Cfg.Summary.Provider).
		Int("allowedSenders", relay.ParseAllowList(a.Cfg.WhatsApp.AllowedSenders).Len()).
		Msg("Voice relay service starting")

	return nil
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	shutdownLogger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()

	shutdownLogger.Info().
		Dur("uptime", time.Since(a.StartupTime)).
		Msg("Voice relay service shutting down")
}
