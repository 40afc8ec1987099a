package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"voice-relay-service/internal/app"
	"voice-relay-service/internal/config"
	"voice-relay-service/internal/events"
	httpapi "voice-relay-service/internal/http"
	"voice-relay-service/internal/observability"
	"voice-relay-service/internal/observability/logging"
	"voice-relay-service/internal/observability/metrics"
	"voice-relay-service/internal/service/providers"
	"voice-relay-service/internal/service/relay"
	"voice-relay-service/internal/service/whatsapp"
)

func main() {
	cfg := config.Load()

	logging.Init(logging.Config{
		Level:   cfg.Observability.LogLevel,
		Format:  cfg.Observability.LogFormat,
		Service: cfg.Service.Principal,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()
	outbound := &http.Client{Timeout: cfg.HTTPClient.Timeout}

	// Provider selection happens once; an unknown name stops the process here.
	transcriber, err := providers.NewTranscriber(ctx, cfg.Transcription, outbound)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.Transcription.Provider).Msg("Failed to create transcription provider")
	}
	if c, ok := transcriber.(io.Closer); ok {
		defer c.Close()
	}

	summarizer, err := providers.NewSummarizer(cfg.Summary, outbound)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.Summary.Provider).Msg("Failed to create summary provider")
	}

	// Relay outcome feed; log-only unless Kafka is enabled
	publisher := events.New(&events.Config{
		Enabled:        cfg.Kafka.Enabled,
		Brokers:        cfg.Kafka.Brokers,
		TopicDelivered: cfg.Kafka.TopicDelivered,
		TopicDropped:   cfg.Kafka.TopicDropped,
		Principal:      cfg.Kafka.Principal,
	})
	defer publisher.Close()

	processor := relay.New(relay.Config{
		Messenger: whatsapp.NewClient(whatsapp.Config{
			APIBase:       cfg.WhatsApp.APIBase,
			AccessToken:   cfg.WhatsApp.AccessToken,
			PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
			HTTPClient:    outbound,
		}),
		Transcriber: transcriber,
		Summarizer:  summarizer,
		Publisher:   publisher,
		AllowList:   relay.ParseAllowList(cfg.WhatsApp.AllowedSenders),
		Metrics:     metrics.DefaultMetrics,
	})

	application := app.New(cfg, processor, metrics.DefaultMetrics)
	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	obsServer := observability.NewServer(":" + cfg.Observability.MetricsPort)
	obsServer.Start()

	server := &http.Server{
		Addr:              ":" + cfg.Service.HTTPPort,
		Handler:           httpapi.NewRouter(application),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Voice relay webhook listener started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP serve failed")
		}
	}()
	obsServer.SetReady(true)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down HTTP servers")
	obsServer.SetReady(false)

	// In-flight webhooks wait on upstream calls bounded by the outbound timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPClient.Timeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Webhook listener shutdown error")
	}
	if err := obsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Observability server shutdown error")
	}
	application.Shutdown()
}
