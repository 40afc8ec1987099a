// Transcript Viewer - live view of the relay event feed.
// Consumes the delivered and dropped topics and pushes events to browsers over WebSocket.
package main

import (
	"context"
	"embed"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"voice-relay-service/internal/observability/logging"
)

//go:embed static/*
var staticFiles embed.FS

func main() {
	port := flag.String("port", "8081", "HTTP server port")
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topicDelivered := flag.String("topic-delivered", "voice.transcript.delivered", "Delivered transcript topic")
	topicDropped := flag.String("topic-dropped", "voice.message.dropped", "Dropped message topic")
	lookback := flag.Duration("lookback", time.Hour, "How far back to replay on start")
	flag.Parse()

	cfg := logging.DefaultConfig()
	cfg.Format = "console"
	cfg.Service = "transcript-viewer"
	logging.Init(cfg)

	hub := newHub()
	go hub.run()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	brokerList := strings.Split(*brokers, ",")
	go consume(ctx, hub, brokerList, *topicDelivered, *lookback)
	go consume(ctx, hub, brokerList, *topicDropped, *lookback)

	staticFS, _ := fs.Sub(staticFiles, "static")

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", wsHandler(hub))
	r.Handle("/*", http.FileServer(http.FS(staticFS)))

	server := &http.Server{
		Addr:              ":" + *port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("url", "http://localhost:"+*port).
		Strs("brokers", brokerList).
		Str("topicDelivered", *topicDelivered).
		Str("topicDropped", *topicDropped).
		Msg("Transcript viewer starting")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("Server error")
		os.Exit(1)
	}
}
