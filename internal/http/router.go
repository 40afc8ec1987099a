package http

import (
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"voice-relay-service/internal/app"
	"voice-relay-service/internal/observability"
	"voice-relay-service/internal/observability/logging"
	"voice-relay-service/internal/service/relay"
	"voice-relay-service/internal/service/whatsapp"
)

// WebhookPath is where the platform delivers verification and notification requests.
const WebhookPath = "/webhook"

// maxWebhookBody bounds the notification body read into memory.
const maxWebhookBody = 1 << 20

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestMiddleware(application.Metrics))
	r.Use(middleware.Recoverer)

	wh := &webhookHandler{
		verifyToken: application.Cfg.WhatsApp.VerifyToken,
		appSecret:   application.Cfg.WhatsApp.AppSecret,
		relay:       application.Relay,
		logger:      logging.WithComponent("webhook"),
	}

	r.Get(WebhookPath, wh.verify)
	r.Post(WebhookPath, wh.notify)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Not Found", http.StatusNotFound)
}

type webhookHandler struct {
	verifyToken string
	appSecret   string
	relay       app.Relay
	logger      zerolog.Logger
}

// verify answers the subscription handshake by echoing hub.challenge.
func (h *webhookHandler) verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")

	if mode != "subscribe" || h.verifyToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) != 1 {
		h.logger.Warn().Str("mode", mode).Msg("Webhook verification rejected")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	h.logger.Info().Msg("Webhook verified")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(q.Get("hub.challenge")))
}

// notify processes a notification. Per-message failures never change the
// 200 answer; only unreadable, unsigned or non-JSON bodies do.
func (h *webhookHandler) notify(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With().
		Str("requestId", middleware.GetReqID(r.Context())).
		Logger()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read webhook body")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := whatsapp.VerifySignature(h.appSecret, body, r.Header.Get(whatsapp.SignatureHeader)); err != nil {
		logger.Warn().Err(err).Msg("Webhook signature rejected")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	payload, err := whatsapp.ParsePayload(body)
	if err != nil {
		logger.Error().Err(err).Msg("Malformed webhook payload")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if payload.Dropped > 0 {
		logger.Warn().Int("dropped", payload.Dropped).Msg("Ignored mistyped webhook elements")
	}

	outcomes := h.relay.Handle(r.Context(), payload)
	logOutcomes(logger, outcomes)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func logOutcomes(logger zerolog.Logger, outcomes []relay.Outcome) {
	var delivered, dropped, skipped int
	for _, o := range outcomes {
		switch o.Status {
		case relay.StatusDelivered:
			delivered++
		case relay.StatusDropped:
			dropped++
		default:
			skipped++
		}
	}
	logger.Debug().
		Int("messages", len(outcomes)).
		Int("delivered", delivered).
		Int("dropped", dropped).
		Int("skipped", skipped).
		Msg("Webhook processed")
}
