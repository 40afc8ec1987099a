// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voice_relay"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Webhook ingress
	WebhookRequests *prometheus.CounterVec
	WebhookDuration *prometheus.HistogramVec

	// Message pipeline
	MessagesReceived *prometheus.CounterVec
	MessagesRejected *prometheus.CounterVec
	StageLatency     *prometheus.HistogramVec
	StageErrors      *prometheus.CounterVec
	MediaBytes       prometheus.Counter
	RepliesSent      prometheus.Counter
	RepliesFailed    prometheus.Counter

	// Event feed
	EventPublishTotal   *prometheus.CounterVec
	EventPublishErrors  *prometheus.CounterVec
	EventPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		WebhookRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_requests_total",
			Help:      "Total number of inbound HTTP requests",
		}, []string{"route", "method", "status"}),
		WebhookDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "webhook_request_duration_seconds",
			Help:      "Inbound HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"route", "method"}),

		MessagesReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of webhook messages seen, by message type",
		}, []string{"type"}),
		MessagesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_rejected_total",
			Help:      "Total number of audio messages not relayed, by reason",
		}, []string{"reason"}),
		StageLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_latency_seconds",
			Help:      "Latency of upstream calls per pipeline stage",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"stage", "provider"}),
		StageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Total number of failed upstream calls per pipeline stage",
		}, []string{"stage", "provider"}),
		MediaBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_bytes_downloaded_total",
			Help:      "Total audio bytes downloaded from the messaging platform",
		}),
		RepliesSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_sent_total",
			Help:      "Total number of transcript replies delivered",
		}),
		RepliesFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_failed_total",
			Help:      "Total number of transcript replies the platform refused",
		}),

		EventPublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_total",
			Help:      "Total number of relay events published",
		}, []string{"topic", "event_type"}),
		EventPublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_errors_total",
			Help:      "Total number of relay event publish errors",
		}, []string{"topic", "event_type"}),
		EventPublishLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_publish_latency_seconds",
			Help:      "Relay event publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordRequest records one inbound HTTP request.
func (m *Metrics) RecordRequest(route, method, status string, durationSeconds float64) {
	m.WebhookRequests.WithLabelValues(route, method, status).Inc()
	m.WebhookDuration.WithLabelValues(route, method).Observe(durationSeconds)
}

// RecordMessage records a message found in a webhook payload.
func (m *Metrics) RecordMessage(messageType string) {
	m.MessagesReceived.WithLabelValues(messageType).Inc()
}

// RecordRejected records an audio message that was not relayed.
func (m *Metrics) RecordRejected(reason string) {
	m.MessagesRejected.WithLabelValues(reason).Inc()
}

// RecordStage records an upstream call made by a pipeline stage.
func (m *Metrics) RecordStage(stage, provider string, err error, latencySeconds float64) {
	m.StageLatency.WithLabelValues(stage, provider).Observe(latencySeconds)
	if err != nil {
		m.StageErrors.WithLabelValues(stage, provider).Inc()
	}
}

// RecordMediaDownloaded records downloaded audio bytes.
func (m *Metrics) RecordMediaDownloaded(bytes int) {
	m.MediaBytes.Add(float64(bytes))
}

// RecordReply records a reply send attempt.
func (m *Metrics) RecordReply(err error) {
	if err != nil {
		m.RepliesFailed.Inc()
		return
	}
	m.RepliesSent.Inc()
}

// RecordEventPublish records a relay event publish attempt.
func (m *Metrics) RecordEventPublish(topic, eventType string, err error, latencySeconds float64) {
	m.EventPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.EventPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.EventPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
