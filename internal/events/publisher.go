// Package events publishes relay outcome events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"voice-relay-service/internal/models"
	"voice-relay-service/internal/observability/metrics"
	"voice-relay-service/internal/schema"
)

// Publisher publishes relay events to separate Kafka topics for delivered
// transcripts and dropped messages.
type Publisher struct {
	writerDelivered *kafka.Writer
	writerDropped   *kafka.Writer
	principal       string
	topicDelivered  string
	topicDropped    string
	enabled         bool
	validator       *schema.Validator
	metrics         *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers        []string
	TopicDelivered string
	TopicDropped   string
	Principal      string
	Enabled        bool

	// Metrics defaults to metrics.DefaultMetrics.
	Metrics *metrics.Metrics
}

// New creates a Kafka event publisher. A nil or disabled config yields a
// publisher that only logs.
func New(cfg *Config) *Publisher {
	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			validator: schema.New(),
			metrics:   metrics.DefaultMetrics,
		}
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.DefaultMetrics
	}

	p := &Publisher{
		principal:      cfg.Principal,
		topicDelivered: cfg.TopicDelivered,
		topicDropped:   cfg.TopicDropped,
		validator:      schema.New(),
		metrics:        m,
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return p
	}

	// Longer dial timeout for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	p.writerDelivered = newWriter(cfg.Brokers, cfg.TopicDelivered, transport)
	p.writerDropped = newWriter(cfg.Brokers, cfg.TopicDropped, transport)
	p.enabled = true

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicDelivered", cfg.TopicDelivered).
		Str("topicDropped", cfg.TopicDropped).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return p
}

func newWriter(brokers []string, topic string, transport *kafka.Transport) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}
}

// PublishDelivered publishes a delivered-transcript event keyed by sender.
func (p *Publisher) PublishDelivered(ctx context.Context, ev models.TranscriptDelivered) error {
	return p.publish(ctx, p.writerDelivered, p.topicDelivered, ev.EventType, ev.From, ev)
}

// PublishDropped publishes a dropped-message event keyed by sender.
func (p *Publisher) PublishDropped(ctx context.Context, ev models.MessageDropped) error {
	return p.publish(ctx, p.writerDropped, p.topicDropped, ev.EventType, ev.From, ev)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	if err := p.validator.Validate(event); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Rejected invalid event")
		p.metrics.RecordEventPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || writer == nil {
		p.metrics.RecordEventPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordEventPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordEventPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerDelivered != nil {
		if e := p.writerDelivered.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing delivered writer")
			err = e
		}
	}
	if p.writerDropped != nil {
		if e := p.writerDropped.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing dropped writer")
			err = e
		}
	}
	return err
}
