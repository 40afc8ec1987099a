// Package relay turns inbound WhatsApp voice messages into transcript
// replies: fetch media, transcribe, optionally summarize, reply.
package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"voice-relay-service/internal/models"
	"voice-relay-service/internal/observability/logging"
	"voice-relay-service/internal/observability/metrics"
	"voice-relay-service/internal/service/stt"
	"voice-relay-service/internal/service/summary"
	"voice-relay-service/internal/service/whatsapp"
)

// platformProvider labels media and reply calls in metrics.
const platformProvider = "WHATSAPP"

// ErrSenderNotAllowed is the drop reason for senders outside the allow-list.
var ErrSenderNotAllowed = errors.New("sender not in allow-list")

// Messenger is the messaging platform surface used by the relay.
type Messenger interface {
	FetchMedia(ctx context.Context, mediaID string) ([]byte, error)
	SendText(ctx context.Context, to, body string) error
}

// EventPublisher receives relay outcome events.
type EventPublisher interface {
	PublishDelivered(ctx context.Context, ev models.TranscriptDelivered) error
	PublishDropped(ctx context.Context, ev models.MessageDropped) error
}

// Config wires a Processor. Summarizer and Publisher are optional.
type Config struct {
	Messenger   Messenger
	Transcriber stt.Transcriber
	Summarizer  summary.Summarizer
	Publisher   EventPublisher
	AllowList   AllowList
	Metrics     *metrics.Metrics
}

// Processor relays the audio messages of a webhook payload.
// It holds no per-request state and is safe for concurrent use.
type Processor struct {
	messenger   Messenger
	transcriber stt.Transcriber
	summarizer  summary.Summarizer
	publisher   EventPublisher
	allow       AllowList
	metrics     *metrics.Metrics
}

// New creates a Processor.
func New(cfg Config) *Processor {
	m := cfg.Metrics
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Processor{
		messenger:   cfg.Messenger,
		transcriber: cfg.Transcriber,
		summarizer:  cfg.Summarizer,
		publisher:   cfg.Publisher,
		allow:       cfg.AllowList,
		metrics:     m,
	}
}

// Handle processes every message in payload, in order, and returns one
// Outcome per message.
func (p *Processor) Handle(ctx context.Context, payload *whatsapp.Payload) []Outcome {
	msgs := payload.Messages()
	outcomes := make([]Outcome, 0, len(msgs))
	for _, msg := range msgs {
		outcomes = append(outcomes, p.Process(ctx, msg))
	}
	return outcomes
}

// Process relays a single message. Failures are logged and reported in the
// returned Outcome; they are never retried.
func (p *Processor) Process(ctx context.Context, msg whatsapp.Message) Outcome {
	p.metrics.RecordMessage(msg.Type)
	logger := logging.WithMessage(msg.ID, msg.From)

	mediaID := msg.MediaID()
	if mediaID == "" {
		logger.Debug().Str("type", msg.Type).Msg("Skipping non-audio message")
		return Outcome{MessageID: msg.ID, From: msg.From, Status: StatusSkipped}
	}

	if !p.allow.Allows(msg.From) {
		logger.Info().Msg("Sender not in allow-list, dropping message")
		return p.drop(ctx, logger, dropped(msg.ID, msg.From, StageAllowList, ErrSenderNotAllowed))
	}

	audio, err := p.fetchMedia(ctx, mediaID)
	if err != nil {
		return p.drop(ctx, logger, dropped(msg.ID, msg.From, StageMedia, err))
	}
	logger.Debug().Int("bytes", len(audio)).Str("mediaId", mediaID).Msg("Media downloaded")

	transcript, err := p.transcribe(ctx, logger, audio)
	if err != nil {
		return p.drop(ctx, logger, dropped(msg.ID, msg.From, StageTranscription, err))
	}

	summaryText := p.summarize(ctx, logger, transcript)

	if err := p.reply(ctx, msg.From, ComposeReply(summaryText, transcript)); err != nil {
		return p.drop(ctx, logger, dropped(msg.ID, msg.From, StageReply, err))
	}

	logger.Info().
		Int("transcriptLength", len(transcript)).
		Bool("summary", summaryText != "").
		Msg("Transcript delivered")

	out := Outcome{
		MessageID:  msg.ID,
		From:       msg.From,
		Status:     StatusDelivered,
		Transcript: transcript,
		Summary:    summaryText,
	}
	p.publishDelivered(ctx, logger, out, len(audio))
	return out
}

func (p *Processor) fetchMedia(ctx context.Context, mediaID string) ([]byte, error) {
	start := time.Now()
	audio, err := p.messenger.FetchMedia(ctx, mediaID)
	p.metrics.RecordStage(string(StageMedia), platformProvider, err, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetch media %s: %w", mediaID, err)
	}
	p.metrics.RecordMediaDownloaded(len(audio))
	return audio, nil
}

func (p *Processor) transcribe(ctx context.Context, logger zerolog.Logger, audio []byte) (string, error) {
	plog := logging.WithProvider(logger, string(StageTranscription), p.transcriber.Name())
	start := time.Now()
	text, err := p.transcriber.Transcribe(ctx, audio)
	if err == nil && text == "" {
		err = stt.ErrEmptyTranscript
	}
	elapsed := time.Since(start)
	p.metrics.RecordStage(string(StageTranscription), p.transcriber.Name(), err, elapsed.Seconds())
	if err != nil {
		plog.Debug().Err(err).Dur("elapsed", elapsed).Msg("Transcription failed")
		return "", err
	}
	plog.Debug().Dur("elapsed", elapsed).Int("length", len(text)).Msg("Transcription finished")
	return text, nil
}

// summarize returns "" when summaries are disabled or the provider fails.
func (p *Processor) summarize(ctx context.Context, logger zerolog.Logger, transcript string) string {
	if p.summarizer == nil {
		return ""
	}
	plog := logging.WithProvider(logger, string(StageSummary), p.summarizer.Name())
	start := time.Now()
	text, err := p.summarizer.Summarize(ctx, transcript)
	elapsed := time.Since(start)
	p.metrics.RecordStage(string(StageSummary), p.summarizer.Name(), err, elapsed.Seconds())
	if err != nil {
		plog.Warn().Err(err).Msg("Summary failed, replying with transcript only")
		return ""
	}
	plog.Debug().Dur("elapsed", elapsed).Msg("Summary finished")
	return text
}

func (p *Processor) reply(ctx context.Context, to, body string) error {
	start := time.Now()
	err := p.messenger.SendText(ctx, to, body)
	p.metrics.RecordStage(string(StageReply), platformProvider, err, time.Since(start).Seconds())
	p.metrics.RecordReply(err)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

func (p *Processor) drop(ctx context.Context, logger zerolog.Logger, out Outcome) Outcome {
	p.metrics.RecordRejected(string(out.Stage))

	ev := logger.Warn()
	if out.Stage == StageAllowList {
		ev = logger.Info()
	}
	ev.Err(out.Err).Str("stage", string(out.Stage)).Msg("Message dropped")

	if p.publisher == nil {
		return out
	}
	err := p.publisher.PublishDropped(ctx, models.MessageDropped{
		EventType: models.EventMessageDropped,
		EventID:   uuid.NewString(),
		MessageID: out.MessageID,
		From:      out.From,
		Stage:     string(out.Stage),
		Reason:    out.Reason(),
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to publish dropped event")
	}
	return out
}

func (p *Processor) publishDelivered(ctx context.Context, logger zerolog.Logger, out Outcome, audioBytes int) {
	if p.publisher == nil {
		return
	}
	ev := models.TranscriptDelivered{
		EventType:             models.EventTranscriptDelivered,
		EventID:               uuid.NewString(),
		MessageID:             out.MessageID,
		From:                  out.From,
		TranscriptionProvider: p.transcriber.Name(),
		Transcript:            out.Transcript,
		Summary:               out.Summary,
		AudioBytes:            audioBytes,
		Timestamp:             time.Now().UnixMilli(),
	}
	if p.summarizer != nil {
		ev.SummaryProvider = p.summarizer.Name()
	}
	if err := p.publisher.PublishDelivered(ctx, ev); err != nil {
		logger.Error().Err(err).Msg("Failed to publish delivered event")
	}
}
