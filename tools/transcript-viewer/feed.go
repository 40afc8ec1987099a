package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"voice-relay-service/internal/models"
)

// feedEvent is what the browser receives: one row per relayed message.
type feedEvent struct {
	Kind      string `json:"kind"` // delivered, dropped
	MessageID string `json:"messageId"`
	From      string `json:"from"`
	Provider  string `json:"provider,omitempty"`
	Text      string `json:"text,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Stage     string `json:"stage,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// decodeEvent maps a feed record to a feedEvent using its eventType.
func decodeEvent(value []byte) (feedEvent, error) {
	var head struct {
		EventType string `json:"eventType"`
	}
	if err := json.Unmarshal(value, &head); err != nil {
		return feedEvent{}, err
	}

	switch head.EventType {
	case models.EventTranscriptDelivered:
		var ev models.TranscriptDelivered
		if err := json.Unmarshal(value, &ev); err != nil {
			return feedEvent{}, err
		}
		return feedEvent{
			Kind:      "delivered",
			MessageID: ev.MessageID,
			From:      ev.From,
			Provider:  ev.TranscriptionProvider,
			Text:      ev.Transcript,
			Summary:   ev.Summary,
			Timestamp: ev.Timestamp,
		}, nil
	case models.EventMessageDropped:
		var ev models.MessageDropped
		if err := json.Unmarshal(value, &ev); err != nil {
			return feedEvent{}, err
		}
		return feedEvent{
			Kind:      "dropped",
			MessageID: ev.MessageID,
			From:      ev.From,
			Stage:     ev.Stage,
			Reason:    ev.Reason,
			Timestamp: ev.Timestamp,
		}, nil
	default:
		return feedEvent{}, fmt.Errorf("unknown event type %q", head.EventType)
	}
}

func consume(ctx context.Context, hub *Hub, brokers []string, topic string, lookback time.Duration) {
	// Partition reader without consumer group (works better through port-forward)
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	if err := reader.SetOffsetAt(ctx, time.Now().Add(-lookback)); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("Could not seek, reading from start")
	}

	log.Info().Str("topic", topic).Dur("lookback", lookback).Msg("Consuming feed")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Str("topic", topic).Msg("Kafka read error")
			time.Sleep(time.Second)
			continue
		}

		event, err := decodeEvent(msg.Value)
		if err != nil {
			log.Warn().Err(err).Str("topic", topic).Int64("offset", msg.Offset).Msg("Skipping undecodable record")
			continue
		}

		log.Debug().
			Str("kind", event.Kind).
			Str("messageId", event.MessageID).
			Msg("Feed event")
		hub.broadcast <- event
	}
}
