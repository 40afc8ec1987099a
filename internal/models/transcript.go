// Package models defines the relay outcome events published to the event feed.
package models

// Event types.
const (
	EventTranscriptDelivered = "voice.transcript.delivered"
	EventMessageDropped      = "voice.message.dropped"
)

// TranscriptDelivered is emitted after a reply reached the sender.
type TranscriptDelivered struct {
	EventType             string `json:"eventType" validate:"eq=voice.transcript.delivered"`
	EventID               string `json:"eventId" validate:"required,uuid"`
	MessageID             string `json:"messageId" validate:"required"`
	From                  string `json:"from" validate:"required"`
	TranscriptionProvider string `json:"transcriptionProvider" validate:"required"`
	SummaryProvider       string `json:"summaryProvider,omitempty"`
	Transcript            string `json:"transcript" validate:"required"`
	Summary               string `json:"summary,omitempty"`
	AudioBytes            int    `json:"audioBytes" validate:"gte=0"`
	Timestamp             int64  `json:"timestamp" validate:"gt=0"`
}

// MessageDropped is emitted when an audio message stopped before a reply
// was delivered.
type MessageDropped struct {
	EventType string `json:"eventType" validate:"eq=voice.message.dropped"`
	EventID   string `json:"eventId" validate:"required,uuid"`
	MessageID string `json:"messageId"`
	From      string `json:"from"`
	Stage     string `json:"stage" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
	Timestamp int64  `json:"timestamp" validate:"gt=0"`
}
