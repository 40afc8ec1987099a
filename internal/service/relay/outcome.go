package relay

import "fmt"

// Status is the terminal state of one inbound message.
type Status int

const (
	// StatusSkipped - not an audio message; nothing was attempted.
	StatusSkipped Status = iota
	// StatusDelivered - the reply was accepted by the platform.
	StatusDelivered
	// StatusDropped - processing stopped before a reply was delivered.
	StatusDropped
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "SKIPPED"
	case StatusDelivered:
		return "DELIVERED"
	case StatusDropped:
		return "DROPPED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// Stage names a step of the relay pipeline.
type Stage string

const (
	StageAllowList     Stage = "allowlist"
	StageMedia         Stage = "media"
	StageTranscription Stage = "transcription"
	StageSummary       Stage = "summary"
	StageReply         Stage = "reply"
)

// Outcome is the result of relaying one message. Stage and Err are set only
// for dropped messages.
type Outcome struct {
	MessageID  string
	From       string
	Status     Status
	Stage      Stage
	Err        error
	Transcript string
	Summary    string
}

// Reason returns a short description of why the message was dropped.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

func dropped(messageID, from string, stage Stage, err error) Outcome {
	return Outcome{
		MessageID: messageID,
		From:      from,
		Status:    StatusDropped,
		Stage:     stage,
		Err:       err,
	}
}
