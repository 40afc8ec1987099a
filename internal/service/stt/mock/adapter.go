// Package mock provides a transcription provider that needs no credentials.
// It cycles through canned voice notes so local runs produce varied replies.
package mock

import (
	"context"
	"sync"

	"voice-relay-service/internal/service/stt"
)

// ProviderName is the VOICE_TRANSCRIPTION_SERVICE value selecting this provider.
const ProviderName = "MOCK"

// DefaultTranscripts are returned in order, one per call.
var DefaultTranscripts = []string{
	"Hey, just checking in about tomorrow. Can we move the meeting to three?",
	"Please pick up milk and bread on the way home. Thanks!",
	"I reviewed the proposal. Two things: fix the budget table and send it to legal.",
}

// Adapter implements stt.Transcriber with canned transcripts.
type Adapter struct {
	mu          sync.Mutex
	transcripts []string
	next        int
	calls       [][]byte
}

// New creates a mock adapter. With no transcripts, DefaultTranscripts are used.
func New(transcripts ...string) *Adapter {
	if len(transcripts) == 0 {
		transcripts = DefaultTranscripts
	}
	return &Adapter{transcripts: transcripts}
}

func (a *Adapter) Name() string { return ProviderName }

// Transcribe returns the next canned transcript. Empty audio yields
// stt.ErrEmptyTranscript, mirroring a provider that heard nothing.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls = append(a.calls, audio)
	if len(audio) == 0 {
		return "", stt.ErrEmptyTranscript
	}
	text := a.transcripts[a.next%len(a.transcripts)]
	a.next++
	return text, nil
}

// Calls returns the audio buffers received so far.
func (a *Adapter) Calls() [][]byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([][]byte{}, a.calls...)
}
