// Package deepgram provides a transcription provider backed by the Deepgram
// pre-recorded /listen API.
package deepgram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"

	"voice-relay-service/internal/service/stt"
)

// ProviderName is the VOICE_TRANSCRIPTION_SERVICE value selecting this provider.
const ProviderName = "DEEPGRAM"

const (
	defaultHost    = "api.deepgram.com"
	defaultTimeout = 120 * time.Second
)

var errClientOptions = errors.New("deepgram: client options rejected")

// Config holds Deepgram settings. BaseURL may be a full URL or a bare host;
// only its host is used. Model is optional; Deepgram picks its default when
// empty. SkipServerAuth disables TLS verification for self-hosted endpoints.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Timeout        time.Duration
	SkipServerAuth bool
}

// Adapter implements stt.Transcriber for Deepgram.
type Adapter struct {
	rest    *api.Client
	host    string
	model   string
	timeout time.Duration
	initErr error
}

// New creates a Deepgram adapter. Invalid client options surface on the
// first Transcribe call.
func New(cfg Config) *Adapter {
	a := &Adapter{
		host:    hostOf(cfg.BaseURL),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}

	c := client.NewREST(cfg.APIKey, &interfaces.ClientOptions{
		Host:           a.host,
		SkipServerAuth: cfg.SkipServerAuth,
	})
	if c == nil {
		a.initErr = errClientOptions
		return a
	}
	a.rest = api.New(c)
	return a
}

func (a *Adapter) Name() string { return ProviderName }

// hostOf reduces a base URL to host[:port].
func hostOf(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return defaultHost
	}
	if u, err := url.Parse(base); err == nil && u.Host != "" {
		return u.Host
	}
	return strings.TrimRight(base, "/")
}

// Transcribe streams the audio bytes and returns
// results.channels[0].alternatives[0].transcript.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if a.initErr != nil {
		return "", a.initErr
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	res, err := a.rest.FromStream(ctx, bytes.NewReader(audio), &interfaces.PreRecordedTranscriptionOptions{
		Model: a.model,
	})
	if err != nil {
		return "", fmt.Errorf("deepgram request: %w", err)
	}

	if res == nil || res.Results == nil || len(res.Results.Channels) == 0 {
		return "", stt.ErrEmptyTranscript
	}
	alts := res.Results.Channels[0].Alternatives
	if len(alts) == 0 {
		return "", stt.ErrEmptyTranscript
	}
	text := strings.TrimSpace(alts[0].Transcript)
	if text == "" {
		return "", stt.ErrEmptyTranscript
	}
	return text, nil
}
