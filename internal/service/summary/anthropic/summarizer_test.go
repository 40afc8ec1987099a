package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"voice-relay-service/internal/service/summary"
)

var _ summary.Summarizer = (*Summarizer)(nil)

type textBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesRequest struct {
	Model     string      `json:"model"`
	MaxTokens int         `json:"max_tokens"`
	System    []textBlock `json:"system"`
	Messages  []struct {
		Role    string      `json:"role"`
		Content []textBlock `json:"content"`
	} `json:"messages"`
}

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

func TestSummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "ak-test" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if req.Model != "claude-3-haiku-20240307" || req.MaxTokens != summary.MaxTokens {
			t.Errorf("unexpected request %+v", req)
		}
		if len(req.System) != 1 || req.System[0].Text != summary.SystemPrompt {
			t.Errorf("unexpected system prompt %+v", req.System)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" ||
			len(req.Messages[0].Content) != 1 || req.Messages[0].Content[0].Text != "transcript" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		writeJSON(w, http.StatusOK, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-haiku-20240307",
			"content":[{"type":"text","text":"A summary."}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":3}}`)
	}))
	defer srv.Close()

	s := New(Config{APIKey: "ak-test", BaseURL: srv.URL + "/v1", HTTPClient: srv.Client()})
	got, err := s.Summarize(context.Background(), "transcript")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "A summary." {
		t.Errorf("unexpected summary %q", got)
	}
}

func TestSummarize_EmptyContent(t *testing.T) {
	for _, body := range []string{
		`{"id":"msg_1","type":"message","role":"assistant","content":[]}`,
		`{"id":"msg_1","type":"message","role":"assistant","content":[{"type":"text","text":"  "}]}`,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, body)
		}))

		s := New(Config{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})
		if _, err := s.Summarize(context.Background(), "x"); !errors.Is(err, summary.ErrEmptySummary) {
			t.Errorf("%s: expected ErrEmptySummary, got %v", body, err)
		}
		srv.Close()
	}
}

func TestSummarize_ErrorStatusNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, 529, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`)
	}))
	defer srv.Close()

	s := New(Config{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := s.Summarize(context.Background(), "x")

	var perr *summary.ProviderError
	if !errors.As(err, &perr) || perr.StatusCode != 529 || perr.Provider != ProviderName {
		t.Fatalf("expected ProviderError 529, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}
