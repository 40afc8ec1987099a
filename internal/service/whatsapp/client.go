package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxErrorBody = 512

// APIError is returned when the Graph API (or the media CDN) answers with a
// non-2xx status.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// ErrNoMediaURL is returned when the media lookup succeeds without a URL.
var ErrNoMediaURL = errors.New("whatsapp: media lookup returned no url")

// Config configures a Client.
type Config struct {
	APIBase       string
	AccessToken   string
	PhoneNumberID string
	HTTPClient    *http.Client
}

// Client calls the WhatsApp Cloud API with a bearer token.
type Client struct {
	apiBase       string
	accessToken   string
	phoneNumberID string
	http          *http.Client
}

// NewClient creates a Cloud API client.
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiBase:       strings.TrimRight(cfg.APIBase, "/"),
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		http:          hc,
	}
}

type mediaInfo struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// FetchMedia resolves mediaID to a temporary URL and downloads it.
func (c *Client) FetchMedia(ctx context.Context, mediaID string) ([]byte, error) {
	mediaURL, err := c.resolveMediaURL(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	return c.download(ctx, mediaURL)
}

func (c *Client) resolveMediaURL(ctx context.Context, mediaID string) (string, error) {
	endpoint := c.apiBase + "/" + url.PathEscape(mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build media lookup request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("media lookup: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus("media lookup", resp); err != nil {
		return "", err
	}

	var info mediaInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decode media lookup: %w", err)
	}
	if info.URL == "" {
		return "", ErrNoMediaURL
	}
	return info.URL, nil
}

func (c *Client) download(ctx context.Context, mediaURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build media download request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media download: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus("media download", resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read media body: %w", err)
	}
	return data, nil
}

type textMessage struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

// SendText sends a plain text message to the given WhatsApp user.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(textMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	endpoint := c.apiBase + "/" + url.PathEscape(c.phoneNumberID) + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus("send message", resp)
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
}
