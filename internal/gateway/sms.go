package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sender delivers one SMS. Any transport-level failure (network error,
// non-2xx, malformed response) is returned as an error; callers convert
// it into a history row rather than aborting the whole request.
type Sender interface {
	Send(ctx context.Context, phone, content string) error
}

// Config holds SMS provider configuration
type Config struct {
	APIURL  string
	APIKey  string
	Timeout time.Duration
}

type httpSender struct {
	client *http.Client
	apiURL string
	apiKey string
}

// NewHTTPSender creates a Sender backed by the SMS provider's HTTP API.
// The timeout bounds webhook request latency for immediate sends.
func NewHTTPSender(cfg Config) Sender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpSender{
		client: &http.Client{Timeout: timeout},
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
	}
}

type sendRequest struct {
	Key    string `json:"key"`
	Type   int    `json:"type"`
	Number string `json:"number"`
	Msg    string `json:"msg"`
}

// Send posts one message to the provider
func (s *httpSender) Send(ctx context.Context, phone, content string) error {
	if s.apiKey == "" {
		return fmt.Errorf("sms api key not configured")
	}

	body, err := json.Marshal(sendRequest{
		Key:    s.apiKey,
		Type:   9,
		Number: phone,
		Msg:    content,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}

	return nil
}
