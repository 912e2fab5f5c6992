// Package sms abstracts the SMS provider used for phone verification.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Gateway sends one text message. Implementations must respect ctx deadlines;
// callers treat a send as fire-and-forget once the code is stored.
type Gateway interface {
	Send(ctx context.Context, phone, message string) error
}

// HTTPGateway posts messages to a JSON SMS provider API.
type HTTPGateway struct {
	apiURL string
	apiKey string
	sender string
	client *http.Client
}

func NewHTTPGateway(apiURL, apiKey, sender string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		apiURL: apiURL,
		apiKey: apiKey,
		sender: sender,
		client: &http.Client{Timeout: timeout},
	}
}

type sendRequest struct {
	To     string `json:"to"`
	From   string `json:"from"`
	Body   string `json:"body"`
	APIKey string `json:"api_key"`
}

func (g *HTTPGateway) Send(ctx context.Context, phone, message string) error {
	payload, err := json.Marshal(sendRequest{
		To:     phone,
		From:   g.sender,
		Body:   message,
		APIKey: g.apiKey,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms send: provider returned status %d", resp.StatusCode)
	}
	return nil
}

// MockGateway logs the message instead of sending it. Used in development
// when no provider is configured.
type MockGateway struct{}

func (MockGateway) Send(_ context.Context, phone, message string) error {
	log.Printf("[SMS] [MOCK] to=%s body=%q", phone, message)
	return nil
}
