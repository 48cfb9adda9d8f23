// Package webhook implements an HTTP webhook notifier
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/tradelens/internal/notifier"
)

const defaultTimeout = 30 * time.Second

// Webhook implements the Notifier interface for HTTP webhooks
type Webhook struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// New creates a new Webhook notifier
func New(url string, headers map[string]string) (*Webhook, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook: url is required")
	}
	return &Webhook{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (w *Webhook) Name() string { return "webhook" }

// Notify posts the event as JSON. Any status >= 400 is an error.
func (w *Webhook) Notify(ctx context.Context, event notifier.Event) error {
	return w.post(ctx, eventToPayload(event))
}

func eventToPayload(event notifier.Event) map[string]any {
	status := "success"
	if !event.Succeeded() {
		status = "failure"
	}
	payload := map[string]any{
		"type":        event.Type,
		"status":      status,
		"users":       event.Users,
		"written":     event.Written,
		"failed":      event.Failed,
		"started_at":  event.StartedAt.Format(time.RFC3339),
		"finished_at": event.FinishedAt.Format(time.RFC3339),
	}
	if event.Error != "" {
		payload["error"] = event.Error
	}
	return payload
}

func (w *Webhook) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: server returned %d", resp.StatusCode)
	}

	return nil
}
