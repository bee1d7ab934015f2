package notifiers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/primordialab/primordium/internal/engine"
)

const webhookTimeout = 5 * time.Second

// WebhookNotifier delivers simulation events as JSON POSTs to a fixed URL.
// Delivery is best-effort per call; retry policy belongs to the caller (the
// notification manager already retries transient failures).
type WebhookNotifier struct {
	id      string
	url     string
	headers http.Header
	client  *http.Client
}

// NewWebhookNotifier creates a webhook notifier posting to url with a
// default client.
func NewWebhookNotifier(id, url string) *WebhookNotifier {
	return NewWebhookNotifierWithClient(id, url, &http.Client{Timeout: webhookTimeout})
}

// NewWebhookNotifierWithClient creates a webhook notifier using the given
// HTTP client. Useful when the endpoint needs custom transport settings.
func NewWebhookNotifierWithClient(id, url string, client *http.Client) *WebhookNotifier {
	return &WebhookNotifier{
		id:      id,
		url:     url,
		headers: http.Header{"Content-Type": []string{"application/json"}},
		client:  client,
	}
}

// SetHeader adds a header to every webhook request, e.g. an auth token.
func (wn *WebhookNotifier) SetHeader(key, value string) {
	wn.headers.Set(key, value)
}

// ID returns the notifier ID
func (wn *WebhookNotifier) ID() string { return wn.id }

// Type returns the notifier type
func (wn *WebhookNotifier) Type() string { return "webhook" }

func (wn *WebhookNotifier) buildRequest(ctx context.Context, event engine.Event) (*http.Request, error) {
	payload, err := event.JSON()
	if err != nil {
		return nil, fmt.Errorf("encoding event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wn.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building webhook request: %w", err)
	}
	req.Header = wn.headers.Clone()
	return req, nil
}

// Notify posts the event. Any status outside 2xx counts as a failed
// delivery.
func (wn *WebhookNotifier) Notify(ctx context.Context, event engine.Event) error {
	req, err := wn.buildRequest(ctx, event)
	if err != nil {
		return err
	}

	resp, err := wn.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s: unexpected status %d", wn.id, resp.StatusCode)
	}
	return nil
}

// Close closes the notifier (no-op for webhook)
func (wn *WebhookNotifier) Close() error { return nil }
