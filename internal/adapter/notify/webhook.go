package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/couchcryptid/swe-alert-service/internal/domain"
)

// Webhook POSTs the alert decision as JSON to an HTTP endpoint.
type Webhook struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewWebhook creates a Webhook notifier. An empty token sends no
// Authorization header.
func NewWebhook(url, token string, timeout time.Duration) *Webhook {
	return &Webhook{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (w *Webhook) Name() string { return "webhook" }

// payload is the decision shape plus enough context to identify the check.
type payload struct {
	domain.Decision
	Station   string    `json:"station"`
	CheckedAt time.Time `json:"checked_at"`
}

// Notify delivers the decision. Any response status of 400 or above is an
// error.
func (w *Webhook) Notify(ctx context.Context, res domain.CheckResult) error {
	body, err := json.Marshal(payload{
		Decision:  res.Decision,
		Station:   res.Station,
		CheckedAt: res.CheckedAt,
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
