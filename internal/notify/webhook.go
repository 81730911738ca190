// Package notify delivers signed JSON webhooks to the parent account
// application. Deliveries are best-effort: callers enqueue them without
// retries and the caller-facing request never waits on them.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resumebuilder/internal/config"
	"resumebuilder/internal/dashboard"
)

const signatureHeader = "X-Ansiversa-Signature"

// ErrNotConfigured marks a delivery skipped because the parent URL or the
// shared secret is missing.
var ErrNotConfigured = errors.New("parent webhook not configured")

// Activity is one state change reported to the parent.
type Activity struct {
	Event      string `json:"event"`
	EntityID   string `json:"entityId,omitempty"`
	OccurredAt string `json:"occurredAt"`
}

// ActivityPayload is the body POSTed to the activity webhook.
type ActivityPayload struct {
	UserID   string            `json:"userId"`
	AppID    string            `json:"appId"`
	Activity Activity          `json:"activity"`
	Summary  dashboard.Summary `json:"summary"`
}

// NotificationPayload is the body POSTed to the generic notification webhook.
type NotificationPayload struct {
	AppKey    string         `json:"appKey"`
	UserID    string         `json:"userId"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Level     string         `json:"level"`
	Meta      map[string]any `json:"meta"`
	CreatedAt string         `json:"createdAt"`
}

// Client posts signed payloads to the parent webhooks.
type Client struct {
	activityURL string
	notifyURL   string
	secret      string
	httpClient  *http.Client
}

// NewClient derives the webhook endpoints from the parent configuration.
// Endpoints left unconfigured cause deliveries to fail with ErrNotConfigured.
func NewClient(cfg config.ParentConfig) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.AppURL), "/")

	activityURL := ""
	notifyURL := strings.TrimSpace(cfg.NotifyWebhookURL)
	if base != "" {
		activityURL = base + "/api/webhooks/resume-builder-activity.json"
		if notifyURL == "" {
			notifyURL = base + "/api/webhooks/notifications.json"
		}
	}

	return &Client{
		activityURL: activityURL,
		notifyURL:   notifyURL,
		secret:      strings.TrimSpace(cfg.WebhookSecret),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// PushActivity posts an activity payload to the parent.
func (c *Client) PushActivity(ctx context.Context, payload ActivityPayload) error {
	payload.AppID = "resume-builder"
	if payload.Activity.OccurredAt == "" {
		payload.Activity.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	return c.post(ctx, c.activityURL, payload)
}

// NotifyParent posts a generic notification to the parent.
func (c *Client) NotifyParent(ctx context.Context, payload NotificationPayload) error {
	payload.AppKey = "resume-builder"
	if payload.Level == "" {
		payload.Level = "info"
	}
	if payload.CreatedAt == "" {
		payload.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return c.post(ctx, c.notifyURL, payload)
}

func (c *Client) post(ctx context.Context, url string, payload any) error {
	if url == "" || c.secret == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
