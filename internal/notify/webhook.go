package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/PratikDhanave/trapwatch-service/internal/escalation"
)

// WebhookNotifier POSTs the alert as JSON to a contact that is an http(s) URL.
type WebhookNotifier struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWebhookNotifier relies on the caller's context for the request deadline.
func NewWebhookNotifier(client *http.Client, logger *slog.Logger) *WebhookNotifier {
	if client == nil {
		client = &http.Client{}
	}
	return &WebhookNotifier{httpClient: client, logger: logger}
}

func (n *WebhookNotifier) Notify(ctx context.Context, contact string, alert escalation.Alert) error {
	u, err := url.Parse(contact)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("webhook contact %q is not an http(s) URL", contact)
	}

	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Alert-ID", alert.ID)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook error: status %d: %s", resp.StatusCode, b)
	}

	n.logger.Debug("webhook alert delivered", "contact", contact, "alert_id", alert.ID)
	return nil
}
