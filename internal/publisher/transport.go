package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fentz26/breakroom/internal/controlplane"
	"github.com/fentz26/breakroom/internal/models"
)

// Transport delivers one status update.
type Transport interface {
	Name() string
	Send(ctx context.Context, text string, snap models.Snapshot) error
}

// HubTransport pushes updates to websocket clients.
type HubTransport struct {
	Hub *controlplane.Hub
}

// Name implements Transport.
func (t HubTransport) Name() string { return "websocket" }

// Send implements Transport.
func (t HubTransport) Send(_ context.Context, text string, snap models.Snapshot) error {
	t.Hub.Broadcast(controlplane.Event{
		Type:     controlplane.EventStatus,
		Text:     text,
		Snapshot: &snap,
	})
	return nil
}

// LogTransport writes updates to the logger.
type LogTransport struct {
	Logger *zap.Logger
}

// Name implements Transport.
func (t LogTransport) Name() string { return "log" }

// Send implements Transport.
func (t LogTransport) Send(_ context.Context, text string, snap models.Snapshot) error {
	t.Logger.Info("Status update",
		zap.Int("total_away", snap.TotalAway),
		zap.Int("total_limit", snap.TotalLimit),
		zap.String("text", text))
	return nil
}

// WebhookTransport posts {"content": text} to a chat webhook.
type WebhookTransport struct {
	URL    string
	Client *http.Client
}

// NewWebhookTransport creates a webhook transport with a bounded client.
func NewWebhookTransport(url string) *WebhookTransport {
	return &WebhookTransport{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name implements Transport.
func (t *WebhookTransport) Name() string { return "webhook" }

// Send implements Transport.
func (t *WebhookTransport) Send(ctx context.Context, text string, _ models.Snapshot) error {
	body, err := json.Marshal(map[string]string{"content": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
