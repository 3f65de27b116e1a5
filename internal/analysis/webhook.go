package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/arludent/clinic-ai/internal/models"
)

// Notifier posts analysis results to the backend webhook. Delivery is
// best-effort and at-least-once at most: failures of any kind are logged
// and swallowed, never surfaced to the analysis caller.
type Notifier struct {
	httpClient  *http.Client
	url         string
	internalKey string
	timeout     time.Duration
	logger      *zap.Logger
}

func NewNotifier(url, internalKey string, timeout time.Duration, logger *zap.Logger) *Notifier {
	return &Notifier{
		httpClient:  &http.Client{Timeout: timeout},
		url:         url,
		internalKey: internalKey,
		timeout:     timeout,
		logger:      logger,
	}
}

// Dispatch fires the notification in the background so the synchronous
// analysis response is never held up by the webhook.
func (n *Notifier) Dispatch(payload models.WebhookPayload) {
	go n.send(payload)
}

func (n *Notifier) send(payload models.WebhookPayload) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("Failed to encode webhook payload",
			zap.Int64("record_id", payload.RecordID),
			zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("Failed to build webhook request",
			zap.Int64("record_id", payload.RecordID),
			zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Key", n.internalKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Error("Webhook dispatch failed",
			zap.Int64("record_id", payload.RecordID),
			zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		n.logger.Error("Webhook rejected",
			zap.Int64("record_id", payload.RecordID),
			zap.Int("status", resp.StatusCode))
		return
	}
	n.logger.Info("Webhook delivered", zap.Int64("record_id", payload.RecordID))
}
