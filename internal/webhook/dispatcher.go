package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/finopsguard/guardrail/internal/logging"
	"github.com/finopsguard/guardrail/internal/metrics"
	"github.com/finopsguard/guardrail/internal/model"
	"go.uber.org/zap"
)

const userAgent = "FinOpsGuard-Webhook/1.0"

// Dispatcher routes WebhookEvents to every enabled, subscribed webhook and
// drives each delivery's retry state machine.
type Dispatcher struct {
	store   Store
	metrics *metrics.Registry // nil when the composition root wires no /metrics surface
}

// NewDispatcher returns a Dispatcher backed by store.
func NewDispatcher(store Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// SetMetrics attaches m so every delivery attempt records a
// webhook_deliveries_total observation. Safe to call once at composition
// time, before traffic.
func (d *Dispatcher) SetMetrics(m *metrics.Registry) {
	d.metrics = m
}

// Emit builds a WebhookEvent of type eventType and routes it to every
// enabled webhook subscribed to it, creating one pending WebhookDelivery per
// target and attempting each once. Deliveries that don't succeed on the
// first attempt are left for the retry loop.
func (d *Dispatcher) Emit(eventType model.WebhookEventType, data map[string]interface{}, metadata map[string]interface{}) {
	targets := d.store.SubscribedWebhooks(eventType)
	if len(targets) == 0 {
		return
	}

	event := model.WebhookEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
		Metadata:  metadata,
	}
	body, err := json.Marshal(event)
	if err != nil {
		logging.Error("webhook: marshal event", zap.String("event_type", string(eventType)), zap.Error(err))
		return
	}

	for _, w := range targets {
		delivery := model.WebhookDelivery{
			ID:            uuid.NewString(),
			WebhookID:     w.ID,
			EventID:       event.ID,
			EventType:     eventType,
			Payload:       body,
			Status:        model.DeliveryPending,
			AttemptNumber: 0,
			MaxAttempts:   maxAttempts(w),
			CreatedAt:     time.Now().UTC(),
		}
		go d.Dispatch(w, delivery)
	}
}

// Dispatch performs a single delivery attempt against webhook for an
// already-built delivery record, persists the outcome, and reports whether
// the attempt itself succeeded (2xx response).
func (d *Dispatcher) Dispatch(w model.Webhook, delivery model.WebhookDelivery) bool {
	delivery.AttemptNumber++
	ok := d.attempt(w, &delivery)
	if err := d.store.SaveDelivery(delivery); err != nil {
		logging.Error("webhook: save delivery", zap.String("delivery_id", delivery.ID), zap.Error(err))
	}
	if d.metrics != nil {
		d.metrics.WebhookDeliveries.WithLabelValues(string(delivery.Status)).Inc()
	}
	return ok
}

// attempt performs the HTTP POST and mutates delivery in place per the
// outcome-handling rules: 2xx delivers, 4xx/5xx or a transport error retries
// until max_attempts is exhausted, then fails.
func (d *Dispatcher) attempt(w model.Webhook, delivery *model.WebhookDelivery) bool {
	client := &http.Client{
		Timeout: timeout(w),
	}
	if !w.VerifySSL {
		client.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}

	req, err := http.NewRequest(http.MethodPost, w.URL, bytes.NewReader(delivery.Payload))
	if err != nil {
		return d.recordFailure(w, delivery, fmt.Sprintf("building request: %v", err))
	}
	applyHeaders(req, w, delivery)

	resp, err := client.Do(req)
	if err != nil {
		return d.recordFailure(w, delivery, err.Error())
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, int64(model.MaxResponseBodyLen)))
	delivery.ResponseStatus = resp.StatusCode
	delivery.ResponseBody = string(respBody)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		now := time.Now().UTC()
		delivery.Status = model.DeliveryDelivered
		delivery.DeliveredAt = &now
		delivery.NextRetryAt = nil
		return true
	}

	return d.recordFailure(w, delivery, fmt.Sprintf("webhook responded %d", resp.StatusCode))
}

func (d *Dispatcher) recordFailure(w model.Webhook, delivery *model.WebhookDelivery, message string) bool {
	delivery.ErrorMessage = message
	if delivery.AttemptNumber < delivery.MaxAttempts {
		next := time.Now().UTC().Add(retryDelay(w))
		delivery.Status = model.DeliveryRetrying
		delivery.NextRetryAt = &next
	} else {
		delivery.Status = model.DeliveryFailed
		delivery.NextRetryAt = nil
	}
	logging.Warn("webhook: delivery attempt failed",
		zap.String("webhook_id", w.ID),
		zap.String("delivery_id", delivery.ID),
		zap.Int("attempt", delivery.AttemptNumber),
		zap.String("status", string(delivery.Status)),
		logging.Redacted("secret", w.Secret),
		zap.String("error", message),
	)
	return false
}

// applyHeaders sets every header the attempt contract requires: the fixed
// set, the webhook's own extra headers (reserved names already rejected at
// registration), and the HMAC signature when a secret is configured.
func applyHeaders(req *http.Request, w model.Webhook, delivery *model.WebhookDelivery) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Webhook-Event", string(delivery.EventType))
	req.Header.Set("X-Webhook-Delivery", delivery.ID)
	req.Header.Set("X-Webhook-Attempt", fmt.Sprintf("%d", delivery.AttemptNumber))
	for k, v := range w.Headers {
		req.Header.Set(k, v)
	}
	if w.Secret != "" {
		req.Header.Set("X-Webhook-Signature", "sha256="+sign(w.Secret, delivery.Payload))
	}
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies an inbound "sha256=<hex>" signature header
// against body using secret, for callers that need to validate deliveries
// they received (e.g. a test receiver or an inbound-webhook endpoint).
func VerifySignature(signatureHeader string, body []byte, secret string) bool {
	const prefix = "sha256="
	if len(signatureHeader) <= len(prefix) || signatureHeader[:len(prefix)] != prefix {
		return false
	}
	expected := sign(secret, body)
	return hmac.Equal([]byte(signatureHeader[len(prefix):]), []byte(expected))
}

func maxAttempts(w model.Webhook) int {
	if w.RetryAttempts <= 0 {
		return 3
	}
	return w.RetryAttempts
}

func retryDelay(w model.Webhook) time.Duration {
	if w.RetryDelaySeconds <= 0 {
		return time.Second
	}
	return time.Duration(w.RetryDelaySeconds) * time.Second
}

func timeout(w model.Webhook) time.Duration {
	if w.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(w.TimeoutSeconds) * time.Second
}
