package model

import "time"

// WebhookEventType enumerates the event types a webhook may subscribe to.
type WebhookEventType string

const (
	EventCostAnomaly       WebhookEventType = "cost_anomaly"
	EventBudgetExceeded    WebhookEventType = "budget_exceeded"
	EventPolicyViolation   WebhookEventType = "policy_violation"
	EventHighCostResource  WebhookEventType = "high_cost_resource"
	EventCostSpike         WebhookEventType = "cost_spike"
	EventAnalysisCompleted WebhookEventType = "analysis_completed"
	EventPolicyCreated     WebhookEventType = "policy_created"
	EventPolicyUpdated     WebhookEventType = "policy_updated"
	EventPolicyDeleted     WebhookEventType = "policy_deleted"
)

// ReservedHeaders names the header keys a Webhook may not override because
// the dispatcher sets them itself.
var ReservedHeaders = map[string]struct{}{
	"content-type":   {},
	"content-length": {},
	"authorization":  {},
	"user-agent":     {},
}

// Webhook is a registered delivery target subscribed to one or more event
// types.
//
// Invariant: URL must start with "http://" or "https://"; Headers may not
// contain a key in ReservedHeaders (case-insensitive).
type Webhook struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	URL               string            `json:"url"`
	Secret            string            `json:"secret,omitempty"`
	Events            []WebhookEventType `json:"events"`
	Enabled           bool              `json:"enabled"`
	VerifySSL         bool              `json:"verify_ssl"`
	TimeoutSeconds    int               `json:"timeout_seconds"`
	RetryAttempts     int               `json:"retry_attempts"`
	RetryDelaySeconds int               `json:"retry_delay_seconds"`
	Headers           map[string]string `json:"headers,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Subscribes reports whether this webhook is enabled and subscribed to the
// given event type.
func (w *Webhook) Subscribes(t WebhookEventType) bool {
	if !w.Enabled {
		return false
	}
	for _, e := range w.Events {
		if e == t {
			return true
		}
	}
	return false
}

// DeliveryStatus is a WebhookDelivery's position in its state machine.
// pending -> {delivered|retrying|failed}; retrying -> {delivered|retrying|failed}.
// delivered and failed are terminal.
type DeliveryStatus string

const (
	DeliveryPending  DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed   DeliveryStatus = "failed"
	DeliveryRetrying DeliveryStatus = "retrying"
)

// WebhookDelivery is a single record of a dispatch attempt (or sequence of
// attempts) against one webhook for one event.
//
// Invariant: AttemptNumber <= MaxAttempts; once Status is delivered or
// failed, it never transitions again.
type WebhookDelivery struct {
	ID             string           `json:"id"`
	WebhookID      string           `json:"webhook_id"`
	EventID        string           `json:"event_id"`
	EventType      WebhookEventType `json:"event_type"`
	Payload        []byte           `json:"payload"`
	Status         DeliveryStatus   `json:"status"`
	AttemptNumber  int              `json:"attempt_number"`
	MaxAttempts    int              `json:"max_attempts"`
	NextRetryAt    *time.Time       `json:"next_retry_at,omitempty"`
	ResponseStatus int              `json:"response_status,omitempty"`
	ResponseBody   string           `json:"response_body,omitempty"`
	ErrorMessage   string           `json:"error_message,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	DeliveredAt    *time.Time       `json:"delivered_at,omitempty"`
}

// Terminal reports whether the delivery has reached a terminal state.
func (d *WebhookDelivery) Terminal() bool {
	return d.Status == DeliveryDelivered || d.Status == DeliveryFailed
}

// MaxResponseBodyLen is the truncation limit applied to stored response
// bodies.
const MaxResponseBodyLen = 1000

// WebhookEvent is the payload body POSTed to a subscriber.
type WebhookEvent struct {
	ID        string                 `json:"id"`
	Type      WebhookEventType       `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}
