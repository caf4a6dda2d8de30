// Package webhook dispatches WebhookEvents to registered subscribers with
// HMAC signing, outcome-driven retry, and a background retry loop.
package webhook

import (
	"database/sql"
	"encoding/json"
	"sort"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/finopsguard/guardrail/internal/apperrors"
	"github.com/finopsguard/guardrail/internal/model"
)

// Store is the registry of Webhooks and the persistence surface for their
// WebhookDeliverys.
type Store interface {
	AddWebhook(w model.Webhook) (model.Webhook, error)
	UpdateWebhook(w model.Webhook) (model.Webhook, error)
	DeleteWebhook(id string) error
	GetWebhook(id string) (model.Webhook, error)
	ListWebhooks() []model.Webhook
	SubscribedWebhooks(eventType model.WebhookEventType) []model.Webhook

	SaveDelivery(d model.WebhookDelivery) error
	DueDeliveries(now time.Time, batchSize int) ([]model.WebhookDelivery, error)
	DeleteTerminalBefore(cutoff time.Time) (int, error)
	DeliveriesForWebhook(webhookID string) []model.WebhookDelivery
}

// MemoryStore is an in-memory Store, the fallback backend when no durable
// store is configured.
type MemoryStore struct {
	mu         sync.RWMutex
	webhooks   map[string]model.Webhook
	deliveries map[string]model.WebhookDelivery
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		webhooks:   make(map[string]model.Webhook),
		deliveries: make(map[string]model.WebhookDelivery),
	}
}

func (s *MemoryStore) AddWebhook(w model.Webhook) (model.Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.webhooks[w.ID] = w
	return w, nil
}

func (s *MemoryStore) UpdateWebhook(w model.Webhook) (model.Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.webhooks[w.ID]; !ok {
		return model.Webhook{}, apperrors.NotFound("webhook", w.ID)
	}
	s.webhooks[w.ID] = w
	return w, nil
}

func (s *MemoryStore) DeleteWebhook(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.webhooks[id]; !ok {
		return apperrors.NotFound("webhook", id)
	}
	delete(s.webhooks, id)
	return nil
}

func (s *MemoryStore) GetWebhook(id string) (model.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.webhooks[id]
	if !ok {
		return model.Webhook{}, apperrors.NotFound("webhook", id)
	}
	return w, nil
}

func (s *MemoryStore) ListWebhooks() []model.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Webhook, 0, len(s.webhooks))
	for _, w := range s.webhooks {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) SubscribedWebhooks(eventType model.WebhookEventType) []model.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Webhook
	for _, w := range s.webhooks {
		if w.Subscribes(eventType) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) SaveDelivery(d model.WebhookDelivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries[d.ID] = d
	return nil
}

// DueDeliveries returns up to batchSize pending/retrying deliveries whose
// NextRetryAt has passed (or is unset, for a first attempt), oldest first.
func (s *MemoryStore) DueDeliveries(now time.Time, batchSize int) ([]model.WebhookDelivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var due []model.WebhookDelivery
	for _, d := range s.deliveries {
		if d.Terminal() {
			continue
		}
		if d.AttemptNumber >= d.MaxAttempts {
			continue
		}
		if d.NextRetryAt != nil && d.NextRetryAt.After(now) {
			continue
		}
		due = append(due, d)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].CreatedAt.Before(due[j].CreatedAt) })
	if len(due) > batchSize {
		due = due[:batchSize]
	}
	return due, nil
}

// DeliveriesForWebhook returns every delivery recorded for webhookID,
// newest first, for the GET /webhooks/{id}/deliveries endpoint.
func (s *MemoryStore) DeliveriesForWebhook(webhookID string) []model.WebhookDelivery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.WebhookDelivery
	for _, d := range s.deliveries {
		if d.WebhookID == webhookID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// DeleteTerminalBefore removes delivered/failed deliveries created before
// cutoff and reports how many were removed.
func (s *MemoryStore) DeleteTerminalBefore(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, d := range s.deliveries {
		if d.Terminal() && d.CreatedAt.Before(cutoff) {
			delete(s.deliveries, id)
			removed++
		}
	}
	return removed, nil
}

// PostgresStore persists webhooks and deliveries in two JSONB-document
// tables. Expected DDL:
//
//	CREATE TABLE IF NOT EXISTS webhooks (
//	    id         TEXT PRIMARY KEY,
//	    document   JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE TABLE IF NOT EXISTS webhook_deliveries (
//	    id            TEXT PRIMARY KEY,
//	    webhook_id    TEXT NOT NULL,
//	    document      JSONB NOT NULL,
//	    status        TEXT NOT NULL,
//	    next_retry_at TIMESTAMPTZ,
//	    created_at    TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an already-open *sql.DB ("postgres" driver
// registered via the blank lib/pq import above).
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) AddWebhook(w model.Webhook) (model.Webhook, error) {
	if err := s.upsertWebhook(w); err != nil {
		return model.Webhook{}, err
	}
	return w, nil
}

func (s *PostgresStore) UpdateWebhook(w model.Webhook) (model.Webhook, error) {
	if _, err := s.GetWebhook(w.ID); err != nil {
		return model.Webhook{}, err
	}
	if err := s.upsertWebhook(w); err != nil {
		return model.Webhook{}, err
	}
	return w, nil
}

func (s *PostgresStore) upsertWebhook(w model.Webhook) error {
	doc, err := json.Marshal(w)
	if err != nil {
		return apperrors.Internal("webhook store: marshal webhook", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO webhooks (id, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()
	`, w.ID, doc)
	if err != nil {
		return apperrors.Internal("webhook store: upsert webhook", err)
	}
	return nil
}

func (s *PostgresStore) DeleteWebhook(id string) error {
	res, err := s.db.Exec(`DELETE FROM webhooks WHERE id = $1`, id)
	if err != nil {
		return apperrors.Internal("webhook store: delete webhook", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperrors.NotFound("webhook", id)
	}
	return nil
}

func (s *PostgresStore) GetWebhook(id string) (model.Webhook, error) {
	var doc []byte
	err := s.db.QueryRow(`SELECT document FROM webhooks WHERE id = $1`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return model.Webhook{}, apperrors.NotFound("webhook", id)
	}
	if err != nil {
		return model.Webhook{}, apperrors.Internal("webhook store: get webhook", err)
	}
	var w model.Webhook
	if err := json.Unmarshal(doc, &w); err != nil {
		return model.Webhook{}, apperrors.Internal("webhook store: unmarshal webhook", err)
	}
	return w, nil
}

func (s *PostgresStore) ListWebhooks() []model.Webhook {
	rows, err := s.db.Query(`SELECT document FROM webhooks ORDER BY id`)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []model.Webhook
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			continue
		}
		var w model.Webhook
		if err := json.Unmarshal(doc, &w); err == nil {
			out = append(out, w)
		}
	}
	return out
}

func (s *PostgresStore) SubscribedWebhooks(eventType model.WebhookEventType) []model.Webhook {
	var out []model.Webhook
	for _, w := range s.ListWebhooks() {
		if w.Subscribes(eventType) {
			out = append(out, w)
		}
	}
	return out
}

func (s *PostgresStore) SaveDelivery(d model.WebhookDelivery) error {
	doc, err := json.Marshal(d)
	if err != nil {
		return apperrors.Internal("webhook store: marshal delivery", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO webhook_deliveries (id, webhook_id, document, status, next_retry_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			document = EXCLUDED.document,
			status = EXCLUDED.status,
			next_retry_at = EXCLUDED.next_retry_at
	`, d.ID, d.WebhookID, doc, string(d.Status), d.NextRetryAt, d.CreatedAt)
	if err != nil {
		return apperrors.Internal("webhook store: save delivery", err)
	}
	return nil
}

func (s *PostgresStore) DueDeliveries(now time.Time, batchSize int) ([]model.WebhookDelivery, error) {
	rows, err := s.db.Query(`
		SELECT document FROM webhook_deliveries
		WHERE status IN ('pending', 'retrying') AND (next_retry_at IS NULL OR next_retry_at <= $1)
		ORDER BY created_at ASC
		LIMIT $2
	`, now, batchSize)
	if err != nil {
		return nil, apperrors.Internal("webhook store: due deliveries", err)
	}
	defer rows.Close()
	var out []model.WebhookDelivery
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			continue
		}
		var d model.WebhookDelivery
		if err := json.Unmarshal(doc, &d); err == nil && d.AttemptNumber < d.MaxAttempts {
			out = append(out, d)
		}
	}
	return out, nil
}

// DeliveriesForWebhook returns every delivery recorded for webhookID,
// newest first.
func (s *PostgresStore) DeliveriesForWebhook(webhookID string) []model.WebhookDelivery {
	rows, err := s.db.Query(`
		SELECT document FROM webhook_deliveries WHERE webhook_id = $1 ORDER BY created_at DESC
	`, webhookID)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []model.WebhookDelivery
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			continue
		}
		var d model.WebhookDelivery
		if err := json.Unmarshal(doc, &d); err == nil {
			out = append(out, d)
		}
	}
	return out
}

func (s *PostgresStore) DeleteTerminalBefore(cutoff time.Time) (int, error) {
	res, err := s.db.Exec(`
		DELETE FROM webhook_deliveries
		WHERE status IN ('delivered', 'failed') AND created_at < $1
	`, cutoff)
	if err != nil {
		return 0, apperrors.Internal("webhook store: delete terminal deliveries", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Internal("webhook store: rows affected", err)
	}
	return int(n), nil
}
