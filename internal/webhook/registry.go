package webhook

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finopsguard/guardrail/internal/apperrors"
	"github.com/finopsguard/guardrail/internal/model"
)

// Registry is the mutation API for webhooks: validation plus Store CRUD.
type Registry struct {
	store Store
}

// NewRegistry returns a Registry backed by store.
func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Register validates and adds w, assigning an ID and timestamps.
func (r *Registry) Register(w model.Webhook) (model.Webhook, error) {
	if err := validate(w); err != nil {
		return model.Webhook{}, err
	}
	now := time.Now().UTC()
	w.ID = uuid.NewString()
	w.CreatedAt = now
	w.UpdatedAt = now
	applyDefaults(&w)
	return r.store.AddWebhook(w)
}

// Update validates and replaces the webhook identified by w.ID.
func (r *Registry) Update(w model.Webhook) (model.Webhook, error) {
	if err := validate(w); err != nil {
		return model.Webhook{}, err
	}
	existing, err := r.store.GetWebhook(w.ID)
	if err != nil {
		return model.Webhook{}, err
	}
	w.CreatedAt = existing.CreatedAt
	w.UpdatedAt = time.Now().UTC()
	applyDefaults(&w)
	return r.store.UpdateWebhook(w)
}

// Remove deletes the webhook identified by id.
func (r *Registry) Remove(id string) error {
	return r.store.DeleteWebhook(id)
}

// Get returns the webhook identified by id.
func (r *Registry) Get(id string) (model.Webhook, error) {
	return r.store.GetWebhook(id)
}

// List returns every registered webhook.
func (r *Registry) List() []model.Webhook {
	return r.store.ListWebhooks()
}

func validate(w model.Webhook) error {
	if !strings.HasPrefix(w.URL, "http://") && !strings.HasPrefix(w.URL, "https://") {
		return apperrors.Input("webhook url must start with http:// or https://")
	}
	for k := range w.Headers {
		if _, reserved := model.ReservedHeaders[strings.ToLower(k)]; reserved {
			return apperrors.Input("webhook header \"" + k + "\" is reserved")
		}
	}
	if len(w.Events) == 0 {
		return apperrors.Input("webhook must subscribe to at least one event type")
	}
	return nil
}

func applyDefaults(w *model.Webhook) {
	if w.TimeoutSeconds <= 0 {
		w.TimeoutSeconds = 30
	}
	if w.RetryAttempts <= 0 {
		w.RetryAttempts = 3
	}
	if w.RetryDelaySeconds <= 0 {
		w.RetryDelaySeconds = 60
	}
}
