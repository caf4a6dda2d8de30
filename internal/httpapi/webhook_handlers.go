package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finopsguard/guardrail/internal/model"
)

func (d Deps) handleCreateWebhook(w http.ResponseWriter, r *http.Request) {
	var wh model.Webhook
	if err := decodeJSON(r, &wh); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	registered, err := d.Webhooks.Register(wh)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registered)
}

func (d Deps) handleGetWebhook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wh, err := d.Webhooks.Get(id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wh)
}

func (d Deps) handleUpdateWebhook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var wh model.Webhook
	if err := decodeJSON(r, &wh); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	wh.ID = id
	updated, err := d.Webhooks.Update(wh)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (d Deps) handleDeleteWebhook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := d.Webhooks.Remove(id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (d Deps) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := d.Webhooks.Get(id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d.WebhookStore.DeliveriesForWebhook(id))
}

func (d Deps) handleTestWebhook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wh, err := d.Webhooks.Get(id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	delivery := d.Dispatcher.TestDelivery(wh)
	writeJSON(w, http.StatusOK, delivery)
}
