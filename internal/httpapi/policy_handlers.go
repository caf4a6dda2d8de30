package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finopsguard/guardrail/internal/model"
)

func (d Deps) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.Policies.List())
}

func (d Deps) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var p model.Policy
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if p.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}
	if err := d.Policies.Add(p); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (d Deps) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := d.Policies.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "policy not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (d Deps) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var p model.Policy
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if err := d.Policies.Update(id, p); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (d Deps) handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := d.Policies.Delete(id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
