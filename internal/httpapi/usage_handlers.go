package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finopsguard/guardrail/internal/model"
)

// handleUsageSpend answers GET /usage/{provider}/spend?scope=.... provider
// is "aws", "gcp", or "azure"; scope is the account/project/subscription
// id the adapter queries. This surface is advisory only — its output is
// never consulted by the cost simulator.
func (d Deps) handleUsageSpend(w http.ResponseWriter, r *http.Request) {
	provider := model.CloudProvider(chi.URLParam(r, "provider"))
	adapter, ok := d.Usage[provider]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no usage adapter configured for provider: "+string(provider))
		return
	}
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "scope is required")
		return
	}
	summary, err := adapter.MonthToDateSpend(r.Context(), scope)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
