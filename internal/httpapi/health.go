package httpapi

import "net/http"

// handleHealthz answers GET /healthz, pinging the database when one is
// configured; cache is always "ok" since the pricing/parse/simulate caches
// are in-process and have no failure mode of their own.
func (d Deps) handleHealthz(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{
		"api":      "ok",
		"database": "not_configured",
		"cache":    "ok",
	}
	status := http.StatusOK
	overall := "ok"
	if d.DB != nil {
		if err := d.DB.PingContext(r.Context()); err != nil {
			components["database"] = "unreachable"
			status = http.StatusServiceUnavailable
			overall = "degraded"
		} else {
			components["database"] = "ok"
		}
	}
	writeJSON(w, status, healthzResponse{Status: overall, Components: components})
}
