// Package httpapi exposes the guardrail's HTTP surface: the /mcp/*
// analysis and policy endpoints, /webhooks* management, the supplemental
// /audit/* and /usage/* read surfaces, /healthz, and /metrics. Handlers
// never contain cost, policy, or delivery logic themselves — they decode
// a request, delegate to the owning package, and encode the result.
package httpapi

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finopsguard/guardrail/internal/audit"
	"github.com/finopsguard/guardrail/internal/config"
	"github.com/finopsguard/guardrail/internal/metrics"
	"github.com/finopsguard/guardrail/internal/model"
	"github.com/finopsguard/guardrail/internal/orchestrator"
	"github.com/finopsguard/guardrail/internal/policy"
	"github.com/finopsguard/guardrail/internal/pricing"
	"github.com/finopsguard/guardrail/internal/usage"
	"github.com/finopsguard/guardrail/internal/webhook"
)

// Deps is every collaborator the router dispatches to. Nil fields are
// permitted where the feature is genuinely optional (DB, usage adapters);
// the router itself never constructs any of these.
type Deps struct {
	Config       *config.Config
	Orchestrator *orchestrator.Orchestrator
	Analyses     *orchestrator.AnalysisStore
	Catalog      *pricing.Catalog
	Evaluator    *policy.Evaluator
	Policies     policy.Store
	Webhooks     *webhook.Registry
	Dispatcher   *webhook.Dispatcher
	WebhookStore webhook.Store
	AuditLogger  *audit.Logger
	Usage        map[model.CloudProvider]usage.Adapter
	Metrics      *metrics.Registry
	DB           *sql.DB
}

// NewRouter builds the chi.Mux for this process: global middleware stack
// first, then every route group.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if d.Metrics != nil {
		r.Use(metricsMiddleware(d.Metrics))
	}
	if d.AuditLogger != nil {
		r.Use(d.AuditLogger.Middleware)
	}
	r.Use(requireAPIKey(d.Config))

	r.Get("/healthz", d.handleHealthz)
	if d.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Reg, promhttp.HandlerOpts{}))
	}

	r.Route("/mcp", func(r chi.Router) {
		r.Post("/checkCostImpact", d.handleCheckCostImpact)
		r.Post("/evaluatePolicy", d.handleEvaluatePolicy)
		r.Post("/getPriceCatalog", d.handleGetPriceCatalog)
		r.Post("/listRecentAnalyses", d.handleListRecentAnalyses)

		r.Route("/policies", func(r chi.Router) {
			r.Get("/", d.handleListPolicies)
			r.Post("/", d.handleCreatePolicy)
			r.Get("/{id}", d.handleGetPolicy)
			r.Put("/{id}", d.handleUpdatePolicy)
			r.Delete("/{id}", d.handleDeletePolicy)
		})
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/", d.handleCreateWebhook)
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) { writeJSON(w, http.StatusOK, d.Webhooks.List()) })
		r.Get("/{id}", d.handleGetWebhook)
		r.Put("/{id}", d.handleUpdateWebhook)
		r.Delete("/{id}", d.handleDeleteWebhook)
		r.Get("/{id}/deliveries", d.handleListDeliveries)
		r.Post("/{id}/test", d.handleTestWebhook)
	})

	r.Route("/audit", func(r chi.Router) {
		r.Get("/events", d.handleQueryAuditEvents)
		r.Get("/compliance", d.handleComplianceReport)
	})

	r.Route("/usage", func(r chi.Router) {
		r.Get("/{provider}/spend", d.handleUsageSpend)
	})

	return r
}

// metricsMiddleware records guardrail_http_requests_total and
// guardrail_http_request_duration_seconds for every request, keyed by the
// matched chi route pattern rather than the raw path so templated routes
// (e.g. "/webhooks/{id}") don't explode cardinality.
func metricsMiddleware(m *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			status := statusClass(rec.status)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
