// Package metrics holds the process-wide Prometheus registry and the
// counters/histograms shared across internal/httpapi, internal/orchestrator,
// and internal/webhook. Every collector lives on one Registry value rather
// than package-level globals so cmd/server owns its lifecycle explicitly.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles every collector this process exposes on /metrics.
type Registry struct {
	Reg *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	PolicyVerdictsTotal *prometheus.CounterVec
	WebhookDeliveries   *prometheus.CounterVec
}

// New builds and registers every collector.
func New() *Registry {
	reg := prometheus.NewRegistry()

	m := &Registry{
		Reg: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guardrail_http_requests_total",
			Help: "Total HTTP requests handled, by method, route, and status class.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "guardrail_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PolicyVerdictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guardrail_policy_verdicts_total",
			Help: "Policy evaluation verdicts produced by checkCostImpact, by overall status.",
		}, []string{"status"}),
		WebhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guardrail_webhook_deliveries_total",
			Help: "Webhook delivery attempts, by terminal or in-progress status.",
		}, []string{"status"}),
	}

	reg.MustRegister(m.HTTPRequestsTotal, m.HTTPRequestDuration, m.PolicyVerdictsTotal, m.WebhookDeliveries)
	return m
}
