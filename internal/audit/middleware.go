package audit

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finopsguard/guardrail/internal/model"
)

// skipPaths are excluded from auto-capture: health/metrics probes and
// static/doc assets would otherwise flood the audit trail with noise.
var skipPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// statusRecorder captures the response status chi/net-http handlers write,
// since http.ResponseWriter doesn't expose it after the fact.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware wraps next with auto-capture behavior: one api.request event
// per inbound HTTP request, excluding health/metrics/docs/static, carrying
// method, path, status, duration, a fresh request id, and the best-effort
// client IP/user agent.
func (l *Logger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipPaths[r.URL.Path] || strings.HasPrefix(r.URL.Path, "/static/") || strings.HasPrefix(r.URL.Path, "/docs") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := uuid.NewString()
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		l.Log("api.request", r.Method+" "+r.URL.Path,
			WithSeverity(severityForStatus(rec.status)),
			WithRequestID(requestID),
			WithActor(model.AuditActor{IP: clientIP(r), UA: r.Header.Get("User-Agent")}),
			WithHTTP(r.Method, r.URL.Path, rec.status),
			WithSuccess(rec.status < 400),
			WithDetails(map[string]interface{}{"duration_ms": duration.Milliseconds()}),
		)
	})
}

func severityForStatus(status int) model.AuditSeverity {
	switch {
	case status >= 500:
		return model.SeverityError
	case status >= 400:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

// clientIP prefers the first hop of X-Forwarded-For, then X-Real-IP, else
// the socket peer address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
