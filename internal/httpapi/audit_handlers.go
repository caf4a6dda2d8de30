package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/finopsguard/guardrail/internal/model"
)

// handleQueryAuditEvents answers GET /audit/events. Every filter field is
// optional; an absent start/end leaves that bound open.
func (d Deps) handleQueryAuditEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.AuditFilter{
		Search:   q.Get("search"),
		SortBy:   q.Get("sort_by"),
		SortDesc: q.Get("sort_desc") == "true",
		Limit:    atoiOr(q.Get("limit"), 50),
		Offset:   atoiOr(q.Get("offset"), 0),
	}
	if v := q.Get("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.Start = &t
		}
	}
	if v := q.Get("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.End = &t
		}
	}
	if v := q.Get("event_types"); v != "" {
		filter.EventTypes = strings.Split(v, ",")
	}
	if v := q.Get("usernames"); v != "" {
		filter.Usernames = strings.Split(v, ",")
	}
	if v := q.Get("resource_types"); v != "" {
		filter.ResourceTypes = strings.Split(v, ",")
	}
	if v := q.Get("severities"); v != "" {
		for _, s := range strings.Split(v, ",") {
			filter.Severities = append(filter.Severities, model.AuditSeverity(s))
		}
	}
	if v := q.Get("success"); v != "" {
		b := v == "true"
		filter.Success = &b
	}

	page, err := d.AuditLogger.Query(filter)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleComplianceReport answers GET /audit/compliance?start=...&end=....
// Both bounds are required RFC3339 timestamps.
func (d Deps) handleComplianceReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "start must be an RFC3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "end must be an RFC3339 timestamp")
		return
	}
	report, err := d.AuditLogger.ComplianceReport(start, end)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
