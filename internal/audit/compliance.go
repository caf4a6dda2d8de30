package audit

import (
	"time"

	"github.com/finopsguard/guardrail/internal/model"
)

// Event type strings the compliance report special-cases; everything else
// only contributes to the EventsByType/EventsBySeverity/EventsByUser
// breakdowns.
const (
	eventTypeAPIRequest      = "api.request"
	eventTypePolicyEvaluated = "policy.evaluated"
	eventTypePolicyViolated  = "policy.violated"
	eventTypeAuthLogin       = "auth.login"
	eventTypeAuthFailed      = "auth.failed"
	eventTypeSecurityViolation = "security.violation"
)

// ComplianceReport aggregates every event in [start,end],
// grounded on the reference implementation's compliance engine.
func (l *Logger) ComplianceReport(start, end time.Time) (model.ComplianceReport, error) {
	if l.store == nil {
		return buildComplianceReport(start, end, nil), nil
	}
	page, err := l.store.Query(model.AuditFilter{Start: &start, End: &end, Limit: 1 << 20})
	if err != nil {
		return model.ComplianceReport{}, err
	}
	return buildComplianceReport(start, end, page.Events), nil
}

func buildComplianceReport(start, end time.Time, events []model.AuditEvent) model.ComplianceReport {
	report := model.ComplianceReport{
		Start:            start,
		End:              end,
		TotalEvents:      len(events),
		EventsByType:     map[string]int{},
		EventsBySeverity: map[string]int{},
		EventsByUser:     map[string]int{},
	}

	for _, e := range events {
		report.EventsByType[e.EventType]++
		report.EventsBySeverity[string(e.Severity)]++

		user := e.Actor.Username
		if user == "" {
			user = e.Actor.UserID
		}
		if user == "" {
			user = "anonymous"
		}
		report.EventsByUser[user]++

		switch e.EventType {
		case eventTypeAPIRequest:
			report.APIRequests++
		case eventTypePolicyEvaluated:
			report.PolicyEvaluations++
		case eventTypePolicyViolated:
			report.PolicyViolations++
		case eventTypeAuthLogin, eventTypeAuthFailed:
			report.AuthAttempts++
			if !e.Success {
				report.AuthFailures++
			}
		case eventTypeSecurityViolation:
			report.SecurityViolations++
		}
	}

	report.PolicyComplianceRate = rate(report.PolicyEvaluations-report.PolicyViolations, report.PolicyEvaluations)
	report.AuthenticationSuccessRate = rate(report.AuthAttempts-report.AuthFailures, report.AuthAttempts)

	switch {
	case report.SecurityViolations > 0:
		report.ComplianceStatus = model.ComplianceStatusNonCompliant
	case report.PolicyViolations > 0 || failureRateOverTenPercent(report.AuthFailures, report.AuthAttempts):
		report.ComplianceStatus = model.ComplianceStatusReview
	default:
		report.ComplianceStatus = model.ComplianceStatusCompliant
	}

	return report
}

// rate computes 100 × numerator/denominator, defined as 100 when
// denominator is zero (100% if zero).
func rate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 100.0
	}
	return 100.0 * float64(numerator) / float64(denominator)
}

func failureRateOverTenPercent(failures, attempts int) bool {
	if attempts == 0 {
		return false
	}
	return float64(failures)/float64(attempts) > 0.10
}
