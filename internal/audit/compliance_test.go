package audit

import (
	"testing"
	"time"

	"github.com/finopsguard/guardrail/internal/model"
)

func TestComplianceReportAllCompliantWhenNoIssues(t *testing.T) {
	now := time.Now()
	events := []model.AuditEvent{
		{EventType: eventTypeAPIRequest, Success: true, Timestamp: now},
		{EventType: eventTypePolicyEvaluated, Success: true, Timestamp: now},
		{EventType: eventTypeAuthLogin, Success: true, Timestamp: now},
	}
	report := buildComplianceReport(now.Add(-time.Hour), now.Add(time.Hour), events)

	if report.ComplianceStatus != model.ComplianceStatusCompliant {
		t.Errorf("status = %q, want compliant", report.ComplianceStatus)
	}
	if report.PolicyComplianceRate != 100.0 {
		t.Errorf("policy compliance rate = %v, want 100", report.PolicyComplianceRate)
	}
}

func TestComplianceReportReviewOnPolicyViolation(t *testing.T) {
	now := time.Now()
	events := []model.AuditEvent{
		{EventType: eventTypePolicyEvaluated, Success: true, Timestamp: now},
		{EventType: eventTypePolicyViolated, Success: false, Timestamp: now},
	}
	report := buildComplianceReport(now.Add(-time.Hour), now.Add(time.Hour), events)

	if report.ComplianceStatus != model.ComplianceStatusReview {
		t.Errorf("status = %q, want review", report.ComplianceStatus)
	}
	wantRate := 100.0 * float64(1-1) / float64(1)
	if report.PolicyComplianceRate != wantRate {
		t.Errorf("policy compliance rate = %v, want %v", report.PolicyComplianceRate, wantRate)
	}
}

func TestComplianceReportNonCompliantOnSecurityViolation(t *testing.T) {
	now := time.Now()
	events := []model.AuditEvent{
		{EventType: eventTypeSecurityViolation, Success: false, Timestamp: now},
	}
	report := buildComplianceReport(now.Add(-time.Hour), now.Add(time.Hour), events)

	if report.ComplianceStatus != model.ComplianceStatusNonCompliant {
		t.Errorf("status = %q, want non-compliant", report.ComplianceStatus)
	}
}

func TestComplianceReportReviewOnHighAuthFailureRate(t *testing.T) {
	now := time.Now()
	events := []model.AuditEvent{
		{EventType: eventTypeAuthLogin, Success: true, Timestamp: now},
		{EventType: eventTypeAuthFailed, Success: false, Timestamp: now},
		{EventType: eventTypeAuthFailed, Success: false, Timestamp: now},
	}
	report := buildComplianceReport(now.Add(-time.Hour), now.Add(time.Hour), events)

	if report.ComplianceStatus != model.ComplianceStatusReview {
		t.Errorf("status = %q, want review (2/3 auth failures > 10%%)", report.ComplianceStatus)
	}
}

func TestComplianceReportZeroDenominatorRatesAre100(t *testing.T) {
	report := buildComplianceReport(time.Now(), time.Now(), nil)
	if report.PolicyComplianceRate != 100.0 || report.AuthenticationSuccessRate != 100.0 {
		t.Errorf("expected 100%% rates with no events, got %+v", report)
	}
}
