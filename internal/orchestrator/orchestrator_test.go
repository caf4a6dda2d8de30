package orchestrator

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finopsguard/guardrail/internal/model"
	"github.com/finopsguard/guardrail/internal/policy"
	"github.com/finopsguard/guardrail/internal/pricing"
)

const terraformFixture = `
resource "aws_instance" "x" {
  instance_type = "t3.medium"
}
provider "aws" {
  region = "us-east-1"
}
`

func newTestOrchestrator(t *testing.T, webhooks WebhookNotifier) *Orchestrator {
	t.Helper()
	catalog := pricing.NewCatalog(pricing.Options{FallbackToStatic: true})
	store := policy.NewMemoryStore()
	for _, p := range policy.DefaultPolicies() {
		if err := store.Add(p); err != nil {
			t.Fatalf("seeding default policies: %v", err)
		}
	}
	evaluator := policy.NewEvaluator(store)
	analyses := NewAnalysisStore(nil)
	return New(catalog, evaluator, analyses, webhooks)
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestCheckRejectsEmptyPayload(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	_, err := o.Check(model.CheckRequest{IaCType: "terraform", IaCPayload: "", Environment: "dev"})
	if err == nil {
		t.Fatal("expected an error for an empty payload")
	}
}

func TestCheckRejectsUnknownIaCType(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	_, err := o.Check(model.CheckRequest{IaCType: "pulumi", IaCPayload: b64(terraformFixture), Environment: "dev"})
	if err == nil {
		t.Fatal("expected an error for an unsupported iac_type")
	}
}

func TestCheckRejectsBadBase64(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	_, err := o.Check(model.CheckRequest{IaCType: "terraform", IaCPayload: "not-valid-base64!!", Environment: "dev"})
	if err == nil {
		t.Fatal("expected invalid_payload_encoding")
	}
}

func TestCheckHappyPathPassesWithNoPolicyViolations(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	resp, err := o.Check(model.CheckRequest{IaCType: "terraform", IaCPayload: b64(terraformFixture), Environment: "prod"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(resp.BreakdownByResource) != 1 {
		t.Fatalf("expected one breakdown item, got %d", len(resp.BreakdownByResource))
	}
	if resp.PolicyEval == nil || resp.PolicyEval.Status != "pass" {
		t.Fatalf("expected a passing policy_eval, got %+v", resp.PolicyEval)
	}
	if resp.PolicyEval.PolicyID != "all_policies" {
		t.Fatalf("expected policy_id all_policies on a clean pass, got %q", resp.PolicyEval.PolicyID)
	}
	if resp.DurationMS < 1 {
		t.Fatalf("expected duration_ms >= 1, got %d", resp.DurationMS)
	}
}

func TestCheckBlocksOnLargeInstanceInDev(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	src := `
resource "aws_instance" "x" {
  instance_type = "m5.large"
}
`
	resp, err := o.Check(model.CheckRequest{IaCType: "terraform", IaCPayload: b64(src), Environment: "dev"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.PolicyEval == nil || resp.PolicyEval.Status != "fail" {
		t.Fatalf("expected a blocking policy_eval, got %+v", resp.PolicyEval)
	}
	if resp.PolicyEval.PolicyID != "multiple_policies" {
		t.Fatalf("expected policy_id multiple_policies on block, got %q", resp.PolicyEval.PolicyID)
	}
	found := false
	for _, f := range resp.RiskFlags {
		if f == "policy_blocked" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected policy_blocked in risk_flags, got %v", resp.RiskFlags)
	}
}

func TestCheckSynthesizesRequestBudgetPolicy(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	budget := decimal.NewFromInt(1)
	resp, err := o.Check(model.CheckRequest{
		IaCType:     "terraform",
		IaCPayload:  b64(terraformFixture),
		Environment: "prod",
		BudgetRules: &model.BudgetRules{MonthlyBudget: &budget},
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.PolicyEval == nil || resp.PolicyEval.Status == "pass" && resp.PolicyEval.PolicyID == "all_policies" {
		t.Fatalf("expected the synthesized $1 budget to register at least an advisory, got %+v", resp.PolicyEval)
	}
}

func TestCheckAppendsToAnalysisHistory(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	if _, err := o.Check(model.CheckRequest{IaCType: "terraform", IaCPayload: b64(terraformFixture), Environment: "prod"}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	recent := o.analyses.Recent(10, "")
	if len(recent) != 1 {
		t.Fatalf("expected one recorded analysis, got %d", len(recent))
	}
}

// capturingNotifier records the arguments AnalysisCompleted was called
// with so the test can assert the orchestrator wires webhook dispatch
// correctly without depending on the webhook package's HTTP delivery.
type capturingNotifier struct {
	calls chan struct {
		resp        *model.CheckResponse
		budgetLimit *decimal.Decimal
		previous    *decimal.Decimal
	}
}

func newCapturingNotifier() *capturingNotifier {
	return &capturingNotifier{calls: make(chan struct {
		resp        *model.CheckResponse
		budgetLimit *decimal.Decimal
		previous    *decimal.Decimal
	}, 4)}
}

func (n *capturingNotifier) AnalysisCompleted(resp *model.CheckResponse, eval *model.PolicyEvaluationResult, budgetLimit *decimal.Decimal, previous *decimal.Decimal, environment string) {
	n.calls <- struct {
		resp        *model.CheckResponse
		budgetLimit *decimal.Decimal
		previous    *decimal.Decimal
	}{resp, budgetLimit, previous}
}

func TestCheckNotifiesWebhooksAsynchronouslyWithNoPriorAnalysis(t *testing.T) {
	notifier := newCapturingNotifier()
	o := newTestOrchestrator(t, notifier)
	if _, err := o.Check(model.CheckRequest{IaCType: "terraform", IaCPayload: b64(terraformFixture), Environment: "prod"}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	select {
	case call := <-notifier.calls:
		if call.previous != nil {
			t.Fatalf("expected no previous cost on the first analysis, got %v", call.previous)
		}
	case <-time.After(time.Second):
		t.Fatal("expected AnalysisCompleted to be called")
	}
}

func TestCheckSecondAnalysisCarriesPreviousCost(t *testing.T) {
	notifier := newCapturingNotifier()
	o := newTestOrchestrator(t, notifier)
	if _, err := o.Check(model.CheckRequest{IaCType: "terraform", IaCPayload: b64(terraformFixture), Environment: "prod"}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	<-notifier.calls

	if _, err := o.Check(model.CheckRequest{IaCType: "terraform", IaCPayload: b64(terraformFixture), Environment: "prod"}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	select {
	case call := <-notifier.calls:
		if call.previous == nil {
			t.Fatal("expected the second analysis to carry a previous cost")
		}
	case <-time.After(time.Second):
		t.Fatal("expected AnalysisCompleted to be called")
	}
}
