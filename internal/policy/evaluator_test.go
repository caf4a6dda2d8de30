package policy

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finopsguard/guardrail/internal/model"
)

func crmWithInstance(size, region, environment string, count int) (*model.CanonicalResourceModel, *model.CheckResponse) {
	crm := model.NewCanonicalResourceModel()
	crm.Add(model.CanonicalResource{ID: "r1", Type: "aws_instance", Size: size, Region: region, Count: count})
	resp := model.NewEmptyCheckResponse()
	resp.EstimatedMonthlyCost = decimal.NewFromFloat(50)
	resp.BreakdownByResource = []model.ResourceBreakdownItem{{ResourceID: "r1", MonthlyCost: decimal.NewFromFloat(50)}}
	return crm, resp
}

func TestEvaluateDefaultPoliciesPassUnderBudget(t *testing.T) {
	store := NewMemoryStore()
	evaluator := NewEvaluator(store)
	crm, resp := crmWithInstance("t3.medium", "us-east-1", "prod", 1)

	result := evaluator.Evaluate(crm, resp, "prod", nil)
	if result.OverallStatus != model.StatusPass {
		t.Fatalf("overall status = %q, want pass", result.OverallStatus)
	}
	if len(result.BlockingViolations) != 0 || len(result.AdvisoryViolations) != 0 {
		t.Errorf("expected no violations, got blocking=%v advisory=%v", result.BlockingViolations, result.AdvisoryViolations)
	}
}

func TestEvaluateBudgetPolicyAdvisoryOnOverage(t *testing.T) {
	store := NewMemoryStore()
	evaluator := NewEvaluator(store)
	crm, resp := crmWithInstance("t3.medium", "us-east-1", "prod", 1)
	resp.EstimatedMonthlyCost = decimal.NewFromFloat(1500)

	result := evaluator.Evaluate(crm, resp, "prod", nil)
	if result.OverallStatus != model.StatusAdvisory {
		t.Fatalf("overall status = %q, want advisory", result.OverallStatus)
	}
	found := false
	for _, v := range result.AdvisoryViolations {
		if v.PolicyID == "default_monthly_budget" {
			found = true
			details := v.Details
			if details["overage"].(decimal.Decimal).String() != "500" {
				t.Errorf("overage = %v, want 500", details["overage"])
			}
		}
	}
	if !found {
		t.Error("expected default_monthly_budget violation")
	}
}

func TestEvaluateNoLargeInstancesInDevBlocks(t *testing.T) {
	store := NewMemoryStore()
	evaluator := NewEvaluator(store)
	crm, resp := crmWithInstance("m5.large", "us-east-1", "dev", 1)

	result := evaluator.Evaluate(crm, resp, "dev", nil)
	if result.OverallStatus != model.StatusBlock {
		t.Fatalf("overall status = %q, want block", result.OverallStatus)
	}
	found := false
	for _, v := range result.BlockingViolations {
		if v.PolicyID == "no_large_instances_in_dev" && v.ResourceID == "r1" {
			found = true
		}
	}
	if !found {
		t.Error("expected a resource-scoped blocking violation for r1")
	}
}

func TestEvaluateResourceScopedPolicyOnlyFlagsMatchingResources(t *testing.T) {
	store := NewMemoryStore()
	evaluator := NewEvaluator(store)
	crm := model.NewCanonicalResourceModel()
	crm.Add(model.CanonicalResource{ID: "small", Type: "aws_instance", Size: "t3.medium", Region: "us-east-1", Count: 1})
	crm.Add(model.CanonicalResource{ID: "large", Type: "aws_instance", Size: "m5.large", Region: "us-east-1", Count: 1})
	resp := model.NewEmptyCheckResponse()
	resp.BreakdownByResource = []model.ResourceBreakdownItem{
		{ResourceID: "small", MonthlyCost: decimal.NewFromFloat(30)},
		{ResourceID: "large", MonthlyCost: decimal.NewFromFloat(70)},
	}
	resp.EstimatedMonthlyCost = decimal.NewFromFloat(100)

	result := evaluator.Evaluate(crm, resp, "dev", nil)
	for _, v := range result.BlockingViolations {
		if v.PolicyID == "no_large_instances_in_dev" && v.ResourceID == "small" {
			t.Error("t3.medium should not trip no_large_instances_in_dev")
		}
	}
}

func TestEvaluateDisabledPolicyPasses(t *testing.T) {
	store := NewMemoryStore()
	p, _ := store.Get("default_monthly_budget")
	p.Enabled = false
	_ = store.Update("default_monthly_budget", p)

	evaluator := NewEvaluator(store)
	crm, resp := crmWithInstance("t3.medium", "us-east-1", "prod", 1)
	resp.EstimatedMonthlyCost = decimal.NewFromFloat(5000)

	result := evaluator.Evaluate(crm, resp, "prod", nil)
	if result.OverallStatus != model.StatusPass {
		t.Fatalf("overall status = %q, want pass (budget policy disabled)", result.OverallStatus)
	}
	found := false
	for _, pp := range result.PassedPolicies {
		if pp.PolicyID == "default_monthly_budget" && pp.Reason == "disabled" {
			found = true
		}
	}
	if !found {
		t.Error("expected a passed-policy entry with reason \"disabled\"")
	}
}

func TestEvaluateCustomPolicyIsIncluded(t *testing.T) {
	store := NewMemoryStore()
	evaluator := NewEvaluator(store)
	crm, resp := crmWithInstance("t3.medium", "us-east-1", "prod", 1)
	resp.EstimatedMonthlyCost = decimal.NewFromFloat(50)

	custom := SynthesizeRequestBudget(decimal.NewFromFloat(10))
	result := evaluator.Evaluate(crm, resp, "prod", []model.Policy{custom})

	found := false
	for _, v := range result.AdvisoryViolations {
		if v.PolicyID == "request_budget" {
			found = true
		}
	}
	if !found {
		t.Error("expected the synthesized request_budget policy to fire")
	}
}

func TestEvaluationContextIsAttachedToResult(t *testing.T) {
	store := NewMemoryStore()
	evaluator := NewEvaluator(store)
	crm, resp := crmWithInstance("t3.medium", "us-east-1", "prod", 1)

	result := evaluator.Evaluate(crm, resp, "prod", nil)
	if result.EvaluationContext == nil {
		t.Error("expected a non-nil evaluation context")
	}
}
