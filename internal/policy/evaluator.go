package policy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finopsguard/guardrail/internal/model"
)

// Evaluator runs the active policy set against one analysis. It holds no
// state of its own beyond the store it reads from; Store is where policy
// mutations live.
type Evaluator struct {
	store Store
}

// NewEvaluator returns an Evaluator reading policies from store.
func NewEvaluator(store Store) *Evaluator {
	return &Evaluator{store: store}
}

// Evaluate runs every stored policy (plus any request-scoped
// customPolicies; disabled ones pass with reason "disabled") against crm/resp/environment and returns the aggregated
// verdict: per-policy dispatch, budget taking precedence over expression
// when a policy sets both.
func (e *Evaluator) Evaluate(crm *model.CanonicalResourceModel, resp *model.CheckResponse, environment string, customPolicies []model.Policy) *model.PolicyEvaluationResult {
	ctx := buildContext(crm, resp, environment)
	result := model.NewPolicyEvaluationResult()
	result.EvaluationContext = ctx

	policies := append([]model.Policy(nil), e.store.List()...)
	policies = append(policies, customPolicies...)

	for _, p := range policies {
		if !p.Enabled {
			result.PassedPolicies = append(result.PassedPolicies, model.PolicyPass{PolicyID: p.ID, Reason: "disabled"})
			continue
		}

		if p.Budget == nil && p.Expression != nil && p.IsResourceScoped() {
			e.evaluateResourceScoped(p, ctx, result)
			continue
		}

		violation, pass := evaluatePolicy(p, ctx)
		if violation != nil {
			e.route(p, *violation, result)
			continue
		}
		result.PassedPolicies = append(result.PassedPolicies, *pass)
	}

	result.Finalize()
	return result
}

// EvaluateOne runs a single policy (not read from the store) against
// crm/resp/environment, for the standalone POST /mcp/evaluatePolicy
// endpoint. It shares the same budget/expression/resource-scoped dispatch
// rules as Evaluate but never consults the store's enabled policy set.
func (e *Evaluator) EvaluateOne(p model.Policy, crm *model.CanonicalResourceModel, resp *model.CheckResponse, environment string) *model.PolicyEvaluationResult {
	ctx := buildContext(crm, resp, environment)
	result := model.NewPolicyEvaluationResult()
	result.EvaluationContext = ctx

	if !p.Enabled {
		result.PassedPolicies = append(result.PassedPolicies, model.PolicyPass{PolicyID: p.ID, Reason: "disabled"})
		result.Finalize()
		return result
	}

	if p.Budget == nil && p.Expression != nil && p.IsResourceScoped() {
		e.evaluateResourceScoped(p, ctx, result)
		result.Finalize()
		return result
	}

	violation, pass := evaluatePolicy(p, ctx)
	if violation != nil {
		e.route(p, *violation, result)
	} else {
		result.PassedPolicies = append(result.PassedPolicies, *pass)
	}
	result.Finalize()
	return result
}

// evaluateResourceScoped runs p once per resource: each
// failing resource becomes its own violation carrying ResourceID; the
// policy is never evaluated at context scope when it's resource-scoped.
func (e *Evaluator) evaluateResourceScoped(p model.Policy, ctx evalContext, result *model.PolicyEvaluationResult) {
	resources, _ := ctx["resources"].([]interface{})
	anyFailure := false

	for _, r := range resources {
		scoped := ctx.forResource(r)
		if !evaluateExpression(p.Expression, scoped) {
			continue
		}
		anyFailure = true

		resourceID, _ := r.(map[string]interface{})["id"].(string)
		violation := model.PolicyViolation{
			PolicyID:   p.ID,
			PolicyName: p.Name,
			Severity:   p.OnViolation,
			Reason:     fmt.Sprintf("policy %q rule violation (resource: %s)", p.Name, resourceID),
			ResourceID: resourceID,
			Details: map[string]interface{}{
				"failed_rules": failedRules(p.Expression, scoped),
			},
		}
		e.route(p, violation, result)
	}

	if !anyFailure {
		result.PassedPolicies = append(result.PassedPolicies, model.PolicyPass{
			PolicyID: p.ID,
			Reason:   fmt.Sprintf("policy %q rules satisfied for every resource", p.Name),
		})
	}
}

// route appends v to result's blocking or advisory bucket per p.OnViolation.
func (e *Evaluator) route(p model.Policy, v model.PolicyViolation, result *model.PolicyEvaluationResult) {
	if p.OnViolation == model.SeverityBlock {
		result.BlockingViolations = append(result.BlockingViolations, v)
	} else {
		result.AdvisoryViolations = append(result.AdvisoryViolations, v)
	}
}

// evaluatePolicy evaluates a single context-scoped policy (budget or a
// non-resource-scoped expression) and returns either a violation or a
// pass record, never both.
func evaluatePolicy(p model.Policy, ctx evalContext) (*model.PolicyViolation, *model.PolicyPass) {
	if p.Budget != nil {
		return evaluateBudget(p, ctx)
	}
	if p.Expression != nil {
		return evaluateContextExpression(p, ctx)
	}
	// A policy with neither budget nor expression has nothing to check.
	return nil, &model.PolicyPass{PolicyID: p.ID, Reason: "no budget or expression configured"}
}

func evaluateBudget(p model.Policy, ctx evalContext) (*model.PolicyViolation, *model.PolicyPass) {
	actual, _ := asDecimal(ctx["estimated_monthly_cost"])
	budget := *p.Budget

	if actual.LessThanOrEqual(budget) {
		return nil, &model.PolicyPass{
			PolicyID: p.ID,
			Reason:   fmt.Sprintf("monthly cost %s within budget %s", actual.StringFixed(2), budget.StringFixed(2)),
		}
	}

	overage := actual.Sub(budget)
	return &model.PolicyViolation{
		PolicyID:   p.ID,
		PolicyName: p.Name,
		Severity:   p.OnViolation,
		Reason:     fmt.Sprintf("monthly cost %s exceeds budget %s", actual.StringFixed(2), budget.StringFixed(2)),
		Details: map[string]interface{}{
			"actual_cost":  actual,
			"budget_limit": budget,
			"overage":      overage,
		},
	}, nil
}

func evaluateContextExpression(p model.Policy, ctx evalContext) (*model.PolicyViolation, *model.PolicyPass) {
	if !evaluateExpression(p.Expression, ctx) {
		return nil, &model.PolicyPass{PolicyID: p.ID, Reason: fmt.Sprintf("policy %q rules satisfied", p.Name)}
	}
	return &model.PolicyViolation{
		PolicyID:   p.ID,
		PolicyName: p.Name,
		Severity:   p.OnViolation,
		Reason:     fmt.Sprintf("policy %q rule violation", p.Name),
		Details: map[string]interface{}{
			"failed_rules": failedRules(p.Expression, ctx),
		},
	}, nil
}

// SynthesizeRequestBudget builds the ephemeral "request_budget" advisory
// policy the orchestrator passes as a custom policy when a CheckRequest
// supplies budget_rules.monthly_budget.
func SynthesizeRequestBudget(monthlyBudget decimal.Decimal) model.Policy {
	budget := monthlyBudget
	return model.Policy{
		ID:          "request_budget",
		Name:        "Request-Scoped Budget",
		Description: "Budget supplied inline on the check request",
		Budget:      &budget,
		OnViolation: model.SeverityAdvisory,
		Enabled:     true,
	}
}
