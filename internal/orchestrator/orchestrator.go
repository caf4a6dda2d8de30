// Package orchestrator implements the analysis pipeline that turns a raw
// IaC payload into a costed, policy-evaluated CheckResponse. It owns no
// business logic of its own — parsing, pricing, and policy evaluation each
// live in their own package — its job is exclusively sequencing,
// caching, and side-effect fan-out (analysis history, webhooks).
package orchestrator

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finopsguard/guardrail/internal/apperrors"
	"github.com/finopsguard/guardrail/internal/logging"
	"github.com/finopsguard/guardrail/internal/metrics"
	"github.com/finopsguard/guardrail/internal/model"
	"github.com/finopsguard/guardrail/internal/parser"
	"github.com/finopsguard/guardrail/internal/policy"
	"github.com/finopsguard/guardrail/internal/pricing"
	"github.com/finopsguard/guardrail/internal/simulate"
)

// WebhookNotifier is the slice of *webhook.Dispatcher the orchestrator
// depends on. Declared here rather than imported directly so this package
// never needs to know about HTTP delivery, signing, or retry — it only
// needs to hand the dispatcher a finished analysis.
type WebhookNotifier interface {
	AnalysisCompleted(resp *model.CheckResponse, eval *model.PolicyEvaluationResult, budgetLimit *decimal.Decimal, previousMonthlyCost *decimal.Decimal, environment string)
}

// Orchestrator runs the check(CheckRequest) -> CheckResponse pipeline.
type Orchestrator struct {
	catalog   *pricing.Catalog
	evaluator *policy.Evaluator
	analyses  *AnalysisStore
	webhooks  WebhookNotifier

	parseCache    *parseCache
	simulateCache *simulateCache

	metrics *metrics.Registry // nil when the composition root wires no /metrics surface
}

// SetMetrics attaches m so every Check call records a policy_verdicts_total
// observation. Safe to call once at composition time, before traffic.
func (o *Orchestrator) SetMetrics(m *metrics.Registry) {
	o.metrics = m
}

// New wires an Orchestrator from its already-constructed dependencies.
// webhooks may be nil, in which case analysis completion is never
// announced (useful for CLI one-shot invocations with no webhook surface).
func New(catalog *pricing.Catalog, evaluator *policy.Evaluator, analyses *AnalysisStore, webhooks WebhookNotifier) *Orchestrator {
	return &Orchestrator{
		catalog:       catalog,
		evaluator:     evaluator,
		analyses:      analyses,
		webhooks:      webhooks,
		parseCache:    newParseCache(),
		simulateCache: newSimulateCache(),
	}
}

// Check runs the full pipeline: validate, decode, parse, synthesize an
// ephemeral budget policy if requested, simulate cost, evaluate policies,
// merge the verdict into the response, record history, and fire webhooks.
// Only validation failures are returned as errors to the caller; every
// other failure mode degrades gracefully per each subsystem's own
// contract and is reflected in the response itself (lower confidence,
// empty breakdown, etc.), never as an error from Check.
func (o *Orchestrator) Check(req model.CheckRequest) (*model.CheckResponse, error) {
	start := time.Now()

	format, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	payloadText, err := base64.StdEncoding.DecodeString(req.IaCPayload)
	if err != nil {
		return nil, apperrors.Input("invalid_payload_encoding")
	}

	crm := o.parse(payloadText, format)

	var customPolicies []model.Policy
	if req.BudgetRules != nil && req.BudgetRules.MonthlyBudget != nil {
		customPolicies = append(customPolicies, policy.SynthesizeRequestBudget(*req.BudgetRules.MonthlyBudget))
	}
	if req.CustomPolicy != nil {
		customPolicies = append(customPolicies, *req.CustomPolicy)
	}

	resp := o.simulate(crm)

	eval := o.evaluator.Evaluate(crm, resp, req.Environment, customPolicies)
	mergePolicyEval(resp, eval)
	if o.metrics != nil {
		o.metrics.PolicyVerdictsTotal.WithLabelValues(string(eval.OverallStatus)).Inc()
	}

	resp.DurationMS = wallMillis(start)

	previousCost, havePrevious := o.analyses.LastCost()
	o.analyses.Append(req, *resp, req.Environment)

	if o.webhooks != nil {
		go o.notifyWebhooks(req, resp, eval, previousCost, havePrevious)
	}

	return resp, nil
}

// validateRequest checks the two request-shape invariants the orchestrator
// itself is responsible for (iac_type and iac_payload) and translates
// iac_type into the parser's Format enum. Everything else about the
// request (environment, budget rules) is optional and handled downstream.
func validateRequest(req model.CheckRequest) (parser.Format, error) {
	if req.IaCPayload == "" {
		return "", apperrors.Input("invalid_request")
	}
	switch req.IaCType {
	case "terraform":
		return parser.FormatTerraform, nil
	case "ansible":
		return parser.FormatAnsible, nil
	default:
		return "", apperrors.Input("invalid_request")
	}
}

func (o *Orchestrator) parse(payloadText []byte, format parser.Format) *model.CanonicalResourceModel {
	key := string(format) + ":" + hashBytes(payloadText)
	if crm, ok := o.parseCache.get(key); ok {
		return crm
	}
	crm := parser.Parse(payloadText, format)
	o.parseCache.put(key, crm)
	return crm
}

func (o *Orchestrator) simulate(crm *model.CanonicalResourceModel) *model.CheckResponse {
	doc, err := json.Marshal(crm)
	if err != nil {
		// Marshaling a plain data struct should never fail; if it somehow
		// does, skip the cache rather than fail the analysis.
		logging.Warn("orchestrator: crm hash failed, bypassing simulate cache", zap.Error(err))
		return simulate.Simulate(crm, o.catalog)
	}
	key := hashBytes(doc)
	if resp, ok := o.simulateCache.get(key); ok {
		cloned := *resp
		return &cloned
	}
	resp := simulate.Simulate(crm, o.catalog)
	o.simulateCache.put(key, resp)
	cloned := *resp
	return &cloned
}

// mergePolicyEval folds the policy verdict into the response per the
// orchestrator's step-7 merge rule: blocking violations win over advisory,
// which wins over a clean pass.
func mergePolicyEval(resp *model.CheckResponse, eval *model.PolicyEvaluationResult) {
	switch eval.OverallStatus {
	case model.StatusBlock:
		resp.RiskFlags = append(resp.RiskFlags, "policy_blocked")
		resp.PolicyEval = &model.PolicyEvalSummary{
			Status:   "fail",
			PolicyID: "multiple_policies",
			Reason:   policyBlockReason(len(eval.BlockingViolations)),
		}
	case model.StatusAdvisory:
		resp.RiskFlags = append(resp.RiskFlags, "policy_advisory")
		resp.PolicyEval = &model.PolicyEvalSummary{
			Status:   "pass",
			PolicyID: "multiple_policies",
		}
	default:
		resp.PolicyEval = &model.PolicyEvalSummary{
			Status:   "pass",
			PolicyID: "all_policies",
		}
	}
}

func policyBlockReason(n int) string {
	return "Blocking policy violations: " + strconv.Itoa(n)
}

func (o *Orchestrator) notifyWebhooks(req model.CheckRequest, resp *model.CheckResponse, eval *model.PolicyEvaluationResult, previousCost decimal.Decimal, havePrevious bool) {
	var budgetLimit *decimal.Decimal
	if req.BudgetRules != nil && req.BudgetRules.MonthlyBudget != nil {
		budgetLimit = req.BudgetRules.MonthlyBudget
	}
	var previous *decimal.Decimal
	if havePrevious {
		previous = &previousCost
	}
	o.webhooks.AnalysisCompleted(resp, eval, budgetLimit, previous, req.Environment)
}

func wallMillis(start time.Time) int64 {
	ms := time.Since(start).Milliseconds()
	if ms < 1 {
		return 1
	}
	return ms
}
