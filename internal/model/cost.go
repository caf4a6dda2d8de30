package model

import "github.com/shopspring/decimal"

// BudgetRules is the optional inline budget supplied on a CheckRequest.
type BudgetRules struct {
	MonthlyBudget *decimal.Decimal `json:"monthly_budget,omitempty"`
}

// CheckRequest is the payload accepted by the analysis orchestrator.
type CheckRequest struct {
	IaCType      string       `json:"iac_type"`
	IaCPayload   string       `json:"iac_payload"`
	Environment  string       `json:"environment"`
	BudgetRules  *BudgetRules `json:"budget_rules,omitempty"`
	CustomPolicy *Policy      `json:"-"`
}

// ResourceBreakdownItem is one costed line in a CheckResponse, one per
// resource with Count > 0.
type ResourceBreakdownItem struct {
	ResourceID  string          `json:"resource_id"`
	MonthlyCost decimal.Decimal `json:"monthly_cost"`
	Notes       []string        `json:"notes,omitempty"`
}

// PolicyEvalSummary is the condensed policy_eval field folded into a
// CheckResponse by the orchestrator.
type PolicyEvalSummary struct {
	Status   string `json:"status"`
	PolicyID string `json:"policy_id"`
	Reason   string `json:"reason,omitempty"`
}

// CheckResponse is the result of a full analysis: simulated cost plus,
// once the orchestrator has run policy evaluation, the policy verdict.
type CheckResponse struct {
	EstimatedMonthlyCost   decimal.Decimal         `json:"estimated_monthly_cost"`
	EstimatedFirstWeekCost decimal.Decimal         `json:"estimated_first_week_cost"`
	BreakdownByResource    []ResourceBreakdownItem `json:"breakdown_by_resource"`
	RiskFlags              []string                `json:"risk_flags"`
	Recommendations        []string                `json:"recommendations"`
	PolicyEval             *PolicyEvalSummary      `json:"policy_eval,omitempty"`
	PricingConfidence      Confidence              `json:"pricing_confidence"`
	DurationMS             int64                   `json:"duration_ms"`
}

// NewEmptyCheckResponse returns the pre-policy shape the cost simulator
// always produces: risk_flags and recommendations empty, policy_eval unset,
// duration_ms = 1 per the simulator's own contract (the orchestrator
// overwrites duration_ms with the wall-clock total before returning).
func NewEmptyCheckResponse() *CheckResponse {
	return &CheckResponse{
		EstimatedMonthlyCost:   decimal.Zero,
		EstimatedFirstWeekCost: decimal.Zero,
		BreakdownByResource:    []ResourceBreakdownItem{},
		RiskFlags:              []string{},
		Recommendations:        []string{},
		PricingConfidence:      ConfidenceHigh,
		DurationMS:             1,
	}
}
