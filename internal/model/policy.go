package model

import "github.com/shopspring/decimal"

// ViolationSeverity is what happens to the pipeline when a policy fails.
type ViolationSeverity string

const (
	SeverityAdvisory ViolationSeverity = "advisory"
	SeverityBlock    ViolationSeverity = "block"
)

// LogicalOperator combines the rules of a PolicyExpression.
type LogicalOperator string

const (
	OperatorAnd LogicalOperator = "and"
	OperatorOr  LogicalOperator = "or"
)

// RuleOperator is a comparison applied between a rule's field value and its
// literal value.
type RuleOperator string

const (
	OpEquals      RuleOperator = "=="
	OpNotEquals   RuleOperator = "!="
	OpGreaterThan RuleOperator = ">"
	OpGreaterEq   RuleOperator = ">="
	OpLessThan    RuleOperator = "<"
	OpLessEq      RuleOperator = "<="
	OpIn          RuleOperator = "in"
	OpContains    RuleOperator = "contains"
	OpStartsWith  RuleOperator = "starts_with"
	OpEndsWith    RuleOperator = "ends_with"
)

// PolicyRule is one comparison in a PolicyExpression. Field is a dotted
// path evaluated against the policy-evaluation context, e.g.
// "resource.size" or "environment".
type PolicyRule struct {
	Field    string       `json:"field"`
	Operator RuleOperator `json:"operator"`
	Value    interface{}  `json:"value"`
}

// PolicyExpression groups rules with a logical operator. An expression
// evaluates to TRUE iff all rules are true (Operator == and) or any rule is
// true (Operator == or). A Policy carrying an expression fails when the
// expression evaluates to TRUE — the expression describes the forbidden
// condition, not the allowed one.
type PolicyExpression struct {
	Rules    []PolicyRule    `json:"rules"`
	Operator LogicalOperator `json:"operator"`
}

// Policy is a single governance rule: either a budget ceiling or an
// expression describing a forbidden condition. When both Budget and
// Expression are set, Budget takes precedence.
type Policy struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Budget      *decimal.Decimal    `json:"budget,omitempty"`
	Expression  *PolicyExpression   `json:"expression,omitempty"`
	OnViolation ViolationSeverity   `json:"on_violation"`
	Enabled     bool                `json:"enabled"`
}

// IsResourceScoped reports whether any rule in the policy's expression
// references the per-resource namespace, which promotes the policy to
// per-resource evaluation instead of once-per-context evaluation.
func (p *Policy) IsResourceScoped() bool {
	if p.Expression == nil {
		return false
	}
	for _, r := range p.Expression.Rules {
		if len(r.Field) >= len("resource.") && r.Field[:len("resource.")] == "resource." {
			return true
		}
	}
	return false
}

// PolicyViolation is one failed policy evaluation, either context-scoped or
// tied to a specific resource.
type PolicyViolation struct {
	PolicyID   string                 `json:"policy_id"`
	PolicyName string                 `json:"policy_name"`
	Severity   ViolationSeverity      `json:"severity"`
	Reason     string                 `json:"reason"`
	ResourceID string                 `json:"resource_id,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// PolicyPass records a policy that was evaluated and did not fail.
type PolicyPass struct {
	PolicyID string `json:"policy_id"`
	Reason   string `json:"reason,omitempty"`
}

// OverallStatus is the aggregate verdict across every evaluated policy.
type OverallStatus string

const (
	StatusPass     OverallStatus = "pass"
	StatusAdvisory OverallStatus = "advisory"
	StatusBlock    OverallStatus = "block"
)

// PolicyEvaluationResult is the outcome of evaluating every applicable
// policy against one analysis. Precedence: any blocking violation forces
// StatusBlock; else any advisory violation forces StatusAdvisory; else
// StatusPass.
type PolicyEvaluationResult struct {
	OverallStatus       OverallStatus          `json:"overall_status"`
	BlockingViolations  []PolicyViolation      `json:"blocking_violations"`
	AdvisoryViolations  []PolicyViolation      `json:"advisory_violations"`
	PassedPolicies      []PolicyPass           `json:"passed_policies"`
	EvaluationContext   map[string]interface{} `json:"evaluation_context,omitempty"`
}

// NewPolicyEvaluationResult returns an empty result, the starting point for
// an evaluation pass before any policy is considered.
func NewPolicyEvaluationResult() *PolicyEvaluationResult {
	return &PolicyEvaluationResult{
		OverallStatus:      StatusPass,
		BlockingViolations: []PolicyViolation{},
		AdvisoryViolations: []PolicyViolation{},
		PassedPolicies:     []PolicyPass{},
	}
}

// Finalize computes OverallStatus from the accumulated violations per the
// precedence rule: block > advisory > pass.
func (r *PolicyEvaluationResult) Finalize() {
	switch {
	case len(r.BlockingViolations) > 0:
		r.OverallStatus = StatusBlock
	case len(r.AdvisoryViolations) > 0:
		r.OverallStatus = StatusAdvisory
	default:
		r.OverallStatus = StatusPass
	}
}
