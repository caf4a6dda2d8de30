package httpapi

import "github.com/finopsguard/guardrail/internal/model"

// policyRequest is the body accepted by POST /mcp/evaluatePolicy.
type policyRequest struct {
	IaCType    string `json:"iac_type"`
	IaCPayload string `json:"iac_payload"`
	PolicyID   string `json:"policy_id"`
	// Mode optionally overrides the stored policy's on_violation severity
	// for this one-off evaluation: "advisory" or "block". Empty uses the
	// policy's own configured severity.
	Mode string `json:"mode,omitempty"`
}

// policyEvaluationResponse is the body returned by POST /mcp/evaluatePolicy:
// the verdict for the single named policy, not the full multi-policy
// result shape CheckResponse.policy_eval carries.
type policyEvaluationResponse struct {
	PolicyID   string                    `json:"policy_id"`
	Status     model.OverallStatus       `json:"status"`
	Violations []model.PolicyViolation   `json:"violations,omitempty"`
	Passed     *model.PolicyPass         `json:"passed,omitempty"`
}

// priceQuery is the body accepted by POST /mcp/getPriceCatalog.
type priceQuery struct {
	Cloud         string   `json:"cloud"`
	Region        string   `json:"region,omitempty"`
	InstanceTypes []string `json:"instance_types,omitempty"`
}

// priceCatalogEntry is one quoted SKU in a priceCatalogResponse.
type priceCatalogEntry struct {
	InstanceType string            `json:"instance_type"`
	Quote        model.PriceQuote  `json:"quote"`
}

// priceCatalogResponse is the body returned by POST /mcp/getPriceCatalog.
type priceCatalogResponse struct {
	Cloud   string              `json:"cloud"`
	Region  string              `json:"region,omitempty"`
	Entries []priceCatalogEntry `json:"entries"`
}

// listRecentAnalysesRequest is the body accepted by
// POST /mcp/listRecentAnalyses.
type listRecentAnalysesRequest struct {
	Limit int    `json:"limit,omitempty"`
	After string `json:"after,omitempty"`
}

// healthzResponse is the body returned by GET /healthz.
type healthzResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
