package httpapi

import (
	"encoding/base64"
	"net/http"

	"github.com/finopsguard/guardrail/internal/apperrors"
	"github.com/finopsguard/guardrail/internal/model"
	"github.com/finopsguard/guardrail/internal/parser"
	"github.com/finopsguard/guardrail/internal/pricing"
	"github.com/finopsguard/guardrail/internal/simulate"
)

func (d Deps) handleCheckCostImpact(w http.ResponseWriter, r *http.Request) {
	var req model.CheckRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	resp, err := d.Orchestrator.Check(req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseIaCFormat translates a CheckRequest-style iac_type into the parser's
// Format enum, matching the orchestrator's own validateRequest rule.
func parseIaCFormat(iacType string) (parser.Format, error) {
	switch iacType {
	case "terraform":
		return parser.FormatTerraform, nil
	case "ansible":
		return parser.FormatAnsible, nil
	default:
		return "", apperrors.Input("invalid_request")
	}
}

func (d Deps) handleEvaluatePolicy(w http.ResponseWriter, r *http.Request) {
	var req policyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	format, err := parseIaCFormat(req.IaCType)
	if err != nil {
		writeAppError(w, err)
		return
	}
	payload, err := base64.StdEncoding.DecodeString(req.IaCPayload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload_encoding", "iac_payload is not valid base64")
		return
	}

	p, ok := d.Policies.Get(req.PolicyID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "policy not found: "+req.PolicyID)
		return
	}
	switch req.Mode {
	case string(model.SeverityAdvisory):
		p.OnViolation = model.SeverityAdvisory
	case string(model.SeverityBlock):
		p.OnViolation = model.SeverityBlock
	}

	crm := parser.Parse(payload, format)
	resp := simulate.Simulate(crm, d.Catalog)
	eval := d.Evaluator.EvaluateOne(p, crm, resp, "")

	out := policyEvaluationResponse{PolicyID: p.ID, Status: eval.OverallStatus}
	out.Violations = append(out.Violations, eval.BlockingViolations...)
	out.Violations = append(out.Violations, eval.AdvisoryViolations...)
	if len(eval.PassedPolicies) > 0 {
		out.Passed = &eval.PassedPolicies[0]
	}
	writeJSON(w, http.StatusOK, out)
}

func (d Deps) handleGetPriceCatalog(w http.ResponseWriter, r *http.Request) {
	var req priceQuery
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Cloud == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "cloud is required")
		return
	}

	out := priceCatalogResponse{Cloud: req.Cloud, Region: req.Region}
	for _, instanceType := range req.InstanceTypes {
		quote := d.Catalog.Quote(pricing.CategoryInstance, pricing.Cloud(req.Cloud), instanceType, req.Region)
		out.Entries = append(out.Entries, priceCatalogEntry{InstanceType: instanceType, Quote: quote})
	}
	writeJSON(w, http.StatusOK, out)
}

func (d Deps) handleListRecentAnalyses(w http.ResponseWriter, r *http.Request) {
	var req listRecentAnalysesRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
			return
		}
	}
	writeJSON(w, http.StatusOK, d.Analyses.Recent(req.Limit, req.After))
}
