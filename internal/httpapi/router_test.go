package httpapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finopsguard/guardrail/internal/audit"
	"github.com/finopsguard/guardrail/internal/config"
	"github.com/finopsguard/guardrail/internal/metrics"
	"github.com/finopsguard/guardrail/internal/model"
	"github.com/finopsguard/guardrail/internal/orchestrator"
	"github.com/finopsguard/guardrail/internal/policy"
	"github.com/finopsguard/guardrail/internal/pricing"
	"github.com/finopsguard/guardrail/internal/webhook"
)

const terraformFixture = `
resource "aws_instance" "x" {
  instance_type = "t3.medium"
}
provider "aws" {
  region = "us-east-1"
}
`

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	catalog := pricing.NewCatalog(pricing.Options{FallbackToStatic: true})
	policyStore := policy.NewMemoryStore()
	evaluator := policy.NewEvaluator(policyStore)
	analyses := orchestrator.NewAnalysisStore(nil)
	whStore := webhook.NewMemoryStore()
	dispatcher := webhook.NewDispatcher(whStore)
	registry := webhook.NewRegistry(whStore)
	orch := orchestrator.New(catalog, evaluator, analyses, dispatcher)
	auditLogger := audit.NewLogger(audit.Config{Enabled: true, DBLogging: true}, audit.NewMemoryStore(100))

	return Deps{
		Config:       &config.Config{},
		Orchestrator: orch,
		Analyses:     analyses,
		Catalog:      catalog,
		Evaluator:    evaluator,
		Policies:     policyStore,
		Webhooks:     registry,
		Dispatcher:   dispatcher,
		WebhookStore: whStore,
		AuditLogger:  auditLogger,
		Metrics:      metrics.New(),
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCheckCostImpactHappyPath(t *testing.T) {
	r := NewRouter(newTestDeps(t))
	rec := doJSON(t, r, http.MethodPost, "/mcp/checkCostImpact", model.CheckRequest{
		IaCType: "terraform", IaCPayload: b64(terraformFixture), Environment: "dev",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp model.CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PolicyEval == nil {
		t.Fatal("expected policy_eval to be populated")
	}
}

func TestCheckCostImpactRejectsBadBase64(t *testing.T) {
	r := NewRouter(newTestDeps(t))
	rec := doJSON(t, r, http.MethodPost, "/mcp/checkCostImpact", model.CheckRequest{
		IaCType: "terraform", IaCPayload: "not-valid-base64!!", Environment: "dev",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCheckCostImpactRejectsMalformedJSON(t *testing.T) {
	r := NewRouter(newTestDeps(t))
	req := httptest.NewRequest(http.MethodPost, "/mcp/checkCostImpact", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEvaluatePolicyUnknownPolicyIs404(t *testing.T) {
	r := NewRouter(newTestDeps(t))
	rec := doJSON(t, r, http.MethodPost, "/mcp/evaluatePolicy", policyRequest{
		IaCType: "terraform", IaCPayload: b64(terraformFixture), PolicyID: "does-not-exist",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestEvaluatePolicyAgainstDefaultBudget(t *testing.T) {
	deps := newTestDeps(t)
	for _, p := range policy.DefaultPolicies() {
		_ = deps.Policies.Add(p)
	}
	r := NewRouter(deps)
	rec := doJSON(t, r, http.MethodPost, "/mcp/evaluatePolicy", policyRequest{
		IaCType: "terraform", IaCPayload: b64(terraformFixture), PolicyID: policy.DefaultPolicies()[0].ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out policyEvaluationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.PolicyID != policy.DefaultPolicies()[0].ID {
		t.Fatalf("expected policy id %q, got %q", policy.DefaultPolicies()[0].ID, out.PolicyID)
	}
}

func TestGetPriceCatalogQuotesRequestedInstanceTypes(t *testing.T) {
	r := NewRouter(newTestDeps(t))
	rec := doJSON(t, r, http.MethodPost, "/mcp/getPriceCatalog", priceQuery{
		Cloud: "aws", Region: "us-east-1", InstanceTypes: []string{"t3.medium"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out priceCatalogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Entries) != 1 || out.Entries[0].InstanceType != "t3.medium" {
		t.Fatalf("expected one quoted entry for t3.medium, got %+v", out.Entries)
	}
}

func TestListRecentAnalysesReturnsAfterCheck(t *testing.T) {
	deps := newTestDeps(t)
	r := NewRouter(deps)
	doJSON(t, r, http.MethodPost, "/mcp/checkCostImpact", model.CheckRequest{
		IaCType: "terraform", IaCPayload: b64(terraformFixture), Environment: "dev",
	})
	rec := doJSON(t, r, http.MethodPost, "/mcp/listRecentAnalyses", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 recorded analysis, got %d", len(out))
	}
}

func TestPolicyCRUDLifecycle(t *testing.T) {
	r := NewRouter(newTestDeps(t))

	createRec := doJSON(t, r, http.MethodPost, "/mcp/policies/", model.Policy{
		ID: "custom-1", Name: "Custom", OnViolation: model.SeverityAdvisory, Enabled: true,
	})
	if createRec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", createRec.Code, createRec.Body.String())
	}

	getRec := doJSON(t, r, http.MethodGet, "/mcp/policies/custom-1", nil)
	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", getRec.Code)
	}

	deleteReq := httptest.NewRequest(http.MethodDelete, "/mcp/policies/custom-1", nil)
	deleteRec := httptest.NewRecorder()
	r.ServeHTTP(deleteRec, deleteReq)
	if deleteRec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", deleteRec.Code)
	}

	missingRec := doJSON(t, r, http.MethodGet, "/mcp/policies/custom-1", nil)
	if missingRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", missingRec.Code)
	}
}

func TestWebhookLifecycleIncludingTestDelivery(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	r := NewRouter(newTestDeps(t))

	createRec := doJSON(t, r, http.MethodPost, "/webhooks/", model.Webhook{
		Name: "test hook", URL: upstream.URL, Events: []model.WebhookEventType{model.EventAnalysisCompleted},
	})
	if createRec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", createRec.Code, createRec.Body.String())
	}
	var created model.Webhook
	if err := json.Unmarshal(createRec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created webhook: %v", err)
	}

	testRec := doJSON(t, r, http.MethodPost, "/webhooks/"+created.ID+"/test", nil)
	if testRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", testRec.Code, testRec.Body.String())
	}
	var delivery model.WebhookDelivery
	if err := json.Unmarshal(testRec.Body.Bytes(), &delivery); err != nil {
		t.Fatalf("decode delivery: %v", err)
	}
	if delivery.Status != model.DeliveryDelivered {
		t.Fatalf("expected a delivered test delivery, got %q", delivery.Status)
	}

	deliveriesRec := doJSON(t, r, http.MethodGet, "/webhooks/"+created.ID+"/deliveries", nil)
	if deliveriesRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", deliveriesRec.Code)
	}
}

func TestWebhookCreateRejectsBadURL(t *testing.T) {
	r := NewRouter(newTestDeps(t))
	rec := doJSON(t, r, http.MethodPost, "/webhooks/", model.Webhook{
		Name: "bad", URL: "ftp://example.com", Events: []model.WebhookEventType{model.EventAnalysisCompleted},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthzReportsOKWithNoDatabase(t *testing.T) {
	r := NewRouter(newTestDeps(t))
	rec := doJSON(t, r, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out healthzResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Status != "ok" || out.Components["database"] != "not_configured" {
		t.Fatalf("unexpected healthz body: %+v", out)
	}
}

func TestMetricsEndpointServesPrometheusText(t *testing.T) {
	r := NewRouter(newTestDeps(t))
	rec := doJSON(t, r, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected non-empty metrics body")
	}
}

func TestAPIKeyAuthRejectsMissingKey(t *testing.T) {
	deps := newTestDeps(t)
	deps.Config = &config.Config{AuthEnabled: true, AuthMode: "api_key", APIKey: "secret"}
	r := NewRouter(deps)

	rec := doJSON(t, r, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with no API key, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-API-Key", "secret")
	okRec := httptest.NewRecorder()
	r.ServeHTTP(okRec, req)
	if okRec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a correct API key, got %d", okRec.Code)
	}
}

func TestAuditEventsQueryReturnsCapturedRequests(t *testing.T) {
	r := NewRouter(newTestDeps(t))
	doJSON(t, r, http.MethodGet, "/healthz", nil) // skipped by audit middleware
	doJSON(t, r, http.MethodPost, "/mcp/checkCostImpact", model.CheckRequest{
		IaCType: "terraform", IaCPayload: b64(terraformFixture), Environment: "dev",
	})

	rec := doJSON(t, r, http.MethodGet, "/audit/events", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var page model.AuditPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if page.Total == 0 {
		t.Fatal("expected at least one captured api.request event")
	}
}

func TestUsageSpendUnknownProviderIs404(t *testing.T) {
	r := NewRouter(newTestDeps(t))
	rec := doJSON(t, r, http.MethodGet, "/usage/aws/spend?scope=123", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with no usage adapters configured, got %d", rec.Code)
	}
}
