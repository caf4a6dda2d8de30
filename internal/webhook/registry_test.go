package webhook

import (
	"testing"

	"github.com/finopsguard/guardrail/internal/model"
)

func TestRegisterRejectsNonHTTPURL(t *testing.T) {
	r := NewRegistry(NewMemoryStore())
	_, err := r.Register(model.Webhook{URL: "ftp://example.com", Events: []model.WebhookEventType{model.EventAnalysisCompleted}})
	if err == nil {
		t.Fatal("expected an error for a non-http(s) url")
	}
}

func TestRegisterRejectsReservedHeader(t *testing.T) {
	r := NewRegistry(NewMemoryStore())
	_, err := r.Register(model.Webhook{
		URL:     "https://example.com/hook",
		Events:  []model.WebhookEventType{model.EventAnalysisCompleted},
		Headers: map[string]string{"Content-Type": "text/plain"},
	})
	if err == nil {
		t.Fatal("expected an error for a reserved header")
	}
}

func TestRegisterRejectsNoEvents(t *testing.T) {
	r := NewRegistry(NewMemoryStore())
	_, err := r.Register(model.Webhook{URL: "https://example.com/hook"})
	if err == nil {
		t.Fatal("expected an error for an empty events list")
	}
}

func TestRegisterAppliesDefaultsAndAssignsID(t *testing.T) {
	r := NewRegistry(NewMemoryStore())
	w, err := r.Register(model.Webhook{
		URL:    "https://example.com/hook",
		Events: []model.WebhookEventType{model.EventBudgetExceeded},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if w.ID == "" {
		t.Error("expected an assigned ID")
	}
	if w.TimeoutSeconds != 30 || w.RetryAttempts != 3 || w.RetryDelaySeconds != 60 {
		t.Errorf("unexpected defaults: %+v", w)
	}
}

func TestUpdateUnknownWebhookFails(t *testing.T) {
	r := NewRegistry(NewMemoryStore())
	_, err := r.Update(model.Webhook{
		ID:     "missing",
		URL:    "https://example.com/hook",
		Events: []model.WebhookEventType{model.EventAnalysisCompleted},
	})
	if err == nil {
		t.Fatal("expected an error updating an unknown webhook")
	}
}
