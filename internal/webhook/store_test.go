package webhook

import (
	"testing"
	"time"

	"github.com/finopsguard/guardrail/internal/model"
)

func TestMemoryStoreWebhookCRUD(t *testing.T) {
	s := NewMemoryStore()
	w, err := s.AddWebhook(model.Webhook{ID: "w1", URL: "https://example.com"})
	if err != nil {
		t.Fatalf("AddWebhook: %v", err)
	}
	got, err := s.GetWebhook("w1")
	if err != nil || got.ID != w.ID {
		t.Fatalf("GetWebhook: %v, %+v", err, got)
	}
	if err := s.DeleteWebhook("w1"); err != nil {
		t.Fatalf("DeleteWebhook: %v", err)
	}
	if _, err := s.GetWebhook("w1"); err == nil {
		t.Fatal("expected an error getting a deleted webhook")
	}
}

func TestSubscribedWebhooksFiltersByEventAndEnabled(t *testing.T) {
	s := NewMemoryStore()
	_, _ = s.AddWebhook(model.Webhook{ID: "enabled", Enabled: true, Events: []model.WebhookEventType{model.EventBudgetExceeded}})
	_, _ = s.AddWebhook(model.Webhook{ID: "disabled", Enabled: false, Events: []model.WebhookEventType{model.EventBudgetExceeded}})
	_, _ = s.AddWebhook(model.Webhook{ID: "other-event", Enabled: true, Events: []model.WebhookEventType{model.EventCostSpike}})

	subs := s.SubscribedWebhooks(model.EventBudgetExceeded)
	if len(subs) != 1 || subs[0].ID != "enabled" {
		t.Fatalf("expected only the enabled, subscribed webhook, got %+v", subs)
	}
}

func TestDueDeliveriesExcludesFutureAndTerminal(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	future := now.Add(time.Hour)
	_ = s.SaveDelivery(model.WebhookDelivery{ID: "due", Status: model.DeliveryPending, MaxAttempts: 3, CreatedAt: now.Add(-time.Minute)})
	_ = s.SaveDelivery(model.WebhookDelivery{ID: "future", Status: model.DeliveryRetrying, MaxAttempts: 3, NextRetryAt: &future, CreatedAt: now})
	_ = s.SaveDelivery(model.WebhookDelivery{ID: "done", Status: model.DeliveryDelivered, MaxAttempts: 3, CreatedAt: now})

	due, err := s.DueDeliveries(now, 10)
	if err != nil {
		t.Fatalf("DueDeliveries: %v", err)
	}
	if len(due) != 1 || due[0].ID != "due" {
		t.Fatalf("expected only the due delivery, got %+v", due)
	}
}

func TestDueDeliveriesOrderedOldestFirstAndBatchLimited(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	for i := 0; i < 5; i++ {
		_ = s.SaveDelivery(model.WebhookDelivery{
			ID: string(rune('a' + i)), Status: model.DeliveryPending, MaxAttempts: 3,
			CreatedAt: now.Add(-time.Duration(5-i) * time.Minute),
		})
	}
	due, _ := s.DueDeliveries(now, 2)
	if len(due) != 2 || due[0].ID != "a" || due[1].ID != "b" {
		t.Fatalf("expected the two oldest deliveries first, got %+v", due)
	}
}

func TestDeleteTerminalBeforeCutoff(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	_ = s.SaveDelivery(model.WebhookDelivery{ID: "old", Status: model.DeliveryFailed, CreatedAt: now.Add(-48 * time.Hour)})
	_ = s.SaveDelivery(model.WebhookDelivery{ID: "new", Status: model.DeliveryFailed, CreatedAt: now})

	removed, err := s.DeleteTerminalBefore(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("DeleteTerminalBefore: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected to remove 1 delivery, removed %d", removed)
	}
}

func TestDeliveriesForWebhookFiltersAndOrdersNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	_ = s.SaveDelivery(model.WebhookDelivery{ID: "a", WebhookID: "wh1", CreatedAt: now.Add(-2 * time.Minute)})
	_ = s.SaveDelivery(model.WebhookDelivery{ID: "b", WebhookID: "wh1", CreatedAt: now})
	_ = s.SaveDelivery(model.WebhookDelivery{ID: "c", WebhookID: "wh2", CreatedAt: now})

	out := s.DeliveriesForWebhook("wh1")
	if len(out) != 2 {
		t.Fatalf("expected 2 deliveries for wh1, got %d", len(out))
	}
	if out[0].ID != "b" || out[1].ID != "a" {
		t.Fatalf("expected newest first [b, a], got %+v", out)
	}
}

func TestDeliveriesForWebhookUnknownIDReturnsEmpty(t *testing.T) {
	s := NewMemoryStore()
	if out := s.DeliveriesForWebhook("missing"); len(out) != 0 {
		t.Fatalf("expected no deliveries, got %d", len(out))
	}
}
