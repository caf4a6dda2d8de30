package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/finopsguard/guardrail/internal/model"
)

func TestRunRetryLoopRedeliversDueAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := NewMemoryStore()
	_, _ = store.AddWebhook(model.Webhook{
		ID: "w1", URL: srv.URL, Events: []model.WebhookEventType{model.EventAnalysisCompleted},
		Enabled: true, VerifySSL: true, TimeoutSeconds: 5, RetryAttempts: 3, RetryDelaySeconds: 0,
	})
	d := NewDispatcher(store)
	w, _ := store.GetWebhook("w1")
	d.Dispatch(w, model.WebhookDelivery{
		ID: "d1", WebhookID: "w1", EventType: model.EventAnalysisCompleted,
		Payload: []byte(`{}`), Status: model.DeliveryPending, MaxAttempts: 3, CreatedAt: time.Now(),
	})
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected exactly one initial attempt, got %d", calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{Interval: 20 * time.Millisecond, BatchSize: 10, InterItemSleep: time.Millisecond, RetentionPeriod: time.Hour, MaintenanceHour: -1}
	go d.RunRetryLoop(ctx, cfg)
	defer cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && atomic.LoadInt32(&calls) < 2 {
		time.Sleep(10 * time.Millisecond)
	}
	if atomic.LoadInt32(&calls) < 2 {
		t.Fatal("expected the retry loop to redeliver the failed attempt")
	}
}

func TestRunMaintenanceDeletesOldTerminalDeliveries(t *testing.T) {
	store := NewMemoryStore()
	old := model.WebhookDelivery{ID: "old", WebhookID: "w1", Status: model.DeliveryDelivered, CreatedAt: time.Now().Add(-40 * 24 * time.Hour)}
	recent := model.WebhookDelivery{ID: "recent", WebhookID: "w1", Status: model.DeliveryFailed, CreatedAt: time.Now()}
	_ = store.SaveDelivery(old)
	_ = store.SaveDelivery(recent)

	d := NewDispatcher(store)
	d.runMaintenance(time.Now(), DefaultRetryConfig())

	ms := store
	if _, ok := ms.deliveries["old"]; ok {
		t.Error("expected the old terminal delivery to be removed")
	}
	if _, ok := ms.deliveries["recent"]; !ok {
		t.Error("expected the recent terminal delivery to survive")
	}
}
