package policy

import (
	"testing"

	"github.com/finopsguard/guardrail/internal/model"
)

type recordingListener struct {
	events []MutationEvent
}

func (l *recordingListener) PolicyMutated(evt MutationEvent) {
	l.events = append(l.events, evt)
}

func TestNewMemoryStoreLoadsDefaultPolicies(t *testing.T) {
	store := NewMemoryStore()
	for _, id := range []string{"default_monthly_budget", "no_gpu_in_dev", "no_large_instances_in_dev"} {
		if _, ok := store.Get(id); !ok {
			t.Errorf("expected default policy %q to be preloaded", id)
		}
	}
}

func TestStoreAddGetListDelete(t *testing.T) {
	store := NewMemoryStore()
	p := model.Policy{ID: "custom", Name: "Custom", OnViolation: model.SeverityAdvisory, Enabled: true}

	if err := store.Add(p); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, ok := store.Get("custom")
	if !ok || got.Name != "Custom" {
		t.Fatalf("Get returned %v, %v", got, ok)
	}

	if len(store.List()) != 4 {
		t.Errorf("List length = %d, want 4 (3 defaults + custom)", len(store.List()))
	}

	if err := store.Delete("custom"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.Get("custom"); ok {
		t.Error("expected custom policy to be gone after Delete")
	}
}

func TestStoreUpdateUnknownIDFails(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Update("does-not-exist", model.Policy{}); err == nil {
		t.Error("expected an error updating an unknown policy id")
	}
}

func TestStoreDeleteUnknownIDFails(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Delete("does-not-exist"); err == nil {
		t.Error("expected an error deleting an unknown policy id")
	}
}

func TestStoreNotifiesListenersOnMutation(t *testing.T) {
	store := NewMemoryStore()
	listener := &recordingListener{}
	store.AddListener(listener)

	p := model.Policy{ID: "custom", Name: "Custom", OnViolation: model.SeverityAdvisory, Enabled: true}
	_ = store.Add(p)
	_ = store.Update("custom", p)
	_ = store.Delete("custom")

	if len(listener.events) != 3 {
		t.Fatalf("expected 3 mutation events, got %d", len(listener.events))
	}
	wantActions := []MutationAction{ActionCreated, ActionUpdated, ActionDeleted}
	for i, evt := range listener.events {
		if evt.Action != wantActions[i] {
			t.Errorf("event %d action = %q, want %q", i, evt.Action, wantActions[i])
		}
	}
}

func TestEnabledExcludesDisabledPolicies(t *testing.T) {
	store := NewMemoryStore()
	p, _ := store.Get("no_gpu_in_dev")
	p.Enabled = false
	_ = store.Update("no_gpu_in_dev", p)

	for _, e := range store.Enabled() {
		if e.ID == "no_gpu_in_dev" {
			t.Error("disabled policy should not appear in Enabled()")
		}
	}
}
