package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/finopsguard/guardrail/internal/model"
)

func TestLogReturnsNilWhenDisabled(t *testing.T) {
	logger := NewLogger(Config{Enabled: false}, nil)
	if evt := logger.Log("api.request", "GET /x"); evt != nil {
		t.Error("expected nil event when auditing is disabled")
	}
}

func TestLogWritesToFileSink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")
	logger := NewLogger(Config{Enabled: true, FileLogging: true, FilePath: path}, nil)
	defer logger.Close()

	logger.Log("api.request", "GET /check", WithSuccess(true))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading audit log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected at least one line written to the audit log file")
	}
}

func TestLogWritesToDBStoreWhenConfigured(t *testing.T) {
	store := NewMemoryStore(10)
	logger := NewLogger(Config{Enabled: true, DBLogging: true}, store)

	logger.Log("policy.created", "create policy", WithResource("policy", "p1"))

	page, _ := store.Query(model.AuditFilter{Limit: 10})
	if page.Total != 1 {
		t.Fatalf("expected 1 stored event, got %d", page.Total)
	}
	if page.Events[0].ResourceID != "p1" {
		t.Errorf("resource_id = %q, want p1", page.Events[0].ResourceID)
	}
}

func TestWithErrorSetsSuccessFalse(t *testing.T) {
	store := NewMemoryStore(10)
	logger := NewLogger(Config{Enabled: true, DBLogging: true}, store)

	logger.Log("webhook.delivery", "deliver event", WithError(os.ErrNotExist))

	page, _ := store.Query(model.AuditFilter{Limit: 10})
	if page.Events[0].Success {
		t.Error("WithError should mark the event unsuccessful")
	}
	if page.Events[0].Error == "" {
		t.Error("expected an error message on the event")
	}
}
