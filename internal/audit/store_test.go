package audit

import (
	"testing"
	"time"

	"github.com/finopsguard/guardrail/internal/model"
)

func TestMemoryStoreEvictsOldestBeyondCapacity(t *testing.T) {
	store := NewMemoryStore(3)
	for i := 0; i < 5; i++ {
		_ = store.Save(model.AuditEvent{EventID: string(rune('a' + i)), Timestamp: time.Now()})
	}
	page, err := store.Query(model.AuditFilter{Limit: 10})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("expected 3 retained events, got %d", page.Total)
	}
}

func TestMemoryStoreFilterByEventTypeAndSuccess(t *testing.T) {
	store := NewMemoryStore(10)
	_ = store.Save(model.AuditEvent{EventID: "1", EventType: "api.request", Success: true, Timestamp: time.Now()})
	_ = store.Save(model.AuditEvent{EventID: "2", EventType: "auth.failed", Success: false, Timestamp: time.Now()})

	fail := false
	page, _ := store.Query(model.AuditFilter{EventTypes: []string{"auth.failed"}, Success: &fail, Limit: 10})
	if page.Total != 1 || page.Events[0].EventID != "2" {
		t.Fatalf("expected only the failed event, got %+v", page.Events)
	}
}

func TestMemoryStoreSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	store := NewMemoryStore(10)
	_ = store.Save(model.AuditEvent{EventID: "1", Action: "Delete Policy", ResourceID: "no_gpu_in_dev", Timestamp: time.Now()})

	page, _ := store.Query(model.AuditFilter{Search: "NO_GPU", Limit: 10})
	if page.Total != 1 {
		t.Fatalf("expected a case-insensitive substring match, got %d results", page.Total)
	}
}

func TestPaginationReportsHasMoreAndNextOffset(t *testing.T) {
	store := NewMemoryStore(10)
	for i := 0; i < 5; i++ {
		_ = store.Save(model.AuditEvent{EventID: string(rune('a' + i)), Timestamp: time.Now()})
	}
	page, _ := store.Query(model.AuditFilter{Limit: 2, Offset: 0})
	if !page.HasMore || page.NextOffset != 2 || len(page.Events) != 2 {
		t.Fatalf("unexpected first page: %+v", page)
	}
	page2, _ := store.Query(model.AuditFilter{Limit: 2, Offset: 4})
	if page2.HasMore || page2.NextOffset != 5 || len(page2.Events) != 1 {
		t.Fatalf("unexpected last page: %+v", page2)
	}
}

func TestPaginationSortsBySeverityDescending(t *testing.T) {
	store := NewMemoryStore(10)
	_ = store.Save(model.AuditEvent{EventID: "info", Severity: model.SeverityInfo, Timestamp: time.Now()})
	_ = store.Save(model.AuditEvent{EventID: "error", Severity: model.SeverityError, Timestamp: time.Now()})
	_ = store.Save(model.AuditEvent{EventID: "warn", Severity: model.SeverityWarning, Timestamp: time.Now()})

	page, _ := store.Query(model.AuditFilter{SortBy: "severity", SortDesc: true, Limit: 10})
	if page.Events[0].EventID != "error" {
		t.Errorf("expected error severity first, got %s", page.Events[0].EventID)
	}
}
