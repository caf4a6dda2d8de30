package audit

import (
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	_ "github.com/lib/pq"

	"github.com/finopsguard/guardrail/internal/apperrors"
	"github.com/finopsguard/guardrail/internal/model"
)

// Store is the query/persistence surface a Logger's DB sink writes through
// and the audit query API reads from.
type Store interface {
	Save(evt model.AuditEvent) error
	Query(filter model.AuditFilter) (model.AuditPage, error)
}

// MemoryStore keeps the last maxEvents audit events in a ring buffer,
// oldest evicted first. It's the default backend — matching the
// memory-store fallback pattern in adapters/storage/adapter.go — and is
// enough for the query surface to answer against even with no external DB.
type MemoryStore struct {
	mu        sync.RWMutex
	events    []model.AuditEvent
	maxEvents int
}

// NewMemoryStore returns a store retaining up to maxEvents events.
func NewMemoryStore(maxEvents int) *MemoryStore {
	if maxEvents <= 0 {
		maxEvents = 1000
	}
	return &MemoryStore{maxEvents: maxEvents}
}

func (s *MemoryStore) Save(evt model.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
	return nil
}

func (s *MemoryStore) Query(filter model.AuditFilter) (model.AuditPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]model.AuditEvent, 0, len(s.events))
	for _, e := range s.events {
		if matches(e, filter) {
			matched = append(matched, e)
		}
	}
	return paginate(matched, filter), nil
}

// PostgresStore persists audit events in an append-only "audit_events"
// table. Expected DDL:
//
//	CREATE TABLE IF NOT EXISTS audit_events (
//	    event_id TEXT PRIMARY KEY,
//	    document JSONB NOT NULL,
//	    event_type TEXT NOT NULL,
//	    severity TEXT NOT NULL,
//	    username TEXT,
//	    success BOOLEAN NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an already-open *sql.DB ("postgres" driver
// registered via the blank lib/pq import above).
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(evt model.AuditEvent) error {
	doc, err := json.Marshal(evt)
	if err != nil {
		return apperrors.Internal("audit store: marshal event", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO audit_events (event_id, document, event_type, severity, username, success, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		evt.EventID, doc, evt.EventType, string(evt.Severity), evt.Actor.Username, evt.Success, evt.Timestamp,
	)
	if err != nil {
		return apperrors.Internal("audit store: insert event", err)
	}
	return nil
}

func (s *PostgresStore) Query(filter model.AuditFilter) (model.AuditPage, error) {
	rows, err := s.db.Query(`SELECT document FROM audit_events ORDER BY created_at DESC LIMIT 10000`)
	if err != nil {
		return model.AuditPage{}, apperrors.Internal("audit store: query events", err)
	}
	defer rows.Close()

	var all []model.AuditEvent
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			continue
		}
		var e model.AuditEvent
		if err := json.Unmarshal(doc, &e); err != nil {
			continue
		}
		all = append(all, e)
	}

	matched := make([]model.AuditEvent, 0, len(all))
	for _, e := range all {
		if matches(e, filter) {
			matched = append(matched, e)
		}
	}
	return paginate(matched, filter), nil
}

// matches applies every AuditFilter predicate the query surface supports.
func matches(e model.AuditEvent, f model.AuditFilter) bool {
	if f.Start != nil && e.Timestamp.Before(*f.Start) {
		return false
	}
	if f.End != nil && e.Timestamp.After(*f.End) {
		return false
	}
	if len(f.EventTypes) > 0 && !containsString(f.EventTypes, e.EventType) {
		return false
	}
	if len(f.Severities) > 0 && !containsSeverity(f.Severities, e.Severity) {
		return false
	}
	if len(f.Usernames) > 0 && !containsString(f.Usernames, e.Actor.Username) {
		return false
	}
	if len(f.ResourceTypes) > 0 && !containsString(f.ResourceTypes, e.ResourceType) {
		return false
	}
	if f.Success != nil && e.Success != *f.Success {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystack := strings.ToLower(e.Action + " " + e.Actor.Username + " " + e.ResourceID)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsSeverity(list []model.AuditSeverity, v model.AuditSeverity) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// paginate sorts (by timestamp or severity, default ascending by timestamp) and
// slices the matched set per filter's limit/offset, reporting has_more and
// next_offset.
func paginate(matched []model.AuditEvent, f model.AuditFilter) model.AuditPage {
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "timestamp"
	}
	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		if sortBy == "severity" {
			less = severityRank(matched[i].Severity) < severityRank(matched[j].Severity)
		} else {
			less = matched[i].Timestamp.Before(matched[j].Timestamp)
		}
		if f.SortDesc {
			return !less
		}
		return less
	})

	total := len(matched)
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := matched[offset:end]
	hasMore := end < total
	nextOffset := end
	if !hasMore {
		nextOffset = total
	}

	return model.AuditPage{
		Events:     append([]model.AuditEvent(nil), page...),
		Total:      total,
		HasMore:    hasMore,
		NextOffset: nextOffset,
	}
}

func severityRank(s model.AuditSeverity) int {
	switch s {
	case model.SeverityError:
		return 2
	case model.SeverityWarning:
		return 1
	default:
		return 0
	}
}
