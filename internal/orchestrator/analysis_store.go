package orchestrator

import (
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finopsguard/guardrail/internal/apperrors"
	"github.com/finopsguard/guardrail/internal/model"
)

// analysisRecord is one completed analysis kept for /mcp/listRecentAnalyses.
type analysisRecord struct {
	ID          string              `json:"id"`
	Request     model.CheckRequest  `json:"request"`
	Response    model.CheckResponse `json:"response"`
	Environment string              `json:"environment"`
}

// maxRingSize bounds the in-memory history kept even when a durable store
// is also configured, matching the hybrid durable-plus-ring-buffer shape.
const maxRingSize = 1000

// AnalysisStore records completed analyses: durable when a database is
// configured, always also in an in-memory ring of the most recent
// maxRingSize entries so recent-history reads never depend on the database
// being reachable. Expected DDL when a database is configured:
//
//	CREATE TABLE IF NOT EXISTS analyses (
//	    id         TEXT PRIMARY KEY,
//	    document   JSONB NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type AnalysisStore struct {
	mu   sync.Mutex
	ring []analysisRecord // newest first

	db *sql.DB // nil when DB_ENABLED is false
}

// NewAnalysisStore returns a store. db may be nil, in which case only the
// in-memory ring is used.
func NewAnalysisStore(db *sql.DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

// Append records one completed analysis, prepending it to the ring and
// best-effort persisting it to the durable store. A persistence failure is
// swallowed here — analysis storage is never allowed to fail the caller's
// request, it only degrades the durability of history.
func (s *AnalysisStore) Append(req model.CheckRequest, resp model.CheckResponse, environment string) analysisRecord {
	rec := analysisRecord{ID: uuid.NewString(), Request: req, Response: resp, Environment: environment}

	s.mu.Lock()
	s.ring = append([]analysisRecord{rec}, s.ring...)
	if len(s.ring) > maxRingSize {
		s.ring = s.ring[:maxRingSize]
	}
	s.mu.Unlock()

	if s.db != nil {
		_ = s.persist(rec)
	}
	return rec
}

func (s *AnalysisStore) persist(rec analysisRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return apperrors.Internal("analysis store: marshal record", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO analyses (id, document, created_at) VALUES ($1, $2, now())
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, doc,
	)
	if err != nil {
		return apperrors.Internal("analysis store: insert record", err)
	}
	return nil
}

// Recent returns up to limit records, newest first, optionally skipping
// everything at or before the cursor id (the "after" pagination parameter).
// The in-memory ring is the sole source of truth for "recent" — a record
// that has aged out of the ring is no longer considered recent even if it
// still exists in the durable store.
func (s *AnalysisStore) Recent(limit int, after string) []analysisRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if after != "" {
		for i, rec := range s.ring {
			if rec.ID == after {
				start = i + 1
				break
			}
		}
	}
	if start >= len(s.ring) {
		return []analysisRecord{}
	}
	end := start + limit
	if limit <= 0 || end > len(s.ring) {
		end = len(s.ring)
	}
	out := make([]analysisRecord, end-start)
	copy(out, s.ring[start:end])
	return out
}

// LastCost returns the most recent analysis's estimated monthly cost, used
// to derive the cost_spike webhook event. ok is false when no prior
// analysis exists.
func (s *AnalysisStore) LastCost() (cost decimal.Decimal, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ring) == 0 {
		return decimal.Zero, false
	}
	return s.ring[0].Response.EstimatedMonthlyCost, true
}
