package policy

import (
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	_ "github.com/lib/pq"

	"github.com/finopsguard/guardrail/internal/apperrors"
	"github.com/finopsguard/guardrail/internal/logging"
	"github.com/finopsguard/guardrail/internal/model"
)

// MutationAction identifies which policy_* webhook event a store mutation
// should raise.
type MutationAction string

const (
	ActionCreated MutationAction = "created"
	ActionUpdated MutationAction = "updated"
	ActionDeleted MutationAction = "deleted"
)

// MutationEvent is what a Store hands to its listeners after a successful
// add/update/delete; it carries enough of the policy to let audit logging
// and webhook dispatch react without re-reading the store.
type MutationEvent struct {
	Action MutationAction
	Policy model.Policy
}

// MutationListener is notified synchronously, best-effort, after a policy
// mutation commits. The audit logger and webhook dispatcher each register
// themselves as listeners from the composition root; neither failing
// should roll back the mutation, so Store never propagates listener errors.
type MutationListener interface {
	PolicyMutated(evt MutationEvent)
}

// Store is the mutation + lookup surface for the policy set. It is the
// only way policies are created, changed, or removed; the store is a
// shared process-wide resource.
type Store interface {
	Add(p model.Policy) error
	Update(id string, p model.Policy) error
	Delete(id string) error
	Get(id string) (model.Policy, bool)
	List() []model.Policy
	Enabled() []model.Policy
	AddListener(l MutationListener)
	Close() error
}

// MemoryStore is an in-memory Store, loaded eagerly with DefaultPolicies.
// It is the fallback backend when no durable store is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	policies  map[string]model.Policy
	listeners []MutationListener
}

// NewMemoryStore returns a Store preloaded with the three default policies.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{policies: make(map[string]model.Policy)}
	for _, p := range DefaultPolicies() {
		s.policies[p.ID] = p
	}
	return s
}

func (s *MemoryStore) Add(p model.Policy) error {
	s.mu.Lock()
	s.policies[p.ID] = p
	s.mu.Unlock()
	s.notify(MutationEvent{Action: ActionCreated, Policy: p})
	return nil
}

func (s *MemoryStore) Update(id string, p model.Policy) error {
	s.mu.Lock()
	if _, ok := s.policies[id]; !ok {
		s.mu.Unlock()
		return apperrors.NotFound("policy", id)
	}
	p.ID = id
	s.policies[id] = p
	s.mu.Unlock()
	s.notify(MutationEvent{Action: ActionUpdated, Policy: p})
	return nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	p, ok := s.policies[id]
	if !ok {
		s.mu.Unlock()
		return apperrors.NotFound("policy", id)
	}
	delete(s.policies, id)
	s.mu.Unlock()
	s.notify(MutationEvent{Action: ActionDeleted, Policy: p})
	return nil
}

func (s *MemoryStore) Get(id string) (model.Policy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[id]
	return p, ok
}

func (s *MemoryStore) List() []model.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Policy, 0, len(s.policies))
	for _, p := range s.policies {
		out = append(out, p)
	}
	return out
}

func (s *MemoryStore) Enabled() []model.Policy {
	all := s.List()
	out := all[:0:0]
	for _, p := range all {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out
}

func (s *MemoryStore) AddListener(l MutationListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) notify(evt MutationEvent) {
	s.mu.RLock()
	listeners := append([]MutationListener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, l := range listeners {
		l.PolicyMutated(evt)
	}
}

// PostgresStore persists policies in a "policies" table (id primary key,
// a JSONB document column holding the serialized Policy), used when the
// deployment wires a DATABASE_URL; the composition root falls back to
// MemoryStore when it doesn't. The expected DDL:
//
//	CREATE TABLE IF NOT EXISTS policies (
//	    id         TEXT PRIMARY KEY,
//	    document   JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db        *sql.DB
	mu        sync.Mutex
	listeners []MutationListener
}

// NewPostgresStore opens db (already connected via sql.Open("postgres", ...))
// and seeds the default policies if the table is empty.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	var count int
	if err := db.QueryRow(`SELECT count(*) FROM policies`).Scan(&count); err != nil {
		return nil, apperrors.Internal("policy store: count policies", err)
	}
	if count == 0 {
		for _, p := range DefaultPolicies() {
			if err := s.upsert(p); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (s *PostgresStore) upsert(p model.Policy) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return apperrors.Internal("policy store: marshal policy", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO policies (id, document, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`,
		p.ID, doc,
	)
	if err != nil {
		return apperrors.Internal("policy store: upsert policy", err)
	}
	return nil
}

func (s *PostgresStore) Add(p model.Policy) error {
	if err := s.upsert(p); err != nil {
		return err
	}
	s.notify(MutationEvent{Action: ActionCreated, Policy: p})
	return nil
}

func (s *PostgresStore) Update(id string, p model.Policy) error {
	if _, ok := s.Get(id); !ok {
		return apperrors.NotFound("policy", id)
	}
	p.ID = id
	if err := s.upsert(p); err != nil {
		return err
	}
	s.notify(MutationEvent{Action: ActionUpdated, Policy: p})
	return nil
}

func (s *PostgresStore) Delete(id string) error {
	p, ok := s.Get(id)
	if !ok {
		return apperrors.NotFound("policy", id)
	}
	if _, err := s.db.Exec(`DELETE FROM policies WHERE id = $1`, id); err != nil {
		return apperrors.Internal("policy store: delete policy", err)
	}
	s.notify(MutationEvent{Action: ActionDeleted, Policy: p})
	return nil
}

func (s *PostgresStore) Get(id string) (model.Policy, bool) {
	var doc []byte
	err := s.db.QueryRow(`SELECT document FROM policies WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		return model.Policy{}, false
	}
	var p model.Policy
	if err := json.Unmarshal(doc, &p); err != nil {
		logging.Warn("policy store: corrupt row", zap.String("id", id), zap.Error(err))
		return model.Policy{}, false
	}
	return p, true
}

func (s *PostgresStore) List() []model.Policy {
	rows, err := s.db.Query(`SELECT document FROM policies`)
	if err != nil {
		logging.Warn("policy store: list query failed")
		return nil
	}
	defer rows.Close()

	var out []model.Policy
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			continue
		}
		var p model.Policy
		if err := json.Unmarshal(doc, &p); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *PostgresStore) Enabled() []model.Policy {
	all := s.List()
	out := all[:0:0]
	for _, p := range all {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out
}

func (s *PostgresStore) AddListener(l MutationListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) notify(evt MutationEvent) {
	s.mu.Lock()
	listeners := append([]MutationListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l.PolicyMutated(evt)
	}
}

func decimalPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}
