package orchestrator

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/finopsguard/guardrail/internal/model"
)

// contentCacheTTL is the freshness window for parse/simulate results keyed
// by content hash. Parsing and simulation are both pure functions of their
// input, so a long TTL is safe; it exists mainly to bound memory growth
// across a long-running process, not to invalidate stale data.
const contentCacheTTL = 24 * time.Hour

// hashBytes returns a hex SHA-256 digest, used to key both the parse cache
// (by raw payload bytes) and the simulate cache (by CRM content).
func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

type parseCacheEntry struct {
	crm     *model.CanonicalResourceModel
	expires time.Time
}

// parseCache memoizes Parse results by (format, payload hash) so repeatedly
// checking an unchanged IaC file skips re-parsing it.
type parseCache struct {
	mu      sync.Mutex
	entries map[string]parseCacheEntry
}

func newParseCache() *parseCache {
	return &parseCache{entries: make(map[string]parseCacheEntry)}
}

func (c *parseCache) get(key string) (*model.CanonicalResourceModel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.crm, true
}

func (c *parseCache) put(key string, crm *model.CanonicalResourceModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = parseCacheEntry{crm: crm, expires: time.Now().Add(contentCacheTTL)}
}

type simulateCacheEntry struct {
	resp    *model.CheckResponse
	expires time.Time
}

// simulateCache memoizes Simulate results by CRM content hash.
type simulateCache struct {
	mu      sync.Mutex
	entries map[string]simulateCacheEntry
}

func newSimulateCache() *simulateCache {
	return &simulateCache{entries: make(map[string]simulateCacheEntry)}
}

func (c *simulateCache) get(key string) (*model.CheckResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.resp, true
}

func (c *simulateCache) put(key string, resp *model.CheckResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = simulateCacheEntry{resp: resp, expires: time.Now().Add(contentCacheTTL)}
}
