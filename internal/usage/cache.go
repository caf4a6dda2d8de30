package usage

import (
	"context"
	"sync"
	"time"

	"github.com/finopsguard/guardrail/internal/model"
)

// DefaultCacheTTL is the fallback freshness window for cached usage
// summaries when no explicit TTL is configured.
const DefaultCacheTTL = 3600 * time.Second

type cacheEntry struct {
	summary model.UsageSummary
	expires time.Time
}

// CachedAdapter wraps an Adapter with a per-scope TTL cache, so repeated
// dashboard queries don't re-hit the billing API on every request.
type CachedAdapter struct {
	inner Adapter
	ttl   time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCachedAdapter wraps inner with a TTL cache. A ttl <= 0 uses
// DefaultCacheTTL.
func NewCachedAdapter(inner Adapter, ttl time.Duration) *CachedAdapter {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedAdapter{inner: inner, ttl: ttl, entries: make(map[string]cacheEntry)}
}

func (c *CachedAdapter) MonthToDateSpend(ctx context.Context, scope string) (model.UsageSummary, error) {
	c.mu.Lock()
	if entry, ok := c.entries[scope]; ok && time.Now().Before(entry.expires) {
		c.mu.Unlock()
		return entry.summary, nil
	}
	c.mu.Unlock()

	summary, err := c.inner.MonthToDateSpend(ctx, scope)
	if err != nil {
		return summary, err
	}

	c.mu.Lock()
	c.entries[scope] = cacheEntry{summary: summary, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return summary, nil
}
