package pricing

import (
	"sync"
	"time"

	"github.com/finopsguard/guardrail/internal/model"
)

// cacheTTL is the freshness window for cached quotes, live or static.
const cacheTTL = 24 * time.Hour

type cacheKey struct {
	kind   string
	cloud  string
	sku    string
	region string
}

type cacheEntry struct {
	quote   model.PriceQuote
	expires time.Time
}

// cache is a process-local TTL cache keyed (kind, cloud, sku, region).
// Concurrent Check requests share one Catalog, so access is mutex-guarded.
type cache struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
}

func newCache() *cache {
	return &cache{entries: make(map[cacheKey]cacheEntry)}
}

func (c *cache) get(key cacheKey) (model.PriceQuote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return model.PriceQuote{}, false
	}
	return e.quote, true
}

func (c *cache) put(key cacheKey, quote model.PriceQuote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{quote: quote, expires: time.Now().Add(cacheTTL)}
}
