package usage

import (
	"context"
	"testing"
	"time"

	"github.com/finopsguard/guardrail/internal/model"
)

// fakeAdapter counts calls per scope so tests can assert the cache avoids
// redundant inner lookups.
type fakeAdapter struct {
	calls map[string]int
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{calls: make(map[string]int)}
}

func (f *fakeAdapter) MonthToDateSpend(ctx context.Context, scope string) (model.UsageSummary, error) {
	f.calls[scope]++
	return model.UsageSummary{
		Provider:     model.ProviderAWS,
		Availability: model.UsageAvailable,
		TotalCost:    float64(f.calls[scope]),
		Currency:     "USD",
		RetrievedAt:  time.Now().UTC(),
	}, nil
}

func TestCachedAdapterHitsWithinTTL(t *testing.T) {
	inner := newFakeAdapter()
	c := NewCachedAdapter(inner, time.Hour)

	first, err := c.MonthToDateSpend(context.Background(), "111111111111")
	if err != nil {
		t.Fatalf("MonthToDateSpend: %v", err)
	}
	second, err := c.MonthToDateSpend(context.Background(), "111111111111")
	if err != nil {
		t.Fatalf("MonthToDateSpend: %v", err)
	}
	if inner.calls["111111111111"] != 1 {
		t.Fatalf("expected exactly one inner call, got %d", inner.calls["111111111111"])
	}
	if first.TotalCost != second.TotalCost {
		t.Fatalf("expected the cached result to be returned unchanged, got %v vs %v", first.TotalCost, second.TotalCost)
	}
}

func TestCachedAdapterRefetchesAfterExpiry(t *testing.T) {
	inner := newFakeAdapter()
	c := NewCachedAdapter(inner, time.Millisecond)

	if _, err := c.MonthToDateSpend(context.Background(), "scope-a"); err != nil {
		t.Fatalf("MonthToDateSpend: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := c.MonthToDateSpend(context.Background(), "scope-a"); err != nil {
		t.Fatalf("MonthToDateSpend: %v", err)
	}
	if inner.calls["scope-a"] != 2 {
		t.Fatalf("expected the cache to re-fetch after expiry, got %d calls", inner.calls["scope-a"])
	}
}

func TestCachedAdapterIsolatesScopes(t *testing.T) {
	inner := newFakeAdapter()
	c := NewCachedAdapter(inner, time.Hour)

	if _, err := c.MonthToDateSpend(context.Background(), "scope-a"); err != nil {
		t.Fatalf("MonthToDateSpend: %v", err)
	}
	if _, err := c.MonthToDateSpend(context.Background(), "scope-b"); err != nil {
		t.Fatalf("MonthToDateSpend: %v", err)
	}
	if inner.calls["scope-a"] != 1 || inner.calls["scope-b"] != 1 {
		t.Fatalf("expected one call per distinct scope, got %+v", inner.calls)
	}
}

func TestNewCachedAdapterDefaultsTTL(t *testing.T) {
	c := NewCachedAdapter(newFakeAdapter(), 0)
	if c.ttl != DefaultCacheTTL {
		t.Fatalf("expected a non-positive ttl to default to DefaultCacheTTL, got %v", c.ttl)
	}
}
