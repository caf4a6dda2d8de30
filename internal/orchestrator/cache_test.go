package orchestrator

import (
	"testing"

	"github.com/finopsguard/guardrail/internal/model"
)

func TestHashBytesIsDeterministic(t *testing.T) {
	a := hashBytes([]byte("same input"))
	b := hashBytes([]byte("same input"))
	if a != b {
		t.Fatalf("expected identical hashes, got %q and %q", a, b)
	}
	if hashBytes([]byte("different input")) == a {
		t.Fatal("expected different inputs to hash differently")
	}
}

func TestParseCacheHitAndMiss(t *testing.T) {
	c := newParseCache()
	if _, ok := c.get("missing"); ok {
		t.Fatal("expected a miss on an empty cache")
	}
	crm := model.NewCanonicalResourceModel()
	c.put("key", crm)
	got, ok := c.get("key")
	if !ok || got != crm {
		t.Fatalf("expected the cached CRM back, got %v, %v", got, ok)
	}
}

func TestSimulateCacheHitAndMiss(t *testing.T) {
	c := newSimulateCache()
	if _, ok := c.get("missing"); ok {
		t.Fatal("expected a miss on an empty cache")
	}
	resp := model.NewEmptyCheckResponse()
	c.put("key", resp)
	got, ok := c.get("key")
	if !ok || got != resp {
		t.Fatalf("expected the cached response back, got %v, %v", got, ok)
	}
}
