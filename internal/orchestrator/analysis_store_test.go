package orchestrator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finopsguard/guardrail/internal/model"
)

func TestAnalysisStoreAppendAndRecentOrdering(t *testing.T) {
	s := NewAnalysisStore(nil)
	s.Append(model.CheckRequest{IaCType: "terraform"}, model.CheckResponse{EstimatedMonthlyCost: decimal.NewFromInt(1)}, "dev")
	s.Append(model.CheckRequest{IaCType: "terraform"}, model.CheckResponse{EstimatedMonthlyCost: decimal.NewFromInt(2)}, "dev")

	recent := s.Recent(10, "")
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	if !recent[0].Response.EstimatedMonthlyCost.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected the newest record first, got %v", recent[0].Response.EstimatedMonthlyCost)
	}
}

func TestAnalysisStoreRecentRespectsAfterCursor(t *testing.T) {
	s := NewAnalysisStore(nil)
	s.Append(model.CheckRequest{}, model.CheckResponse{}, "dev")
	first := s.Recent(10, "")[0]
	s.Append(model.CheckRequest{}, model.CheckResponse{}, "dev")

	recent := s.Recent(10, first.ID)
	if len(recent) != 1 {
		t.Fatalf("expected exactly one record after the cursor, got %d", len(recent))
	}
	if recent[0].ID == first.ID {
		t.Fatal("expected the cursor record itself to be excluded")
	}
}

func TestAnalysisStoreRecentRespectsLimit(t *testing.T) {
	s := NewAnalysisStore(nil)
	for i := 0; i < 5; i++ {
		s.Append(model.CheckRequest{}, model.CheckResponse{}, "dev")
	}
	if got := s.Recent(2, ""); len(got) != 2 {
		t.Fatalf("expected limit to cap the result at 2, got %d", len(got))
	}
}

func TestAnalysisStoreEvictsBeyondRingSize(t *testing.T) {
	s := NewAnalysisStore(nil)
	for i := 0; i < maxRingSize+10; i++ {
		s.Append(model.CheckRequest{}, model.CheckResponse{}, "dev")
	}
	if got := s.Recent(maxRingSize+10, ""); len(got) != maxRingSize {
		t.Fatalf("expected the ring to cap at %d, got %d", maxRingSize, len(got))
	}
}

func TestAnalysisStoreLastCost(t *testing.T) {
	s := NewAnalysisStore(nil)
	if _, ok := s.LastCost(); ok {
		t.Fatal("expected no prior cost on an empty store")
	}
	s.Append(model.CheckRequest{}, model.CheckResponse{EstimatedMonthlyCost: decimal.NewFromInt(42)}, "dev")
	cost, ok := s.LastCost()
	if !ok || !cost.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("expected LastCost 42, got %v, %v", cost, ok)
	}
}
