package usage

import (
	"context"
	"testing"

	"github.com/finopsguard/guardrail/internal/model"
)

func TestAzureAdapterNilClientIsUnavailable(t *testing.T) {
	a := NewAzureAdapter(nil)
	s, err := a.MonthToDateSpend(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("expected no error for a nil client, got %v", err)
	}
	if s.Availability != model.UsageUnavailable {
		t.Fatalf("expected UsageUnavailable, got %q", s.Availability)
	}
	if s.Provider != model.ProviderAzure {
		t.Fatalf("expected provider azure, got %q", s.Provider)
	}
}

func TestAzureUsageLineCostUnknownShapeDefaults(t *testing.T) {
	// Anything that isn't a *armconsumption.LegacyUsageDetail or
	// *armconsumption.ModernUsageDetail falls back to a zero-cost,
	// "unknown" service rather than panicking.
	cost, currency, service := azureUsageLineCost("not a usage detail")
	if cost != 0 || currency != "" || service != "unknown" {
		t.Fatalf("expected the zero-value fallback, got (%v, %q, %q)", cost, currency, service)
	}
}
