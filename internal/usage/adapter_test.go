package usage

import (
	"testing"

	"github.com/finopsguard/guardrail/internal/model"
)

func TestUnavailableShape(t *testing.T) {
	s := unavailable(model.ProviderAzure, "no credentials configured")
	if s.Availability != model.UsageUnavailable {
		t.Fatalf("expected UsageUnavailable, got %q", s.Availability)
	}
	if s.Provider != model.ProviderAzure {
		t.Fatalf("expected provider azure, got %q", s.Provider)
	}
	if s.UnavailableReason != "no credentials configured" {
		t.Fatalf("unexpected reason: %q", s.UnavailableReason)
	}
	if s.Records == nil || len(s.Records) != 0 {
		t.Fatalf("expected an empty, non-nil Records slice, got %+v", s.Records)
	}
}
