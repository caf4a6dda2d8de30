package usage

import (
	"context"
	"testing"

	"github.com/finopsguard/guardrail/internal/model"
)

func TestAWSAdapterNilClientIsUnavailable(t *testing.T) {
	a := NewAWSAdapter(nil)
	s, err := a.MonthToDateSpend(context.Background(), "123456789012")
	if err != nil {
		t.Fatalf("expected no error for a nil client, got %v", err)
	}
	if s.Availability != model.UsageUnavailable {
		t.Fatalf("expected UsageUnavailable, got %q", s.Availability)
	}
	if s.Provider != model.ProviderAWS {
		t.Fatalf("expected provider aws, got %q", s.Provider)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"123.45", 123.45},
		{"0", 0},
		{"", 0},
		{"not-a-number", 0},
	}
	for _, c := range cases {
		if got := parseAmount(c.in); got != c.want {
			t.Errorf("parseAmount(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
