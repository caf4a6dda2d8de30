package pricing

import (
	"context"
	"testing"

	"github.com/finopsguard/guardrail/internal/apperrors"
	"github.com/finopsguard/guardrail/internal/model"
)

// stubAdapter is a liveAdapter test double: Quote returns a fixed quote
// when sku matches, else an error, mirroring a real adapter's miss path.
type stubAdapter struct {
	sku   string
	quote model.PriceQuote
}

func (s *stubAdapter) Quote(_ context.Context, _, sku, _ string) (model.PriceQuote, error) {
	if sku != s.sku {
		return model.PriceQuote{}, apperrors.Pricing("stub: no match", nil)
	}
	return s.quote, nil
}

func TestQuoteUsesStaticTableWhenLiveDisabled(t *testing.T) {
	c := NewCatalog(Options{FallbackToStatic: true})
	q := c.Quote(CategoryInstance, CloudAWS, "t3.medium", "us-east-1")
	if q.Confidence != model.ConfidenceHigh {
		t.Errorf("confidence = %q, want high (static hit)", q.Confidence)
	}
	if !q.HourlyPrice.Equal(*awsEC2["us-east-1:t3.medium"].hourly) {
		t.Errorf("hourly price = %s, want the static t3.medium rate", q.HourlyPrice)
	}
}

func TestQuoteFallsBackToGenericWhenNoStaticEntry(t *testing.T) {
	c := NewCatalog(Options{FallbackToStatic: true})
	q := c.Quote(CategoryInstance, CloudAWS, "z9.giant", "antarctica-1")
	if q.Confidence != model.ConfidenceLow {
		t.Errorf("confidence = %q, want low (generic fallback)", q.Confidence)
	}
	if !q.HourlyPrice.Equal(model.FallbackHourlyRate) {
		t.Errorf("hourly price = %s, want the generic fallback rate", q.HourlyPrice)
	}
}

func TestQuoteWithFallbackDisabledStillReturnsGeneric(t *testing.T) {
	c := NewCatalog(Options{FallbackToStatic: false})
	q := c.Quote(CategoryInstance, CloudAWS, "t3.medium", "us-east-1")
	if q.Confidence != model.ConfidenceLow {
		t.Errorf("confidence = %q, want low (static catalog disabled)", q.Confidence)
	}
}

func TestQuoteCachesResult(t *testing.T) {
	c := NewCatalog(Options{FallbackToStatic: true})
	first := c.Quote(CategoryInstance, CloudAWS, "t3.medium", "us-east-1")
	key := cacheKey{kind: string(CategoryInstance), cloud: string(CloudAWS), sku: "t3.medium", region: "us-east-1"}
	cached, ok := c.cache.get(key)
	if !ok {
		t.Fatal("expected the first quote to be cached")
	}
	if !cached.HourlyPrice.Equal(first.HourlyPrice) {
		t.Errorf("cached price = %s, want %s", cached.HourlyPrice, first.HourlyPrice)
	}
}

func TestQuoteKubernetesControlPlaneIsMonthlyFlat(t *testing.T) {
	c := NewCatalog(Options{FallbackToStatic: true})
	q := c.Quote(CategoryKubernetes, CloudAWS, "", "us-east-1")
	if q.HourlyPrice.Sign() != 0 {
		t.Errorf("hourly price = %s, want 0 for a flat-rate control plane", q.HourlyPrice)
	}
	if q.MonthlyPrice.IsZero() {
		t.Error("expected a nonzero EKS control plane monthly rate")
	}
}

func TestQuoteGCPAndAzureStaticHit(t *testing.T) {
	c := NewCatalog(Options{FallbackToStatic: true})

	gcp := c.Quote(CategoryInstance, CloudGCP, "e2-standard-4", "us-central1")
	if gcp.Confidence != model.ConfidenceHigh {
		t.Errorf("gcp confidence = %q, want high", gcp.Confidence)
	}

	az := c.Quote(CategoryInstance, CloudAzure, "Standard_D2s_v3", "eastus")
	if az.Confidence != model.ConfidenceHigh {
		t.Errorf("azure confidence = %q, want high", az.Confidence)
	}
}

func TestQuotePrefersLiveAdapterOverStatic(t *testing.T) {
	live := &stubAdapter{sku: "t3.medium", quote: model.NewHourlyQuote(model.FallbackHourlyRate.Mul(model.FallbackHourlyRate), model.ConfidenceHigh)}
	c := NewCatalog(Options{
		LiveEnabled:      true,
		AWSLiveEnabled:   true,
		AWSAdapter:       live,
		FallbackToStatic: true,
	})
	q := c.Quote(CategoryInstance, CloudAWS, "t3.medium", "us-east-1")
	if q.Confidence != model.ConfidenceHigh {
		t.Errorf("confidence = %q, want high (live hit)", q.Confidence)
	}
	if !q.HourlyPrice.Equal(model.FallbackHourlyRate.Mul(model.FallbackHourlyRate)) {
		t.Errorf("hourly price = %s, want the live adapter's rate", q.HourlyPrice)
	}
}

func TestQuoteFallsBackToStaticOnLiveMiss(t *testing.T) {
	live := &stubAdapter{sku: "does-not-exist"}
	c := NewCatalog(Options{
		LiveEnabled:      true,
		AWSLiveEnabled:   true,
		AWSAdapter:       live,
		FallbackToStatic: true,
	})
	q := c.Quote(CategoryInstance, CloudAWS, "t3.medium", "us-east-1")
	if q.Confidence != model.ConfidenceHigh {
		t.Errorf("confidence = %q, want high (static fallback after live miss)", q.Confidence)
	}
}

func TestQuoteLiveNotWiredForCategorySkipsStraightToStatic(t *testing.T) {
	live := &stubAdapter{sku: "anything"}
	c := NewCatalog(Options{
		LiveEnabled:      true,
		AWSLiveEnabled:   true,
		AWSAdapter:       live,
		FallbackToStatic: true,
	})
	// Storage has no live adapter wired; this must go straight to static
	// without ever calling the (mismatched) live adapter.
	q := c.Quote(CategoryStorage, CloudAWS, "standard", "us-east-1")
	if q.Confidence != model.ConfidenceHigh {
		t.Errorf("confidence = %q, want high (static, live unsupported for storage)", q.Confidence)
	}
}
