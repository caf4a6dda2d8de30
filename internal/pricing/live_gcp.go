package pricing

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/cloudbilling/v1"

	"github.com/finopsguard/guardrail/internal/apperrors"
	"github.com/finopsguard/guardrail/internal/logging"
	"github.com/finopsguard/guardrail/internal/model"
)

// gcpServiceIDs are the public Cloud Billing Catalog service identifiers
// for the services this catalog prices. These are stable per-service IDs
// published by the Cloud Billing API, not project-specific.
var gcpServiceIDs = map[string]string{
	"instance": "services/6F81-5844-456A", // Compute Engine
	"database": "services/9662-B51E-5089", // Cloud SQL
}

// gcpLiveAdapter resolves a SKU's price by listing a service's SKUs and
// matching the requested machine/tier name against each SKU description.
// The catalog has no first-class "give me this exact SKU" lookup, so this
// mirrors the substring-match approach the API is meant to be driven by;
// per the resolved open question, the first matching, available SKU wins
// and a multiple-match is logged rather than treated as ambiguous.
type gcpLiveAdapter struct {
	service *cloudbilling.Service
}

func NewGCPLiveAdapter(service *cloudbilling.Service) liveAdapter {
	return &gcpLiveAdapter{service: service}
}

func (g *gcpLiveAdapter) Quote(ctx context.Context, kind, sku, region string) (model.PriceQuote, error) {
	serviceID, ok := gcpServiceIDs[kind]
	if !ok {
		return model.PriceQuote{}, apperrors.NotSupported(fmt.Sprintf("gcp pricing: unsupported kind %q", kind))
	}

	call := g.service.Services.Skus.List(serviceID).CurrencyCode("USD").Context(ctx)

	var matches []*cloudbilling.Sku
	err := call.Pages(ctx, func(resp *cloudbilling.ListSkusResponse) error {
		for _, s := range resp.Skus {
			if skuMatchesRegion(s, region) && skuDescriptionMatches(s.Description, sku) {
				matches = append(matches, s)
			}
		}
		return nil
	})
	if err != nil {
		return model.PriceQuote{}, apperrors.Wrap(apperrors.TypePricing, "gcp pricing: ListSkus failed", err)
	}
	if len(matches) == 0 {
		return model.PriceQuote{}, apperrors.Pricing(fmt.Sprintf("gcp pricing: no sku match for %s/%s", sku, region), nil)
	}
	if len(matches) > 1 {
		logging.Warn("gcp pricing: multiple sku matches, using the first",
			zap.String("sku", sku), zap.String("region", region), zap.Int("matches", len(matches)))
	}

	rate, err := extractGCPHourlyRate(matches[0])
	if err != nil {
		return model.PriceQuote{}, err
	}
	return model.NewHourlyQuote(rate, model.ConfidenceHigh), nil
}

func skuMatchesRegion(s *cloudbilling.Sku, region string) bool {
	if len(s.ServiceRegions) == 0 {
		return true
	}
	for _, r := range s.ServiceRegions {
		if r == region {
			return true
		}
	}
	return false
}

func skuDescriptionMatches(description, sku string) bool {
	return strings.Contains(strings.ToLower(description), strings.ToLower(sku))
}

func extractGCPHourlyRate(s *cloudbilling.Sku) (decimalRate, error) {
	if s.PricingInfo == nil || len(s.PricingInfo) == 0 {
		return zeroRate(), apperrors.Pricing("gcp pricing: sku has no pricing info", nil)
	}
	expr := s.PricingInfo[0].PricingExpression
	if expr == nil || len(expr.TieredRates) == 0 {
		return zeroRate(), apperrors.Pricing("gcp pricing: sku has no tiered rates", nil)
	}
	unit := expr.TieredRates[len(expr.TieredRates)-1].UnitPrice
	if unit == nil {
		return zeroRate(), apperrors.Pricing("gcp pricing: sku tiered rate has no unit price", nil)
	}
	return ratefromUnits(unit.Units, unit.Nanos), nil
}
