package pricing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awspricing "github.com/aws/aws-sdk-go-v2/service/pricing"
	pricingtypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finopsguard/guardrail/internal/apperrors"
	"github.com/finopsguard/guardrail/internal/logging"
	"github.com/finopsguard/guardrail/internal/model"
)

// awsServiceCodes maps a resource kind to the AWS Price List service code
// that publishes it, following the filter shapes used for the on-demand
// EC2/RDS rate lookups this catalog mirrors: ServiceCode plus instanceType,
// location, operatingSystem, tenancy, preInstalledSw and capacitystatus.
var awsServiceCodes = map[string]string{
	"instance": "AmazonEC2",
	"database": "AmazonRDS",
}

// awsLiveAdapter queries the AWS Price List API (the "pricing" service,
// which is only ever reachable in us-east-1 regardless of the priced
// resource's own region).
type awsLiveAdapter struct {
	client *awspricing.Client
}

func NewAWSLiveAdapter(client *awspricing.Client) liveAdapter {
	return &awsLiveAdapter{client: client}
}

func (a *awsLiveAdapter) Quote(ctx context.Context, kind, sku, region string) (model.PriceQuote, error) {
	serviceCode, ok := awsServiceCodes[kind]
	if !ok {
		return model.PriceQuote{}, apperrors.NotSupported(fmt.Sprintf("aws pricing: unsupported kind %q", kind))
	}

	filters := []pricingtypes.Filter{
		{Type: pricingtypes.FilterTypeTermMatch, Field: aws.String("ServiceCode"), Value: aws.String(serviceCode)},
		{Type: pricingtypes.FilterTypeTermMatch, Field: aws.String("instanceType"), Value: aws.String(sku)},
		{Type: pricingtypes.FilterTypeTermMatch, Field: aws.String("location"), Value: aws.String(awsRegionName(region))},
		{Type: pricingtypes.FilterTypeTermMatch, Field: aws.String("operatingSystem"), Value: aws.String("Linux")},
		{Type: pricingtypes.FilterTypeTermMatch, Field: aws.String("tenancy"), Value: aws.String("Shared")},
		{Type: pricingtypes.FilterTypeTermMatch, Field: aws.String("preInstalledSw"), Value: aws.String("NA")},
		{Type: pricingtypes.FilterTypeTermMatch, Field: aws.String("capacitystatus"), Value: aws.String("Used")},
	}
	if kind == "database" {
		filters = append(filters, pricingtypes.Filter{
			Type: pricingtypes.FilterTypeTermMatch, Field: aws.String("deploymentOption"), Value: aws.String("Single-AZ"),
		})
	}

	out, err := a.client.GetProducts(ctx, &awspricing.GetProductsInput{
		ServiceCode: aws.String(serviceCode),
		Filters:     filters,
		MaxResults:  aws.Int32(1),
	})
	if err != nil {
		return model.PriceQuote{}, apperrors.Wrap(apperrors.TypePricing, "aws pricing: GetProducts failed", err)
	}
	if len(out.PriceList) == 0 {
		return model.PriceQuote{}, apperrors.Pricing(fmt.Sprintf("aws pricing: no price list entry for %s/%s", sku, region), nil)
	}

	rate, err := extractAWSOnDemandRate(out.PriceList[0])
	if err != nil {
		logging.Warn("aws pricing: failed to extract on-demand rate",
			zap.String("sku", sku), zap.String("region", region), zap.Error(err))
		return model.PriceQuote{}, err
	}
	return model.NewHourlyQuote(rate, model.ConfidenceHigh), nil
}

// awsPriceListEntry is the minimal shape of an AWS Price List JSON document
// needed to reach the On Demand USD hourly rate; the full document nests
// several more levels of product/sku metadata this catalog doesn't need.
type awsPriceListEntry struct {
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				PricePerUnit struct {
					USD string `json:"USD"`
				} `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

func extractAWSOnDemandRate(raw string) (decimal.Decimal, error) {
	var entry awsPriceListEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.TypePricing, "aws pricing: malformed price list entry", err)
	}
	for _, term := range entry.Terms.OnDemand {
		for _, dim := range term.PriceDimensions {
			if dim.PricePerUnit.USD == "" {
				continue
			}
			rate, err := decimal.NewFromString(dim.PricePerUnit.USD)
			if err != nil {
				return decimal.Zero, apperrors.Wrap(apperrors.TypePricing, "aws pricing: malformed USD rate", err)
			}
			return rate, nil
		}
	}
	return decimal.Zero, apperrors.Pricing("aws pricing: on-demand USD rate not found in price list entry", nil)
}

// awsRegionName maps an AWS region code to the "location" value the Price
// List API indexes on. Unmapped regions fall through as-is; GetProducts
// will simply miss and the caller falls back to the static catalog.
func awsRegionName(region string) string {
	names := map[string]string{
		"us-east-1": "US East (N. Virginia)",
		"us-east-2": "US East (Ohio)",
		"us-west-1": "US West (N. California)",
		"us-west-2": "US West (Oregon)",
		"eu-west-1": "EU (Ireland)",
		"eu-central-1": "EU (Frankfurt)",
	}
	if n, ok := names[region]; ok {
		return n
	}
	return region
}
