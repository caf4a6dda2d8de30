package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/finopsguard/guardrail/internal/apperrors"
	"github.com/finopsguard/guardrail/internal/model"
)

// azureRetailPricesURL is the public, unauthenticated Azure Retail Prices
// API. It needs no SDK or credential — a plain HTTP GET with an OData
// filter is the documented way to call it, so this adapter is one of the
// deliberate standard-library exceptions: no ecosystem client exists for
// this endpoint worth adding as a dependency.
const azureRetailPricesURL = "https://prices.azure.com/api/retail/prices"

// azureArmServiceNames maps a resource kind to the armServiceName Retail
// Prices indexes on.
var azureArmServiceNames = map[string]string{
	"instance": "Virtual Machines",
	"database": "SQL Database",
}

type azureLiveAdapter struct {
	httpClient *http.Client
}

func NewAzureLiveAdapter(httpClient *http.Client) liveAdapter {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: liveTimeout}
	}
	return &azureLiveAdapter{httpClient: httpClient}
}

type azureRetailPricesResponse struct {
	Items []struct {
		RetailPrice   float64 `json:"retailPrice"`
		UnitOfMeasure string  `json:"unitOfMeasure"`
		Type          string  `json:"type"`
	} `json:"Items"`
}

func (a *azureLiveAdapter) Quote(ctx context.Context, kind, sku, region string) (model.PriceQuote, error) {
	serviceName, ok := azureArmServiceNames[kind]
	if !ok {
		return model.PriceQuote{}, apperrors.NotSupported(fmt.Sprintf("azure pricing: unsupported kind %q", kind))
	}

	filter := fmt.Sprintf(
		"armSkuName eq '%s' and armRegionName eq '%s' and armServiceName eq '%s' and priceType eq 'Consumption'",
		sku, region, serviceName,
	)
	reqURL := azureRetailPricesURL + "?" + url.Values{"$filter": {filter}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.PriceQuote{}, apperrors.Wrap(apperrors.TypePricing, "azure pricing: building request failed", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return model.PriceQuote{}, apperrors.Wrap(apperrors.TypePricing, "azure pricing: retail prices request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.PriceQuote{}, apperrors.Pricing(fmt.Sprintf("azure pricing: retail prices returned status %d", resp.StatusCode), nil)
	}

	var parsed azureRetailPricesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return model.PriceQuote{}, apperrors.Wrap(apperrors.TypePricing, "azure pricing: malformed retail prices response", err)
	}
	if len(parsed.Items) == 0 {
		return model.PriceQuote{}, apperrors.Pricing(fmt.Sprintf("azure pricing: no retail price for %s/%s", sku, region), nil)
	}

	rate := decimal.NewFromFloat(parsed.Items[0].RetailPrice)
	return model.NewHourlyQuote(rate, model.ConfidenceHigh), nil
}
