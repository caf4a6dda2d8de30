package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/consumption/armconsumption"

	"github.com/finopsguard/guardrail/internal/apperrors"
	"github.com/finopsguard/guardrail/internal/model"
)

// AzureAdapter reads month-to-date spend from Azure Consumption's usage
// details API. client is nil when no Azure credentials were configured at
// startup.
type AzureAdapter struct {
	client *armconsumption.UsageDetailsClient
}

// NewAzureAdapter returns an AzureAdapter. Pass a nil client to build a
// permanently-unavailable adapter.
func NewAzureAdapter(client *armconsumption.UsageDetailsClient) *AzureAdapter {
	return &AzureAdapter{client: client}
}

// MonthToDateSpend sums usage detail costs for scope (an Azure
// subscription ID, without the "/subscriptions/" prefix) from the first of
// the current month through now.
func (a *AzureAdapter) MonthToDateSpend(ctx context.Context, scope string) (model.UsageSummary, error) {
	if a.client == nil {
		return unavailable(model.ProviderAzure, "no Azure credentials configured"), nil
	}

	now := time.Now().UTC()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	filter := fmt.Sprintf("properties/usageStart ge '%s' and properties/usageEnd le '%s'",
		startOfMonth.Format("2006-01-02"), now.Format("2006-01-02"))

	resourceScope := "/subscriptions/" + scope
	pager := a.client.NewListPager(resourceScope, &armconsumption.UsageDetailsClientListOptions{Filter: &filter})

	var records []model.CostUsageRecord
	var total float64
	currency := "USD"
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return model.UsageSummary{}, apperrors.Wrap(apperrors.TypeNetwork, "azure usage: listing usage details failed", err)
		}
		for _, item := range page.Value {
			cost, curr, service := azureUsageLineCost(item)
			if curr != "" {
				currency = curr
			}
			total += cost
			records = append(records, model.CostUsageRecord{
				Provider:    model.ProviderAzure,
				Service:     service,
				Cost:        cost,
				Currency:    currency,
				PeriodStart: startOfMonth,
				PeriodEnd:   now,
			})
		}
	}
	if records == nil {
		records = []model.CostUsageRecord{}
	}

	return model.UsageSummary{
		Provider:     model.ProviderAzure,
		Availability: model.UsageAvailable,
		Records:      records,
		TotalCost:    total,
		Currency:     currency,
		RetrievedAt:  time.Now().UTC(),
	}, nil
}

// azureUsageLineCost normalizes the two usage-detail shapes Azure's API can
// return (legacy and modern) into a single (cost, currency, service)
// triple. item is whatever armconsumption's pager yields per page entry.
func azureUsageLineCost(item interface{}) (float64, string, string) {
	if legacy, ok := item.(*armconsumption.LegacyUsageDetail); ok && legacy.Properties != nil {
		var cost float64
		var currency, service string
		if legacy.Properties.Cost != nil {
			cost = *legacy.Properties.Cost
		}
		if legacy.Properties.Currency != nil {
			currency = *legacy.Properties.Currency
		}
		if legacy.Properties.ConsumedService != nil {
			service = *legacy.Properties.ConsumedService
		}
		return cost, currency, service
	}
	if modern, ok := item.(*armconsumption.ModernUsageDetail); ok && modern.Properties != nil {
		var cost float64
		var currency, service string
		if modern.Properties.CostInBillingCurrency != nil {
			cost = *modern.Properties.CostInBillingCurrency
		}
		if modern.Properties.BillingCurrencyCode != nil {
			currency = *modern.Properties.BillingCurrencyCode
		}
		if modern.Properties.ConsumedService != nil {
			service = *modern.Properties.ConsumedService
		}
		return cost, currency, service
	}
	return 0, "", "unknown"
}
