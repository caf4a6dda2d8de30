package usage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/finopsguard/guardrail/internal/apperrors"
	"github.com/finopsguard/guardrail/internal/model"
)

// GCPAdapter reads month-to-date spend from a project's billing export
// dataset in BigQuery. client is nil when no service account credentials
// were configured at startup.
type GCPAdapter struct {
	client  *bigquery.Client
	dataset string // "project.dataset.table" billing export reference
}

// NewGCPAdapter returns a GCPAdapter. Pass a nil client to build a
// permanently-unavailable adapter. dataset is the fully qualified billing
// export table, e.g. "myproject.billing.gcp_billing_export_v1_XXXXXX".
func NewGCPAdapter(client *bigquery.Client, dataset string) *GCPAdapter {
	return &GCPAdapter{client: client, dataset: dataset}
}

// MonthToDateSpend sums the billing export's cost column for scope (a GCP
// project ID) from the first of the current month through now.
func (a *GCPAdapter) MonthToDateSpend(ctx context.Context, scope string) (model.UsageSummary, error) {
	if a.client == nil {
		return unavailable(model.ProviderGCP, "no GCP billing export credentials configured"), nil
	}
	if a.dataset == "" {
		return unavailable(model.ProviderGCP, "no billing export dataset configured"), nil
	}

	now := time.Now().UTC()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	query := a.client.Query(fmt.Sprintf(`
		SELECT service.description AS service, SUM(cost) AS total_cost, currency
		FROM `+"`%s`"+`
		WHERE project.id = @projectId
		AND DATE(usage_start_time) >= @startDate
		AND DATE(usage_start_time) <= @endDate
		GROUP BY service, currency
		ORDER BY total_cost DESC
	`, a.dataset))
	query.Parameters = []bigquery.QueryParameter{
		{Name: "projectId", Value: scope},
		{Name: "startDate", Value: startOfMonth.Format("2006-01-02")},
		{Name: "endDate", Value: now.Format("2006-01-02")},
	}

	it, err := query.Read(ctx)
	if err != nil {
		return model.UsageSummary{}, apperrors.Wrap(apperrors.TypeNetwork, "gcp usage: bigquery query failed", err)
	}

	var records []model.CostUsageRecord
	var total float64
	currency := "USD"
	for {
		var row struct {
			Service   string  `bigquery:"service"`
			TotalCost float64 `bigquery:"total_cost"`
			Currency  string  `bigquery:"currency"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return model.UsageSummary{}, apperrors.Wrap(apperrors.TypeNetwork, "gcp usage: reading bigquery results", err)
		}
		if row.Currency != "" {
			currency = row.Currency
		}
		records = append(records, model.CostUsageRecord{
			Provider:    model.ProviderGCP,
			Service:     row.Service,
			Cost:        row.TotalCost,
			Currency:    row.Currency,
			PeriodStart: startOfMonth,
			PeriodEnd:   now,
		})
		total += row.TotalCost
	}
	if records == nil {
		records = []model.CostUsageRecord{}
	}

	return model.UsageSummary{
		Provider:     model.ProviderGCP,
		Availability: model.UsageAvailable,
		Records:      records,
		TotalCost:    total,
		Currency:     currency,
		RetrievedAt:  time.Now().UTC(),
	}, nil
}
