package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/finopsguard/guardrail/internal/apperrors"
	"github.com/finopsguard/guardrail/internal/model"
)

// AWSAdapter reads month-to-date blended cost from AWS Cost Explorer.
// client is nil when no AWS credentials were configured at startup, in
// which case every call degrades to unavailable rather than erroring.
type AWSAdapter struct {
	client *costexplorer.Client
}

// NewAWSAdapter returns an AWSAdapter. Pass a nil client to build a
// permanently-unavailable adapter (no AWS credentials configured).
func NewAWSAdapter(client *costexplorer.Client) *AWSAdapter {
	return &AWSAdapter{client: client}
}

// MonthToDateSpend queries Cost Explorer's GetCostAndUsage for the blended
// cost from the first of the current month through today. scope is
// unused — Cost Explorer queries are account-scoped by the caller's
// credentials, not parameterized per call.
func (a *AWSAdapter) MonthToDateSpend(ctx context.Context, scope string) (model.UsageSummary, error) {
	if a.client == nil {
		return unavailable(model.ProviderAWS, "no AWS credentials configured"), nil
	}

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	// Cost Explorer's End is exclusive and must be strictly after Start;
	// "today" (not "tomorrow") satisfies that for any day past the 1st.
	end := now
	if now.Day() == 1 {
		end = start.AddDate(0, 0, 1)
	}

	out, err := a.client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{"BlendedCost"},
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
		},
	})
	if err != nil {
		return model.UsageSummary{}, apperrors.Wrap(apperrors.TypeNetwork, "aws cost explorer: GetCostAndUsage failed", err)
	}

	records := make([]model.CostUsageRecord, 0)
	var total float64
	currency := "USD"
	for _, byTime := range out.ResultsByTime {
		periodStart, _ := time.Parse("2006-01-02", aws.ToString(byTime.TimePeriod.Start))
		periodEnd, _ := time.Parse("2006-01-02", aws.ToString(byTime.TimePeriod.End))
		for _, group := range byTime.Groups {
			metric, ok := group.Metrics["BlendedCost"]
			if !ok {
				continue
			}
			amount := parseAmount(aws.ToString(metric.Amount))
			if aws.ToString(metric.Unit) != "" {
				currency = aws.ToString(metric.Unit)
			}
			service := "unknown"
			if len(group.Keys) > 0 {
				service = group.Keys[0]
			}
			records = append(records, model.CostUsageRecord{
				Provider:    model.ProviderAWS,
				Service:     service,
				Cost:        amount,
				Currency:    currency,
				PeriodStart: periodStart,
				PeriodEnd:   periodEnd,
			})
			total += amount
		}
	}

	return model.UsageSummary{
		Provider:     model.ProviderAWS,
		Availability: model.UsageAvailable,
		Records:      records,
		TotalCost:    total,
		Currency:     currency,
		RetrievedAt:  time.Now().UTC(),
	}, nil
}

func parseAmount(s string) float64 {
	var f float64
	fmt.Sscanf(s, "%f", &f)
	return f
}
