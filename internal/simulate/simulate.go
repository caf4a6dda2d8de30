// Package simulate turns a parsed canonical resource model into a cost
// estimate: per-resource monthly cost lines, a total, a first-week
// projection, and the minimum pricing confidence across every quote
// consulted It never evaluates policy and never
// dispatches webhooks — those are the orchestrator's job once this
// pre-policy CheckResponse comes back.
package simulate

import (
	"github.com/shopspring/decimal"

	"github.com/finopsguard/guardrail/internal/model"
	"github.com/finopsguard/guardrail/internal/pricing"
)

// firstWeekDivisor converts a monthly cost into a first-week projection
// (730 hours / 168 hours-per-week ≈ 4.345 weeks/month)
var firstWeekDivisor = decimal.NewFromFloat(4.345)

// Simulate prices every resource with Count > 0 and returns a CheckResponse
// with only the cost fields populated; RiskFlags, Recommendations, and
// PolicyEval are left at their empty/nil zero values for the policy engine
// to fill in.
func Simulate(crm *model.CanonicalResourceModel, catalog *pricing.Catalog) *model.CheckResponse {
	resp := model.NewEmptyCheckResponse()

	priced := crm.Priced()
	if len(priced) == 0 {
		return resp
	}

	total := decimal.Zero
	confidence := model.ConfidenceHigh
	consultedAny := false

	for _, r := range priced {
		line, lineConfidence, consulted := priceResource(r, catalog)
		resp.BreakdownByResource = append(resp.BreakdownByResource, line)
		total = total.Add(line.MonthlyCost)
		if consulted {
			consultedAny = true
			confidence = model.MinConfidence(confidence, lineConfidence)
		}
	}

	resp.EstimatedMonthlyCost = total.Round(2)
	resp.EstimatedFirstWeekCost = resp.EstimatedMonthlyCost.Div(firstWeekDivisor).Round(2)
	if consultedAny {
		resp.PricingConfidence = confidence
	}
	return resp
}

// priceResource dispatches one resource to its billing shape. The returned
// bool reports whether a pricing quote was consulted (DynamoDB PPR and the
// serverless/Cloud Run formulas are computed from fixed assumptions, not a
// catalog quote, so they don't participate in the confidence reduction).
func priceResource(r model.CanonicalResource, catalog *pricing.Catalog) (model.ResourceBreakdownItem, model.Confidence, bool) {
	spec, ok := registry[r.Type]
	if !ok {
		return genericFallbackLine(r), model.ConfidenceLow, true
	}

	switch spec.special {
	case "dynamodb":
		line := dynamoDBLine(r)
		if line.Notes != nil {
			return line, model.ConfidenceHigh, false
		}
		return line, model.ConfidenceHigh, true
	case "serverless":
		return serverlessLine(r), model.ConfidenceLow, false
	case "cloudrun":
		return cloudRunLine(r), model.ConfidenceLow, false
	case "storage":
		line, conf := storageLine(r, catalog, spec.cloud)
		return line, conf, true
	case "ecs_service":
		return ecsServiceLine(r), model.ConfidenceLow, false
	case "fargate_task":
		return fargateTaskLine(r), model.ConfidenceLow, false
	case "kinesis":
		return kinesisStreamLine(r), model.ConfidenceLow, false
	case "azure_container_instances":
		return azureContainerInstancesLine(r), model.ConfidenceLow, false
	case "azure_app_gateway":
		line, conf := azureGatewayUnitLine(r, catalog, "capacity")
		return line, conf, true
	case "azure_eventhub":
		line, conf := azureGatewayUnitLine(r, catalog, "capacity")
		return line, conf, true
	}

	quote := catalog.Quote(spec.category, spec.cloud, r.Size, r.Region)
	count := decimal.NewFromInt(int64(r.Count))

	var monthly decimal.Decimal
	if spec.flat {
		monthly = quote.MonthlyPrice.Mul(count)
	} else {
		monthly = quote.HourlyPrice.Mul(decimal.NewFromInt(model.HoursPerMonth)).Mul(count)
	}

	return model.ResourceBreakdownItem{
		ResourceID:  r.ID,
		MonthlyCost: monthly,
	}, quote.Confidence, true
}

// genericFallbackLine prices an unregistered resource type as a single
// generic low-confidence instance. The parser layer should never hand the
// simulator a type the registry doesn't know, so this path is a safety
// net, not a designed feature.
func genericFallbackLine(r model.CanonicalResource) model.ResourceBreakdownItem {
	quote := model.GenericFallbackQuote()
	monthly := quote.HourlyPrice.Mul(decimal.NewFromInt(model.HoursPerMonth)).Mul(decimal.NewFromInt(int64(r.Count)))
	return model.ResourceBreakdownItem{
		ResourceID:  r.ID,
		MonthlyCost: monthly,
		Notes:       []string{"unrecognized resource type, generic fallback rate applied"},
	}
}
