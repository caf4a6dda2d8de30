// Package policy evaluates budget and expression policies against a parsed
// resource model and its cost estimate, producing advisory or blocking
// verdicts. It owns the policy store (mutation API + default policies) and
// the dotted-path evaluator the expression DSL runs on.
package policy

import (
	"github.com/shopspring/decimal"

	"github.com/finopsguard/guardrail/internal/model"
)

// evalContext is the tagged value tree policy rules are evaluated against.
// It is rebuilt once per Evaluate call and, for resource-scoped policies,
// augmented per-iteration with a "resource" key holding one entry of
// "resources". Field paths are looked up with fieldValue, never reflection.
type evalContext map[string]interface{}

// buildContext assembles the evaluation context:
// environment, the cost summary, the resource inventory (each entry carries
// its own monthly_cost/cost_notes when the simulator priced it), and the
// resource_type_counts/region_counts aggregates.
func buildContext(crm *model.CanonicalResourceModel, resp *model.CheckResponse, environment string) evalContext {
	costByResource := make(map[string]model.ResourceBreakdownItem, len(resp.BreakdownByResource))
	for _, b := range resp.BreakdownByResource {
		costByResource[b.ResourceID] = b
	}

	resources := make([]interface{}, 0, len(crm.Resources))
	for _, r := range crm.Resources {
		entry := map[string]interface{}{
			"id":       r.ID,
			"type":     r.Type,
			"name":     r.Name,
			"region":   r.Region,
			"size":     r.Size,
			"count":    r.Count,
			"tags":     tagsToInterface(r.Tags),
			"metadata": r.Metadata,
		}
		if b, ok := costByResource[r.ID]; ok {
			entry["monthly_cost"] = b.MonthlyCost
			entry["cost_notes"] = notesToInterface(b.Notes)
		}
		resources = append(resources, entry)
	}

	return evalContext{
		"environment":                environment,
		"estimated_monthly_cost":     resp.EstimatedMonthlyCost,
		"estimated_first_week_cost":  resp.EstimatedFirstWeekCost,
		"pricing_confidence":         string(resp.PricingConfidence),
		"risk_flags":                 stringsToInterface(resp.RiskFlags),
		"total_resources":            len(crm.Resources),
		"resources":                  resources,
		"resource_type_counts":       intMapToInterface(crm.TypeCounts()),
		"region_counts":              intMapToInterface(crm.RegionCounts()),
	}
}

// forResource returns a copy of the context with "resource" set to the
// context-shaped entry for r, used to evaluate a resource-scoped policy
// once per resource.
func (c evalContext) forResource(resource interface{}) evalContext {
	scoped := make(evalContext, len(c)+1)
	for k, v := range c {
		scoped[k] = v
	}
	scoped["resource"] = resource
	return scoped
}

func tagsToInterface(tags map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}

func notesToInterface(notes []string) []interface{} {
	out := make([]interface{}, len(notes))
	for i, n := range notes {
		out[i] = n
	}
	return out
}

func stringsToInterface(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func intMapToInterface(m map[string]int) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// fieldValue walks a dotted path ("resource.size", "environment",
// "resources.0.type") through the context tree. It descends map[string]any
// and []any (the latter via a numeric path segment), returning nil the
// instant a segment doesn't resolve — matching the "fallback false/nil on
// miss" semantics the rule evaluator relies on.
func fieldValue(ctx evalContext, path string) interface{} {
	segments := splitPath(path)
	var cur interface{} = map[string]interface{}(ctx)
	for _, seg := range segments {
		switch node := cur.(type) {
		case map[string]interface{}:
			v, ok := node[seg]
			if !ok {
				return nil
			}
			cur = v
		case []interface{}:
			idx, ok := parseIndex(seg)
			if !ok || idx < 0 || idx >= len(node) {
				return nil
			}
			cur = node[idx]
		default:
			return nil
		}
	}
	return cur
}

func splitPath(path string) []string {
	var segments []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segments = append(segments, path[start:i])
			start = i + 1
		}
	}
	segments = append(segments, path[start:])
	return segments
}

func parseIndex(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	n := 0
	for _, c := range seg {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// asDecimal normalizes the numeric types fieldValue can surface
// (decimal.Decimal, int, float64) to decimal.Decimal, used by the budget
// policy path which compares against estimated_monthly_cost directly
// rather than through the generic rule operators.
func asDecimal(v interface{}) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	default:
		return decimal.Decimal{}, false
	}
}
