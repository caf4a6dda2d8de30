package webhook

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finopsguard/guardrail/internal/logging"
	"github.com/finopsguard/guardrail/internal/model"
	"github.com/finopsguard/guardrail/internal/policy"
)

// highCostResourceThreshold is the per-resource monthly cost above which a
// high_cost_resource event fires.
var highCostResourceThreshold = decimal.NewFromInt(1000)

// costSpikePercentThreshold is the percentage increase over a prior
// analysis above which a cost_spike event fires.
const costSpikePercentThreshold = 50.0

// AnalysisCompleted emits every event the analysis orchestrator's result
// can trigger: analysis_completed always, budget_exceeded when a budget
// limit is supplied and breached, cost_spike when a prior analysis's cost
// is available and the increase exceeds the threshold, high_cost_resource
// per breakdown item over the threshold, and policy_violation once per
// non-empty blocking/advisory violation list.
func (d *Dispatcher) AnalysisCompleted(resp *model.CheckResponse, eval *model.PolicyEvaluationResult, budgetLimit *decimal.Decimal, previousMonthlyCost *decimal.Decimal, environment string) {
	base := map[string]interface{}{
		"estimated_monthly_cost": resp.EstimatedMonthlyCost.String(),
		"pricing_confidence":     string(resp.PricingConfidence),
		"environment":            environment,
	}
	d.Emit(model.EventAnalysisCompleted, base, nil)

	if budgetLimit != nil && resp.EstimatedMonthlyCost.GreaterThan(*budgetLimit) {
		d.Emit(model.EventBudgetExceeded, map[string]interface{}{
			"estimated_monthly_cost": resp.EstimatedMonthlyCost.String(),
			"budget_limit":           budgetLimit.String(),
			"overage":                resp.EstimatedMonthlyCost.Sub(*budgetLimit).String(),
		}, nil)
	}

	if previousMonthlyCost != nil && previousMonthlyCost.IsPositive() {
		increasePercent := resp.EstimatedMonthlyCost.Sub(*previousMonthlyCost).
			Div(*previousMonthlyCost).Mul(decimal.NewFromInt(100))
		if increasePercent.GreaterThan(decimal.NewFromFloat(costSpikePercentThreshold)) {
			d.Emit(model.EventCostSpike, map[string]interface{}{
				"current_monthly_cost":  resp.EstimatedMonthlyCost.String(),
				"previous_monthly_cost": previousMonthlyCost.String(),
				"increase_percent":      increasePercent.String(),
			}, nil)
		}
	}

	for _, item := range resp.BreakdownByResource {
		if item.MonthlyCost.GreaterThan(highCostResourceThreshold) {
			d.Emit(model.EventHighCostResource, map[string]interface{}{
				"resource_id":  item.ResourceID,
				"monthly_cost": item.MonthlyCost.String(),
			}, nil)
		}
	}

	if eval != nil {
		if len(eval.BlockingViolations) > 0 {
			d.Emit(model.EventPolicyViolation, map[string]interface{}{
				"violation_type": "blocking",
				"count":          len(eval.BlockingViolations),
				"violations":     eval.BlockingViolations,
			}, nil)
		}
		if len(eval.AdvisoryViolations) > 0 {
			d.Emit(model.EventPolicyViolation, map[string]interface{}{
				"violation_type": "advisory",
				"count":          len(eval.AdvisoryViolations),
				"violations":     eval.AdvisoryViolations,
			}, nil)
		}
	}
}

// PolicyMutated implements policy.MutationListener, emitting
// policy_{created,updated,deleted} per mutation.
func (d *Dispatcher) PolicyMutated(evt policy.MutationEvent) {
	var eventType model.WebhookEventType
	switch evt.Action {
	case policy.ActionCreated:
		eventType = model.EventPolicyCreated
	case policy.ActionUpdated:
		eventType = model.EventPolicyUpdated
	case policy.ActionDeleted:
		eventType = model.EventPolicyDeleted
	default:
		return
	}
	d.Emit(eventType, map[string]interface{}{
		"policy_id":   evt.Policy.ID,
		"policy_name": evt.Policy.Name,
	}, nil)
}

// CostAnomaly emits the reserved cost_anomaly event for an externally
// supplied anomaly description.
func (d *Dispatcher) CostAnomaly(description string, details map[string]interface{}) {
	data := map[string]interface{}{"description": description}
	for k, v := range details {
		data[k] = v
	}
	d.Emit(model.EventCostAnomaly, data, nil)
}

// testEventType is used only by TestDelivery; it is not part of the
// subscribable event surface a webhook registers against.
const testEventType model.WebhookEventType = "webhook_test"

// TestDelivery sends a single synchronous synthetic delivery to w,
// bypassing its event subscriptions, for the POST /webhooks/{id}/test
// endpoint. The attempt is persisted like any other delivery.
func (d *Dispatcher) TestDelivery(w model.Webhook) model.WebhookDelivery {
	event := model.WebhookEvent{
		ID:        uuid.NewString(),
		Type:      testEventType,
		Timestamp: time.Now().UTC(),
		Data:      map[string]interface{}{"message": "this is a test delivery"},
	}
	body, err := json.Marshal(event)
	if err != nil {
		logging.Error("webhook: marshal test event", zap.Error(err))
		body = []byte(`{}`)
	}
	delivery := model.WebhookDelivery{
		ID:            uuid.NewString(),
		WebhookID:     w.ID,
		EventID:       event.ID,
		EventType:     testEventType,
		Payload:       body,
		Status:        model.DeliveryPending,
		MaxAttempts:   maxAttempts(w),
		CreatedAt:     time.Now().UTC(),
	}
	// Dispatch takes delivery by value and mutates its own copy, so a
	// caller that needs the outcome (this one does, to report it back to
	// the API client) has to replicate its attempt/save sequence rather
	// than go through Dispatch itself.
	delivery.AttemptNumber++
	d.attempt(w, &delivery)
	if err := d.store.SaveDelivery(delivery); err != nil {
		logging.Error("webhook: save test delivery", zap.String("delivery_id", delivery.ID), zap.Error(err))
	}
	if d.metrics != nil {
		d.metrics.WebhookDeliveries.WithLabelValues(string(delivery.Status)).Inc()
	}
	return delivery
}
