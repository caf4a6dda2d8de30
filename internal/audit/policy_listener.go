package audit

import "github.com/finopsguard/guardrail/internal/policy"

// PolicyMutated implements policy.MutationListener: every policy add/
// update/delete is recorded as its own audit event.
func (l *Logger) PolicyMutated(evt policy.MutationEvent) {
	l.Log("policy."+string(evt.Action), "policy "+string(evt.Action),
		WithResource("policy", evt.Policy.ID),
		WithDetails(map[string]interface{}{
			"name":         evt.Policy.Name,
			"on_violation": string(evt.Policy.OnViolation),
		}),
	)
}
