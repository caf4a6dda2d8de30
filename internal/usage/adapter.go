// Package usage provides a read-only, advisory window into actual cloud
// spend and resource utilization, sourced from each cloud's billing and
// monitoring APIs. It is never consulted by the cost simulator — its
// output supports dashboards and analytics queries only. Each cloud's
// adapter is lazily constructed and must degrade to "unavailable" rather
// than error when its SDK client or credentials are missing.
package usage

import (
	"context"

	"github.com/finopsguard/guardrail/internal/model"
)

// Adapter is the per-cloud read-only usage/billing query surface.
type Adapter interface {
	// MonthToDateSpend returns the current calendar month's actual spend
	// for scope (an AWS account, a GCP project, or an Azure subscription
	// ID depending on the implementation). It never returns an error for
	// "no credentials configured" — that degrades to
	// model.UsageUnavailable instead.
	MonthToDateSpend(ctx context.Context, scope string) (model.UsageSummary, error)
}

// unavailable builds the UsageSummary shape every adapter returns when its
// SDK client is nil or a call fails for a credentials/configuration reason
// rather than a transient one.
func unavailable(provider model.CloudProvider, reason string) model.UsageSummary {
	return model.UsageSummary{
		Provider:          provider,
		Availability:      model.UsageUnavailable,
		UnavailableReason: reason,
		Records:           []model.CostUsageRecord{},
	}
}
