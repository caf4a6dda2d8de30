package model

import "time"

// CloudProvider identifies which cloud a usage record or adapter call
// belongs to.
type CloudProvider string

const (
	ProviderAWS   CloudProvider = "aws"
	ProviderGCP   CloudProvider = "gcp"
	ProviderAzure CloudProvider = "azure"
)

// UsageAvailability reports whether a cloud's usage adapter could reach its
// billing/monitoring API for this call.
type UsageAvailability string

const (
	UsageAvailable   UsageAvailability = "available"
	UsageUnavailable UsageAvailability = "unavailable"
)

// ResourceUsage is a point-in-time utilization reading for one resource,
// sourced from a cloud's monitoring API (e.g. CloudWatch, Azure Monitor,
// Cloud Monitoring).
type ResourceUsage struct {
	ResourceID    string            `json:"resource_id"`
	ResourceType  string            `json:"resource_type"`
	Metric        string            `json:"metric"`
	Value         float64           `json:"value"`
	Unit          string            `json:"unit"`
	Timestamp     time.Time         `json:"timestamp"`
	Dimensions    map[string]string `json:"dimensions,omitempty"`
}

// CostUsageRecord is one line of actual historical spend from a cloud's
// billing API, as opposed to the simulator's forward-looking estimate.
type CostUsageRecord struct {
	Provider    CloudProvider `json:"provider"`
	Service     string        `json:"service"`
	Region      string        `json:"region,omitempty"`
	Cost        float64       `json:"cost"`
	Currency    string        `json:"currency"`
	PeriodStart time.Time     `json:"period_start"`
	PeriodEnd   time.Time     `json:"period_end"`
}

// UsageSummary is the aggregated result a usage adapter returns for one
// query: the actual spend records it could retrieve, whether the adapter
// was able to reach the cloud at all, and why not when it couldn't.
type UsageSummary struct {
	Provider      CloudProvider     `json:"provider"`
	Availability  UsageAvailability `json:"availability"`
	UnavailableReason string        `json:"unavailable_reason,omitempty"`
	Records       []CostUsageRecord `json:"records"`
	TotalCost     float64           `json:"total_cost"`
	Currency      string            `json:"currency"`
	RetrievedAt   time.Time         `json:"retrieved_at"`
}
