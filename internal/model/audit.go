package model

import "time"

// AuditSeverity classifies an AuditEvent for filtering and compliance
// aggregation.
type AuditSeverity string

const (
	SeverityInfo    AuditSeverity = "info"
	SeverityWarning AuditSeverity = "warning"
	SeverityError   AuditSeverity = "error"
)

// AuditActor identifies who (or what) performed the audited action. All
// fields are optional since many internal actions have no authenticated
// caller.
type AuditActor struct {
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	IP       string `json:"ip,omitempty"`
	UA       string `json:"ua,omitempty"`
}

// AuditHTTPInfo captures the HTTP envelope of an auto-captured request
// event. Nil for events raised outside of request handling.
type AuditHTTPInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Status int    `json:"status"`
}

// AuditEvent is one append-only record of a core action.
type AuditEvent struct {
	EventID       string                 `json:"event_id"`
	EventType     string                 `json:"event_type"`
	Severity      AuditSeverity          `json:"severity"`
	Timestamp     time.Time              `json:"timestamp"`
	Actor         AuditActor             `json:"actor"`
	RequestID     string                 `json:"request_id,omitempty"`
	Action        string                 `json:"action"`
	ResourceType  string                 `json:"resource_type,omitempty"`
	ResourceID    string                 `json:"resource_id,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
	Success       bool                   `json:"success"`
	Error         string                 `json:"error,omitempty"`
	HTTP          *AuditHTTPInfo         `json:"http,omitempty"`
	ComplianceTags []string              `json:"compliance_tags,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// AuditFilter narrows an audit query.
type AuditFilter struct {
	Start         *time.Time
	End           *time.Time
	EventTypes    []string
	Severities    []AuditSeverity
	Usernames     []string
	ResourceTypes []string
	Success       *bool
	Search        string
	Limit         int
	Offset        int
	SortBy        string // "timestamp" | "severity"
	SortDesc      bool
}

// AuditPage is one page of audit events.
type AuditPage struct {
	Events     []AuditEvent `json:"events"`
	Total      int          `json:"total"`
	HasMore    bool         `json:"has_more"`
	NextOffset int          `json:"next_offset"`
}

// ComplianceReport aggregates audit history over a window for compliance
// reviews. It is a supplement to the distilled audit contract, grounded in
// the reference implementation's compliance reporting behavior.
type ComplianceReport struct {
	Start                      time.Time      `json:"start"`
	End                        time.Time      `json:"end"`
	TotalEvents                int            `json:"total_events"`
	EventsByType               map[string]int `json:"events_by_type"`
	EventsBySeverity           map[string]int `json:"events_by_severity"`
	EventsByUser               map[string]int `json:"events_by_user"`
	APIRequests                int            `json:"api_requests"`
	PolicyEvaluations          int            `json:"policy_evaluations"`
	PolicyViolations           int            `json:"policy_violations"`
	AuthAttempts               int            `json:"auth_attempts"`
	AuthFailures               int            `json:"auth_failures"`
	SecurityViolations         int            `json:"security_violations"`
	PolicyComplianceRate       float64        `json:"policy_compliance_rate"`
	AuthenticationSuccessRate  float64        `json:"authentication_success_rate"`
	ComplianceStatus           string         `json:"compliance_status"`
}

const (
	ComplianceStatusCompliant    = "compliant"
	ComplianceStatusReview       = "review"
	ComplianceStatusNonCompliant = "non-compliant"
)
