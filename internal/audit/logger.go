// Package audit captures the append-only trail of security-relevant
// actions: policy mutations, webhook outcomes, and every inbound HTTP
// request. Writes to each configured sink (file, console, database) are
// independent and best-effort — a sink failing never blocks the call or
// the caller's own work.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finopsguard/guardrail/internal/logging"
	"github.com/finopsguard/guardrail/internal/model"
)

// Config controls which sinks a Logger writes to.
type Config struct {
	Enabled        bool
	FileLogging    bool
	FilePath       string
	ConsoleLogging bool
	DBLogging      bool
}

// DefaultConfig mirrors the reference deployment's defaults: enabled, file
// logging on, console logging off, DB logging on (DB writes are silently
// skipped if no Store is wired).
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		FileLogging:    true,
		FilePath:       "/var/log/finopsguard/audit.log",
		ConsoleLogging: false,
		DBLogging:      true,
	}
}

// Logger writes AuditEvents to every configured sink.
type Logger struct {
	cfg   Config
	store Store

	mu   sync.Mutex
	file *os.File
}

// NewLogger opens the configured file sink (best-effort; a failure to open
// disables file logging rather than failing construction) and returns a
// Logger ready to accept events. store may be nil when no durable backend
// is wired; DB writes are then silently skipped.
func NewLogger(cfg Config, store Store) *Logger {
	l := &Logger{cfg: cfg, store: store}
	if !cfg.Enabled || !cfg.FileLogging {
		return l
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logging.Warn("audit: could not open log file, file sink disabled", zap.String("path", cfg.FilePath), zap.Error(err))
		return l
	}
	l.file = f
	return l
}

// Log records one audit event. It returns nil when auditing is disabled
// entirely.
func (l *Logger) Log(eventType, action string, opts ...EventOption) *model.AuditEvent {
	if !l.cfg.Enabled {
		return nil
	}

	evt := model.AuditEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Severity:  model.SeverityInfo,
		Timestamp: time.Now().UTC(),
		Action:    action,
		Success:   true,
	}
	for _, opt := range opts {
		opt(&evt)
	}

	if l.cfg.FileLogging {
		l.writeFile(evt)
	}
	if l.cfg.ConsoleLogging {
		l.writeConsole(evt)
	}
	if l.cfg.DBLogging && l.store != nil {
		if err := l.store.Save(evt); err != nil {
			logging.Warn("audit: db sink write failed", zap.String("event_id", evt.EventID), zap.Error(err))
		}
	}

	return &evt
}

// EventOption mutates an in-construction AuditEvent. Using functional
// options keeps Log's signature stable while the event shape carries a
// dozen optional fields.
type EventOption func(*model.AuditEvent)

func WithSeverity(s model.AuditSeverity) EventOption { return func(e *model.AuditEvent) { e.Severity = s } }
func WithActor(a model.AuditActor) EventOption       { return func(e *model.AuditEvent) { e.Actor = a } }
func WithRequestID(id string) EventOption            { return func(e *model.AuditEvent) { e.RequestID = id } }
func WithResource(resourceType, resourceID string) EventOption {
	return func(e *model.AuditEvent) { e.ResourceType = resourceType; e.ResourceID = resourceID }
}
func WithDetails(d map[string]interface{}) EventOption { return func(e *model.AuditEvent) { e.Details = d } }
func WithSuccess(ok bool) EventOption                  { return func(e *model.AuditEvent) { e.Success = ok } }
func WithError(err error) EventOption {
	return func(e *model.AuditEvent) {
		if err != nil {
			e.Error = err.Error()
			e.Success = false
		}
	}
}
func WithHTTP(method, path string, status int) EventOption {
	return func(e *model.AuditEvent) { e.HTTP = &model.AuditHTTPInfo{Method: method, Path: path, Status: status} }
}
func WithComplianceTags(tags ...string) EventOption {
	return func(e *model.AuditEvent) { e.ComplianceTags = tags }
}
func WithMetadata(m map[string]interface{}) EventOption { return func(e *model.AuditEvent) { e.Metadata = m } }

type fileLogLine struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	Severity  string    `json:"severity"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Success   bool      `json:"success"`
	IP        string    `json:"ip,omitempty"`
	Resource  string    `json:"resource,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func (l *Logger) writeFile(evt model.AuditEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}

	user := evt.Actor.Username
	if user == "" {
		user = evt.Actor.UserID
	}
	if user == "" {
		user = "anonymous"
	}
	var resource string
	if evt.ResourceType != "" {
		resource = fmt.Sprintf("%s:%s", evt.ResourceType, evt.ResourceID)
	}

	line := fileLogLine{
		EventID: evt.EventID, Timestamp: evt.Timestamp, EventType: evt.EventType,
		Severity: string(evt.Severity), User: user, Action: evt.Action, Success: evt.Success,
		IP: evt.Actor.IP, Resource: resource, Error: evt.Error,
	}
	encoded, err := json.Marshal(line)
	if err != nil {
		return
	}
	if _, err := l.file.Write(append(encoded, '\n')); err != nil {
		logging.Warn("audit: file sink write failed", zap.Error(err))
	}
}

func (l *Logger) writeConsole(evt model.AuditEvent) {
	user := evt.Actor.Username
	if user == "" {
		user = "anonymous"
	}
	fields := []zap.Field{
		zap.String("event_type", evt.EventType),
		zap.String("user", user),
		zap.String("action", evt.Action),
		zap.Bool("success", evt.Success),
	}
	switch evt.Severity {
	case model.SeverityError:
		logging.Error("audit event", fields...)
	case model.SeverityWarning:
		logging.Warn("audit event", fields...)
	default:
		logging.Info("audit event", fields...)
	}
}

// Query answers the audit query surface. It reads from the same Store
// the DB sink writes to; when no store is
// wired, it returns an empty page rather than erroring, since DB logging
// is an optional sink.
func (l *Logger) Query(filter model.AuditFilter) (model.AuditPage, error) {
	if l.store == nil {
		return model.AuditPage{}, nil
	}
	return l.store.Query(filter)
}

// Close releases the file sink, if open.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
