package domain

import "time"

// Severity classifies an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// LogEntry represents one audit event. Entries are append-only and ordered
// by creation time.
type LogEntry struct {
	ID           string
	Actor        string // user id of whoever triggered the action; "system" for scheduled work
	Action       string // e.g. session.created, session.cleanup, setting.updated
	ResourceType string
	ResourceID   string // empty for batch actions
	Details      string
	Severity     Severity
	CreatedAt    time.Time
}
