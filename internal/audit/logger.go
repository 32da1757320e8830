package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hr-admin-platform/backend/internal/audit/domain"
	auditrepo "hr-admin-platform/backend/internal/audit/repository"
	"hr-admin-platform/backend/internal/telemetry"
)

// SystemActor is the actor recorded for actions with no triggering user
// (e.g. scheduled cleanup).
const SystemActor = "system"

// ActionLogger records a single audit event. Used by the session lifecycle
// and settings code paths. LogAction is best-effort: a failed write must not
// fail the operation that triggered it, so errors are swallowed and reported
// only through the telemetry counter and the server log.
type ActionLogger interface {
	LogAction(ctx context.Context, actor, action, resourceType, resourceID, details string, severity domain.Severity)
}

// Logger implements ActionLogger using the audit repository.
type Logger struct {
	repo    auditrepo.Repository
	metrics *telemetry.Metrics
}

// NewLogger returns an ActionLogger that persists to repo.
// metrics may be nil.
func NewLogger(repo auditrepo.Repository, metrics *telemetry.Metrics) *Logger {
	return &Logger{repo: repo, metrics: metrics}
}

// LogAction writes one audit entry. Best-effort: errors are counted and logged,
// never returned.
func (l *Logger) LogAction(ctx context.Context, actor, action, resourceType, resourceID, details string, severity domain.Severity) {
	if l.repo == nil {
		return
	}
	if actor == "" {
		actor = SystemActor
	}
	if severity == "" {
		severity = domain.SeverityInfo
	}
	entry := &domain.LogEntry{
		ID:           uuid.New().String(),
		Actor:        actor,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		Severity:     severity,
		CreatedAt:    time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.metrics.AuditLogFailed(ctx)
		logrus.WithError(err).Warnf("audit: failed to log %s/%s", action, resourceType)
	}
}
