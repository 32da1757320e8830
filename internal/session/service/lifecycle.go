// Package service implements the session lifecycle: creation, termination,
// and expired-session cleanup. Activity updates are owned by the
// authentication front door, not this package.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hr-admin-platform/backend/internal/audit"
	auditdomain "hr-admin-platform/backend/internal/audit/domain"
	"hr-admin-platform/backend/internal/errs"
	"hr-admin-platform/backend/internal/session/domain"
	settingsdomain "hr-admin-platform/backend/internal/settings/domain"
	"hr-admin-platform/backend/internal/telemetry"
)

// SessionRepo is the minimal session repository needed by the lifecycle service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*domain.UserSession, error)
	Create(ctx context.Context, s *domain.UserSession) error
	SetActive(ctx context.Context, id string, active bool) error
	DeactivateIdleBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SettingsRepo is the minimal settings repository needed by the lifecycle service.
type SettingsRepo interface {
	GetByKey(ctx context.Context, key string) (*settingsdomain.SecuritySetting, error)
}

// Lifecycle creates, terminates, and cleans up user sessions.
type Lifecycle struct {
	sessions SessionRepo
	settings SettingsRepo
	audit    audit.ActionLogger
	metrics  *telemetry.Metrics
	nowF     func() time.Time
}

// NewLifecycle returns a Lifecycle with the given dependencies.
// auditLogger and metrics may be nil.
func NewLifecycle(sessions SessionRepo, settings SettingsRepo, auditLogger audit.ActionLogger, metrics *telemetry.Metrics) *Lifecycle {
	return &Lifecycle{
		sessions: sessions,
		settings: settings,
		audit:    auditLogger,
		metrics:  metrics,
		nowF:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateSession inserts an active session for userID holding the opaque token.
// expiresAt must be strictly in the future; the token must not collide with
// any existing session's token (errs.TokenExists otherwise).
func (l *Lifecycle) CreateSession(ctx context.Context, userID, token string, expiresAt time.Time, ipAddress, userAgent string) (*domain.UserSession, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id", errs.MissingField)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: session_token", errs.MissingField)
	}
	now := l.nowF()
	if !expiresAt.After(now) {
		return nil, errs.ExpiryInPast
	}
	s := &domain.UserSession{
		ID:           uuid.New().String(),
		UserID:       userID,
		SessionToken: token,
		IsActive:     true,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    expiresAt.UTC(),
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
	}
	if err := l.sessions.Create(ctx, s); err != nil {
		return nil, err
	}
	l.metrics.SessionCreated(ctx)
	if l.audit != nil {
		l.audit.LogAction(ctx, userID, "session.created", "session", s.ID, "", auditdomain.SeverityInfo)
	}
	return s, nil
}

// TerminateSession marks the session inactive and returns the resulting row.
// Idempotent: terminating an already-inactive session returns it unchanged
// with no error and no audit event. last_activity is not altered.
func (l *Lifecycle) TerminateSession(ctx context.Context, actor, sessionID string) (*domain.UserSession, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id", errs.MissingField)
	}
	s, err := l.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errs.SessionNotFound
	}
	if !s.IsActive {
		return s, nil
	}
	if err := l.sessions.SetActive(ctx, sessionID, false); err != nil {
		return nil, err
	}
	s.IsActive = false
	l.metrics.SessionTerminated(ctx)
	if l.audit != nil {
		l.audit.LogAction(ctx, actor, "session.terminated", "session", s.ID, "", auditdomain.SeverityInfo)
	}
	return s, nil
}

// CleanupExpiredSessions deactivates every active session whose last_activity
// is strictly older than now minus the configured session_timeout, and returns
// the number of sessions transitioned. A session idle exactly as long as the
// timeout survives, matching the compliance check boundary.
//
// Unlike the read-only compliance checks, cleanup fails closed: with no
// session_timeout setting it returns errs.TimeoutNotConfigured and touches
// nothing.
func (l *Lifecycle) CleanupExpiredSessions(ctx context.Context, actor string, now time.Time) (int64, error) {
	setting, err := l.settings.GetByKey(ctx, settingsdomain.KeySessionTimeout)
	if err != nil {
		return 0, err
	}
	if setting == nil {
		return 0, errs.TimeoutNotConfigured
	}
	cutoff := now.UTC().Add(-time.Duration(setting.Value.Int) * time.Second)
	n, err := l.sessions.DeactivateIdleBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	l.metrics.SessionsCleaned(ctx, n)
	if l.audit != nil {
		l.audit.LogAction(ctx, actor, "session.cleanup", "session", "",
			fmt.Sprintf("deactivated %d expired sessions", n), auditdomain.SeverityInfo)
	}
	return n, nil
}
