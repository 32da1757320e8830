// Package policy evaluates the configured security policies against current
// session state. Evaluation is a monitoring signal, not an enforcement gate:
// it reads, reports, and never mutates sessions.
package policy

import (
	"context"
	"time"

	sessiondomain "hr-admin-platform/backend/internal/session/domain"
	settingsdomain "hr-admin-platform/backend/internal/settings/domain"
)

// Names of the built-in policies, evaluated every cycle even when the backing
// setting is absent (then vacuously compliant).
const (
	PolicySessionTimeout         = "session_timeout"
	PolicySessionConcurrentLimit = "session_concurrent_limit"
)

// ComplianceReport maps policy name to whether current state satisfies it.
// Recomputed on each evaluation; never persisted.
type ComplianceReport map[string]bool

// Statistics is a derived aggregate over session state.
type Statistics struct {
	ActiveSessions int `json:"active_sessions"`
	// ExpiredToday counts sessions whose expires_at fell within the current
	// UTC day, up to now.
	ExpiredToday int `json:"expired_today"`
	// ConcurrentViolations counts distinct users over the concurrent-session
	// limit, not the excess sessions themselves.
	ConcurrentViolations int `json:"concurrent_violations"`
	DistinctActiveUsers  int `json:"distinct_active_users"`
}

// SettingsRepo is the settings read access needed by the evaluator.
type SettingsRepo interface {
	GetByKey(ctx context.Context, key string) (*settingsdomain.SecuritySetting, error)
}

// SessionRepo is the session read access needed by the evaluator.
type SessionRepo interface {
	ListActive(ctx context.Context) ([]*sessiondomain.UserSession, error)
	CountExpiredBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// Evaluator computes compliance reports and statistics from the current
// settings and session snapshots. The two reads are not transactionally
// consistent with each other; the evaluator is re-run every cycle, so a
// split-second-stale snapshot is accepted.
type Evaluator struct {
	settings SettingsRepo
	sessions SessionRepo
}

// NewEvaluator returns an Evaluator reading from the given repositories.
func NewEvaluator(settings SettingsRepo, sessions SessionRepo) *Evaluator {
	return &Evaluator{settings: settings, sessions: sessions}
}

// Compliance evaluates the built-in policies at now. An absent setting makes
// its policy vacuously compliant (fail-open); a malformed one fails the read.
func (e *Evaluator) Compliance(ctx context.Context, now time.Time) (ComplianceReport, error) {
	timeout, err := e.intSetting(ctx, settingsdomain.KeySessionTimeout)
	if err != nil {
		return nil, err
	}
	limit, err := e.intSetting(ctx, settingsdomain.KeySessionConcurrentLimit)
	if err != nil {
		return nil, err
	}
	active, err := e.sessions.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	report := ComplianceReport{
		PolicySessionTimeout:         timeoutCompliant(now.UTC(), timeout, active),
		PolicySessionConcurrentLimit: len(limitViolators(active, limit)) == 0,
	}
	return report, nil
}

// Statistics computes the session aggregates at now.
func (e *Evaluator) Statistics(ctx context.Context, now time.Time) (*Statistics, error) {
	limit, err := e.intSetting(ctx, settingsdomain.KeySessionConcurrentLimit)
	if err != nil {
		return nil, err
	}
	active, err := e.sessions.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	expired, err := e.sessions.CountExpiredBetween(ctx, midnight, now)
	if err != nil {
		return nil, err
	}
	users := make(map[string]struct{}, len(active))
	for _, s := range active {
		users[s.UserID] = struct{}{}
	}
	return &Statistics{
		ActiveSessions:       len(active),
		ExpiredToday:         int(expired),
		ConcurrentViolations: len(limitViolators(active, limit)),
		DistinctActiveUsers:  len(users),
	}, nil
}

// intSetting returns the configured positive integer for key, or 0 when the
// policy is not configured.
func (e *Evaluator) intSetting(ctx context.Context, key string) (int, error) {
	s, err := e.settings.GetByKey(ctx, key)
	if err != nil {
		return 0, err
	}
	if s == nil {
		return 0, nil
	}
	return s.Value.Int, nil
}

// timeoutCompliant reports whether no active session has been idle strictly
// longer than timeoutSeconds. A session exactly at the cutoff is compliant,
// matching the cleanup boundary. timeoutSeconds 0 means not configured.
func timeoutCompliant(now time.Time, timeoutSeconds int, sessions []*sessiondomain.UserSession) bool {
	if timeoutSeconds <= 0 {
		return true
	}
	cutoff := now.Add(-time.Duration(timeoutSeconds) * time.Second)
	for _, s := range sessions {
		if s.LastActivity.Before(cutoff) {
			return false
		}
	}
	return true
}

// limitViolators returns the distinct user ids holding more active sessions
// than limit allows. limit 0 means not configured.
func limitViolators(sessions []*sessiondomain.UserSession, limit int) []string {
	if limit <= 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, s := range sessions {
		counts[s.UserID]++
	}
	var out []string
	for userID, n := range counts {
		if n > limit {
			out = append(out, userID)
		}
	}
	return out
}
