package policy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sessiondomain "hr-admin-platform/backend/internal/session/domain"
	settingsdomain "hr-admin-platform/backend/internal/settings/domain"
)

type memSettingsRepo struct {
	mu   sync.Mutex
	m    map[string]*settingsdomain.SecuritySetting
	fail error
}

func (r *memSettingsRepo) GetByKey(ctx context.Context, key string) (*settingsdomain.SecuritySetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	return r.m[key], nil
}

type memSessionRepo struct {
	mu      sync.Mutex
	active  []*sessiondomain.UserSession
	expired map[string]int64 // "from..to" is not modeled; a flat count suffices
	fail    error
}

func (r *memSessionRepo) ListActive(ctx context.Context) ([]*sessiondomain.UserSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	return r.active, nil
}

func (r *memSessionRepo) CountExpiredBetween(ctx context.Context, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return 0, r.fail
	}
	return r.expired["count"], nil
}

func intSetting(key string, n int) *settingsdomain.SecuritySetting {
	return &settingsdomain.SecuritySetting{
		ID:    "setting-" + key,
		Key:   key,
		Value: settingsdomain.Value{Kind: settingsdomain.IntValue, Int: n},
	}
}

func settingsWith(timeout, limit int) *memSettingsRepo {
	m := map[string]*settingsdomain.SecuritySetting{}
	if timeout > 0 {
		m[settingsdomain.KeySessionTimeout] = intSetting(settingsdomain.KeySessionTimeout, timeout)
	}
	if limit > 0 {
		m[settingsdomain.KeySessionConcurrentLimit] = intSetting(settingsdomain.KeySessionConcurrentLimit, limit)
	}
	return &memSettingsRepo{m: m}
}

func activeSession(user string, idle time.Duration, now time.Time) *sessiondomain.UserSession {
	return &sessiondomain.UserSession{
		UserID:       user,
		IsActive:     true,
		LastActivity: now.Add(-idle),
		ExpiresAt:    now.Add(time.Hour),
	}
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestCompliance_AllCompliant(t *testing.T) {
	sessions := &memSessionRepo{active: []*sessiondomain.UserSession{
		activeSession("u1", 100*time.Second, testNow),
		activeSession("u2", 500*time.Second, testNow),
	}}
	e := NewEvaluator(settingsWith(1800, 3), sessions)

	report, err := e.Compliance(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Compliance: %v", err)
	}
	if !report[PolicySessionTimeout] {
		t.Error("session_timeout should be compliant")
	}
	if !report[PolicySessionConcurrentLimit] {
		t.Error("session_concurrent_limit should be compliant")
	}
}

func TestCompliance_TimeoutViolation(t *testing.T) {
	sessions := &memSessionRepo{active: []*sessiondomain.UserSession{
		activeSession("u1", 1801*time.Second, testNow),
	}}
	e := NewEvaluator(settingsWith(1800, 0), sessions)

	report, err := e.Compliance(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Compliance: %v", err)
	}
	if report[PolicySessionTimeout] {
		t.Error("a session idle past the timeout should violate session_timeout")
	}
	// The violating session stays active; evaluation never mutates.
	if !sessions.active[0].IsActive {
		t.Error("evaluation must not deactivate sessions")
	}
}

func TestCompliance_TimeoutBoundary(t *testing.T) {
	// Idle exactly as long as the timeout is still compliant.
	sessions := &memSessionRepo{active: []*sessiondomain.UserSession{
		activeSession("u1", 1800*time.Second, testNow),
	}}
	e := NewEvaluator(settingsWith(1800, 0), sessions)

	report, err := e.Compliance(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Compliance: %v", err)
	}
	if !report[PolicySessionTimeout] {
		t.Error("idle == timeout should be compliant")
	}
}

func TestCompliance_ConcurrentLimitViolation(t *testing.T) {
	active := []*sessiondomain.UserSession{
		activeSession("u1", time.Second, testNow),
		activeSession("u1", time.Second, testNow),
		activeSession("u1", time.Second, testNow),
		activeSession("u1", time.Second, testNow),
		activeSession("u2", time.Second, testNow),
		activeSession("u2", time.Second, testNow),
	}
	e := NewEvaluator(settingsWith(0, 3), &memSessionRepo{active: active})

	report, err := e.Compliance(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Compliance: %v", err)
	}
	if report[PolicySessionConcurrentLimit] {
		t.Error("u1 with 4 sessions against limit 3 should violate")
	}
}

func TestCompliance_ConcurrentLimitBoundary(t *testing.T) {
	// Exactly at the limit is compliant; only exceeding it violates.
	active := []*sessiondomain.UserSession{
		activeSession("u1", time.Second, testNow),
		activeSession("u1", time.Second, testNow),
		activeSession("u1", time.Second, testNow),
	}
	e := NewEvaluator(settingsWith(0, 3), &memSessionRepo{active: active})

	report, err := e.Compliance(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Compliance: %v", err)
	}
	if !report[PolicySessionConcurrentLimit] {
		t.Error("exactly at the limit should be compliant")
	}
}

func TestCompliance_UnconfiguredPoliciesPass(t *testing.T) {
	// No settings at all: both policies are vacuously compliant even with
	// very stale sessions present.
	sessions := &memSessionRepo{active: []*sessiondomain.UserSession{
		activeSession("u1", 24*time.Hour, testNow),
		activeSession("u1", 24*time.Hour, testNow),
		activeSession("u1", 24*time.Hour, testNow),
	}}
	e := NewEvaluator(&memSettingsRepo{}, sessions)

	report, err := e.Compliance(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Compliance: %v", err)
	}
	if !report[PolicySessionTimeout] || !report[PolicySessionConcurrentLimit] {
		t.Errorf("report = %v, want both policies compliant when unconfigured", report)
	}
}

func TestCompliance_StoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	e := NewEvaluator(&memSettingsRepo{fail: storeErr}, &memSessionRepo{})

	if _, err := e.Compliance(context.Background(), testNow); !errors.Is(err, storeErr) {
		t.Errorf("err = %v, want the store error", err)
	}
}

func TestStatistics(t *testing.T) {
	active := []*sessiondomain.UserSession{
		activeSession("u1", time.Second, testNow),
		activeSession("u1", time.Second, testNow),
		activeSession("u1", time.Second, testNow),
		activeSession("u1", time.Second, testNow),
		activeSession("u2", time.Second, testNow),
		activeSession("u3", time.Second, testNow),
	}
	sessions := &memSessionRepo{active: active, expired: map[string]int64{"count": 7}}
	e := NewEvaluator(settingsWith(1800, 3), sessions)

	stats, err := e.Statistics(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.ActiveSessions != 6 {
		t.Errorf("ActiveSessions = %d, want 6", stats.ActiveSessions)
	}
	if stats.ExpiredToday != 7 {
		t.Errorf("ExpiredToday = %d, want 7", stats.ExpiredToday)
	}
	// u1 holds 4 sessions against limit 3; violations count users, not sessions.
	if stats.ConcurrentViolations != 1 {
		t.Errorf("ConcurrentViolations = %d, want 1", stats.ConcurrentViolations)
	}
	if stats.DistinctActiveUsers != 3 {
		t.Errorf("DistinctActiveUsers = %d, want 3", stats.DistinctActiveUsers)
	}
}

func TestStatistics_NoLimitConfigured(t *testing.T) {
	active := []*sessiondomain.UserSession{
		activeSession("u1", time.Second, testNow),
		activeSession("u1", time.Second, testNow),
	}
	e := NewEvaluator(&memSettingsRepo{}, &memSessionRepo{active: active})

	stats, err := e.Statistics(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.ConcurrentViolations != 0 {
		t.Errorf("ConcurrentViolations = %d, want 0 without a configured limit", stats.ConcurrentViolations)
	}
}
