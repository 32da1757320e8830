package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the counters for session lifecycle operations and audit-log
// write failures. Audit failures never reach callers, so this counter is the
// only place they surface besides the server log.
//
// All methods are safe on a nil receiver so callers can skip wiring metrics.
type Metrics struct {
	sessionsCreated    metric.Int64Counter
	sessionsTerminated metric.Int64Counter
	sessionsCleaned    metric.Int64Counter
	auditLogFailures   metric.Int64Counter
}

// NewMetrics registers the session core counters on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter("hr-admin-platform/backend/internal/telemetry")
	created, err := meter.Int64Counter("sessions.created",
		metric.WithDescription("Sessions created"))
	if err != nil {
		return nil, err
	}
	terminated, err := meter.Int64Counter("sessions.terminated",
		metric.WithDescription("Sessions explicitly terminated"))
	if err != nil {
		return nil, err
	}
	cleaned, err := meter.Int64Counter("sessions.cleaned",
		metric.WithDescription("Sessions deactivated by expired-session cleanup"))
	if err != nil {
		return nil, err
	}
	auditFailures, err := meter.Int64Counter("audit.log_failures",
		metric.WithDescription("Audit log writes that failed and were swallowed"))
	if err != nil {
		return nil, err
	}
	return &Metrics{
		sessionsCreated:    created,
		sessionsTerminated: terminated,
		sessionsCleaned:    cleaned,
		auditLogFailures:   auditFailures,
	}, nil
}

func (m *Metrics) SessionCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.sessionsCreated.Add(ctx, 1)
}

func (m *Metrics) SessionTerminated(ctx context.Context) {
	if m == nil {
		return
	}
	m.sessionsTerminated.Add(ctx, 1)
}

func (m *Metrics) SessionsCleaned(ctx context.Context, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsCleaned.Add(ctx, n)
}

func (m *Metrics) AuditLogFailed(ctx context.Context) {
	if m == nil {
		return
	}
	m.auditLogFailures.Add(ctx, 1)
}
