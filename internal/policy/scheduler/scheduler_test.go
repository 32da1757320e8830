package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hr-admin-platform/backend/internal/policy"
)

type fakeEvaluator struct {
	mu            sync.Mutex
	report        policy.ComplianceReport
	stats         *policy.Statistics
	complianceErr error
	statsErr      error
}

func (f *fakeEvaluator) Compliance(ctx context.Context, now time.Time) (policy.ComplianceReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.complianceErr != nil {
		return nil, f.complianceErr
	}
	return f.report, nil
}

func (f *fakeEvaluator) Statistics(ctx context.Context, now time.Time) (*policy.Statistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeEvaluator) setComplianceErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.complianceErr = err
}

func TestRunComplianceCycle(t *testing.T) {
	eval := &fakeEvaluator{report: policy.ComplianceReport{
		policy.PolicySessionTimeout:         true,
		policy.PolicySessionConcurrentLimit: false,
	}}
	s := New(eval, time.Minute, time.Minute)

	snap := s.RunComplianceCycle(context.Background())
	if snap.Err != nil {
		t.Fatalf("snapshot err = %v", snap.Err)
	}
	if snap.EvaluatedAt.IsZero() {
		t.Error("EvaluatedAt should be set")
	}
	if snap.Report[policy.PolicySessionConcurrentLimit] {
		t.Error("report should carry the evaluator's violation")
	}

	latest := s.LatestCompliance()
	if !latest.EvaluatedAt.Equal(snap.EvaluatedAt) {
		t.Errorf("LatestCompliance EvaluatedAt = %v, want %v", latest.EvaluatedAt, snap.EvaluatedAt)
	}
}

func TestComplianceCycle_DegradesToUnknownAndRecovers(t *testing.T) {
	eval := &fakeEvaluator{report: policy.ComplianceReport{policy.PolicySessionTimeout: true}}
	s := New(eval, time.Minute, time.Minute)

	storeErr := errors.New("connection refused")
	eval.setComplianceErr(storeErr)
	snap := s.RunComplianceCycle(context.Background())
	if !errors.Is(snap.Err, storeErr) {
		t.Fatalf("snapshot err = %v, want the store error", snap.Err)
	}
	if snap.Report != nil {
		t.Error("a degraded cycle must not publish a report")
	}

	// The next cycle is independent of the failed one.
	eval.setComplianceErr(nil)
	snap = s.RunComplianceCycle(context.Background())
	if snap.Err != nil {
		t.Fatalf("recovered cycle err = %v", snap.Err)
	}
	if !snap.Report[policy.PolicySessionTimeout] {
		t.Error("recovered cycle should publish the report again")
	}
}

func TestRunStatisticsCycle(t *testing.T) {
	eval := &fakeEvaluator{stats: &policy.Statistics{ActiveSessions: 4, DistinctActiveUsers: 2}}
	s := New(eval, time.Minute, time.Minute)

	snap := s.RunStatisticsCycle(context.Background())
	if snap.Err != nil {
		t.Fatalf("snapshot err = %v", snap.Err)
	}
	if snap.Stats.ActiveSessions != 4 {
		t.Errorf("ActiveSessions = %d, want 4", snap.Stats.ActiveSessions)
	}
	if got := s.LatestStatistics(); got.Stats == nil || got.Stats.DistinctActiveUsers != 2 {
		t.Errorf("LatestStatistics = %+v, want the published snapshot", got)
	}
}

func TestSubscribe(t *testing.T) {
	eval := &fakeEvaluator{
		report: policy.ComplianceReport{policy.PolicySessionTimeout: true},
		stats:  &policy.Statistics{ActiveSessions: 1},
	}
	s := New(eval, time.Minute, time.Minute)

	ch, cancel := s.Subscribe()
	defer cancel()

	s.RunComplianceCycle(context.Background())
	s.RunStatisticsCycle(context.Background())

	u := <-ch
	if u.Compliance == nil || u.Statistics != nil {
		t.Errorf("first update = %+v, want a compliance-only update", u)
	}
	u = <-ch
	if u.Statistics == nil || u.Compliance != nil {
		t.Errorf("second update = %+v, want a statistics-only update", u)
	}
}

func TestSubscribe_CancelStopsDelivery(t *testing.T) {
	eval := &fakeEvaluator{report: policy.ComplianceReport{}}
	s := New(eval, time.Minute, time.Minute)

	ch, cancel := s.Subscribe()
	cancel()
	cancel() // safe to call twice

	// Publishing after cancel must not panic on the closed channel.
	s.RunComplianceCycle(context.Background())

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}
}

func TestSubscribe_SlowSubscriberDoesNotBlock(t *testing.T) {
	eval := &fakeEvaluator{report: policy.ComplianceReport{}}
	s := New(eval, time.Minute, time.Minute)

	_, cancel := s.Subscribe()
	defer cancel()

	// More cycles than the subscription buffer holds; extra updates are
	// dropped rather than blocking the scheduler.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			s.RunComplianceCycle(context.Background())
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing blocked on a slow subscriber")
	}
}

func TestRun_EvaluatesImmediately(t *testing.T) {
	eval := &fakeEvaluator{
		report: policy.ComplianceReport{policy.PolicySessionTimeout: true},
		stats:  &policy.Statistics{},
	}
	// Long intervals: only the immediate evaluation can fill the snapshots.
	s := New(eval, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for s.LatestCompliance().EvaluatedAt.IsZero() || s.LatestStatistics().EvaluatedAt.IsZero() {
		select {
		case <-deadline:
			t.Fatal("Run did not evaluate immediately")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}

func TestNew_DefaultIntervals(t *testing.T) {
	s := New(&fakeEvaluator{}, 0, -time.Second)
	if s.complianceEvery != DefaultComplianceInterval {
		t.Errorf("complianceEvery = %v, want %v", s.complianceEvery, DefaultComplianceInterval)
	}
	if s.statsEvery != DefaultStatsInterval {
		t.Errorf("statsEvery = %v, want %v", s.statsEvery, DefaultStatsInterval)
	}
}
