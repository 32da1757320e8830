// Package scheduler drives periodic policy evaluation and publishes the
// results to in-process subscribers. It never mutates session state; cleanup
// stays a distinct, explicitly invoked administrative action.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"hr-admin-platform/backend/internal/policy"
)

const (
	DefaultComplianceInterval = 60 * time.Second
	DefaultStatsInterval      = 30 * time.Second
)

// ComplianceSnapshot is the outcome of one compliance cycle. Err non-nil
// means the store was unreachable and the report is unknown for this cycle;
// the next tick retries.
type ComplianceSnapshot struct {
	Report      policy.ComplianceReport
	EvaluatedAt time.Time
	Err         error
}

// StatisticsSnapshot is the outcome of one statistics cycle.
type StatisticsSnapshot struct {
	Stats       *policy.Statistics
	EvaluatedAt time.Time
	Err         error
}

// Update is published to subscribers after each cycle. Exactly one field is
// set, matching the cycle that produced it.
type Update struct {
	Compliance *ComplianceSnapshot
	Statistics *StatisticsSnapshot
}

// Evaluator is the read-only policy evaluation the scheduler drives.
type Evaluator interface {
	Compliance(ctx context.Context, now time.Time) (policy.ComplianceReport, error)
	Statistics(ctx context.Context, now time.Time) (*policy.Statistics, error)
}

// Scheduler runs compliance and statistics evaluation on two independent
// periodic timers and keeps the latest snapshot of each for polling.
type Scheduler struct {
	eval            Evaluator
	complianceEvery time.Duration
	statsEvery      time.Duration
	nowF            func() time.Time

	mu               sync.RWMutex
	latestCompliance ComplianceSnapshot
	latestStats      StatisticsSnapshot
	subs             map[int]chan Update
	nextSub          int
}

// New returns a Scheduler evaluating via eval. Non-positive intervals fall
// back to the defaults (compliance 60s, statistics 30s).
func New(eval Evaluator, complianceEvery, statsEvery time.Duration) *Scheduler {
	if complianceEvery <= 0 {
		complianceEvery = DefaultComplianceInterval
	}
	if statsEvery <= 0 {
		statsEvery = DefaultStatsInterval
	}
	return &Scheduler{
		eval:            eval,
		complianceEvery: complianceEvery,
		statsEvery:      statsEvery,
		nowF:            func() time.Time { return time.Now().UTC() },
		subs:            make(map[int]chan Update),
	}
}

// Run evaluates both cycles once immediately, then on their timers until ctx
// is done. Cycles are independent and stateless; a failed cycle publishes its
// error and the next one proceeds unaffected.
func (s *Scheduler) Run(ctx context.Context) {
	s.RunComplianceCycle(ctx)
	s.RunStatisticsCycle(ctx)

	compliance := time.NewTicker(s.complianceEvery)
	defer compliance.Stop()
	stats := time.NewTicker(s.statsEvery)
	defer stats.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-compliance.C:
			s.RunComplianceCycle(ctx)
		case <-stats.C:
			s.RunStatisticsCycle(ctx)
		}
	}
}

// RunComplianceCycle evaluates compliance now, records it as the latest
// snapshot, and publishes it. Also used for on-demand evaluation from
// administrative actions.
func (s *Scheduler) RunComplianceCycle(ctx context.Context) ComplianceSnapshot {
	now := s.nowF()
	report, err := s.eval.Compliance(ctx, now)
	snap := ComplianceSnapshot{Report: report, EvaluatedAt: now, Err: err}
	if err != nil {
		snap.Report = nil
		logrus.WithError(err).Warn("scheduler: compliance cycle degraded to unknown")
	}
	s.mu.Lock()
	s.latestCompliance = snap
	s.mu.Unlock()
	s.publish(Update{Compliance: &snap})
	return snap
}

// RunStatisticsCycle evaluates statistics now, records it as the latest
// snapshot, and publishes it.
func (s *Scheduler) RunStatisticsCycle(ctx context.Context) StatisticsSnapshot {
	now := s.nowF()
	stats, err := s.eval.Statistics(ctx, now)
	snap := StatisticsSnapshot{Stats: stats, EvaluatedAt: now, Err: err}
	if err != nil {
		snap.Stats = nil
		logrus.WithError(err).Warn("scheduler: statistics cycle degraded to unknown")
	}
	s.mu.Lock()
	s.latestStats = snap
	s.mu.Unlock()
	s.publish(Update{Statistics: &snap})
	return snap
}

// LatestCompliance returns the most recent compliance snapshot. A zero
// EvaluatedAt means no cycle has run yet.
func (s *Scheduler) LatestCompliance() ComplianceSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestCompliance
}

// LatestStatistics returns the most recent statistics snapshot.
func (s *Scheduler) LatestStatistics() StatisticsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestStats
}

// Subscribe registers for per-cycle updates. The returned cancel func must be
// called to release the subscription. Updates to a subscriber whose channel
// is full are dropped; Latest* always has the current state.
func (s *Scheduler) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 8)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()
	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Scheduler) publish(u Update) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
