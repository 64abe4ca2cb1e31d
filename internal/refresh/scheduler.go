// Package refresh re-mounts widgets on a schedule so a preview picks up
// FAQs the backend regenerated since the last cycle.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// minTick is the shortest tick the scheduler will use.
const minTick = time.Second

// Target is one widget refreshed on its own interval.
type Target struct {
	// Name identifies the widget passed to the refresh function.
	Name string

	// Interval is the time between refreshes. Targets with a
	// non-positive interval are never refreshed.
	Interval time.Duration
}

// Func starts a refresh of the named widget. It must not block on the
// refresh finishing.
type Func func(name string) error

// Scheduler calls a [Func] for each target at its interval.
//
// The scheduler ticks at the GCD of all target intervals and refreshes
// only targets that are due. The first refresh of a target happens one
// interval after Start, since the caller has just mounted it.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	targets []Target
	refresh Func
	logger  *slog.Logger
	minTick time.Duration
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool

	// per-target timing for tick-and-check pattern
	lastRefreshedAt map[string]time.Time
	baseInterval    time.Duration
}

// NewScheduler creates a [Scheduler]. Targets without a positive interval
// are dropped.
//
// The scheduler must be started with [Scheduler.Start] and stopped with
// [Scheduler.Stop].
func NewScheduler(targets []Target, refresh Func, logger *slog.Logger) *Scheduler {
	kept := make([]Target, 0, len(targets))
	for _, t := range targets {
		if t.Interval > 0 {
			kept = append(kept, t)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		targets: kept,
		refresh: refresh,
		logger:  logger,
		minTick: minTick,
	}
}

// Len returns the number of scheduled targets.
func (s *Scheduler) Len() int {
	return len(s.targets)
}

// calculateBaseInterval determines the tick interval for the scheduler.
// Uses the GCD of all target intervals, floored at minTick.
func (s *Scheduler) calculateBaseInterval() time.Duration {
	if len(s.targets) == 0 {
		return 0
	}

	result := s.targets[0].Interval
	for _, t := range s.targets[1:] {
		result = gcdDuration(result, t.Interval)
	}

	// floor to prevent CPU thrashing
	if result < s.minTick {
		result = s.minTick
	}
	return result
}

// gcdDuration calculates the greatest common divisor of two durations.
func gcdDuration(a, b time.Duration) time.Duration {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Start begins the tick loop in a background goroutine and returns
// immediately. The loop runs until [Scheduler.Stop] is called or ctx is
// cancelled.
//
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, or there are no targets, Start is a
// no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped || len(s.targets) == 0 {
		s.mu.Unlock()
		return
	}
	s.started = true

	now := time.Now()
	s.lastRefreshedAt = make(map[string]time.Time, len(s.targets))
	for _, t := range s.targets {
		s.lastRefreshedAt[t.Name] = now
	}
	s.baseInterval = s.calculateBaseInterval()

	if ctx == nil {
		ctx = context.Background()
	}
	var loopCtx context.Context
	loopCtx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.baseInterval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case now := <-ticker.C:
				s.refreshDue(loopCtx, now)
			}
		}
	}()
}

// Stop halts the scheduler and waits for the tick loop to exit.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// refreshDue refreshes the targets whose interval has elapsed at now.
//
// lastRefreshedAt is updated when a refresh is requested, not when the
// cycle it starts completes.
func (s *Scheduler) refreshDue(ctx context.Context, now time.Time) {
	var due []string

	s.mu.Lock()
	for _, t := range s.targets {
		if now.Sub(s.lastRefreshedAt[t.Name]) >= t.Interval {
			due = append(due, t.Name)
			s.lastRefreshedAt[t.Name] = now
		}
	}
	s.mu.Unlock()

	for _, name := range due {
		if ctx.Err() != nil {
			return
		}
		if err := s.safeRefresh(name); err != nil {
			s.logger.Warn("scheduled refresh failed", "widget", name, "error", err)
			continue
		}
		s.logger.Debug("scheduled refresh started", "widget", name)
	}
}

// safeRefresh calls the refresh function with panic recovery. A panic is
// logged with a correlation ID and returned as an error carrying the ID.
func (s *Scheduler) safeRefresh(name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("refresh panic",
				"correlation_id", correlationID,
				"widget", name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("refresh panic (correlation_id: %s)", correlationID)
		}
	}()
	return s.refresh(name)
}
