package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tvscribe/internal/logging"
	"tvscribe/internal/store"
)

const reloadInterval = time.Minute

// Controller is the switch the scheduler flips. EnableAll and DisableAll
// must be idempotent; the scheduler may call either repeatedly around
// reloads.
type Controller interface {
	EnableAll()
	DisableAll()
}

// IntervalSource yields the configured daily windows.
type IntervalSource interface {
	Intervals(ctx context.Context) ([]store.ScheduleInterval, error)
}

// Scheduler drives the global ingestion state from daily schedule
// windows. It re-reads the windows periodically so edits made through
// the operator CLI take effect without a daemon restart. With no
// windows configured nothing is covered, so ingestion stays off until
// an operator adds one.
type Scheduler struct {
	source IntervalSource
	ctrl   Controller
	loc    *time.Location
	logger *slog.Logger

	// Overridable in tests.
	reloadEvery time.Duration
	now         func() time.Time

	mu        sync.Mutex
	intervals []store.ScheduleInterval
	enabled   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
}

// New creates a scheduler evaluating windows in the given location.
func New(source IntervalSource, ctrl Controller, loc *time.Location, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		source:      source,
		ctrl:        ctrl,
		loc:         loc,
		logger:      logging.NewComponentLogger(logger, "scheduler"),
		reloadEvery: reloadInterval,
		now:         time.Now,
	}
}

// Start loads the schedule, applies the current state, and launches the
// evaluation loop. Idempotent. A failed initial load leaves the
// scheduler stopped, so Stop after a failed Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.Reload(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.loop(stopCh, doneCh)
	return nil
}

// Stop halts the loop and disables ingestion. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh
	s.setEnabled(false)
}

// Enabled reports the current global ingestion state.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Reload re-reads the schedule windows and applies the state they imply
// right away.
func (s *Scheduler) Reload(ctx context.Context) error {
	intervals, err := s.source.Intervals(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.intervals = intervals
	s.mu.Unlock()
	s.apply()
	return nil
}

func (s *Scheduler) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	for {
		wait := s.untilNextCheck()
		timer := time.NewTimer(wait)
		select {
		case <-stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.Reload(ctx); err != nil {
			s.logger.Error("schedule reload failed", logging.Error(err))
			s.apply()
		}
		cancel()
	}
}

// apply flips the controller only on state transitions, so repeated
// evaluations inside one window never restart the archivers.
func (s *Scheduler) apply() {
	now := s.now().In(s.loc)
	s.mu.Lock()
	desired := coveredBy(s.intervals, store.TimeOfDayFrom(now))
	s.mu.Unlock()
	s.setEnabled(desired)
}

func (s *Scheduler) setEnabled(desired bool) {
	s.mu.Lock()
	if s.enabled == desired {
		s.mu.Unlock()
		return
	}
	s.enabled = desired
	s.mu.Unlock()

	if desired {
		s.logger.Info("schedule window open, enabling ingestion")
		s.ctrl.EnableAll()
	} else {
		s.logger.Info("schedule window closed, disabling ingestion")
		s.ctrl.DisableAll()
	}
}

// untilNextCheck returns the sleep before the next evaluation: the
// nearest window boundary, capped by the reload interval so external
// schedule edits are picked up promptly.
func (s *Scheduler) untilNextCheck() time.Duration {
	now := s.now().In(s.loc)
	nowSecs := int(store.TimeOfDayFrom(now))

	s.mu.Lock()
	intervals := s.intervals
	s.mu.Unlock()

	wait := s.reloadEvery
	for _, interval := range intervals {
		for _, boundary := range []int{int(interval.Start), int(interval.End)} {
			delta := boundary - nowSecs
			if delta <= 0 {
				delta += 24 * 3600
			}
			if d := time.Duration(delta) * time.Second; d < wait {
				wait = d
			}
		}
	}
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}

// coveredBy reports whether the clock time falls inside any window. A
// window whose end precedes its start wraps past midnight. An empty
// set covers nothing.
func coveredBy(intervals []store.ScheduleInterval, now store.TimeOfDay) bool {
	for _, interval := range intervals {
		if covers(interval, now) {
			return true
		}
	}
	return false
}

func covers(interval store.ScheduleInterval, now store.TimeOfDay) bool {
	start, end := interval.Start, interval.End
	switch {
	case start == end:
		return false
	case start < end:
		return now >= start && now < end
	default:
		return now >= start || now < end
	}
}
