package wordchain

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// Handle refers to a scheduled callback.
type Handle struct {
	timer *quartz.Timer
}

// Scheduler runs one-shot callbacks on a quartz clock and tracks the timers
// armed for each chat. Cancellation is best effort: a callback that already
// started still runs, so callbacks must check that their game and turn are
// still current.
type Scheduler struct {
	clock quartz.Clock
	armed map[int64][]*Handle
	mu    sync.Mutex
}

// NewScheduler creates a scheduler on the given clock.
func NewScheduler(clock quartz.Clock) *Scheduler {
	return &Scheduler{
		clock: clock,
		armed: make(map[int64][]*Handle),
	}
}

// ScheduleOnce runs fn after d.
func (s *Scheduler) ScheduleOnce(d time.Duration, fn func(), tags ...string) *Handle {
	return &Handle{timer: s.clock.AfterFunc(d, fn, tags...)}
}

// Cancel stops a pending callback. It reports whether the callback was
// stopped before it fired.
func (s *Scheduler) Cancel(h *Handle) bool {
	if h == nil || h.timer == nil {
		return false
	}
	return h.timer.Stop()
}

// Arm schedules fn after d and remembers it under chatID.
func (s *Scheduler) Arm(chatID int64, d time.Duration, fn func(), tags ...string) *Handle {
	h := s.ScheduleOnce(d, fn, tags...)
	s.mu.Lock()
	s.armed[chatID] = append(s.armed[chatID], h)
	s.mu.Unlock()
	return h
}

// Disarm cancels every timer armed for chatID.
func (s *Scheduler) Disarm(chatID int64) {
	s.mu.Lock()
	handles := s.armed[chatID]
	delete(s.armed, chatID)
	s.mu.Unlock()

	for _, h := range handles {
		s.Cancel(h)
	}
}

// Armed returns the number of timers tracked for chatID, fired ones included.
func (s *Scheduler) Armed(chatID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.armed[chatID])
}

// Stop cancels every tracked timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	all := s.armed
	s.armed = make(map[int64][]*Handle)
	s.mu.Unlock()

	for _, handles := range all {
		for _, h := range handles {
			s.Cancel(h)
		}
	}
}
