package scheduler

import (
	"sync"
	"time"

	"github.com/RussellLuo/timingwheel"
	"github.com/approvd/approvd/logger"
	"go.uber.org/zap"
)

// TimeoutFunc is invoked when an armed SLA deadline fires. It carries the
// step index active when the timer was armed so the engine can discard
// stale firings.
type TimeoutFunc func(requestId string, stepIndex int)

// Scheduler owns at most one SLA deadline per request.
type Scheduler interface {
	Start()
	Stop()
	Arm(requestId string, stepIndex int, sla time.Duration)
	Cancel(requestId string)
}

type WheelScheduler struct {
	wheel     *timingwheel.TimingWheel
	onTimeout TimeoutFunc
	mu        sync.Mutex
	timers    map[string]*timingwheel.Timer
}

var _ Scheduler = new(WheelScheduler)

func NewWheelScheduler(tick time.Duration, wheelSize int64, onTimeout TimeoutFunc) *WheelScheduler {
	return &WheelScheduler{
		wheel:     timingwheel.NewTimingWheel(tick, wheelSize),
		onTimeout: onTimeout,
		timers:    make(map[string]*timingwheel.Timer),
	}
}

func (s *WheelScheduler) Start() {
	s.wheel.Start()
}

func (s *WheelScheduler) Stop() {
	s.wheel.Stop()
}

// Arm schedules the deadline for the step active on the request. A zero or
// negative SLA arms nothing. Re-arming replaces any previous deadline, so a
// request never has more than one live timer.
func (s *WheelScheduler) Arm(requestId string, stepIndex int, sla time.Duration) {
	if sla <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.timers[requestId]; ok {
		old.Stop()
	}
	s.timers[requestId] = s.wheel.AfterFunc(sla, func() {
		s.clear(requestId)
		s.onTimeout(requestId, stepIndex)
	})
	logger.Debug("sla timer armed", zap.String("requestId", requestId), zap.Int("stepIndex", stepIndex), zap.Duration("sla", sla))
}

// Cancel is idempotent; cancelling a request with no armed timer is a no-op.
// A timer already queued for execution may still fire after Cancel returns;
// the engine's staleness check discards it.
func (s *WheelScheduler) Cancel(requestId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[requestId]; ok {
		t.Stop()
		delete(s.timers, requestId)
	}
}

func (s *WheelScheduler) clear(requestId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, requestId)
}
