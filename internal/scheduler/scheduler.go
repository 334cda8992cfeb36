package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/quincybot/rosterquiz/internal/model"
)

// Kind distinguishes the timer slots a room can hold
type Kind string

const (
	KindTurn  Kind = "turn"
	KindPause Kind = "pause"
	KindBot   Kind = "bot"
)

// Callback runs when a timer fires. The token identifies the turn or
// pause the timer was armed for; the callback must ignore tokens the
// session no longer carries.
type Callback func(room model.SessionID, token model.TimerToken)

type timerKey struct {
	room model.SessionID
	kind Kind
}

// Scheduler owns the single-fire timers driving turn deadlines,
// inter-round pauses and bot think delays. Arming a slot cancels any
// timer already in it, so a stale schedule can never fire alongside
// its replacement.
type Scheduler struct {
	logger *slog.Logger

	mu     sync.Mutex
	timers map[timerKey]*time.Timer
	closed bool
}

// New creates a new scheduler
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		timers: make(map[timerKey]*time.Timer),
	}
}

// Arm schedules fn to run after d, replacing any timer in the same
// room slot
func (s *Scheduler) Arm(room model.SessionID, kind Kind, token model.TimerToken, d time.Duration, fn Callback) {
	key := timerKey{room: room, kind: kind}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if old, ok := s.timers[key]; ok {
		old.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		// A replacement may have landed between firing and locking;
		// only the current occupant proceeds
		if current, ok := s.timers[key]; !ok || current != timer {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()

		fn(room, token)
	})
	s.timers[key] = timer
}

// Cancel stops the timer in a room slot, if any
func (s *Scheduler) Cancel(room model.SessionID, kind Kind) {
	key := timerKey{room: room, kind: kind}

	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
}

// CancelRoom stops every timer belonging to a room
func (s *Scheduler) CancelRoom(room model.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, timer := range s.timers {
		if key.room == room {
			timer.Stop()
			delete(s.timers, key)
		}
	}
}

// Shutdown stops all timers and refuses further arming
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}

	s.logger.Info("scheduler shut down")
}
