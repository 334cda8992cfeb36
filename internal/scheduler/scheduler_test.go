package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/testutil"
)

type SchedulerSuite struct {
	suite.Suite
	scheduler *Scheduler

	mu    sync.Mutex
	fired []string
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}

func (s *SchedulerSuite) SetupTest() {
	s.scheduler = New(testutil.NopLogger())
	s.fired = nil
}

func (s *SchedulerSuite) TearDownTest() {
	s.scheduler.Shutdown()
}

func (s *SchedulerSuite) record(room model.SessionID, token model.TimerToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fired = append(s.fired, string(token))
}

func (s *SchedulerSuite) firedTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fired...)
}

func (s *SchedulerSuite) TestFires() {
	s.scheduler.Arm("room", KindTurn, "t1", 10*time.Millisecond, s.record)

	s.Require().Eventually(func() bool {
		return len(s.firedTokens()) == 1
	}, time.Second, 5*time.Millisecond)
	s.Equal([]string{"t1"}, s.firedTokens())
}

func (s *SchedulerSuite) TestRearmSupersedesOldTimer() {
	s.scheduler.Arm("room", KindTurn, "t1", 20*time.Millisecond, s.record)
	s.scheduler.Arm("room", KindTurn, "t2", 40*time.Millisecond, s.record)

	time.Sleep(100 * time.Millisecond)

	// Only the replacement fires; the superseded timer never does
	s.Equal([]string{"t2"}, s.firedTokens())
}

func (s *SchedulerSuite) TestCancelPreventsFire() {
	s.scheduler.Arm("room", KindTurn, "t1", 20*time.Millisecond, s.record)
	s.scheduler.Cancel("room", KindTurn)

	time.Sleep(60 * time.Millisecond)
	s.Empty(s.firedTokens())
}

func (s *SchedulerSuite) TestKindsAreIndependent() {
	s.scheduler.Arm("room", KindTurn, "turn", 10*time.Millisecond, s.record)
	s.scheduler.Arm("room", KindPause, "pause", 10*time.Millisecond, s.record)

	s.Require().Eventually(func() bool {
		return len(s.firedTokens()) == 2
	}, time.Second, 5*time.Millisecond)
	s.ElementsMatch([]string{"turn", "pause"}, s.firedTokens())
}

func (s *SchedulerSuite) TestCancelRoom() {
	s.scheduler.Arm("a", KindTurn, "a-turn", 20*time.Millisecond, s.record)
	s.scheduler.Arm("a", KindPause, "a-pause", 20*time.Millisecond, s.record)
	s.scheduler.Arm("b", KindTurn, "b-turn", 20*time.Millisecond, s.record)

	s.scheduler.CancelRoom("a")

	s.Require().Eventually(func() bool {
		return len(s.firedTokens()) == 1
	}, time.Second, 5*time.Millisecond)
	s.Equal([]string{"b-turn"}, s.firedTokens())
}

func (s *SchedulerSuite) TestShutdownStopsEverything() {
	s.scheduler.Arm("room", KindTurn, "t1", 20*time.Millisecond, s.record)
	s.scheduler.Shutdown()
	s.scheduler.Arm("room", KindTurn, "t2", 10*time.Millisecond, s.record)

	time.Sleep(60 * time.Millisecond)
	s.Empty(s.firedTokens())
}
