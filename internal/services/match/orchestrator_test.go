package match

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/quincybot/rosterquiz/internal/dependencies/mocks"
	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/scheduler"
	"github.com/quincybot/rosterquiz/internal/services/auth"
	"github.com/quincybot/rosterquiz/internal/services/bot"
	"github.com/quincybot/rosterquiz/internal/services/game"
	"github.com/quincybot/rosterquiz/internal/services/guess"
	"github.com/quincybot/rosterquiz/internal/services/lobby"
	"github.com/quincybot/rosterquiz/internal/services/rating"
	"github.com/quincybot/rosterquiz/internal/services/roster"
	"github.com/quincybot/rosterquiz/internal/storage/memory"
	"github.com/quincybot/rosterquiz/internal/testutil"
)

type captureChannel struct {
	mu     sync.Mutex
	room   []model.Event
	lobby  []model.Event
}

func (c *captureChannel) ToRoom(room model.SessionID, event model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = append(c.room, event)
}

func (c *captureChannel) ToLobby(event model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lobby = append(c.lobby, event)
}

func (c *captureChannel) ofType(t model.EventType) []model.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []model.Event
	for _, e := range c.room {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (c *captureChannel) lobbyCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lobby)
}

type OrchestratorSuite struct {
	suite.Suite
	storage      *memory.Storage
	rosters      *roster.Service
	clock        *mocks.MockClock
	random       *mocks.MockRandom
	authService  *auth.Service
	channel      *captureChannel
	orchestrator *Orchestrator
	ctx          context.Context
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	logger := testutil.NopLogger()

	s.storage = memory.New()
	s.rosters = roster.New(s.storage)
	s.clock = mocks.NewMockClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.channel = &captureChannel{}
	s.ctx = context.Background()

	s.Require().NoError(s.rosters.LoadClubs(map[model.ClubName][]model.RosterEntry{
		"Spartak": {
			{Primary: "Ivanov", Aliases: []string{"ivanov"}},
			{Primary: "Petrov", Aliases: []string{"petrov"}},
			{Primary: "Sidorov", Aliases: []string{"sidorov"}},
		},
		"Torpedo": {
			{Primary: "Orlov", Aliases: []string{"orlov"}},
			{Primary: "Sokolov", Aliases: []string{"sokolov"}},
		},
		"Zenit": {
			{Primary: "Smirnov", Aliases: []string{"smirnov"}},
			{Primary: "Volkov", Aliases: []string{"volkov"}},
		},
	}))

	s.authService = auth.New(s.storage, s.clock, auth.DefaultConfig())
	games := game.NewController(s.storage, s.rosters, s.clock, s.random, logger)
	lobbyService := lobby.New(s.storage, s.clock, logger)
	ratings := rating.New(s.storage, logger)

	s.orchestrator = New(
		games,
		lobbyService,
		s.authService,
		ratings,
		s.rosters,
		bot.NewRandomStrategy(s.random),
		scheduler.New(logger),
		s.channel,
		s.clock,
		logger,
		Config{
			PauseBetweenRounds: time.Hour, // tests drive round advance via skip
			BotThinkDelay:      5 * time.Millisecond,
		},
	)
}

func (s *OrchestratorSuite) TearDownTest() {
	s.orchestrator.Shutdown()
}

func (s *OrchestratorSuite) settings(rounds int) model.Settings {
	return model.Settings{Rounds: rounds, TimeBank: 90 * time.Second}
}

// Solo flow

func (s *OrchestratorSuite) TestSoloSingleRoundFullFlow() {
	// Sequence sampling is deterministic in tests: first club sorted,
	// which is Spartak with its three players
	session, err := s.orchestrator.StartGame(s.ctx, "alice", model.ModeSolo, s.settings(1))
	s.Require().NoError(err)

	s.Require().Len(s.channel.ofType(model.EventRoundStarted), 1)

	for _, name := range []string{"ivanov", "petrov", "sidorov"} {
		outcome, err := s.orchestrator.SubmitGuess(s.ctx, session.ID, "alice", name)
		s.Require().NoError(err)
		s.Equal(guess.Correct, outcome.Outcome)
		s.False(outcome.TimedOut)
	}

	s.Require().Len(s.channel.ofType(model.EventRoundSummary), 1)

	// Skip the pause; with no rounds left the game ends
	s.Require().NoError(s.orchestrator.SkipPause(s.ctx, session.ID, "alice"))

	overEvents := s.channel.ofType(model.EventGameOver)
	s.Require().Len(overEvents, 1)
	payload := overEvents[0].Payload.(model.GameOverPayload)

	// Solo games carry no scoring and end normally
	s.Equal(0.0, payload.FinalScores[0])
	s.Equal(model.EndReasonNormal, payload.EndReason)
	s.Empty(payload.RatingChanges)

	// Session is gone
	_, err = s.orchestrator.Snapshot(s.ctx, session.ID)
	s.ErrorIs(err, model.ErrSessionNotFound)
	_, seated := s.orchestrator.RoomOf("alice")
	s.False(seated)
}

func (s *OrchestratorSuite) TestGuessOutcomes() {
	session, err := s.orchestrator.StartGame(s.ctx, "alice", model.ModeSolo, s.settings(1))
	s.Require().NoError(err)

	outcome, err := s.orchestrator.SubmitGuess(s.ctx, session.ID, "alice", "nobody-here")
	s.Require().NoError(err)
	s.Equal(guess.NotFound, outcome.Outcome)

	outcome, err = s.orchestrator.SubmitGuess(s.ctx, session.ID, "alice", "ivanov")
	s.Require().NoError(err)
	s.Equal(guess.Correct, outcome.Outcome)
	s.Equal("Ivanov", outcome.CorrectedName)

	outcome, err = s.orchestrator.SubmitGuess(s.ctx, session.ID, "alice", "ivanov")
	s.Require().NoError(err)
	s.Equal(guess.AlreadyNamed, outcome.Outcome)
}

func (s *OrchestratorSuite) TestSlowCorrectGuessTimesOut() {
	session, err := s.orchestrator.StartGame(s.ctx, "alice", model.ModeSolo, s.settings(1))
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Minute)

	outcome, err := s.orchestrator.SubmitGuess(s.ctx, session.ID, "alice", "ivanov")
	s.Require().NoError(err)
	s.Equal(guess.Correct, outcome.Outcome)
	s.True(outcome.TimedOut)

	s.Require().Len(s.channel.ofType(model.EventTimerExpired), 1)
	summaries := s.channel.ofType(model.EventRoundSummary)
	s.Require().Len(summaries, 1)
	s.Equal(model.RoundTimeout, summaries[0].Payload.(model.RoundSummaryPayload).Result)
}

func (s *OrchestratorSuite) TestGuessFromOutsider() {
	session, err := s.orchestrator.StartGame(s.ctx, "alice", model.ModeSolo, s.settings(1))
	s.Require().NoError(err)

	_, err = s.orchestrator.SubmitGuess(s.ctx, session.ID, "mallory", "ivanov")
	s.ErrorIs(err, model.ErrNotInSession)
}

func (s *OrchestratorSuite) TestStaleTurnTimerIsIgnored() {
	session, err := s.orchestrator.StartGame(s.ctx, "alice", model.ModeSolo, s.settings(2))
	s.Require().NoError(err)

	// A correct guess supersedes the armed turn timer
	_, err = s.orchestrator.SubmitGuess(s.ctx, session.ID, "alice", "ivanov")
	s.Require().NoError(err)

	// The old timer landing late must not end the round
	s.orchestrator.onTurnExpired(session.ID, "stale-token")

	s.Empty(s.channel.ofType(model.EventTimerExpired))
	s.Empty(s.channel.ofType(model.EventRoundSummary))
}

func (s *OrchestratorSuite) TestStalePauseTimerIsIgnored() {
	session, err := s.orchestrator.StartGame(s.ctx, "alice", model.ModeSolo, s.settings(2))
	s.Require().NoError(err)

	for _, name := range []string{"ivanov", "petrov", "sidorov"} {
		_, err := s.orchestrator.SubmitGuess(s.ctx, session.ID, "alice", name)
		s.Require().NoError(err)
	}
	s.Require().Len(s.channel.ofType(model.EventRoundStarted), 1)

	s.orchestrator.onPauseEnd(session.ID, "stale-token")
	s.Require().Len(s.channel.ofType(model.EventRoundStarted), 1)

	// The real skip still advances exactly one round
	s.Require().NoError(s.orchestrator.SkipPause(s.ctx, session.ID, "alice"))
	s.Require().Len(s.channel.ofType(model.EventRoundStarted), 2)
}

// Vs-bot flow

func (s *OrchestratorSuite) TestBotTakesItsTurn() {
	s.random.QueueIntn(0) // alice opens the first round

	session, err := s.orchestrator.StartGame(s.ctx, "bob", model.ModeVsBot, s.settings(1))
	s.Require().NoError(err)
	s.Require().True(session.IsMultiplayer())

	_, err = s.orchestrator.SubmitGuess(s.ctx, session.ID, "bob", "ivanov")
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		return len(s.channel.ofType(model.EventBotGuessed)) == 1
	}, time.Second, 5*time.Millisecond)

	// The turn came back to the human
	snap, err := s.orchestrator.Snapshot(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(model.SlotIndex(0), snap.ActiveSlot)
	s.Len(snap.Named, 2)
}

func (s *OrchestratorSuite) TestBotAccountIsFlagged() {
	s.random.QueueIntn(0)

	_, err := s.orchestrator.StartGame(s.ctx, "bob", model.ModeVsBot, s.settings(1))
	s.Require().NoError(err)

	botUser, err := s.storage.GetUser(s.ctx, bot.Nickname)
	s.Require().NoError(err)
	s.True(botUser.IsBot)
}

// PvP flow

func (s *OrchestratorSuite) startPvP(rounds int) model.SessionID {
	_, err := s.orchestrator.CreateOpenGame(s.ctx, "alice", s.settings(rounds))
	s.Require().NoError(err)

	s.random.QueueIntn(0) // alice opens the first round
	session, err := s.orchestrator.JoinOpenGame(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	return session.ID
}

func (s *OrchestratorSuite) TestJoinOwnGameRejected() {
	_, err := s.orchestrator.CreateOpenGame(s.ctx, "alice", s.settings(2))
	s.Require().NoError(err)

	_, err = s.orchestrator.JoinOpenGame(s.ctx, "alice", "alice")
	s.ErrorIs(err, model.ErrSelfJoin)

	games, err := s.orchestrator.OpenGames(s.ctx)
	s.Require().NoError(err)
	s.Len(games, 1)
}

func (s *OrchestratorSuite) TestLobbyNotifications() {
	_, err := s.orchestrator.CreateOpenGame(s.ctx, "alice", s.settings(2))
	s.Require().NoError(err)
	s.Equal(1, s.channel.lobbyCount())

	s.Require().NoError(s.orchestrator.CancelOpenGame(s.ctx, "alice"))
	s.Equal(2, s.channel.lobbyCount())
}

func (s *OrchestratorSuite) TestGuessOutOfTurn() {
	room := s.startPvP(2)

	_, err := s.orchestrator.SubmitGuess(s.ctx, room, "bob", "ivanov")
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *OrchestratorSuite) TestTurnsAlternate() {
	room := s.startPvP(2)

	_, err := s.orchestrator.SubmitGuess(s.ctx, room, "alice", "ivanov")
	s.Require().NoError(err)

	snap, err := s.orchestrator.Snapshot(s.ctx, room)
	s.Require().NoError(err)
	s.Equal(model.SlotIndex(1), snap.ActiveSlot)

	_, err = s.orchestrator.SubmitGuess(s.ctx, room, "bob", "petrov")
	s.Require().NoError(err)

	snap, err = s.orchestrator.Snapshot(s.ctx, room)
	s.Require().NoError(err)
	s.Equal(model.SlotIndex(0), snap.ActiveSlot)
}

func (s *OrchestratorSuite) TestSurrenderAwardsOpponent() {
	room := s.startPvP(2)

	s.Require().NoError(s.orchestrator.Surrender(s.ctx, room, "alice"))

	snap, err := s.orchestrator.Snapshot(s.ctx, room)
	s.Require().NoError(err)
	s.Equal(1.0, snap.Scores[1])
	s.Equal(0.0, snap.Scores[0])
}

func (s *OrchestratorSuite) TestSurrenderDuringPauseRejected() {
	room := s.startPvP(2)
	s.Require().NoError(s.orchestrator.Surrender(s.ctx, room, "alice"))

	// Alice is still the active slot during the pause, but the round
	// is settled. A second surrender must not score it again.
	err := s.orchestrator.Surrender(s.ctx, room, "alice")
	s.ErrorIs(err, model.ErrNotYourTurn)

	snap, err := s.orchestrator.Snapshot(s.ctx, room)
	s.Require().NoError(err)
	s.Equal(1.0, snap.Scores[1])
	s.Equal(0.0, snap.Scores[0])

	session, err := s.storage.GetSession(s.ctx, room)
	s.Require().NoError(err)
	s.Len(session.History, 1)
}

func (s *OrchestratorSuite) TestGuessDuringPauseRejected() {
	room := s.startPvP(2)
	s.Require().NoError(s.orchestrator.Surrender(s.ctx, room, "alice"))

	s.clock.Advance(time.Minute)
	_, err := s.orchestrator.SubmitGuess(s.ctx, room, "alice", "ivanov")
	s.ErrorIs(err, model.ErrNotYourTurn)

	session, err := s.storage.GetSession(s.ctx, room)
	s.Require().NoError(err)
	s.Len(session.History, 1)
	s.Empty(session.Named)
}

func (s *OrchestratorSuite) TestPvPSkipNeedsBothVotes() {
	room := s.startPvP(2)
	s.Require().NoError(s.orchestrator.Surrender(s.ctx, room, "alice"))

	s.Require().NoError(s.orchestrator.SkipPause(s.ctx, room, "alice"))
	s.Require().Len(s.channel.ofType(model.EventRoundStarted), 1)
	s.Require().Len(s.channel.ofType(model.EventSkipVoteUpdate), 1)

	s.Require().NoError(s.orchestrator.SkipPause(s.ctx, room, "bob"))
	s.Require().Len(s.channel.ofType(model.EventRoundStarted), 2)

	// The timed-out player opens the next round
	snap, err := s.orchestrator.Snapshot(s.ctx, room)
	s.Require().NoError(err)
	s.Equal(model.SlotIndex(0), snap.ActiveSlot)
}

func (s *OrchestratorSuite) TestPvPDecidedGameUpdatesRatings() {
	room := s.startPvP(2)

	// Alice forfeits both rounds; bob wins 2-0
	s.Require().NoError(s.orchestrator.Surrender(s.ctx, room, "alice"))
	s.Require().NoError(s.orchestrator.SkipPause(s.ctx, room, "alice"))
	s.Require().NoError(s.orchestrator.SkipPause(s.ctx, room, "bob"))

	s.Require().NoError(s.orchestrator.Surrender(s.ctx, room, "alice"))
	s.Require().NoError(s.orchestrator.SkipPause(s.ctx, room, "alice"))
	s.Require().NoError(s.orchestrator.SkipPause(s.ctx, room, "bob"))

	overEvents := s.channel.ofType(model.EventGameOver)
	s.Require().Len(overEvents, 1)
	payload := overEvents[0].Payload.(model.GameOverPayload)
	s.Equal(2.0, payload.FinalScores[1])
	s.Require().Len(payload.RatingChanges, 2)
	s.Greater(payload.RatingChanges[1].New, payload.RatingChanges[1].Old)
	s.Less(payload.RatingChanges[0].New, payload.RatingChanges[0].Old)

	winner, err := s.storage.GetUser(s.ctx, "bob")
	s.Require().NoError(err)
	s.Greater(winner.Rating, model.DefaultRating)
}

func (s *OrchestratorSuite) TestUnreachableScoreEndsEarly() {
	room := s.startPvP(3)

	// Bob wins rounds 1 and 2; with one round left the 2-0 gap is
	// insurmountable. Alice opens round 1, and as the timed-out loser
	// she opens round 2 as well.
	for i := 0; i < 2; i++ {
		snap, err := s.orchestrator.Snapshot(s.ctx, room)
		s.Require().NoError(err)
		s.Require().Equal(model.Nickname("alice"), snap.Players[snap.ActiveSlot].Nickname)

		s.Require().NoError(s.orchestrator.Surrender(s.ctx, room, "alice"))
		s.Require().NoError(s.orchestrator.SkipPause(s.ctx, room, "alice"))
		s.Require().NoError(s.orchestrator.SkipPause(s.ctx, room, "bob"))
	}

	overEvents := s.channel.ofType(model.EventGameOver)
	s.Require().Len(overEvents, 1)
	s.Equal(model.EndReasonUnreachableScore, overEvents[0].Payload.(model.GameOverPayload).EndReason)
}

// Disconnects

func (s *OrchestratorSuite) TestDisconnectTearsDownSession() {
	room := s.startPvP(2)

	s.orchestrator.HandleDisconnect(s.ctx, "alice")

	s.Require().Len(s.channel.ofType(model.EventOpponentDisconnected), 1)
	_, err := s.orchestrator.Snapshot(s.ctx, room)
	s.ErrorIs(err, model.ErrSessionNotFound)

	// Abandoned games are never rated
	user, err := s.storage.GetUser(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(model.DefaultRating, user.Rating)
}

func (s *OrchestratorSuite) TestDisconnectWithdrawsOpenGame() {
	_, err := s.orchestrator.CreateOpenGame(s.ctx, "alice", s.settings(2))
	s.Require().NoError(err)

	s.orchestrator.HandleDisconnect(s.ctx, "alice")

	games, err := s.orchestrator.OpenGames(s.ctx)
	s.Require().NoError(err)
	s.Empty(games)
}
