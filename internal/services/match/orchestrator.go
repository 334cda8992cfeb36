package match

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/quincybot/rosterquiz/internal/dependencies/clock"
	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/scheduler"
	"github.com/quincybot/rosterquiz/internal/services/auth"
	"github.com/quincybot/rosterquiz/internal/services/bot"
	"github.com/quincybot/rosterquiz/internal/services/game"
	"github.com/quincybot/rosterquiz/internal/services/guess"
	"github.com/quincybot/rosterquiz/internal/services/lobby"
	"github.com/quincybot/rosterquiz/internal/services/rating"
	"github.com/quincybot/rosterquiz/internal/services/roster"
)

// Channel delivers events to connected clients. Implementations must
// not block.
type Channel interface {
	ToRoom(room model.SessionID, event model.Event)
	ToLobby(event model.Event)
}

// Config holds orchestrator timing options
type Config struct {
	PauseBetweenRounds time.Duration
	BotThinkDelay      time.Duration
}

// DefaultConfig returns default orchestrator configuration
func DefaultConfig() Config {
	return Config{
		PauseBetweenRounds: 10 * time.Second,
		BotThinkDelay:      500 * time.Millisecond,
	}
}

// GuessOutcome is the synchronous reply to a submitted guess
type GuessOutcome struct {
	Outcome       guess.Outcome
	CorrectedName string // primary surname for correct and typo outcomes
	TimedOut      bool   // the guess was right but the bank ran dry
}

// Orchestrator drives whole matches: it seats players, runs the round
// and turn loop, reacts to timer expiry, and tears sessions down. All
// state transitions for a room happen under that room's lock.
type Orchestrator struct {
	games     *game.Controller
	lobby     *lobby.Service
	auth      *auth.Service
	ratings   *rating.Service
	rosters   *roster.Service
	bot       bot.Strategy
	scheduler *scheduler.Scheduler
	channel   Channel
	clock     clock.Clock
	logger    *slog.Logger
	config    Config

	mu          sync.Mutex
	rooms       map[model.SessionID]*sync.Mutex
	playerRooms map[model.Nickname]model.SessionID
}

// New creates a new match orchestrator
func New(
	games *game.Controller,
	lobbyService *lobby.Service,
	authService *auth.Service,
	ratings *rating.Service,
	rosters *roster.Service,
	botStrategy bot.Strategy,
	sched *scheduler.Scheduler,
	channel Channel,
	clock clock.Clock,
	logger *slog.Logger,
	config Config,
) *Orchestrator {
	if config.PauseBetweenRounds == 0 {
		config.PauseBetweenRounds = DefaultConfig().PauseBetweenRounds
	}
	if config.BotThinkDelay == 0 {
		config.BotThinkDelay = DefaultConfig().BotThinkDelay
	}
	return &Orchestrator{
		games:       games,
		lobby:       lobbyService,
		auth:        authService,
		ratings:     ratings,
		rosters:     rosters,
		bot:         botStrategy,
		scheduler:   sched,
		channel:     channel,
		clock:       clock,
		logger:      logger,
		config:      config,
		rooms:       make(map[model.SessionID]*sync.Mutex),
		playerRooms: make(map[model.Nickname]model.SessionID),
	}
}

// StartGame begins a solo or vs-bot match for the given player
func (o *Orchestrator) StartGame(ctx context.Context, nickname model.Nickname, mode model.Mode, settings model.Settings) (*model.Session, error) {
	if mode != model.ModeSolo && mode != model.ModeVsBot {
		return nil, model.ErrInvalidSettings
	}

	if _, err := o.auth.EnsureUser(ctx, nickname); err != nil {
		return nil, err
	}

	players := []model.PlayerSlot{{Index: 0, Nickname: nickname}}
	if mode == model.ModeVsBot {
		if _, err := o.auth.EnsureBot(ctx, bot.Nickname); err != nil {
			return nil, err
		}
		players = append(players, model.PlayerSlot{Index: 1, Nickname: bot.Nickname, IsBot: true})
	}

	session, err := o.games.CreateSession(ctx, mode, players, settings)
	if err != nil {
		return nil, err
	}

	o.registerRoom(session)
	o.runRoomStep(session.ID, func(ctx context.Context) {
		o.advanceRound(ctx, session.ID)
	})

	return session, nil
}

// CreateOpenGame advertises a PvP game and notifies the lobby
func (o *Orchestrator) CreateOpenGame(ctx context.Context, creator model.Nickname, settings model.Settings) (*model.OpenGame, error) {
	if _, err := o.auth.EnsureUser(ctx, creator); err != nil {
		return nil, err
	}

	open, err := o.lobby.CreateOpenGame(ctx, creator, settings)
	if err != nil {
		return nil, err
	}

	o.notifyLobby(ctx)
	return open, nil
}

// CancelOpenGame withdraws the creator's open game
func (o *Orchestrator) CancelOpenGame(ctx context.Context, creator model.Nickname) error {
	if err := o.lobby.Cancel(ctx, creator); err != nil {
		return err
	}
	o.notifyLobby(ctx)
	return nil
}

// OpenGames lists advertised games with creator ratings
func (o *Orchestrator) OpenGames(ctx context.Context) ([]model.OpenGameListing, error) {
	return o.lobby.Listings(ctx)
}

// JoinOpenGame claims an open game and starts the PvP match
func (o *Orchestrator) JoinOpenGame(ctx context.Context, creator, joiner model.Nickname) (*model.Session, error) {
	open, err := o.lobby.Claim(ctx, creator, joiner)
	if err != nil {
		return nil, err
	}
	o.notifyLobby(ctx)

	if _, err := o.auth.EnsureUser(ctx, creator); err != nil {
		return nil, err
	}
	if _, err := o.auth.EnsureUser(ctx, joiner); err != nil {
		return nil, err
	}

	players := []model.PlayerSlot{
		{Index: 0, Nickname: creator},
		{Index: 1, Nickname: joiner},
	}

	session, err := o.games.CreateSession(ctx, model.ModePvP, players, open.Settings)
	if err != nil {
		return nil, err
	}

	o.logger.Info("pvp match starting",
		slog.String("session_id", string(session.ID)),
		slog.String("creator", string(creator)),
		slog.String("joiner", string(joiner)),
	)

	o.registerRoom(session)
	o.runRoomStep(session.ID, func(ctx context.Context) {
		o.advanceRound(ctx, session.ID)
	})

	return session, nil
}

// SubmitGuess processes a guess from a player. Wrong guesses cost
// nothing; a right guess is charged the wall-clock think time and can
// still lose the round if that drains the bank.
func (o *Orchestrator) SubmitGuess(ctx context.Context, room model.SessionID, nickname model.Nickname, text string) (GuessOutcome, error) {
	var outcome GuessOutcome

	err := o.withRoom(room, func() error {
		session, err := o.games.GetSession(ctx, room)
		if err != nil {
			return err
		}

		slot, ok := session.SlotOf(nickname)
		if !ok {
			return model.ErrNotInSession
		}
		if session.TurnToken == "" || slot != session.ActiveSlot {
			// No turn in progress (inter-round pause), or not this
			// player's turn
			return model.ErrNotYourTurn
		}

		result, err := o.games.ProcessGuess(session, text)
		if err != nil {
			return err
		}

		outcome.Outcome = result.Outcome
		if result.Entry != nil {
			outcome.CorrectedName = result.Entry.Primary
		}

		if result.Outcome != guess.Correct && result.Outcome != guess.CorrectTypo {
			return nil
		}

		elapsed := o.games.Elapsed(session)
		o.scheduler.Cancel(room, scheduler.KindTurn)

		if o.games.DeductTime(session, slot, elapsed) {
			// The right answer came too late
			outcome.TimedOut = true
			return o.timeout(ctx, session, slot, model.RoundTimeout)
		}

		if err := o.games.CommitNamedEntry(ctx, session, result.Entry, slot); err != nil {
			return err
		}
		o.channel.ToRoom(room, o.event(model.EventTurnUpdated, room, o.snapshot(session)))

		over, err := o.games.RoundOver(session)
		if err != nil {
			return err
		}
		if over {
			return o.finishRound(ctx, session, model.RoundCompleted)
		}
		return o.beginTurn(ctx, session)
	})

	return outcome, err
}

// Surrender forfeits the current round for the active player
func (o *Orchestrator) Surrender(ctx context.Context, room model.SessionID, nickname model.Nickname) error {
	return o.withRoom(room, func() error {
		session, err := o.games.GetSession(ctx, room)
		if err != nil {
			return err
		}

		slot, ok := session.SlotOf(nickname)
		if !ok {
			return model.ErrNotInSession
		}
		if session.TurnToken == "" || slot != session.ActiveSlot {
			return model.ErrNotYourTurn
		}

		o.scheduler.Cancel(room, scheduler.KindTurn)
		return o.timeout(ctx, session, slot, model.RoundTimeout)
	})
}

// SkipPause requests skipping the inter-round pause. Solo and vs-bot
// games skip immediately; PvP skips once both players have voted.
func (o *Orchestrator) SkipPause(ctx context.Context, room model.SessionID, nickname model.Nickname) error {
	return o.withRoom(room, func() error {
		session, err := o.games.GetSession(ctx, room)
		if err != nil {
			return err
		}

		slot, ok := session.SlotOf(nickname)
		if !ok {
			return model.ErrNotInSession
		}

		if session.PauseToken == "" {
			// No pause in progress
			return nil
		}

		if session.Mode != model.ModePvP {
			o.scheduler.Cancel(room, scheduler.KindPause)
			return o.startRound(ctx, session)
		}

		all, err := o.games.RecordSkipVote(ctx, session, slot)
		if err != nil {
			return err
		}

		o.channel.ToRoom(room, o.event(model.EventSkipVoteUpdate, room, model.SkipVotePayload{
			Votes:   len(session.SkipVotes),
			Players: len(session.Players),
		}))

		if all {
			o.scheduler.Cancel(room, scheduler.KindPause)
			return o.startRound(ctx, session)
		}
		return nil
	})
}

// Snapshot returns the current client-visible state of a room
func (o *Orchestrator) Snapshot(ctx context.Context, room model.SessionID) (*model.Snapshot, error) {
	var snap *model.Snapshot
	err := o.withRoom(room, func() error {
		session, err := o.games.GetSession(ctx, room)
		if err != nil {
			return err
		}
		snap = o.snapshot(session)
		return nil
	})
	return snap, err
}

// RoomOf reports the active session a player is seated in, if any
func (o *Orchestrator) RoomOf(nickname model.Nickname) (model.SessionID, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	room, ok := o.playerRooms[nickname]
	return room, ok
}

// HandleDisconnect withdraws the player's open game and tears down any
// active session. Abandoned games are never rated.
func (o *Orchestrator) HandleDisconnect(ctx context.Context, nickname model.Nickname) {
	if err := o.lobby.Cancel(ctx, nickname); err == nil {
		o.notifyLobby(ctx)
	}

	room, ok := o.RoomOf(nickname)
	if !ok {
		return
	}

	_ = o.withRoom(room, func() error {
		session, err := o.games.GetSession(ctx, room)
		if err != nil {
			return err
		}

		o.logger.Info("player disconnected mid-game",
			slog.String("session_id", string(room)),
			slog.String("nickname", string(nickname)),
		)

		o.channel.ToRoom(room, o.event(model.EventOpponentDisconnected, room, model.SlotInfo{
			Nickname: nickname,
		}))
		return o.teardown(ctx, session)
	})
}

// Shutdown stops all timers
func (o *Orchestrator) Shutdown() {
	o.scheduler.Shutdown()
}

// Round and turn flow. Every entry below runs with the room lock held.

// advanceRound starts the next round or finishes the game
func (o *Orchestrator) advanceRound(ctx context.Context, room model.SessionID) {
	session, err := o.games.GetSession(ctx, room)
	if err != nil {
		o.logger.Error("failed to load session for round advance",
			slog.String("session_id", string(room)),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := o.startRound(ctx, session); err != nil {
		o.logger.Error("failed to start round",
			slog.String("session_id", string(room)),
			slog.String("error", err.Error()),
		)
	}
}

func (o *Orchestrator) startRound(ctx context.Context, session *model.Session) error {
	o.scheduler.Cancel(session.ID, scheduler.KindPause)

	started, err := o.games.StartNextRound(ctx, session)
	if err != nil {
		return err
	}
	if !started {
		return o.finishGame(ctx, session)
	}

	o.channel.ToRoom(session.ID, o.event(model.EventRoundStarted, session.ID, o.snapshot(session)))
	return o.beginTurn(ctx, session)
}

// beginTurn arms the appropriate timer for the active slot: a think
// delay for the bot, the remaining time bank for a human. An already
// empty bank times out immediately.
func (o *Orchestrator) beginTurn(ctx context.Context, session *model.Session) error {
	token, remaining, err := o.games.BeginTurn(ctx, session)
	if err != nil {
		return err
	}

	if session.ActivePlayer().IsBot {
		o.scheduler.Arm(session.ID, scheduler.KindBot, token, o.config.BotThinkDelay, o.onBotTurn)
		return nil
	}

	if remaining <= 0 {
		return o.timeout(ctx, session, session.ActiveSlot, model.RoundTimeout)
	}

	o.scheduler.Arm(session.ID, scheduler.KindTurn, token, remaining, o.onTurnExpired)
	o.channel.ToRoom(session.ID, o.event(model.EventTurnUpdated, session.ID, o.snapshot(session)))
	return nil
}

// onTurnExpired fires when a human's time bank runs out
func (o *Orchestrator) onTurnExpired(room model.SessionID, token model.TimerToken) {
	o.runRoomStep(room, func(ctx context.Context) {
		session, err := o.games.GetSession(ctx, room)
		if err != nil {
			return
		}
		if session.TurnToken != token {
			// Superseded: the turn ended before the timer landed
			return
		}
		if err := o.timeout(ctx, session, session.ActiveSlot, model.RoundTimeout); err != nil {
			o.logger.Error("failed to apply timeout",
				slog.String("session_id", string(room)),
				slog.String("error", err.Error()),
			)
		}
	})
}

// onBotTurn fires after the bot's think delay
func (o *Orchestrator) onBotTurn(room model.SessionID, token model.TimerToken) {
	o.runRoomStep(room, func(ctx context.Context) {
		session, err := o.games.GetSession(ctx, room)
		if err != nil {
			return
		}
		if session.TurnToken != token || !session.ActivePlayer().IsBot {
			return
		}

		entries, err := o.rosters.Roster(session.CurrentClub)
		if err != nil {
			return
		}

		if pick, ok := o.bot.PickGuess(entries, session.NamedPrimaries); ok {
			botSlot := session.ActiveSlot
			if err := o.games.CommitNamedEntry(ctx, session, pick, botSlot); err != nil {
				return
			}
			o.channel.ToRoom(room, o.event(model.EventBotGuessed, room, model.BotGuessedPayload{
				Surname: pick.Primary,
			}))
			o.channel.ToRoom(room, o.event(model.EventTurnUpdated, room, o.snapshot(session)))
		}

		over, err := o.games.RoundOver(session)
		if err != nil {
			return
		}
		if over {
			_ = o.finishRound(ctx, session, model.RoundCompleted)
			return
		}
		_ = o.beginTurn(ctx, session)
	})
}

// timeout settles a drained or surrendered turn and closes the round
func (o *Orchestrator) timeout(ctx context.Context, session *model.Session, loser model.SlotIndex, result model.RoundResult) error {
	if err := o.games.ApplyTimeout(ctx, session, loser); err != nil {
		return err
	}

	o.channel.ToRoom(session.ID, o.event(model.EventTimerExpired, session.ID, model.TimerExpiredPayload{
		Slot:      loser,
		TimeBanks: banksSeconds(session),
	}))

	return o.finishRound(ctx, session, result)
}

// finishRound publishes the summary and arms the inter-round pause
func (o *Orchestrator) finishRound(ctx context.Context, session *model.Session, result model.RoundResult) error {
	o.scheduler.Cancel(session.ID, scheduler.KindTurn)
	o.scheduler.Cancel(session.ID, scheduler.KindBot)

	summary, err := o.games.FinishRound(ctx, session, result)
	if err != nil {
		return err
	}

	entries, err := o.rosters.Roster(session.CurrentClub)
	if err != nil {
		return err
	}
	fullRoster := make([]string, len(entries))
	for i, e := range entries {
		fullRoster[i] = e.Primary
	}

	o.channel.ToRoom(session.ID, o.event(model.EventRoundSummary, session.ID, model.RoundSummaryPayload{
		Club:       summary.Club,
		FullRoster: fullRoster,
		Named:      session.Named,
		Players:    playersInfo(session),
		Scores:     session.Scores,
		Result:     result,
	}))

	token, err := o.games.BeginPause(ctx, session)
	if err != nil {
		return err
	}
	o.scheduler.Arm(session.ID, scheduler.KindPause, token, o.config.PauseBetweenRounds, o.onPauseEnd)
	return nil
}

// onPauseEnd fires when the inter-round pause elapses
func (o *Orchestrator) onPauseEnd(room model.SessionID, token model.TimerToken) {
	o.runRoomStep(room, func(ctx context.Context) {
		session, err := o.games.GetSession(ctx, room)
		if err != nil {
			return
		}
		if session.PauseToken != token {
			return
		}
		if err := o.startRound(ctx, session); err != nil {
			o.logger.Error("failed to start round after pause",
				slog.String("session_id", string(room)),
				slog.String("error", err.Error()),
			)
		}
	})
}

// finishGame rates decided PvP matches, reports the result and tears
// the session down
func (o *Orchestrator) finishGame(ctx context.Context, session *model.Session) error {
	payload := model.GameOverPayload{
		Mode:        session.Mode,
		Players:     playersInfo(session),
		FinalScores: session.Scores,
		History:     session.History,
		EndReason:   session.EndReason,
	}

	if session.Mode == model.ModePvP && session.Scores[0] != session.Scores[1] {
		winnerSlot := model.SlotIndex(0)
		if session.Scores[1] > session.Scores[0] {
			winnerSlot = 1
		}
		loserSlot := winnerSlot.Opponent()

		changes, err := o.rateMatch(ctx, session, winnerSlot, loserSlot)
		if err != nil {
			o.logger.Error("failed to update ratings",
				slog.String("session_id", string(session.ID)),
				slog.String("error", err.Error()),
			)
		} else {
			payload.RatingChanges = changes
		}
	}

	o.logger.Info("game over",
		slog.String("session_id", string(session.ID)),
		slog.String("end_reason", string(session.EndReason)),
		slog.Float64("score_0", session.Scores[0]),
		slog.Float64("score_1", session.Scores[1]),
	)

	o.channel.ToRoom(session.ID, o.event(model.EventGameOver, session.ID, payload))
	return o.teardown(ctx, session)
}

func (o *Orchestrator) rateMatch(ctx context.Context, session *model.Session, winnerSlot, loserSlot model.SlotIndex) (map[model.SlotIndex]model.RatingChange, error) {
	winner, err := o.auth.EnsureUser(ctx, session.Slot(winnerSlot).Nickname)
	if err != nil {
		return nil, err
	}
	loser, err := o.auth.EnsureUser(ctx, session.Slot(loserSlot).Nickname)
	if err != nil {
		return nil, err
	}

	winnerChange, loserChange, err := o.ratings.RecordWin(ctx, winner, loser)
	if err != nil {
		return nil, err
	}

	return map[model.SlotIndex]model.RatingChange{
		winnerSlot: {Nickname: winnerChange.Nickname, Old: winnerChange.Old, New: winnerChange.New},
		loserSlot:  {Nickname: loserChange.Nickname, Old: loserChange.Old, New: loserChange.New},
	}, nil
}

func (o *Orchestrator) teardown(ctx context.Context, session *model.Session) error {
	o.scheduler.CancelRoom(session.ID)

	o.mu.Lock()
	delete(o.rooms, session.ID)
	for _, p := range session.Players {
		if o.playerRooms[p.Nickname] == session.ID {
			delete(o.playerRooms, p.Nickname)
		}
	}
	o.mu.Unlock()

	return o.games.DeleteSession(ctx, session.ID)
}

// Room lock plumbing

func (o *Orchestrator) registerRoom(session *model.Session) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.rooms[session.ID] = &sync.Mutex{}
	for _, p := range session.Players {
		if !p.IsBot {
			o.playerRooms[p.Nickname] = session.ID
		}
	}
}

// withRoom runs fn holding the room's lock. A missing lock means the
// session is already gone.
func (o *Orchestrator) withRoom(room model.SessionID, fn func() error) error {
	o.mu.Lock()
	lock, ok := o.rooms[room]
	o.mu.Unlock()

	if !ok {
		return model.ErrSessionNotFound
	}

	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// runRoomStep is withRoom for timer callbacks and detached steps,
// where there is no caller to return an error to
func (o *Orchestrator) runRoomStep(room model.SessionID, fn func(ctx context.Context)) {
	ctx := context.Background()
	_ = o.withRoom(room, func() error {
		fn(ctx)
		return nil
	})
}

// Event helpers

func (o *Orchestrator) event(t model.EventType, room model.SessionID, payload any) model.Event {
	return model.Event{
		Type:      t,
		Timestamp: o.clock.Now(),
		Room:      room,
		Payload:   payload,
	}
}

func (o *Orchestrator) notifyLobby(ctx context.Context) {
	listings, err := o.lobby.Listings(ctx)
	if err != nil {
		o.logger.Error("failed to list open games", slog.String("error", err.Error()))
		return
	}
	o.channel.ToLobby(model.Event{
		Type:      model.EventLobbyUpdated,
		Timestamp: o.clock.Now(),
		Payload:   listings,
	})
}

func (o *Orchestrator) snapshot(session *model.Session) *model.Snapshot {
	rosterSize := 0
	if entries, err := o.rosters.Roster(session.CurrentClub); err == nil {
		rosterSize = len(entries)
	}

	return &model.Snapshot{
		Room:        session.ID,
		Mode:        session.Mode,
		Players:     playersInfo(session),
		Scores:      session.Scores,
		Round:       session.RoundIndex + 1,
		TotalRounds: session.Settings.Rounds,
		Club:        session.CurrentClub,
		Named:       session.Named,
		RosterSize:  rosterSize,
		ActiveSlot:  session.ActiveSlot,
		TimeBanks:   banksSeconds(session),
	}
}

func playersInfo(session *model.Session) map[model.SlotIndex]model.SlotInfo {
	info := make(map[model.SlotIndex]model.SlotInfo, len(session.Players))
	for _, p := range session.Players {
		info[p.Index] = model.SlotInfo{Nickname: p.Nickname, IsBot: p.IsBot}
	}
	return info
}

func banksSeconds(session *model.Session) map[model.SlotIndex]float64 {
	banks := make(map[model.SlotIndex]float64, len(session.TimeBanks))
	for slot, bank := range session.TimeBanks {
		banks[slot] = bank.Seconds()
	}
	return banks
}
