package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quincybot/rosterquiz/internal/dependencies/clock"
	"github.com/quincybot/rosterquiz/internal/dependencies/random"
	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/services/guess"
	"github.com/quincybot/rosterquiz/internal/services/roster"
	"github.com/quincybot/rosterquiz/internal/storage"
)

const (
	maxRounds   = 50
	minTimeBank = 10 * time.Second
	maxTimeBank = 10 * time.Minute
)

// Controller manages the per-session state machine: round sequencing,
// turn flow, guess processing and time bank accounting
type Controller struct {
	storage storage.Storage
	rosters *roster.Service
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new game controller
func NewController(
	storage storage.Storage,
	rosters *roster.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		rosters: rosters,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// CreateSession initializes a new session for the given players. The
// club sequence is sampled without replacement, clamped to the number
// of available clubs.
func (c *Controller) CreateSession(
	ctx context.Context,
	mode model.Mode,
	players []model.PlayerSlot,
	settings model.Settings,
) (*model.Session, error) {
	if err := validatePlayers(mode, players); err != nil {
		return nil, err
	}

	settings = normalizeSettings(settings)
	if settings.Rounds > maxRounds || settings.TimeBank < minTimeBank || settings.TimeBank > maxTimeBank {
		return nil, model.ErrInvalidSettings
	}

	clubs := c.rosters.Clubs()
	if len(clubs) == 0 {
		return nil, model.ErrRosterUnavailable
	}

	if settings.Rounds > len(clubs) {
		settings.Rounds = len(clubs)
	}

	sequence := make([]model.ClubName, 0, settings.Rounds)
	for _, idx := range c.random.Sample(len(clubs), settings.Rounds) {
		sequence = append(sequence, clubs[idx])
	}

	now := c.clock.Now()
	session := &model.Session{
		ID:             model.SessionID(uuid.NewString()),
		Mode:           mode,
		Players:        players,
		Settings:       settings,
		ClubSequence:   sequence,
		RoundIndex:     -1,
		ActiveSlot:     0,
		Scores:         map[model.SlotIndex]float64{0: 0, 1: 0},
		TimeBanks:      map[model.SlotIndex]time.Duration{0: settings.TimeBank, 1: settings.TimeBank},
		NamedPrimaries: map[string]bool{},
		SkipVotes:      map[model.SlotIndex]bool{},
		EndReason:      model.EndReasonNormal,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(session.ID)),
		slog.String("mode", string(mode)),
		slog.Int("rounds", settings.Rounds),
	)

	return session, nil
}

// GetSession loads a session from storage
func (c *Controller) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, id)
}

// StartNextRound advances to the next round, or reports the game over
// when none remain. Time banks refill at the start of every round.
func (c *Controller) StartNextRound(ctx context.Context, session *model.Session) (bool, error) {
	if reason, over := session.GameOverReason(); over {
		session.EndReason = reason
		return false, nil
	}

	session.RoundIndex++
	session.ActiveSlot = c.pickFirstPlayer(session)
	session.PrevRoundLoser = nil

	session.TimeBanks[0] = session.Settings.TimeBank
	session.TimeBanks[1] = session.Settings.TimeBank

	session.CurrentClub = session.ClubSequence[session.RoundIndex]
	session.Named = nil
	session.NamedPrimaries = map[string]bool{}
	session.SkipVotes = map[model.SlotIndex]bool{}
	session.PauseToken = ""
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return false, err
	}

	c.logger.Info("round started",
		slog.String("session_id", string(session.ID)),
		slog.Int("round", session.RoundIndex+1),
		slog.String("club", string(session.CurrentClub)),
		slog.Int("first_slot", int(session.ActiveSlot)),
	)

	return true, nil
}

// The first round opens with a coin flip. Afterwards the loser of a
// timed-out round goes first; failing that, the opponent of the last
// successful guesser; failing that, alternation by round parity.
func (c *Controller) pickFirstPlayer(session *model.Session) model.SlotIndex {
	if !session.IsMultiplayer() {
		return 0
	}
	switch {
	case session.RoundIndex == 0:
		return model.SlotIndex(c.random.Intn(2))
	case session.PrevRoundLoser != nil:
		return *session.PrevRoundLoser
	case session.LastGuesser != nil:
		return session.LastGuesser.Opponent()
	default:
		return model.SlotIndex(session.RoundIndex % 2)
	}
}

// BeginTurn stamps the turn start time and issues a fresh turn token.
// Returns the token and the active player's remaining time bank.
func (c *Controller) BeginTurn(ctx context.Context, session *model.Session) (model.TimerToken, time.Duration, error) {
	session.TurnToken = model.TimerToken(uuid.NewString())
	session.TurnStartedAt = c.clock.Now()
	session.UpdatedAt = session.TurnStartedAt

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return "", 0, err
	}

	return session.TurnToken, session.TimeBanks[session.ActiveSlot], nil
}

// ProcessGuess matches free text against the current round's roster
func (c *Controller) ProcessGuess(session *model.Session, text string) (guess.Result, error) {
	entries, err := c.rosters.Roster(session.CurrentClub)
	if err != nil {
		return guess.Result{}, err
	}
	return guess.Match(text, entries, session.NamedPrimaries), nil
}

// DeductTime charges elapsed wall-clock time against a slot's bank.
// Returns true if the bank went negative, in which case it is floored
// at zero and the turn counts as a timeout. A bank landing exactly on
// zero commits the guess; that player's next turn expires immediately.
func (c *Controller) DeductTime(session *model.Session, slot model.SlotIndex, elapsed time.Duration) bool {
	session.TimeBanks[slot] -= elapsed
	if session.TimeBanks[slot] < 0 {
		session.TimeBanks[slot] = 0
		return true
	}
	return false
}

// CommitNamedEntry records a correct guess and passes the turn in
// multiplayer modes. The caller must have checked the entry is not
// already named.
func (c *Controller) CommitNamedEntry(
	ctx context.Context,
	session *model.Session,
	entry *model.RosterEntry,
	slot model.SlotIndex,
) error {
	session.Named = append(session.Named, model.NamedEntry{
		Surname: entry.Primary,
		BySlot:  slot,
	})
	session.NamedPrimaries[entry.Primary] = true
	guesser := slot
	session.LastGuesser = &guesser

	if session.IsMultiplayer() {
		session.ActiveSlot = session.ActiveSlot.Opponent()
	}
	session.TurnToken = ""
	session.UpdatedAt = c.clock.Now()

	return c.storage.SaveSession(ctx, session)
}

// RoundOver reports whether every roster member has been named
func (c *Controller) RoundOver(session *model.Session) (bool, error) {
	entries, err := c.rosters.Roster(session.CurrentClub)
	if err != nil {
		return false, err
	}
	return len(session.Named) >= len(entries), nil
}

// ApplyTimeout zeroes the loser's bank and, in multiplayer modes,
// awards the opponent a full point and makes the loser open the next
// round
func (c *Controller) ApplyTimeout(ctx context.Context, session *model.Session, loser model.SlotIndex) error {
	session.TimeBanks[loser] = 0
	session.TurnToken = ""

	if session.IsMultiplayer() {
		session.Scores[loser.Opponent()]++
		l := loser
		session.PrevRoundLoser = &l
	}
	session.UpdatedAt = c.clock.Now()

	return c.storage.SaveSession(ctx, session)
}

// FinishRound closes out the current round: completed multiplayer
// rounds split a consolation point, and the summary is appended to the
// session history
func (c *Controller) FinishRound(ctx context.Context, session *model.Session, result model.RoundResult) (*model.RoundSummary, error) {
	entries, err := c.rosters.Roster(session.CurrentClub)
	if err != nil {
		return nil, err
	}

	if result == model.RoundCompleted && session.IsMultiplayer() {
		session.Scores[0] += 0.5
		session.Scores[1] += 0.5
	}

	namedBy := map[model.SlotIndex]int{0: 0, 1: 0}
	for _, e := range session.Named {
		namedBy[e.BySlot]++
	}

	summary := model.RoundSummary{
		Club:       session.CurrentClub,
		NamedBy:    namedBy,
		RosterSize: len(entries),
		Result:     result,
	}
	session.History = append(session.History, summary)
	session.LastRoundResult = result
	session.SkipVotes = map[model.SlotIndex]bool{}
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("round finished",
		slog.String("session_id", string(session.ID)),
		slog.Int("round", session.RoundIndex+1),
		slog.String("result", string(result)),
	)

	return &summary, nil
}

// BeginPause issues a fresh pause token for the inter-round break
func (c *Controller) BeginPause(ctx context.Context, session *model.Session) (model.TimerToken, error) {
	session.PauseToken = model.TimerToken(uuid.NewString())
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return "", err
	}
	return session.PauseToken, nil
}

// RecordSkipVote registers a pause-skip vote. Returns true when every
// player has voted.
func (c *Controller) RecordSkipVote(ctx context.Context, session *model.Session, slot model.SlotIndex) (bool, error) {
	session.SkipVotes[slot] = true
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return false, err
	}
	return len(session.SkipVotes) >= len(session.Players), nil
}

// DeleteSession removes a finished session from storage
func (c *Controller) DeleteSession(ctx context.Context, id model.SessionID) error {
	return c.storage.DeleteSession(ctx, id)
}

// Elapsed reports wall-clock time since the current turn began
func (c *Controller) Elapsed(session *model.Session) time.Duration {
	return c.clock.Since(session.TurnStartedAt)
}

func validatePlayers(mode model.Mode, players []model.PlayerSlot) error {
	switch mode {
	case model.ModeSolo:
		if len(players) != 1 {
			return model.ErrInvalidSettings
		}
	case model.ModeVsBot, model.ModePvP:
		if len(players) != 2 {
			return model.ErrInvalidSettings
		}
	default:
		return model.ErrInvalidSettings
	}
	for i, p := range players {
		if p.Index != model.SlotIndex(i) || p.Nickname == "" {
			return model.ErrInvalidSettings
		}
	}
	return nil
}

func normalizeSettings(settings model.Settings) model.Settings {
	defaults := model.DefaultSettings()
	if settings.Rounds <= 0 {
		settings.Rounds = defaults.Rounds
	}
	if settings.TimeBank <= 0 {
		settings.TimeBank = defaults.TimeBank
	}
	return settings
}
