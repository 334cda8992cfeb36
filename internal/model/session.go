package model

import "time"

// SessionID uniquely identifies a game room
type SessionID string

// Mode is the kind of match being played
type Mode string

const (
	ModeSolo  Mode = "solo"   // one player, no turn switching or scoring
	ModeVsBot Mode = "vs_bot" // one human against a synthetic opponent
	ModePvP   Mode = "pvp"    // two humans, rating updates at game end
)

// TimerToken identifies the currently armed turn or pause timer for a
// session. A timer whose token no longer matches the session's is stale
// and must not mutate state.
type TimerToken string

// EndReason records why a game ended
type EndReason string

const (
	EndReasonNormal           EndReason = "normal"
	EndReasonUnreachableScore EndReason = "unreachable_score"
)

// RoundResult records how a round finished
type RoundResult string

const (
	RoundCompleted RoundResult = "completed" // full roster named
	RoundTimeout   RoundResult = "timeout"   // a time bank ran out or a player surrendered
)

// Settings are the per-match options chosen at creation
type Settings struct {
	Rounds   int           // number of rounds, >= 1
	TimeBank time.Duration // per-player think time for each round, > 0
}

// DefaultSettings returns the default match settings
func DefaultSettings() Settings {
	return Settings{
		Rounds:   16,
		TimeBank: 90 * time.Second,
	}
}

// NamedEntry records one correctly named roster member within a round
type NamedEntry struct {
	Surname string    `json:"surname"`
	BySlot  SlotIndex `json:"by_slot"`
}

// RoundSummary is the completed-round record kept for the end-of-game report
type RoundSummary struct {
	Club       ClubName          `json:"club"`
	NamedBy    map[SlotIndex]int `json:"named_by"` // how many members each slot named
	RosterSize int               `json:"roster_size"`
	Result     RoundResult       `json:"result"`
}

// Session is one match's full state. It is mutated only through the
// game controller and orchestrator entry points, which serialize access
// per room.
type Session struct {
	ID       SessionID
	Mode     Mode
	Players  []PlayerSlot // 1 entry in solo, 2 otherwise; index == SlotIndex
	Settings Settings

	// ClubSequence is chosen uniformly at random without replacement at
	// creation; round N plays ClubSequence[N]. No club repeats in a session.
	ClubSequence []ClubName

	RoundIndex  int // -1 before the first round
	CurrentClub ClubName
	ActiveSlot  SlotIndex

	Scores         map[SlotIndex]float64 // half points possible
	TimeBanks      map[SlotIndex]time.Duration
	Named          []NamedEntry
	NamedPrimaries map[string]bool // mirrors Named for O(1) membership

	History         []RoundSummary
	EndReason       EndReason
	LastRoundResult RoundResult

	// Carry-over hints for who starts the next round
	LastGuesser    *SlotIndex
	PrevRoundLoser *SlotIndex

	// Control block for the timer supersession scheme
	TurnToken     TimerToken
	PauseToken    TimerToken
	TurnStartedAt time.Time
	SkipVotes     map[SlotIndex]bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsMultiplayer reports whether the session has two player slots
func (s *Session) IsMultiplayer() bool {
	return len(s.Players) > 1
}

// Slot returns the player in the given slot
func (s *Session) Slot(idx SlotIndex) PlayerSlot {
	return s.Players[idx]
}

// SlotOf returns the slot occupied by the given nickname, or false
func (s *Session) SlotOf(nickname Nickname) (SlotIndex, bool) {
	for _, p := range s.Players {
		if p.Nickname == nickname {
			return p.Index, true
		}
	}
	return 0, false
}

// ActivePlayer returns the slot whose turn it is
func (s *Session) ActivePlayer() PlayerSlot {
	return s.Players[s.ActiveSlot]
}

// HasNamed reports whether the given primary surname has already been
// named this round.
func (s *Session) HasNamed(primary string) bool {
	return s.NamedPrimaries[primary]
}

// RoundsRemaining returns the number of rounds after the current one
func (s *Session) RoundsRemaining() int {
	return s.Settings.Rounds - (s.RoundIndex + 1)
}

// ScoreGap returns the absolute score difference between the two slots
func (s *Session) ScoreGap() float64 {
	gap := s.Scores[0] - s.Scores[1]
	if gap < 0 {
		gap = -gap
	}
	return gap
}

// GameOverReason evaluates the game-over predicate: all rounds played,
// or (two-player modes only) a score gap no amount of remaining rounds
// can close. Solo sessions never end early.
func (s *Session) GameOverReason() (EndReason, bool) {
	if s.RoundIndex >= s.Settings.Rounds-1 {
		return EndReasonNormal, true
	}
	if s.IsMultiplayer() && s.ScoreGap() > float64(s.RoundsRemaining()) {
		return EndReasonUnreachableScore, true
	}
	return "", false
}
