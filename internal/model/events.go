package model

import "time"

// EventType identifies the type of outbound event
type EventType string

const (
	// Lobby events
	EventLobbyUpdated EventType = "lobby_updated"

	// In-game events
	EventRoundStarted         EventType = "round_started"
	EventTurnUpdated          EventType = "turn_updated"
	EventBotGuessed           EventType = "bot_guessed"
	EventTimerExpired         EventType = "timer_expired"
	EventRoundSummary         EventType = "round_summary"
	EventSkipVoteUpdate       EventType = "skip_vote_update"
	EventGameOver             EventType = "game_over"
	EventOpponentDisconnected EventType = "opponent_disconnected"
)

// Event is the envelope pushed to clients over the outbound channel
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Room      SessionID `json:"room,omitempty"`
	Payload   any       `json:"payload,omitempty"`
}

// SlotInfo is the client-visible view of a player slot
type SlotInfo struct {
	Nickname Nickname `json:"nickname"`
	IsBot    bool     `json:"is_bot,omitempty"`
}

// Snapshot is the full client-visible state of a session, broadcast on
// round start and turn changes and returned from state queries.
type Snapshot struct {
	Room        SessionID               `json:"room"`
	Mode        Mode                    `json:"mode"`
	Players     map[SlotIndex]SlotInfo  `json:"players"`
	Scores      map[SlotIndex]float64   `json:"scores"`
	Round       int                     `json:"round"` // 1-based
	TotalRounds int                     `json:"total_rounds"`
	Club        ClubName                `json:"club"`
	Named       []NamedEntry            `json:"named"`
	RosterSize  int                     `json:"roster_size"`
	ActiveSlot  SlotIndex               `json:"active_slot"`
	TimeBanks   map[SlotIndex]float64   `json:"time_banks"` // seconds remaining
}

// TimerExpiredPayload reports a drained time bank
type TimerExpiredPayload struct {
	Slot      SlotIndex             `json:"slot"`
	TimeBanks map[SlotIndex]float64 `json:"time_banks"`
}

// BotGuessedPayload reports the bot's pick
type BotGuessedPayload struct {
	Surname string `json:"surname"`
}

// SkipVotePayload reports pause-skip voting progress
type SkipVotePayload struct {
	Votes   int `json:"votes"`
	Players int `json:"players"`
}

// RoundSummaryPayload is pushed when a round ends, before the pause
type RoundSummaryPayload struct {
	Club       ClubName               `json:"club"`
	FullRoster []string               `json:"full_roster"`
	Named      []NamedEntry           `json:"named"`
	Players    map[SlotIndex]SlotInfo `json:"players"`
	Scores     map[SlotIndex]float64  `json:"scores"`
	Result     RoundResult            `json:"result"`
}

// RatingChange reports a rating delta from a rated game
type RatingChange struct {
	Nickname Nickname `json:"nickname"`
	Old      int      `json:"old"`
	New      int      `json:"new"`
}

// GameOverPayload is the end-of-game report
type GameOverPayload struct {
	Mode          Mode                     `json:"mode"`
	Players       map[SlotIndex]SlotInfo   `json:"players"`
	FinalScores   map[SlotIndex]float64    `json:"final_scores"`
	History       []RoundSummary           `json:"history"`
	EndReason     EndReason                `json:"end_reason"`
	RatingChanges map[SlotIndex]RatingChange `json:"rating_changes,omitempty"`
}
