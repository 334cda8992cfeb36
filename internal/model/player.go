package model

import "time"

// Nickname uniquely identifies a player across the system.
// Nicknames are unique by construction (registration rejects duplicates).
type Nickname string

// SlotIndex is a player position within a session: 0 or 1.
type SlotIndex int

// Opponent returns the other slot in a two-player session.
func (s SlotIndex) Opponent() SlotIndex {
	return 1 - s
}

// PlayerSlot is a seat in a game session
type PlayerSlot struct {
	Index    SlotIndex
	Nickname Nickname
	IsBot    bool
}

// User is a persistent player record with Glicko-2 rating state
type User struct {
	Nickname     Nickname
	PasswordHash string // empty for casual (unregistered) players and bots
	Rating       float64
	Deviation    float64
	Volatility   float64
	IsBot        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Glicko-2 defaults for a player with no rated games
const (
	DefaultRating     = 1500.0
	DefaultDeviation  = 350.0
	DefaultVolatility = 0.06
)

// NewUser returns a User with the default unrated Glicko-2 state
func NewUser(nickname Nickname, now time.Time) *User {
	return &User{
		Nickname:   nickname,
		Rating:     DefaultRating,
		Deviation:  DefaultDeviation,
		Volatility: DefaultVolatility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
