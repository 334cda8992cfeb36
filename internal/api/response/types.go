package response

import (
	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/services/auth"
	"github.com/quincybot/rosterquiz/internal/services/match"
)

// Player represents a player account in API responses
type Player struct {
	Nickname string `json:"nickname"`
	Rating   int    `json:"rating"`
	HasPass  bool   `json:"has_password"`
	IsBot    bool   `json:"is_bot,omitempty"`
}

// PlayerFromModel converts a model.User to a response Player
func PlayerFromModel(u *model.User) Player {
	return Player{
		Nickname: string(u.Nickname),
		Rating:   int(u.Rating),
		HasPass:  u.PasswordHash != "",
		IsBot:    u.IsBot,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.User),
		SessionToken: s.Token,
	}
}

// LeaderboardEntry is one row of the rating table
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Nickname string `json:"nickname"`
	Rating   int    `json:"rating"`
}

// LeaderboardFromModel converts the rating-ordered user list
func LeaderboardFromModel(users []*model.User) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Rank:     i + 1,
			Nickname: string(u.Nickname),
			Rating:   int(u.Rating),
		}
	}
	return entries
}

// StartGameResponse is the response after a game begins
type StartGameResponse struct {
	Room  string          `json:"room"`
	State *model.Snapshot `json:"state"`
}

// GuessResponse is the synchronous result of a submitted guess.
// Push events carry the resulting turn and round changes.
type GuessResponse struct {
	Outcome       string `json:"outcome"`
	CorrectedName string `json:"corrected_name,omitempty"`
	TimedOut      bool   `json:"timed_out,omitempty"`
}

// GuessResponseFromOutcome converts a match.GuessOutcome
func GuessResponseFromOutcome(o match.GuessOutcome) GuessResponse {
	return GuessResponse{
		Outcome:       o.Outcome.String(),
		CorrectedName: o.CorrectedName,
		TimedOut:      o.TimedOut,
	}
}
