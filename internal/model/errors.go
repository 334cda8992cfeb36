package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound     = errors.New("user not found")
	ErrNicknameTaken    = errors.New("nickname is already taken")
	ErrInvalidNickname  = errors.New("nickname must be 3-15 letters, digits, _ or -")
	ErrInvalidPassword  = errors.New("password must be at least 3 characters")
	ErrNoPasswordSet    = errors.New("user has no password set")

	// Lobby errors
	ErrOpenGameNotFound = errors.New("open game not found")
	ErrOpenGameExists   = errors.New("player already has an open game")
	ErrSelfJoin         = errors.New("cannot join your own game")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrNotYourTurn     = errors.New("not this player's turn")
	ErrNotInSession    = errors.New("player is not in this session")
	ErrGameOver        = errors.New("game is already over")
	ErrInvalidSettings = errors.New("invalid game settings")

	// Roster errors
	ErrRosterUnavailable = errors.New("roster data unavailable")
	ErrClubNotFound      = errors.New("club not found")
)
