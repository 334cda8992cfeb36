package storage

import (
	"context"

	"github.com/quincybot/rosterquiz/internal/model"
)

// Storage defines the interface for data persistence.
//
// Users persist across matches; sessions and open games live only as
// long as the match or lobby entry they describe. Implementations must
// support safe concurrent insert/delete/lookup: the session and
// open-game tables are touched by multiple rooms' lifecycle events.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, nickname model.Nickname) (*model.User, error)
	// ListUsersByRating returns users ordered by rating descending,
	// excluding bot accounts.
	ListUsersByRating(ctx context.Context) ([]*model.User, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error

	// Open game (lobby) operations
	SaveOpenGame(ctx context.Context, game *model.OpenGame) error
	GetOpenGame(ctx context.Context, creator model.Nickname) (*model.OpenGame, error)
	ListOpenGames(ctx context.Context) ([]*model.OpenGame, error)
	// TakeOpenGame removes and returns the creator's open game in one
	// step, so two joiners cannot both claim it.
	TakeOpenGame(ctx context.Context, creator model.Nickname) (*model.OpenGame, error)
	DeleteOpenGame(ctx context.Context, creator model.Nickname) error

	// Roster operations
	SaveRosters(ctx context.Context, rosters map[model.ClubName][]model.RosterEntry) error
	GetRosters(ctx context.Context) (map[model.ClubName][]model.RosterEntry, error)
}
