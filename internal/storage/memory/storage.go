package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users     map[model.Nickname]*model.User
	sessions  map[model.SessionID]*model.Session
	openGames map[model.Nickname]*model.OpenGame
	rosters   map[model.ClubName][]model.RosterEntry
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:     make(map[model.Nickname]*model.User),
		sessions:  make(map[model.SessionID]*model.Session),
		openGames: make(map[model.Nickname]*model.OpenGame),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

// Users are copied on the way in and out, like the redis backend's
// serialize round-trip. Callers mutate their own copy and persist it
// with SaveUser.
func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *user
	s.users[user.Nickname] = &stored
	return nil
}

func (s *Storage) GetUser(ctx context.Context, nickname model.Nickname) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[nickname]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (s *Storage) ListUsersByRating(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		if u.IsBot {
			continue
		}
		out := *u
		users = append(users, &out)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Rating != users[j].Rating {
			return users[i].Rating > users[j].Rating
		}
		return users[i].Nickname < users[j].Nickname
	})
	return users, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Open game operations

func (s *Storage) SaveOpenGame(ctx context.Context, game *model.OpenGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openGames[game.Creator] = game
	return nil
}

func (s *Storage) GetOpenGame(ctx context.Context, creator model.Nickname) (*model.OpenGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.openGames[creator]
	if !ok {
		return nil, model.ErrOpenGameNotFound
	}
	return game, nil
}

func (s *Storage) ListOpenGames(ctx context.Context) ([]*model.OpenGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*model.OpenGame, 0, len(s.openGames))
	for _, g := range s.openGames {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.Before(games[j].CreatedAt)
	})
	return games, nil
}

func (s *Storage) TakeOpenGame(ctx context.Context, creator model.Nickname) (*model.OpenGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.openGames[creator]
	if !ok {
		return nil, model.ErrOpenGameNotFound
	}
	delete(s.openGames, creator)
	return game, nil
}

func (s *Storage) DeleteOpenGame(ctx context.Context, creator model.Nickname) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.openGames, creator)
	return nil
}

// Roster operations

func (s *Storage) SaveRosters(ctx context.Context, rosters map[model.ClubName][]model.RosterEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[model.ClubName][]model.RosterEntry, len(rosters))
	for club, entries := range rosters {
		copied[club] = append([]model.RosterEntry(nil), entries...)
	}
	s.rosters = copied
	return nil
}

func (s *Storage) GetRosters(ctx context.Context) (map[model.ClubName][]model.RosterEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rosters == nil {
		return nil, model.ErrRosterUnavailable
	}
	copied := make(map[model.ClubName][]model.RosterEntry, len(s.rosters))
	for club, entries := range s.rosters {
		copied[club] = append([]model.RosterEntry(nil), entries...)
	}
	return copied, nil
}
