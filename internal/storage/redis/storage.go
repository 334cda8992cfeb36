package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Keep the leaderboard ZSET in sync; bots are never ranked
	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(user.Nickname), data, 0)
	if user.IsBot {
		pipe.ZRem(ctx, leaderboardKey(), string(user.Nickname))
	} else {
		pipe.ZAdd(ctx, leaderboardKey(), redis.Z{
			Score:  user.Rating,
			Member: string(user.Nickname),
		})
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, nickname model.Nickname) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(nickname)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) ListUsersByRating(ctx context.Context) ([]*model.User, error) {
	nicknames, err := s.client.ZRevRange(ctx, leaderboardKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(nicknames) == 0 {
		return []*model.User{}, nil
	}

	keys := make([]string, len(nicknames))
	for i, n := range nicknames {
		keys[i] = userKey(model.Nickname(n))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // User record expired or deleted
		}
		var user model.User
		if err := json.Unmarshal([]byte(val.(string)), &user); err != nil {
			continue
		}
		users = append(users, &user)
	}

	return users, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, sessionKey(session.ID), data, s.cfg.SessionTTL).Err()
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

// Open game operations

func (s *Storage) SaveOpenGame(ctx context.Context, game *model.OpenGame) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	key := openGameKey(game.Creator)
	indexKey := openGamesIndexKey()

	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, s.cfg.OpenGameTTL)
	pipe.SAdd(ctx, indexKey, string(game.Creator))
	pipe.Expire(ctx, indexKey, s.cfg.OpenGameTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetOpenGame(ctx context.Context, creator model.Nickname) (*model.OpenGame, error) {
	data, err := s.client.Get(ctx, openGameKey(creator)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrOpenGameNotFound
		}
		return nil, err
	}

	var game model.OpenGame
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) ListOpenGames(ctx context.Context) ([]*model.OpenGame, error) {
	creators, err := s.client.SMembers(ctx, openGamesIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(creators) == 0 {
		return []*model.OpenGame{}, nil
	}

	keys := make([]string, len(creators))
	for i, c := range creators {
		keys[i] = openGameKey(model.Nickname(c))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.OpenGame, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Entry may have expired
		}
		var game model.OpenGame
		if err := json.Unmarshal([]byte(val.(string)), &game); err != nil {
			continue
		}
		games = append(games, &game)
	}

	return games, nil
}

func (s *Storage) TakeOpenGame(ctx context.Context, creator model.Nickname) (*model.OpenGame, error) {
	// GETDEL makes claim-and-remove a single step, so concurrent
	// joiners cannot both win the entry
	data, err := s.client.GetDel(ctx, openGameKey(creator)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrOpenGameNotFound
		}
		return nil, err
	}

	_ = s.client.SRem(ctx, openGamesIndexKey(), string(creator)).Err()

	var game model.OpenGame
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) DeleteOpenGame(ctx context.Context, creator model.Nickname) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, openGameKey(creator))
	pipe.SRem(ctx, openGamesIndexKey(), string(creator))
	_, err := pipe.Exec(ctx)
	return err
}

// Roster operations

func (s *Storage) SaveRosters(ctx context.Context, rosters map[model.ClubName][]model.RosterEntry) error {
	data, err := json.Marshal(rosters)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, rostersKey(), data, 0).Err()
}

func (s *Storage) GetRosters(ctx context.Context) (map[model.ClubName][]model.RosterEntry, error) {
	data, err := s.client.Get(ctx, rostersKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRosterUnavailable
		}
		return nil, err
	}

	var rosters map[model.ClubName][]model.RosterEntry
	if err := json.Unmarshal(data, &rosters); err != nil {
		return nil, err
	}
	return rosters, nil
}
