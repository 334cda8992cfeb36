package lobby

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/quincybot/rosterquiz/internal/dependencies/clock"
	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/storage"
)

// Service manages the list of open games waiting for an opponent.
// Each player may advertise at most one open game.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new lobby service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// CreateOpenGame advertises a new open game for the creator
func (s *Service) CreateOpenGame(ctx context.Context, creator model.Nickname, settings model.Settings) (*model.OpenGame, error) {
	_, err := s.storage.GetOpenGame(ctx, creator)
	if err == nil {
		return nil, model.ErrOpenGameExists
	}
	if !errors.Is(err, model.ErrOpenGameNotFound) {
		return nil, err
	}

	game := &model.OpenGame{
		Creator:   creator,
		Settings:  settings,
		CreatedAt: s.clock.Now(),
	}

	if err := s.storage.SaveOpenGame(ctx, game); err != nil {
		return nil, err
	}

	s.logger.Info("open game created",
		slog.String("creator", string(creator)),
		slog.Int("rounds", settings.Rounds),
		slog.Duration("time_bank", settings.TimeBank),
	)

	return game, nil
}

// Listings returns the open games annotated with creator ratings,
// oldest first. The redis backend returns games in set order, so the
// sort happens here rather than per backend.
func (s *Service) Listings(ctx context.Context) ([]model.OpenGameListing, error) {
	games, err := s.storage.ListOpenGames(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.Before(games[j].CreatedAt)
	})

	listings := make([]model.OpenGameListing, 0, len(games))
	for _, game := range games {
		ratingValue := int(model.DefaultRating)
		if user, err := s.storage.GetUser(ctx, game.Creator); err == nil {
			ratingValue = int(user.Rating)
		}
		listings = append(listings, model.OpenGameListing{
			Creator:       game.Creator,
			CreatorRating: ratingValue,
			Rounds:        game.Settings.Rounds,
			TimeBankSecs:  int(game.Settings.TimeBank / time.Second),
		})
	}
	return listings, nil
}

// Claim atomically removes an open game so its creator and a joiner
// can be seated. Joining your own game fails and the listing is
// restored.
func (s *Service) Claim(ctx context.Context, creator, joiner model.Nickname) (*model.OpenGame, error) {
	game, err := s.storage.TakeOpenGame(ctx, creator)
	if err != nil {
		return nil, err
	}

	if creator == joiner {
		if restoreErr := s.storage.SaveOpenGame(ctx, game); restoreErr != nil {
			s.logger.Error("failed to restore open game after self-join",
				slog.String("creator", string(creator)),
				slog.String("error", restoreErr.Error()),
			)
		}
		return nil, model.ErrSelfJoin
	}

	return game, nil
}

// Cancel removes the creator's open game
func (s *Service) Cancel(ctx context.Context, creator model.Nickname) error {
	return s.storage.DeleteOpenGame(ctx, creator)
}
