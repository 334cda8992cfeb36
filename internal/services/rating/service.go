package rating

import (
	"context"
	"log/slog"

	glicko2 "github.com/zelenin/go-glicko2"

	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/storage"
)

// Change describes one player's rating before and after an update
type Change struct {
	Nickname model.Nickname
	Old      int
	New      int
}

// Service applies Glicko-2 rating updates after ranked matches
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new rating service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// RecordWin rates a decided match and persists both players. Tied
// matches are never rated, so there is no draw path.
func (s *Service) RecordWin(ctx context.Context, winner, loser *model.User) (winnerChange, loserChange Change, err error) {
	winnerChange = Change{Nickname: winner.Nickname, Old: int(winner.Rating)}
	loserChange = Change{Nickname: loser.Nickname, Old: int(loser.Rating)}

	w := glicko2.NewPlayer(glicko2.NewRating(winner.Rating, winner.Deviation, winner.Volatility))
	l := glicko2.NewPlayer(glicko2.NewRating(loser.Rating, loser.Deviation, loser.Volatility))

	period := glicko2.NewRatingPeriod()
	period.AddMatch(w, l, glicko2.MATCH_RESULT_WIN)
	period.Calculate()

	winner.Rating = w.Rating().R()
	winner.Deviation = w.Rating().Rd()
	winner.Volatility = w.Rating().Sigma()
	loser.Rating = l.Rating().R()
	loser.Deviation = l.Rating().Rd()
	loser.Volatility = l.Rating().Sigma()

	if err = s.storage.SaveUser(ctx, winner); err != nil {
		return winnerChange, loserChange, err
	}
	if err = s.storage.SaveUser(ctx, loser); err != nil {
		return winnerChange, loserChange, err
	}

	winnerChange.New = int(winner.Rating)
	loserChange.New = int(loser.Rating)

	s.logger.Info("ratings updated",
		slog.String("winner", string(winner.Nickname)),
		slog.Int("winner_rating", winnerChange.New),
		slog.String("loser", string(loser.Nickname)),
		slog.Int("loser_rating", loserChange.New),
	)

	return winnerChange, loserChange, nil
}

// Leaderboard returns ranked players ordered by rating, best first
func (s *Service) Leaderboard(ctx context.Context) ([]*model.User, error) {
	return s.storage.ListUsersByRating(ctx)
}
