package lobby

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/quincybot/rosterquiz/internal/dependencies/mocks"
	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/storage/memory"
	"github.com/quincybot/rosterquiz/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestCreateOpenGame() {
	game, err := s.service.CreateOpenGame(s.ctx, "alice", model.DefaultSettings())
	s.Require().NoError(err)
	s.Equal(model.Nickname("alice"), game.Creator)
}

func (s *ServiceSuite) TestOnePendingGamePerCreator() {
	_, err := s.service.CreateOpenGame(s.ctx, "alice", model.DefaultSettings())
	s.Require().NoError(err)

	_, err = s.service.CreateOpenGame(s.ctx, "alice", model.DefaultSettings())
	s.ErrorIs(err, model.ErrOpenGameExists)
}

func (s *ServiceSuite) TestListingsIncludeCreatorRating() {
	user := model.NewUser("alice", s.clock.Now())
	user.Rating = 1621
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))

	_, err := s.service.CreateOpenGame(s.ctx, "alice", model.Settings{
		Rounds:   8,
		TimeBank: time.Minute,
	})
	s.Require().NoError(err)

	listings, err := s.service.Listings(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(listings, 1)
	s.Equal(model.Nickname("alice"), listings[0].Creator)
	s.Equal(1621, listings[0].CreatorRating)
	s.Equal(8, listings[0].Rounds)
	s.Equal(60, listings[0].TimeBankSecs)
}

func (s *ServiceSuite) TestListingsOldestFirst() {
	// Saved out of creation order and with creators that would sort
	// differently by name
	for _, g := range []*model.OpenGame{
		{Creator: "zoe", Settings: model.DefaultSettings(), CreatedAt: s.clock.Now().Add(time.Minute)},
		{Creator: "alice", Settings: model.DefaultSettings(), CreatedAt: s.clock.Now().Add(3 * time.Minute)},
		{Creator: "bob", Settings: model.DefaultSettings(), CreatedAt: s.clock.Now().Add(2 * time.Minute)},
	} {
		s.Require().NoError(s.storage.SaveOpenGame(s.ctx, g))
	}

	listings, err := s.service.Listings(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(listings, 3)
	s.Equal(model.Nickname("zoe"), listings[0].Creator)
	s.Equal(model.Nickname("bob"), listings[1].Creator)
	s.Equal(model.Nickname("alice"), listings[2].Creator)
}

func (s *ServiceSuite) TestClaimRemovesListing() {
	_, err := s.service.CreateOpenGame(s.ctx, "alice", model.DefaultSettings())
	s.Require().NoError(err)

	game, err := s.service.Claim(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.Equal(model.Nickname("alice"), game.Creator)

	_, err = s.service.Claim(s.ctx, "alice", "carol")
	s.ErrorIs(err, model.ErrOpenGameNotFound)
}

func (s *ServiceSuite) TestSelfJoinRestoresListing() {
	_, err := s.service.CreateOpenGame(s.ctx, "alice", model.DefaultSettings())
	s.Require().NoError(err)

	_, err = s.service.Claim(s.ctx, "alice", "alice")
	s.ErrorIs(err, model.ErrSelfJoin)

	// The listing survives the rejected join
	listings, err := s.service.Listings(s.ctx)
	s.Require().NoError(err)
	s.Len(listings, 1)
}

func (s *ServiceSuite) TestCancel() {
	_, err := s.service.CreateOpenGame(s.ctx, "alice", model.DefaultSettings())
	s.Require().NoError(err)

	s.Require().NoError(s.service.Cancel(s.ctx, "alice"))

	listings, err := s.service.Listings(s.ctx)
	s.Require().NoError(err)
	s.Empty(listings)
}
