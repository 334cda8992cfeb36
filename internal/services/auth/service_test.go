package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/quincybot/rosterquiz/internal/dependencies/mocks"
	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/storage/memory"
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
	s.service = New(s.storage, s.clock, DefaultConfig())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestRegisterAndLogin() {
	session, err := s.service.Register(s.ctx, "alice", "secret")
	s.Require().NoError(err)
	s.Equal(model.Nickname("alice"), session.Nickname)
	s.NotEmpty(session.Token)

	login, err := s.service.Login(s.ctx, "alice", "secret")
	s.Require().NoError(err)
	s.Equal(model.Nickname("alice"), login.Nickname)
}

func (s *ServiceSuite) TestRegisterDuplicateNickname() {
	_, err := s.service.Register(s.ctx, "alice", "secret")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "other")
	s.ErrorIs(err, model.ErrNicknameTaken)
}

func (s *ServiceSuite) TestRegisterValidation() {
	_, err := s.service.Register(s.ctx, "ab", "secret")
	s.ErrorIs(err, model.ErrInvalidNickname)

	_, err = s.service.Register(s.ctx, "a-very-long-nickname", "secret")
	s.ErrorIs(err, model.ErrInvalidNickname)

	_, err = s.service.Register(s.ctx, "bad name!", "secret")
	s.ErrorIs(err, model.ErrInvalidNickname)

	_, err = s.service.Register(s.ctx, "alice", "ab")
	s.ErrorIs(err, model.ErrInvalidPassword)
}

func (s *ServiceSuite) TestRegisterCyrillicNickname() {
	_, err := s.service.Register(s.ctx, "Квинси_77", "secret")
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	_, err := s.service.Register(s.ctx, "alice", "secret")
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "secret")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginPasswordlessAccount() {
	_, err := s.service.Guest(s.ctx, "alice")
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "alice", "anything")
	s.ErrorIs(err, model.ErrNoPasswordSet)
}

func (s *ServiceSuite) TestGuestCreatesRatingRecord() {
	session, err := s.service.Guest(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.DefaultRating, session.User.Rating)

	user, err := s.storage.GetUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.DefaultRating, user.Rating)
}

func (s *ServiceSuite) TestGuestRejectedForPasswordedAccount() {
	_, err := s.service.Register(s.ctx, "alice", "secret")
	s.Require().NoError(err)

	_, err = s.service.Guest(s.ctx, "alice")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestValidateSession() {
	session, err := s.service.Register(s.ctx, "alice", "secret")
	s.Require().NoError(err)

	got, err := s.service.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal(model.Nickname("alice"), got.Nickname)

	_, err = s.service.ValidateSession("sess_bogus")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestSessionExpiry() {
	session, err := s.service.Register(s.ctx, "alice", "secret")
	s.Require().NoError(err)

	s.clock.Advance(25 * time.Hour)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestInvalidateSession() {
	session, err := s.service.Register(s.ctx, "alice", "secret")
	s.Require().NoError(err)

	s.service.InvalidateSession(session.Token)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestCleanExpiredSessions() {
	old, err := s.service.Register(s.ctx, "alice", "secret")
	s.Require().NoError(err)

	s.clock.Advance(25 * time.Hour)
	fresh, err := s.service.Guest(s.ctx, "bob")
	s.Require().NoError(err)

	s.service.CleanExpiredSessions()

	_, err = s.service.ValidateSession(old.Token)
	s.ErrorIs(err, ErrInvalidSession)

	_, err = s.service.ValidateSession(fresh.Token)
	s.NoError(err)
}
