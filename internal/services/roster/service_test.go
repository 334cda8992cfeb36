package roster

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage)
	s.ctx = context.Background()
}

func (s *ServiceSuite) writeCSV(content string) string {
	path := filepath.Join(s.T().TempDir(), "players.csv")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *ServiceSuite) TestLoadFromFile() {
	path := s.writeCSV("Ivan Ivanov,Spartak,Vanya\nPyotr Petrov,Spartak\nOleg Sidorov,Zenit\n")

	s.Require().NoError(s.service.LoadFromFile(s.ctx, path))

	s.Equal([]model.ClubName{"Spartak", "Zenit"}, s.service.Clubs())

	roster, err := s.service.Roster("Spartak")
	s.Require().NoError(err)
	s.Require().Len(roster, 2)

	// Last token of the full name is the primary surname
	s.Equal("Ivanov", roster[0].Primary)
	s.True(roster[0].HasAlias("ivanov"))
	s.True(roster[0].HasAlias("vanya"))
	s.False(roster[0].HasAlias("ivan"))

	s.Equal("Petrov", roster[1].Primary)
	s.True(roster[1].HasAlias("petrov"))
}

func (s *ServiceSuite) TestLoadNormalizesAliases() {
	path := s.writeCSV("Артём Сёменов,ЦСКА, Сёма \n")

	s.Require().NoError(s.service.LoadFromFile(s.ctx, path))

	roster, err := s.service.Roster("ЦСКА")
	s.Require().NoError(err)
	s.Require().Len(roster, 1)
	s.Equal("Сёменов", roster[0].Primary)
	s.True(roster[0].HasAlias("семенов"))
	s.True(roster[0].HasAlias("сема"))
}

func (s *ServiceSuite) TestLoadSkipsBlankRecords() {
	path := s.writeCSV("Ivan Ivanov,Spartak\n,Spartak\n")

	s.Require().NoError(s.service.LoadFromFile(s.ctx, path))

	roster, err := s.service.Roster("Spartak")
	s.Require().NoError(err)
	s.Len(roster, 1)
}

func (s *ServiceSuite) TestLoadEmptyFileFails() {
	path := s.writeCSV("")
	s.ErrorIs(s.service.LoadFromFile(s.ctx, path), model.ErrRosterUnavailable)
}

func (s *ServiceSuite) TestLoadMissingFileFails() {
	err := s.service.LoadFromFile(s.ctx, filepath.Join(s.T().TempDir(), "missing.csv"))
	s.Error(err)
}

func (s *ServiceSuite) TestLoadPersistsToStorage() {
	path := s.writeCSV("Ivan Ivanov,Spartak\n")
	s.Require().NoError(s.service.LoadFromFile(s.ctx, path))

	other := New(s.storage)
	s.Require().NoError(other.LoadFromStorage(s.ctx))

	roster, err := other.Roster("Spartak")
	s.Require().NoError(err)
	s.Len(roster, 1)
}

func (s *ServiceSuite) TestRosterUnknownClub() {
	s.Require().NoError(s.service.LoadClubs(map[model.ClubName][]model.RosterEntry{
		"Spartak": {{Primary: "Ivanov", Aliases: []string{"ivanov"}}},
	}))

	_, err := s.service.Roster("Dynamo")
	s.ErrorIs(err, model.ErrClubNotFound)
}

func (s *ServiceSuite) TestRosterBeforeLoad() {
	_, err := s.service.Roster("Spartak")
	s.ErrorIs(err, model.ErrRosterUnavailable)
	s.False(s.service.Loaded())
}
