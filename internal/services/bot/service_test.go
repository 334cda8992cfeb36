package bot

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/quincybot/rosterquiz/internal/dependencies/mocks"
	"github.com/quincybot/rosterquiz/internal/model"
)

type StrategySuite struct {
	suite.Suite
	random   *mocks.MockRandom
	strategy *RandomStrategy
	roster   []model.RosterEntry
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategySuite))
}

func (s *StrategySuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.strategy = NewRandomStrategy(s.random)
	s.roster = []model.RosterEntry{
		{Primary: "Ivanov", Aliases: []string{"ivanov"}},
		{Primary: "Petrov", Aliases: []string{"petrov"}},
		{Primary: "Sidorov", Aliases: []string{"sidorov"}},
	}
}

func (s *StrategySuite) TestPicksFromUnclaimedOnly() {
	named := map[string]bool{"Ivanov": true}
	s.random.QueueIntn(0)

	entry, ok := s.strategy.PickGuess(s.roster, named)
	s.Require().True(ok)
	s.Equal("Petrov", entry.Primary)
}

func (s *StrategySuite) TestPicksByRandomIndex() {
	s.random.QueueIntn(2)

	entry, ok := s.strategy.PickGuess(s.roster, map[string]bool{})
	s.Require().True(ok)
	s.Equal("Sidorov", entry.Primary)
}

func (s *StrategySuite) TestExhaustedRoster() {
	named := map[string]bool{"Ivanov": true, "Petrov": true, "Sidorov": true}

	_, ok := s.strategy.PickGuess(s.roster, named)
	s.False(ok)
}
