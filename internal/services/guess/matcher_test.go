package guess

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/quincybot/rosterquiz/internal/model"
)

type MatcherSuite struct {
	suite.Suite
	roster []model.RosterEntry
}

func TestMatcherSuite(t *testing.T) {
	suite.Run(t, new(MatcherSuite))
}

func (s *MatcherSuite) SetupTest() {
	s.roster = []model.RosterEntry{
		{Primary: "Ivanov", Aliases: []string{"ivanov", "vanya"}},
		{Primary: "Petrov", Aliases: []string{"petrov"}},
		{Primary: "Ostrovsky", Aliases: []string{"ostrovsky"}},
	}
}

func (s *MatcherSuite) TestNormalize() {
	s.Equal("ivanov", Normalize("  Ivanov "))
	s.Equal("семенов", Normalize("Сёменов"))
	// Normalization is idempotent
	s.Equal(Normalize("Сёменов"), Normalize(Normalize("Сёменов")))
}

func (s *MatcherSuite) TestExactMatch() {
	res := Match("ivanov", s.roster, map[string]bool{})
	s.Equal(Correct, res.Outcome)
	s.Equal("Ivanov", res.Entry.Primary)
}

func (s *MatcherSuite) TestExactMatchIsCaseAndSpaceInsensitive() {
	res := Match("  IVANOV ", s.roster, map[string]bool{})
	s.Equal(Correct, res.Outcome)
	s.Equal("Ivanov", res.Entry.Primary)
}

func (s *MatcherSuite) TestAliasMatch() {
	res := Match("vanya", s.roster, map[string]bool{})
	s.Equal(Correct, res.Outcome)
	s.Equal("Ivanov", res.Entry.Primary)
}

func (s *MatcherSuite) TestTypoMatch() {
	res := Match("ostrovski", s.roster, map[string]bool{})
	s.Equal(CorrectTypo, res.Outcome)
	s.Equal("Ostrovsky", res.Entry.Primary)
}

func (s *MatcherSuite) TestAlreadyNamed() {
	named := map[string]bool{"Ivanov": true}
	res := Match("ivanov", s.roster, named)
	s.Equal(AlreadyNamed, res.Outcome)
	s.Equal("Ivanov", res.Entry.Primary)
}

func (s *MatcherSuite) TestNotFound() {
	res := Match("Smirnov", s.roster, map[string]bool{})
	s.Equal(NotFound, res.Outcome)
	s.Nil(res.Entry)
}

func (s *MatcherSuite) TestEmptyGuess() {
	res := Match("   ", s.roster, map[string]bool{})
	s.Equal(NotFound, res.Outcome)
}

func (s *MatcherSuite) TestTypoOnUnclaimedBeatsAlreadyNamedAlias() {
	// "ostrovsky" is claimed, "ostrovskiy" is not; a guess sitting
	// between them must land on the unclaimed entry
	roster := []model.RosterEntry{
		{Primary: "Ostrovsky", Aliases: []string{"ostrovsky"}},
		{Primary: "Ostrovskiy", Aliases: []string{"ostrovskiy"}},
	}
	named := map[string]bool{"Ostrovsky": true}

	res := Match("ostrovsky", roster, named)
	s.Equal(CorrectTypo, res.Outcome)
	s.Equal("Ostrovskiy", res.Entry.Primary)
}

func (s *MatcherSuite) TestAllNamedFallsThroughToAlreadyNamed() {
	named := map[string]bool{"Ivanov": true, "Petrov": true, "Ostrovsky": true}
	res := Match("petrov", s.roster, named)
	s.Equal(AlreadyNamed, res.Outcome)
}

func (s *MatcherSuite) TestOutcomeStrings() {
	s.Equal("correct", Correct.String())
	s.Equal("correct_typo", CorrectTypo.String())
	s.Equal("already_named", AlreadyNamed.String())
	s.Equal("not_found", NotFound.String())
}
