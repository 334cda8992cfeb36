package bot

import (
	"github.com/quincybot/rosterquiz/internal/dependencies/random"
	"github.com/quincybot/rosterquiz/internal/model"
)

// Nickname is the reserved account the bot plays under
const Nickname model.Nickname = "Робо-Квинси"

// Strategy picks the bot's next guess from the unclaimed roster
type Strategy interface {
	PickGuess(roster []model.RosterEntry, named map[string]bool) (*model.RosterEntry, bool)
}

// RandomStrategy guesses a uniformly random unclaimed player
type RandomStrategy struct {
	random random.Random
}

var _ Strategy = (*RandomStrategy)(nil)

// NewRandomStrategy creates the default bot strategy
func NewRandomStrategy(random random.Random) *RandomStrategy {
	return &RandomStrategy{random: random}
}

// PickGuess returns a random entry not yet named, or false when the
// roster is exhausted
func (s *RandomStrategy) PickGuess(roster []model.RosterEntry, named map[string]bool) (*model.RosterEntry, bool) {
	remaining := make([]*model.RosterEntry, 0, len(roster))
	for i := range roster {
		if !named[roster[i].Primary] {
			remaining = append(remaining, &roster[i])
		}
	}
	if len(remaining) == 0 {
		return nil, false
	}
	return remaining[s.random.Intn(len(remaining))], true
}
