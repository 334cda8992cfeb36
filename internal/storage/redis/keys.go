package redis

import (
	"fmt"

	"github.com/quincybot/rosterquiz/internal/model"
)

// Key prefix for all quiz-related data
const keyPrefix = "rosterquiz"

// userKey returns the Redis key for a User
func userKey(nickname model.Nickname) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, nickname)
}

// leaderboardKey returns the Redis key for the rating-ordered user index
func leaderboardKey() string {
	return fmt.Sprintf("%s:idx:leaderboard", keyPrefix)
}

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// openGameKey returns the Redis key for an OpenGame
func openGameKey(creator model.Nickname) string {
	return fmt.Sprintf("%s:open_game:%s", keyPrefix, creator)
}

// openGamesIndexKey returns the Redis key for the SET of open game keys
func openGamesIndexKey() string {
	return fmt.Sprintf("%s:idx:open_games", keyPrefix)
}

// rostersKey returns the Redis key for the loaded roster data
func rostersKey() string {
	return fmt.Sprintf("%s:rosters", keyPrefix)
}
