package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/quincybot/rosterquiz/internal/dependencies/mocks"
	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/services/auth"
	"github.com/quincybot/rosterquiz/internal/services/match"
	"github.com/quincybot/rosterquiz/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	// Long pause so tests drive round transitions explicitly
	matchCfg := match.Config{
		PauseBetweenRounds: time.Hour,
		BotThinkDelay:      5 * time.Millisecond,
	}

	app := newWithDependencies(store, mockClock, mockRandom, auth.DefaultConfig(), matchCfg, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadTestRosters loads a small set of club rosters for testing
func (t *TestApp) LoadTestRosters() error {
	clubs := map[model.ClubName][]model.RosterEntry{
		"Spartak": {
			{Primary: "Ivanov", Aliases: []string{"ivanov", "vanya"}},
			{Primary: "Petrov", Aliases: []string{"petrov"}},
			{Primary: "Sidorov", Aliases: []string{"sidorov"}},
		},
		"Torpedo": {
			{Primary: "Orlov", Aliases: []string{"orlov"}},
			{Primary: "Sokolov", Aliases: []string{"sokolov"}},
		},
		"Zenit": {
			{Primary: "Smirnov", Aliases: []string{"smirnov"}},
			{Primary: "Volkov", Aliases: []string{"volkov"}},
		},
	}
	return t.RosterService.LoadClubs(clubs)
}
