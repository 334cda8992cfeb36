package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/quincybot/rosterquiz/internal/dependencies/clock"
	"github.com/quincybot/rosterquiz/internal/dependencies/random"
	"github.com/quincybot/rosterquiz/internal/scheduler"
	"github.com/quincybot/rosterquiz/internal/services/auth"
	"github.com/quincybot/rosterquiz/internal/services/bot"
	"github.com/quincybot/rosterquiz/internal/services/game"
	"github.com/quincybot/rosterquiz/internal/services/lobby"
	"github.com/quincybot/rosterquiz/internal/services/match"
	"github.com/quincybot/rosterquiz/internal/services/rating"
	"github.com/quincybot/rosterquiz/internal/services/roster"
	"github.com/quincybot/rosterquiz/internal/sse"
	"github.com/quincybot/rosterquiz/internal/storage"
	"github.com/quincybot/rosterquiz/internal/storage/memory"
	redisstorage "github.com/quincybot/rosterquiz/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	RosterService *roster.Service
	GameControl   *game.Controller
	AuthService   *auth.Service
	LobbyService  *lobby.Service
	RatingService *rating.Service
	Scheduler     *scheduler.Scheduler
	Orchestrator  *match.Orchestrator

	// Event delivery
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// MatchConfig holds pacing settings for the orchestrator (optional)
	MatchConfig match.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, authCfg, cfg.MatchConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	matchCfg match.Config,
	logger *slog.Logger,
) *App {
	// Create services
	rosterService := roster.New(store)
	gameControl := game.NewController(store, rosterService, clk, rnd, logger)
	authService := auth.New(store, clk, authCfg)
	lobbyService := lobby.New(store, clk, logger)
	ratingService := rating.New(store, logger)
	botStrategy := bot.NewRandomStrategy(rnd)
	sched := scheduler.New(logger)

	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)

	orchestrator := match.New(
		gameControl,
		lobbyService,
		authService,
		ratingService,
		rosterService,
		botStrategy,
		sched,
		broadcaster,
		clk,
		logger,
		matchCfg,
	)

	return &App{
		Storage:       store,
		Clock:         clk,
		Random:        rnd,
		RosterService: rosterService,
		GameControl:   gameControl,
		AuthService:   authService,
		LobbyService:  lobbyService,
		RatingService: ratingService,
		Scheduler:     sched,
		Orchestrator:  orchestrator,
		HubManager:    hubManager,
		Broadcaster:   broadcaster,
	}
}

// Shutdown stops background work: pending timers, open event streams
func (a *App) Shutdown() {
	a.Orchestrator.Shutdown()
	a.Broadcaster.Close()
}
