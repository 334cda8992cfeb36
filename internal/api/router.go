package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/quincybot/rosterquiz/internal/api/handler"
	"github.com/quincybot/rosterquiz/internal/api/middleware"
	"github.com/quincybot/rosterquiz/internal/services/auth"
	"github.com/quincybot/rosterquiz/internal/services/match"
	"github.com/quincybot/rosterquiz/internal/services/rating"
	"github.com/quincybot/rosterquiz/internal/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	AuthService   *auth.Service
	RatingService *rating.Service
	Orchestrator  *match.Orchestrator
	Broadcaster   *sse.Broadcaster
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.RatingService)
	lobbyHandler := handler.NewLobbyHandler(cfg.Orchestrator)
	gameHandler := handler.NewGameHandler(cfg.Orchestrator)
	eventsHandler := handler.NewEventsHandler(cfg.Broadcaster, cfg.Orchestrator)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Auth routes (no auth required for signing in)
	api.HandleFunc("/auth/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", playerHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/guest", playerHandler.Guest).Methods(http.MethodPost)

	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(authMiddleware)
	authProtected.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)

	// Leaderboard is public
	api.HandleFunc("/leaderboard", playerHandler.Leaderboard).Methods(http.MethodGet)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)

	// Game routes (all require auth)
	games := api.PathPrefix("/games").Subrouter()
	games.Use(authMiddleware)
	games.HandleFunc("/open", lobbyHandler.List).Methods(http.MethodGet)
	games.HandleFunc("/open", lobbyHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("/open", lobbyHandler.Cancel).Methods(http.MethodDelete)
	games.HandleFunc("/open/{creator}/join", lobbyHandler.Join).Methods(http.MethodPost)
	games.HandleFunc("/start", gameHandler.Start).Methods(http.MethodPost)
	games.HandleFunc("/{room}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{room}/guess", gameHandler.Guess).Methods(http.MethodPost)
	games.HandleFunc("/{room}/surrender", gameHandler.Surrender).Methods(http.MethodPost)
	games.HandleFunc("/{room}/skip-pause", gameHandler.SkipPause).Methods(http.MethodPost)
	games.HandleFunc("/{room}/events", eventsHandler.Room).Methods(http.MethodGet)

	// Lobby event stream
	events := api.PathPrefix("/events").Subrouter()
	events.Use(authMiddleware)
	events.HandleFunc("", eventsHandler.Lobby).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
