package handler

import (
	"encoding/json"
	"net/http"

	"github.com/quincybot/rosterquiz/internal/api/middleware"
	"github.com/quincybot/rosterquiz/internal/api/request"
	"github.com/quincybot/rosterquiz/internal/api/response"
	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/services/auth"
	"github.com/quincybot/rosterquiz/internal/services/rating"
)

// PlayerHandler handles account and rating endpoints
type PlayerHandler struct {
	authService   *auth.Service
	ratingService *rating.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service, ratingService *rating.Service) *PlayerHandler {
	return &PlayerHandler{
		authService:   authService,
		ratingService: ratingService,
	}
}

// Register handles POST /api/v1/auth/register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Nickname == "" {
		WriteError(w, NewInvalidRequestError("nickname is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Register(r.Context(), model.Nickname(req.Nickname), req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Login handles POST /api/v1/auth/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Nickname == "" {
		WriteError(w, NewInvalidRequestError("nickname is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), model.Nickname(req.Nickname), req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// Guest handles POST /api/v1/auth/guest
func (h *PlayerHandler) Guest(w http.ResponseWriter, r *http.Request) {
	var req request.GuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Nickname == "" {
		WriteError(w, NewInvalidRequestError("nickname is required"))
		return
	}

	session, err := h.authService.Guest(r.Context(), model.Nickname(req.Nickname))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// Logout handles POST /api/v1/auth/logout
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session != nil {
		h.authService.InvalidateSession(session.Token)
	}
	response.NoContent(w)
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	me := middleware.MustGetUser(r.Context())

	// Re-read so the rating reflects games finished after login
	user, err := h.authService.EnsureUser(r.Context(), me.Nickname)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(user))
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.ratingService.Leaderboard(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(users))
}
