package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/quincybot/rosterquiz/internal/api/middleware"
	"github.com/quincybot/rosterquiz/internal/api/request"
	"github.com/quincybot/rosterquiz/internal/api/response"
	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/services/match"
)

// GameHandler handles in-match endpoints
type GameHandler struct {
	orchestrator *match.Orchestrator
}

// NewGameHandler creates a new game handler
func NewGameHandler(orchestrator *match.Orchestrator) *GameHandler {
	return &GameHandler{
		orchestrator: orchestrator,
	}
}

// Start handles POST /api/v1/games/start
// Head-to-head games go through the open-game lobby instead.
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.StartGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	mode := model.Mode(req.Mode)
	if mode != model.ModeSolo && mode != model.ModeVsBot {
		WriteError(w, NewInvalidRequestError("mode must be solo or vs_bot"))
		return
	}

	session, err := h.orchestrator.StartGame(r.Context(), user.Nickname, mode, settingsFromRequest(req.Settings))
	if err != nil {
		WriteError(w, err)
		return
	}

	snapshot, err := h.orchestrator.Snapshot(r.Context(), session.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.StartGameResponse{
		Room:  string(session.ID),
		State: snapshot,
	})
}

// Get handles GET /api/v1/games/{room}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	room := model.SessionID(mux.Vars(r)["room"])

	snapshot, err := h.orchestrator.Snapshot(r.Context(), room)
	if err != nil {
		WriteError(w, err)
		return
	}

	if !snapshotHasPlayer(snapshot, user.Nickname) {
		WriteError(w, model.ErrNotInSession)
		return
	}

	response.JSON(w, http.StatusOK, snapshot)
}

// Guess handles POST /api/v1/games/{room}/guess
func (h *GameHandler) Guess(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	room := model.SessionID(mux.Vars(r)["room"])

	var req request.GuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if strings.TrimSpace(req.Surname) == "" {
		WriteError(w, NewInvalidRequestError("surname is required"))
		return
	}

	outcome, err := h.orchestrator.SubmitGuess(r.Context(), room, user.Nickname, req.Surname)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GuessResponseFromOutcome(outcome))
}

// Surrender handles POST /api/v1/games/{room}/surrender
func (h *GameHandler) Surrender(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	room := model.SessionID(mux.Vars(r)["room"])

	if err := h.orchestrator.Surrender(r.Context(), room, user.Nickname); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// SkipPause handles POST /api/v1/games/{room}/skip-pause
func (h *GameHandler) SkipPause(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	room := model.SessionID(mux.Vars(r)["room"])

	if err := h.orchestrator.SkipPause(r.Context(), room, user.Nickname); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

func snapshotHasPlayer(snapshot *model.Snapshot, nickname model.Nickname) bool {
	for _, info := range snapshot.Players {
		if info.Nickname == nickname {
			return true
		}
	}
	return false
}
