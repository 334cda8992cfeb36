package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/quincybot/rosterquiz/internal/api/middleware"
	"github.com/quincybot/rosterquiz/internal/api/request"
	"github.com/quincybot/rosterquiz/internal/api/response"
	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/services/match"
)

// LobbyHandler handles the open-game list
type LobbyHandler struct {
	orchestrator *match.Orchestrator
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(orchestrator *match.Orchestrator) *LobbyHandler {
	return &LobbyHandler{
		orchestrator: orchestrator,
	}
}

// List handles GET /api/v1/games/open
func (h *LobbyHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.orchestrator.OpenGames(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, listings)
}

// Create handles POST /api/v1/games/open
func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.CreateOpenGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow empty body for default settings
		req = request.CreateOpenGameRequest{}
	}

	openGame, err := h.orchestrator.CreateOpenGame(r.Context(), user.Nickname, settingsFromRequest(req.Settings))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, model.OpenGameListing{
		Creator:       openGame.Creator,
		CreatorRating: int(user.Rating),
		Rounds:        openGame.Settings.Rounds,
		TimeBankSecs:  int(openGame.Settings.TimeBank / time.Second),
	})
}

// Cancel handles DELETE /api/v1/games/open
func (h *LobbyHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	if err := h.orchestrator.CancelOpenGame(r.Context(), user.Nickname); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Join handles POST /api/v1/games/open/{creator}/join
func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	creator := model.Nickname(mux.Vars(r)["creator"])

	session, err := h.orchestrator.JoinOpenGame(r.Context(), creator, user.Nickname)
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

func settingsFromRequest(s request.GameSettings) model.Settings {
	return model.Settings{
		Rounds:   s.Rounds,
		TimeBank: time.Duration(s.TimeBankSecs) * time.Second,
	}
}
