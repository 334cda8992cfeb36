package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/quincybot/rosterquiz/internal/api/middleware"
	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/services/match"
	"github.com/quincybot/rosterquiz/internal/sse"
)

// EventsHandler serves the SSE event streams
type EventsHandler struct {
	broadcaster  *sse.Broadcaster
	orchestrator *match.Orchestrator
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(broadcaster *sse.Broadcaster, orchestrator *match.Orchestrator) *EventsHandler {
	return &EventsHandler{
		broadcaster:  broadcaster,
		orchestrator: orchestrator,
	}
}

// Lobby handles GET /api/v1/events, the open-game list stream
func (h *EventsHandler) Lobby(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	sse.ServeSSE(w, r, h.broadcaster.LobbyHub(), user.Nickname)
}

// Room handles GET /api/v1/games/{room}/events
// Dropping the stream while a match is live counts as leaving the game.
func (h *EventsHandler) Room(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	room := model.SessionID(mux.Vars(r)["room"])

	current, ok := h.orchestrator.RoomOf(user.Nickname)
	if !ok || current != room {
		WriteError(w, model.ErrNotInSession)
		return
	}

	sse.ServeSSE(w, r, h.broadcaster.RoomHub(room), user.Nickname)

	// The request context is already done here
	if still, ok := h.orchestrator.RoomOf(user.Nickname); ok && still == room {
		h.orchestrator.HandleDisconnect(context.Background(), user.Nickname)
	}
}
