package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/services/match"
)

// Broadcaster fans game and lobby events out to SSE streams. It is the
// outbound event channel the orchestrator publishes through.
type Broadcaster struct {
	hubManager *HubManager
	lobbyHub   *Hub
	logger     *slog.Logger
}

var _ match.Channel = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	lobbyHub := NewHub("lobby", logger)
	go lobbyHub.Run()

	return &Broadcaster{
		hubManager: hubManager,
		lobbyHub:   lobbyHub,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// LobbyHub returns the hub carrying lobby updates
func (b *Broadcaster) LobbyHub() *Hub {
	return b.lobbyHub
}

// RoomHub returns the hub for a room, creating it if needed
func (b *Broadcaster) RoomHub(room model.SessionID) *Hub {
	return b.hubManager.GetOrCreateHub(room)
}

// ToRoom sends an event to everyone watching a room. Hubs for finished
// rooms are reaped by CleanupEmptyHubs once their clients drop off.
func (b *Broadcaster) ToRoom(room model.SessionID, event model.Event) {
	b.send(b.hubManager.GetOrCreateHub(room), event)
}

// ToLobby sends an event to every lobby watcher
func (b *Broadcaster) ToLobby(event model.Event) {
	b.send(b.lobbyHub, event)
}

func (b *Broadcaster) send(hub *Hub, event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("failed to marshal event",
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()),
		)
		return
	}
	hub.BroadcastEvent(string(event.Type), string(data))
}

// Close shuts down the lobby stream
func (b *Broadcaster) Close() {
	b.lobbyHub.Close()
}
