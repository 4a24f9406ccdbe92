// internal/handlers/game_server.go
package handlers

import (
	"time"

	"github.com/jason-s-yu/flipseven/internal/game"
	"github.com/sirupsen/logrus"
)

// GameServer holds the room table and the connection hub shared by the HTTP and
// WebSocket handlers.
type GameServer struct {
	Store  *game.GameStore
	Hub    *Hub
	Logger *logrus.Logger

	// OriginPatterns restricts WebSocket origins. Nil accepts any origin.
	OriginPatterns []string
}

// NewGameServer builds a store whose sessions publish every state change to the hub.
// Extra store options (action sink, game-end hook) are applied after the defaults.
func NewGameServer(logger *logrus.Logger, opts ...game.StoreOption) *GameServer {
	hub := NewHub(logger)
	storeOpts := append([]game.StoreOption{
		game.WithStoreLogger(logger),
		game.WithSessionOptions(game.WithStateListener(hub.PublishState)),
	}, opts...)
	return &GameServer{
		Store:  game.NewGameStore(storeOpts...),
		Hub:    hub,
		Logger: logger,
	}
}

// EvictIdle drops rooms idle for longer than maxIdle from the store and forgets
// their audiences. It returns how many rooms went away.
func (gs *GameServer) EvictIdle(now time.Time, maxIdle time.Duration) int {
	evicted := gs.Store.EvictIdle(now, maxIdle)
	for _, id := range evicted {
		gs.Hub.DropRoom(id)
	}
	return len(evicted)
}
