// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// GameStateHandler serves GET /game/{roomId} with the room's current snapshot.
func GameStateHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("roomId"))
		if err != nil {
			http.Error(w, "invalid room id", http.StatusBadRequest)
			return
		}
		g, err := gs.Store.GetGame(id)
		if err != nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(g.Snapshot()); err != nil {
			gs.Logger.WithError(err).Warn("Failed to encode snapshot.")
		}
	}
}

// HealthHandler answers GET / so load balancers can probe the server.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("flipseven ok\n"))
}
