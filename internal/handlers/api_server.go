package handlers

import (
	"net/http"

	"github.com/jason-s-yu/flipseven/internal/middleware"
)

// NewRouter mounts every endpoint behind the request logger.
func NewRouter(gs *GameServer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", HealthHandler)
	mux.HandleFunc("GET /game/{roomId}", GameStateHandler(gs))
	mux.HandleFunc("GET /ws", GameWSHandler(gs.Logger, gs))
	return middleware.LogMiddleware(gs.Logger)(mux)
}
