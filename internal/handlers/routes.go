package handlers

import (
	"net/http"

	"github.com/vancomm/minesweeper-engine/internal/middleware"
)

// Register mounts the game API on mux. Per-game routes require the token
// handed out by NewGame.
func (h *GameHandler) Register(mux *http.ServeMux) {
	auth := middleware.Auth(h.sessions)
	game := func(f http.HandlerFunc) http.Handler {
		return middleware.Wrap(f, auth)
	}

	mux.HandleFunc("POST /v1/game", h.NewGame)
	mux.Handle("GET /v1/game/{id}", game(h.Fetch))
	mux.Handle("POST /v1/game/{id}/action", game(h.Action))
	mux.Handle("POST /v1/game/{id}/mode", game(h.ToggleMode))
	mux.Handle("POST /v1/game/{id}/restart", game(h.Restart))
	mux.Handle("DELETE /v1/game/{id}", game(h.Delete))
	mux.Handle("GET /v1/game/{id}/connect", game(h.Connect))

	mux.HandleFunc("GET /v1/besttime", h.BestTime)
}
