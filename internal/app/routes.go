package app

import (
	"net/http"

	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/handlers"
	"github.com/vancomm/minesweeper-engine/internal/middleware"
)

func (a *App) loadRoutes() {
	game := handlers.NewGameHandler(
		a.log, a.sessions, a.tracker, config.Upgrader(a.config.AllowedOrigins),
	)
	game.Register(a.router)

	a.router.HandleFunc("GET /v1/status", func(w http.ResponseWriter, r *http.Request) {
		handlers.SendJSON(w, map[string]any{
			"board":    a.config.Board.Key(),
			"sessions": a.sessions.Len(),
		})
	})
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Cors(a.config.AllowedOrigins),
		middleware.Logging(a.log),
	)
}
