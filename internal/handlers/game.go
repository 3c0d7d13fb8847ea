package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-engine/internal/middleware"
	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

// BestTimes is the read side of the best time tracker.
type BestTimes interface {
	Board() string
	Best() (seconds int, ok bool)
}

type GameHandler struct {
	log      logrus.FieldLogger
	sessions *session.Manager
	best     BestTimes
	upgrader websocket.Upgrader
	dec      *schema.Decoder
}

func NewGameHandler(
	log logrus.FieldLogger,
	sessions *session.Manager,
	best BestTimes,
	upgrader websocket.Upgrader,
) *GameHandler {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return &GameHandler{
		log:      log,
		sessions: sessions,
		best:     best,
		upgrader: upgrader,
		dec:      dec,
	}
}

func view(s *session.Session) (dto *GameDTO) {
	s.View(func(game *mines.GameState) {
		dto = NewGameDTO(s.ID, game)
	})
	return
}

// mustSession is only reached through [middleware.Auth].
func (h GameHandler) mustSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := middleware.Session(r)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.Error("route is missing auth middleware: ", r.URL.Path)
	}
	return s, ok
}

func (h GameHandler) writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrClosed) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	h.log.WithError(err).Error("session failed")
}

func (h GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	s, token, err := h.sessions.Create()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.WithError(err).Error("unable to create a game")
		return
	}
	w.Header().Set("Location", "/v1/game/"+s.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	sendJSONOrLog(w, h.log, CreatedDTO{Token: token, Game: view(s)})
}

func (h GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	sendJSONOrLog(w, h.log, view(s))
}

func (h GameHandler) Action(w http.ResponseWriter, r *http.Request) {
	s, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	var pos PositionDTO
	if err := h.dec.Decode(&pos, r.URL.Query()); err != nil {
		sendErrorOrLog(w, h.log, http.StatusBadRequest, err)
		return
	}
	event, err := s.Act(pos.Row, pos.Col)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	sendJSONOrLog(w, h.log, ActionDTO{Event: event, Game: view(s)})
}

func (h GameHandler) ToggleMode(w http.ResponseWriter, r *http.Request) {
	s, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	if err := s.ToggleMode(); err != nil {
		h.writeSessionError(w, err)
		return
	}
	sendJSONOrLog(w, h.log, view(s))
}

func (h GameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	if err := s.Restart(); err != nil {
		h.writeSessionError(w, err)
		return
	}
	sendJSONOrLog(w, h.log, view(s))
}

func (h GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Remove(s.ID); errors.Is(err, session.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h GameHandler) BestTime(w http.ResponseWriter, r *http.Request) {
	dto := BestTimeDTO{Board: h.best.Board()}
	if seconds, ok := h.best.Best(); ok {
		dto.BestSeconds = &seconds
	}
	sendJSONOrLog(w, h.log, dto)
}
