package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

type wsConn struct {
	*websocket.Conn
	mu sync.Mutex
}

// gorilla connections allow a single concurrent writer
func (c *wsConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.WriteJSON(v)
}

func (c *wsConn) writeClose(code int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
}

// Connect upgrades to a websocket. Every text message holds newline separated
// commands and is answered with the last game ending event and the game. The
// game is also pushed after every change, clock ticks included.
func (h GameHandler) Connect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.mustSession(w, r)
	if !ok {
		return
	}
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("upgrade")
		return
	}
	conn := &wsConn{Conn: c}
	log := h.log.WithField("session", s.ID)
	updates, cancel := s.Subscribe()

	var g errgroup.Group
	g.Go(func() error {
		defer cancel()
		return h.readCommands(conn, s, log)
	})
	g.Go(func() error {
		// unblocks the reader once the session is gone
		defer conn.Close()
		for range updates {
			if err := conn.writeJSON(UpdateDTO{Game: view(s)}); err != nil {
				return err
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Debug("websocket closed")
	}
}

func (h GameHandler) readCommands(conn *wsConn, s *session.Session, log logrus.FieldLogger) error {
	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		if mt != websocket.TextMessage {
			return conn.writeClose(websocket.CloseUnsupportedData, "text only")
		}
		text := strings.TrimSpace(string(message))
		log.Debug("\t> ", text)

		var (
			event  mines.Event
			cmdErr error
		)
		for _, c := range byPiece(text, "\n") {
			ev, err := executeCommand(s, c)
			if err != nil {
				cmdErr = err
				break
			}
			if ev.GameOver() {
				event = ev
			}
		}
		if errors.Is(cmdErr, session.ErrClosed) {
			return nil
		}
		if cmdErr != nil {
			log.WithError(cmdErr).Debug("command")
			if err := conn.writeJSON(wrapError(cmdErr)); err != nil {
				return err
			}
			continue
		}
		if err := conn.writeJSON(ActionDTO{Event: event, Game: view(s)}); err != nil {
			return err
		}
	}
}
