package config

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
)

// Upgrader accepts websocket handshakes from origins; an empty list accepts
// any origin.
func Upgrader(origins []string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(origins) == 0 {
				return true
			}
			return slices.Contains(origins, r.Header.Get("Origin"))
		},
	}
}
