package server

import (
	"net/http"
	"time"

	"wavecrate/logger"

	"github.com/gorilla/websocket"
)

var statsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// statsFeedInterval is how often the live stats feed pushes an update.
const statsFeedInterval = 2 * time.Second

// StatsFeedHandler upgrades to a websocket and pushes the stats payload
// on a fixed interval until the client goes away. Same numbers as the
// REST stats endpoint.
func (h *APIHandler) StatsFeedHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := statsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	// Drain client frames so close messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statsFeedInterval)
	defer ticker.Stop()

	if err := conn.WriteJSON(h.statsPayload()); err != nil {
		return
	}
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteJSON(h.statsPayload()); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
