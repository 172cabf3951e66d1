package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StatusSource publishes pipeline status updates.
type StatusSource interface {
	Status() app.Status
	SubscribeStatus() (<-chan app.Status, func())
}

// StatusStreamHandler pushes every status update to WebSocket clients as JSON.
type StatusStreamHandler struct {
	source StatusSource
}

// NewStatusStreamHandler creates a new StatusStreamHandler.
func NewStatusStreamHandler(source StatusSource) *StatusStreamHandler {
	return &StatusStreamHandler{source: source}
}

// ServeHTTP upgrades the connection, sends the current status and then
// every update until either side goes away.
func (h *StatusStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.source.SubscribeStatus()
	defer cancel()

	// Reads only detect the client closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeStatus(conn, h.source.Status()); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case status, ok := <-updates:
			if !ok {
				return
			}
			if err := writeStatus(conn, status); err != nil {
				return
			}
		}
	}
}

func writeStatus(conn *websocket.Conn, status app.Status) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(status)
}
