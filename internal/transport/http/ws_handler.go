package http

import (
	"log"
	"net/http"

	"benefits-points-service/internal/app"
	"github.com/gorilla/websocket"
)

// WSHandler streams leaderboard snapshots over a websocket. Clients get
// the current standings on connect and a fresh snapshot after every
// award.
type WSHandler struct {
	notifier *app.LeaderboardNotifier
	upgrader websocket.Upgrader
}

func NewWSHandler(notifier *app.LeaderboardNotifier) *WSHandler {
	return &WSHandler{
		notifier: notifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and forwards snapshots until the client
// disconnects. The reader goroutine exists only to observe the close.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.notifier.Subscribe(r.Context())
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorResponse]{Type: "error", Payload: errorResponse{Error: err.Error()}})
		return
	}
	defer cancel()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case view, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[any]{Type: "leaderboard", Payload: view}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-readerDone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
