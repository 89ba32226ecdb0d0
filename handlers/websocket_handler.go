package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/peladahub/pelada-system/live"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Production deployments should restrict this to the frontend origin.
		return true
	},
}

type WebSocketHandler struct {
	hub *live.Hub
}

func NewWebSocketHandler(hub *live.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs subscribes a viewer to a league's live standings pushes. Clients
// connect to /ws/leagues/{leagueID} where the league ID is the owner's user
// ID; the stream is read-only so no authentication is required to watch.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	if leagueID == "" {
		http.Error(w, "Missing leagueID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection for league %s: %v", leagueID, err)
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: leagueID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
