// handlers/websocket.go
package handlers

import (
	"log"
	"net/http"

	"github.com/evn/siteops_backend/internal/middleware"
	"github.com/evn/siteops_backend/internal/services/events"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler подключает клиента к фиду событий смен и площадок.
func WebSocketHandler(hub *events.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workerID, ok := middleware.GetWorkerIDFromContext(r.Context())
		if !ok {
			http.Error(w, "invalid worker", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Print("Upgrade error:", err)
			return
		}

		client := &events.Client{
			Conn:     conn,
			Send:     make(chan []byte, 256),
			WorkerID: workerID,
		}

		hub.Register(client)

		go hub.ReadPump(client)
		go hub.WritePump(client)
	}
}
