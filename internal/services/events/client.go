// services/events/client.go
package events

import "github.com/gorilla/websocket"

type Client struct {
	Conn     *websocket.Conn
	Send     chan []byte
	WorkerID int
}
