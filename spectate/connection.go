package spectate

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Connection wraps one websocket client with its outgoing queue
type Connection struct {
	ws   *websocket.Conn
	send chan []byte
	once sync.Once
}

// newConnection creates a connection with a send queue of size buffer
// ws may be nil for connections driven only through the queue
func newConnection(ws *websocket.Conn, buffer int) *Connection {
	return &Connection{
		ws:   ws,
		send: make(chan []byte, buffer),
	}
}

// closeSend ends the write pump; safe to call more than once
func (c *Connection) closeSend() {
	c.once.Do(func() { close(c.send) })
}

// ReadPump drains client frames until the socket closes, then unregisters from hub
// Spectators are read-only; incoming messages are discarded
func (c *Connection) ReadPump(hub *Hub) {
	defer func() {
		hub.unregister(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(512)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("spectate: read: %v", err)
			}
			return
		}
	}
}

// WritePump writes queued messages and keepalive pings until the queue is closed
func (c *Connection) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.ws.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
