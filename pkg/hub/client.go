package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// sendBuffer is how many pending messages a client may lag behind
	// before the hub drops it.
	sendBuffer = 256

	// writeDeadline bounds each WebSocket write.
	writeDeadline = 10 * time.Second

	// idleDeadline is how long a connection may go without a pong
	// before it is considered dead. Pings go out well inside it.
	idleDeadline = 60 * time.Second
	pingEvery    = idleDeadline * 9 / 10

	// readLimit caps inbound frames. Viewers send nothing useful, but
	// the read loop must survive whatever arrives.
	readLimit = 512 * 1024
)

// Client is one attached viewer. The hub owns the send channel; the
// client owns the connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// Serve attaches conn to the hub and pumps messages until the
// connection drops or the hub evicts the client. Call it from the
// WebSocket handler; it blocks for the life of the connection.
func Serve(h *Hub, conn *websocket.Conn) {
	c := &Client{
		hub:  h,
		conn: conn,
		send: make(chan Message, sendBuffer),
	}
	h.register <- c

	go c.writeLoop()
	c.readLoop()
}

// readLoop discards inbound frames. Viewers are receive-only; the read
// side exists to detect disconnects and to service pongs.
func (c *Client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(idleDeadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idleDeadline))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop is the sole writer on the connection. It drains the send
// channel and keeps the connection alive with pings; a closed send
// channel means the hub let the client go.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			frame := websocket.TextMessage
			if msg.Kind == KindBinary {
				frame = websocket.BinaryMessage
			}
			if err := c.conn.WriteMessage(frame, msg.Data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
