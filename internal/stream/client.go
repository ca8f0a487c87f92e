package stream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client is one connected WebSocket subscriber.
type client struct {
	hub   *Hub
	conn  *websocket.Conn
	queue *Queue[[]byte]

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(h *Hub, conn *websocket.Conn) *client {
	return &client{
		hub:   h,
		conn:  conn,
		queue: NewQueue[[]byte](h.cfg.BufferSize),
		done:  make(chan struct{}),
	}
}

// close unregisters the client and closes the connection. Safe to call twice.
func (c *client) close() {
	c.closeOnce.Do(func() {
		c.hub.unregister(c)
		c.queue.Close()
		close(c.done)

		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.conn.Close()

		if dropped := c.queue.Stats().Dropped; dropped > 0 {
			c.hub.logger.Warn("stream client dropped updates", "dropped", dropped)
		}
	})
}

// readLoop discards client messages and keeps the read deadline fresh on pongs.
// It returns when the connection fails or closes.
func (c *client) readLoop() {
	defer c.close()

	pongWait := 2 * c.hub.cfg.PingInterval
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.hub.logger.Debug("stream client read error", "error", err)
			}
			return
		}
	}
}

// writeLoop drains the queue to the connection and sends keepalive pings.
func (c *client) writeLoop() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case <-c.done:
			return
		case <-c.queue.Notify():
			for _, msg := range c.queue.DrainTo(0) {
				if err := c.write(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) write(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
	return c.conn.WriteMessage(messageType, data)
}
