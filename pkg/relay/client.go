package relay

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ha1tch/netui/pkg/logging"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 20
)

// client is one editor connection. The hub owns send: it is closed when the
// client is removed, which ends writePump.
type client struct {
	conn *websocket.Conn
	id   int
	send chan []byte
}

func newClient(conn *websocket.Conn, id, buffer int) *client {
	return &client{conn: conn, id: id, send: make(chan []byte, buffer)}
}

func (c *client) writePump(log logging.Logger) {
	defer c.conn.Close()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug(context.Background(), "write failed", logging.Err(err))
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump calls handle for each frame until the connection fails.
func (c *client) readPump(handle func([]byte), log logging.Logger) {
	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn(context.Background(), "websocket error", logging.Err(err))
			}
			return
		}
		handle(data)
	}
}
