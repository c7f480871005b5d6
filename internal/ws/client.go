package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// command is the client-to-server control message: subscribe to or
// unsubscribe from a set of topics.
type command struct {
	Op     string   `json:"op"`
	Topics []string `json:"topics"`
}

// Client is one gateway connection. Outgoing frames go through the buffered
// send channel; the hub drops frames rather than block when it fills.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	logger *zap.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, userID string, sendBuffer int, logger *zap.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
		logger: logger,
	}
}

// readPump consumes control messages until the connection drops, then
// unregisters the client.
func (c *Client) readPump(maxMessageSize int64) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("gateway read failed",
					zap.String("user_id", c.userID),
					zap.Error(err),
				)
			}
			return
		}

		var cmd command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.logger.Debug("ignoring malformed gateway command",
				zap.String("user_id", c.userID),
				zap.Error(err),
			)
			continue
		}

		switch cmd.Op {
		case "subscribe":
			c.hub.subscribe(c, cmd.Topics)
		case "unsubscribe":
			c.hub.unsubscribe(c, cmd.Topics)
		default:
			c.logger.Debug("ignoring unknown gateway op",
				zap.String("user_id", c.userID),
				zap.String("op", cmd.Op),
			)
		}
	}
}

// writePump moves frames from the send channel onto the wire and keeps the
// connection alive with pings. Exits when the hub closes the send channel.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
