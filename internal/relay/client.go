package relay

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Generous because chat
	// messages may carry an inline image as a data URL.
	maxMessageSize = 1024 * 1024
)

// Client wraps a single websocket connection to the relay.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn

	// Send is the buffered channel of outbound messages. WritePump is
	// the only reader; the hub is the only writer and closes it on
	// unregister.
	Send chan *Message

	// rooms the connection has joined. Owned by the hub goroutine.
	rooms map[string]struct{}
}

// NewClient wraps an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		Hub:   hub,
		Conn:  conn,
		Send:  make(chan *Message, 256),
		rooms: make(map[string]struct{}),
	}
}

func (c *Client) RemoteAddr() string {
	if c.Conn == nil {
		return "unknown"
	}
	return c.Conn.RemoteAddr().String()
}

// ReadPump pumps messages from the websocket connection to the hub.
//
// Runs in a per-connection goroutine; all reads happen here so there is
// at most one reader per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("read error", slog.Any("error", err))
			}
			break
		}

		msg.sender = c
		c.Hub.Broadcast <- &msg
	}
}

// WritePump pumps messages from the hub to the websocket connection and
// keeps the connection alive with periodic pings.
//
// Runs in a per-connection goroutine; all writes happen here so there is
// at most one writer per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(message); err != nil {
				slog.Debug("write error", slog.Any("error", err))
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
