package signaling

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"

	"github.com/parley-app/parley/internal/chat"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024 * 1024
)

// Client manages the websocket connection to the relay server. One Client
// is created per process, connected once and injected into whatever needs
// the relay: the chat view and the call session.
type Client struct {
	conn      *websocket.Conn
	serverURL string
	incoming  chan *Message
	outgoing  chan *Message
	done      chan struct{}
	closed    bool
}

// NewClient creates a signaling client for the given websocket URL.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		incoming:  make(chan *Message, 32),
		outgoing:  make(chan *Message, 32),
		done:      make(chan struct{}),
	}
}

// Connect establishes the websocket connection and starts the pumps.
func (c *Client) Connect() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.conn = conn
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()

	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		close(c.incoming)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		c.incoming <- &msg
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// SendMessage queues a message for delivery to the relay. Best effort:
// a full queue drops the message rather than blocking the caller.
func (c *Client) SendMessage(msg *Message) {
	select {
	case c.outgoing <- msg:
	case <-c.done:
	}
}

// Incoming returns the channel of messages from the relay. The Handler
// is expected to be its only reader.
func (c *Client) Incoming() <-chan *Message {
	return c.incoming
}

// Close shuts the connection down. Safe to call more than once.
func (c *Client) Close() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

// JoinRoom adds this connection to a room's broadcast group.
func (c *Client) JoinRoom(room string) {
	c.SendMessage(&Message{Type: MessageTypeJoinRoom, Room: room})
}

// SendChat broadcasts a chat message to the room.
func (c *Client) SendChat(msg chat.Message) error {
	env, err := NewMessage(MessageTypeSendMessage, msg.Room, msg)
	if err != nil {
		return err
	}
	c.SendMessage(env)
	return nil
}

// SendTyping announces a keystroke to the room.
func (c *Client) SendTyping(userName, room string) error {
	env, err := NewMessage(MessageTypeTyping, room, TypingPayload{UserName: userName, Room: room})
	if err != nil {
		return err
	}
	c.SendMessage(env)
	return nil
}

// SendCallOffer starts call negotiation with the room's other member.
func (c *Client) SendCallOffer(room string, offer webrtc.SessionDescription, from string) error {
	env, err := NewMessage(MessageTypeCallUser, room, CallRequestPayload{Room: room, Signal: offer, From: from})
	if err != nil {
		return err
	}
	c.SendMessage(env)
	return nil
}

// SendCallAnswer accepts a pending call offer.
func (c *Client) SendCallAnswer(room string, answer webrtc.SessionDescription) error {
	env, err := NewMessage(MessageTypeAnswerCall, room, CallAnswerPayload{Room: room, Signal: answer})
	if err != nil {
		return err
	}
	c.SendMessage(env)
	return nil
}

// SendCandidate relays a locally discovered ICE candidate.
func (c *Client) SendCandidate(room string, candidate webrtc.ICECandidateInit) error {
	env, err := NewMessage(MessageTypeICECandidate, room, CandidatePayload{Room: room, Candidate: candidate})
	if err != nil {
		return err
	}
	c.SendMessage(env)
	return nil
}

// SendEndCall tears the active call down for the whole room.
func (c *Client) SendEndCall(room string) error {
	env, err := NewMessage(MessageTypeEndCall, room, room)
	if err != nil {
		return err
	}
	c.SendMessage(env)
	return nil
}
