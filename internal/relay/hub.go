package relay

import (
	"encoding/json"
	"log/slog"
)

// Hub is the relay's event loop. It owns all room membership and is the
// only goroutine that touches it: clients talk to the hub exclusively
// through the Register, Unregister and Broadcast channels.
//
// The hub is an oblivious pipe. It rebroadcasts events to the other
// members of the sender's room and never validates payload shape; a
// malformed payload reaches the receivers unchanged.
type Hub struct {
	// rooms maps a room identifier to its current membership set.
	rooms map[string]map[*Client]struct{}

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan *Message

	log *slog.Logger
}

// NewHub creates a hub with empty membership.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan *Message),
		log:        log,
	}
}

// Run processes hub events until the process exits. Call it in its own
// goroutine before accepting connections.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.log.Debug("client connected", slog.String("addr", client.RemoteAddr()))

		case client := <-h.Unregister:
			h.dropClient(client)

		case msg := <-h.Broadcast:
			h.dispatch(msg)
		}
	}
}

// dropClient removes the client from every room it joined. Peers are not
// notified; a departed member is only observed as unresponsive.
func (h *Hub) dropClient(client *Client) {
	for room := range client.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.log.Debug("client disconnected", slog.String("addr", client.RemoteAddr()))
	close(client.Send)
}

func (h *Hub) dispatch(msg *Message) {
	switch msg.Type {
	case EventJoinRoom:
		h.join(msg.sender, msg.Room)

	case EventSendMessage:
		h.emit(msg.sender, msg.Room, &Message{Type: EventReceiveMessage, Payload: msg.Payload})

	case EventTyping:
		h.emit(msg.sender, msg.Room, &Message{Type: EventUserTyping, Payload: typingName(msg.Payload)})

	case EventCallUser:
		h.emit(msg.sender, msg.Room, &Message{Type: EventCallIncoming, Payload: stripRoom(msg.Payload)})

	case EventAnswerCall:
		h.emit(msg.sender, msg.Room, &Message{Type: EventCallAccepted, Payload: answerSignal(msg.Payload)})

	case EventICECandidate:
		h.emit(msg.sender, msg.Room, &Message{Type: EventICECandidate, Payload: msg.Payload})

	case EventEndCall:
		h.emit(msg.sender, msg.Room, &Message{Type: EventCallEnded})

	default:
		h.log.Debug("unknown event type", slog.String("type", msg.Type))
	}
}

// join adds the client to a room. Rejoining is a no-op: membership is a
// set, so duplicate joins change nothing.
func (h *Hub) join(client *Client, room string) {
	if room == "" {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
	client.rooms[room] = struct{}{}
	h.log.Debug("client joined room",
		slog.String("addr", client.RemoteAddr()),
		slog.String("room", room),
	)
}

// emit sends msg to every member of room except the sender. An empty or
// unknown room is silently a no-op. Slow clients are skipped rather than
// blocking the hub loop.
func (h *Hub) emit(sender *Client, room string, msg *Message) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	h.log.Debug("relaying event",
		slog.String("type", msg.Type),
		slog.String("room", room),
		slog.Int("peers", len(members)-1),
	)
	for member := range members {
		if member == sender {
			continue
		}
		select {
		case member.Send <- msg:
		default:
		}
	}
}

// typingName rewrites {user_name, room} to the bare user name. A payload
// that does not parse is forwarded untouched.
func typingName(payload json.RawMessage) json.RawMessage {
	var p typingPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return payload
	}
	name, err := json.Marshal(p.UserName)
	if err != nil {
		return payload
	}
	return name
}

// stripRoom rewrites {room, signal, from} to {signal, from}. A payload
// that does not parse is forwarded untouched.
func stripRoom(payload json.RawMessage) json.RawMessage {
	var p callRequestPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return payload
	}
	out, err := json.Marshal(struct {
		Signal json.RawMessage `json:"signal"`
		From   string          `json:"from,omitempty"`
	}{Signal: p.Signal, From: p.From})
	if err != nil {
		return payload
	}
	return out
}

// answerSignal rewrites {room, signal} to the bare signal. A payload that
// does not parse is forwarded untouched.
func answerSignal(payload json.RawMessage) json.RawMessage {
	var p callAnswerPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return payload
	}
	return p.Signal
}
