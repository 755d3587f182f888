package relay

import "encoding/json"

// Message is the JSON envelope for all websocket traffic between a
// session client and the relay.
type Message struct {
	Type    string          `json:"type"`
	Room    string          `json:"room,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`

	// sender is the client that produced the message. Internal to the
	// hub; unexported, so never serialized.
	sender *Client
}

// Client to server event types.
const (
	EventJoinRoom     = "join_room"
	EventSendMessage  = "send_message"
	EventTyping       = "typing"
	EventCallUser     = "call_user"
	EventAnswerCall   = "answer_call"
	EventICECandidate = "ice_candidate"
	EventEndCall      = "end_call"
)

// Server to client event types.
const (
	EventReceiveMessage = "receive_message"
	EventUserTyping     = "user_typing"
	EventCallIncoming   = "call_incoming"
	EventCallAccepted   = "call_accepted"
	EventCallEnded      = "call_ended"
)

// typingPayload carries a typing announcement; user_typing rebroadcasts
// just the user name.
type typingPayload struct {
	UserName string `json:"user_name"`
	Room     string `json:"room,omitempty"`
}

// callRequestPayload carries an SDP offer; the room field is stripped
// before rebroadcast.
type callRequestPayload struct {
	Room   string          `json:"room,omitempty"`
	Signal json.RawMessage `json:"signal"`
	From   string          `json:"from,omitempty"`
}

// callAnswerPayload carries an SDP answer; rebroadcast as the bare signal.
type callAnswerPayload struct {
	Room   string          `json:"room,omitempty"`
	Signal json.RawMessage `json:"signal"`
}
