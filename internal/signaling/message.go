package signaling

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"
)

// Message is the JSON envelope exchanged with the relay server.
type Message struct {
	Type    string          `json:"type"`
	Room    string          `json:"room,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Events emitted by the client.
const (
	MessageTypeJoinRoom     = "join_room"
	MessageTypeSendMessage  = "send_message"
	MessageTypeTyping       = "typing"
	MessageTypeCallUser     = "call_user"
	MessageTypeAnswerCall   = "answer_call"
	MessageTypeICECandidate = "ice_candidate"
	MessageTypeEndCall      = "end_call"
)

// Events received from the relay.
const (
	MessageTypeReceiveMessage = "receive_message"
	MessageTypeUserTyping     = "user_typing"
	MessageTypeCallIncoming   = "call_incoming"
	MessageTypeCallAccepted   = "call_accepted"
	MessageTypeCallEnded      = "call_ended"
)

// NewMessage builds an envelope, marshalling the payload.
func NewMessage(msgType, room string, payload any) (*Message, error) {
	msg := &Message{Type: msgType, Room: room}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
		}
		msg.Payload = raw
	}
	return msg, nil
}

// TypingPayload announces that a user is typing in a room.
type TypingPayload struct {
	UserName string `json:"user_name"`
	Room     string `json:"room"`
}

// CallRequestPayload carries the SDP offer that starts a call.
type CallRequestPayload struct {
	Room   string                    `json:"room"`
	Signal webrtc.SessionDescription `json:"signal"`
	From   string                    `json:"from"`
}

// CallAnswerPayload carries the SDP answer that accepts a call.
type CallAnswerPayload struct {
	Room   string                    `json:"room"`
	Signal webrtc.SessionDescription `json:"signal"`
}

// CandidatePayload carries one ICE candidate.
type CandidatePayload struct {
	Room      string                  `json:"room"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

// IncomingCall is surfaced to the UI when a call offer arrives.
type IncomingCall struct {
	Signal webrtc.SessionDescription `json:"signal"`
	From   string                    `json:"from"`
}
