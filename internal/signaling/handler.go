package signaling

import (
	"encoding/json"
	"log/slog"

	"github.com/pion/webrtc/v4"

	"github.com/parley-app/parley/internal/chat"
)

// Handler routes incoming relay messages to typed channels. It is the
// only reader of the client's incoming stream; consumers pick the
// channels they care about.
type Handler struct {
	client *Client

	Messages     chan chat.Message
	Typing       chan string
	CallIncoming chan *IncomingCall
	CallAccepted chan webrtc.SessionDescription
	Candidates   chan webrtc.ICECandidateInit
	CallEnded    chan struct{}

	closed bool
}

// NewHandler creates a handler over the given client.
func NewHandler(client *Client) *Handler {
	return &Handler{
		client:       client,
		Messages:     make(chan chat.Message, 32),
		Typing:       make(chan string, 8),
		CallIncoming: make(chan *IncomingCall, 1),
		CallAccepted: make(chan webrtc.SessionDescription, 1),
		Candidates:   make(chan webrtc.ICECandidateInit, 32),
		CallEnded:    make(chan struct{}, 1),
	}
}

// Start consumes incoming messages until the connection closes. Run it
// in its own goroutine.
func (h *Handler) Start() {
	for msg := range h.client.Incoming() {
		h.route(msg)
	}
}

func (h *Handler) route(msg *Message) {
	switch msg.Type {
	case MessageTypeReceiveMessage:
		var m chat.Message
		if err := json.Unmarshal(msg.Payload, &m); err != nil {
			slog.Debug("dropping malformed chat message", slog.Any("error", err))
			return
		}
		h.deliverMessage(m)

	case MessageTypeUserTyping:
		var name string
		if err := json.Unmarshal(msg.Payload, &name); err != nil {
			return
		}
		select {
		case h.Typing <- name:
		default:
		}

	case MessageTypeCallIncoming:
		var call IncomingCall
		if err := json.Unmarshal(msg.Payload, &call); err != nil {
			slog.Debug("dropping malformed call offer", slog.Any("error", err))
			return
		}
		// Last offer wins: a pending undelivered one is replaced.
		select {
		case <-h.CallIncoming:
		default:
		}
		h.CallIncoming <- &call

	case MessageTypeCallAccepted:
		var answer webrtc.SessionDescription
		if err := json.Unmarshal(msg.Payload, &answer); err != nil {
			slog.Debug("dropping malformed call answer", slog.Any("error", err))
			return
		}
		select {
		case h.CallAccepted <- answer:
		default:
		}

	case MessageTypeICECandidate:
		var p CandidatePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			slog.Debug("dropping malformed candidate", slog.Any("error", err))
			return
		}
		select {
		case h.Candidates <- p.Candidate:
		default:
		}

	case MessageTypeCallEnded:
		select {
		case h.CallEnded <- struct{}{}:
		default:
		}

	default:
		slog.Debug("ignoring unknown event", slog.String("type", msg.Type))
	}
}

func (h *Handler) deliverMessage(m chat.Message) {
	select {
	case h.Messages <- m:
	default:
	}
}

// Close closes all handler channels. Call only after Start has returned.
func (h *Handler) Close() {
	if h.closed {
		return
	}
	h.closed = true

	close(h.Messages)
	close(h.Typing)
	close(h.CallIncoming)
	close(h.CallAccepted)
	close(h.Candidates)
	close(h.CallEnded)
}
