package signaling

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"

	"github.com/parley-app/parley/internal/chat"
)

func newTestHandler(t *testing.T) (*Handler, chan<- *Message) {
	t.Helper()
	client := NewClient("ws://unused")
	h := NewHandler(client)
	go h.Start()
	t.Cleanup(func() {
		close(client.incoming)
	})
	return h, client.incoming
}

func send(t *testing.T, in chan<- *Message, msgType, room string, payload any) {
	t.Helper()
	env, err := NewMessage(msgType, room, payload)
	require.NoError(t, err)
	in <- env
}

func TestChatMessageRouted(t *testing.T) {
	h, in := newTestHandler(t)

	msg := chat.NewMessage("lobby", "alice", "hello")
	send(t, in, MessageTypeReceiveMessage, "lobby", msg)

	select {
	case got := <-h.Messages:
		require.Equal(t, msg, got)
	case <-time.After(time.Second):
		t.Fatal("chat message was not routed")
	}
}

func TestTypingRoutedAsBareName(t *testing.T) {
	h, in := newTestHandler(t)

	send(t, in, MessageTypeUserTyping, "lobby", "alice is typing...")

	select {
	case got := <-h.Typing:
		require.Equal(t, "alice is typing...", got)
	case <-time.After(time.Second):
		t.Fatal("typing event was not routed")
	}
}

func TestIncomingCallRouted(t *testing.T) {
	h, in := newTestHandler(t)

	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0"}
	send(t, in, MessageTypeCallIncoming, "lobby", IncomingCall{Signal: offer, From: "alice"})

	select {
	case got := <-h.CallIncoming:
		require.Equal(t, "alice", got.From)
		require.Equal(t, offer, got.Signal)
	case <-time.After(time.Second):
		t.Fatal("incoming call was not routed")
	}
}

func TestNewerOfferReplacesUndeliveredOne(t *testing.T) {
	h, in := newTestHandler(t)

	first := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0\r\ns=first\r\n"}
	second := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0\r\ns=second\r\n"}
	send(t, in, MessageTypeCallIncoming, "lobby", IncomingCall{Signal: first, From: "alice"})
	send(t, in, MessageTypeCallIncoming, "lobby", IncomingCall{Signal: second, From: "bob"})

	// Give the routing goroutine time to process both.
	require.Eventually(t, func() bool {
		select {
		case got := <-h.CallIncoming:
			require.Equal(t, "bob", got.From)
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestCandidateRouted(t *testing.T) {
	h, in := newTestHandler(t)

	cand := webrtc.ICECandidateInit{Candidate: "candidate:1 1 udp 1 127.0.0.1 4242 typ host"}
	send(t, in, MessageTypeICECandidate, "lobby", CandidatePayload{Room: "lobby", Candidate: cand})

	select {
	case got := <-h.Candidates:
		require.Equal(t, cand.Candidate, got.Candidate)
	case <-time.After(time.Second):
		t.Fatal("candidate was not routed")
	}
}

func TestCallEndedRouted(t *testing.T) {
	h, in := newTestHandler(t)

	in <- &Message{Type: MessageTypeCallEnded}

	select {
	case <-h.CallEnded:
	case <-time.After(time.Second):
		t.Fatal("call ended event was not routed")
	}
}

func TestMalformedAndUnknownEventsDropped(t *testing.T) {
	h, in := newTestHandler(t)

	in <- &Message{Type: MessageTypeReceiveMessage, Payload: json.RawMessage(`{"author":`)}
	in <- &Message{Type: MessageTypeCallIncoming, Payload: json.RawMessage(`42`)}
	in <- &Message{Type: "color_change", Payload: json.RawMessage(`"red"`)}

	// A well-formed message after the garbage still comes through, and
	// nothing else does.
	msg := chat.NewMessage("lobby", "alice", "still here")
	send(t, in, MessageTypeReceiveMessage, "lobby", msg)

	select {
	case got := <-h.Messages:
		require.Equal(t, "still here", got.Body)
	case <-time.After(time.Second):
		t.Fatal("valid message after malformed ones was dropped")
	}
	select {
	case c := <-h.CallIncoming:
		t.Fatalf("malformed offer should have been dropped, got %+v", c)
	default:
	}
}

func TestEnvelopeWireFormat(t *testing.T) {
	env, err := NewMessage(MessageTypeTyping, "lobby", TypingPayload{UserName: "alice is typing...", Room: "lobby"})
	require.NoError(t, err)

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.JSONEq(t, `"typing"`, string(decoded["type"]))
	require.JSONEq(t, `"lobby"`, string(decoded["room"]))
	require.JSONEq(t, `{"user_name":"alice is typing...","room":"lobby"}`, string(decoded["payload"]))
}
