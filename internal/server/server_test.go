package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/parley-app/parley/internal/call"
	"github.com/parley-app/parley/internal/chat"
	"github.com/parley-app/parley/internal/media"
	"github.com/parley-app/parley/internal/relay"
	"github.com/parley-app/parley/internal/signaling"
)

func newRelayServer(t *testing.T, cfg *Config) (*httptest.Server, string) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	hub := relay.NewHub(log)
	go hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthCheck)
	mux.HandleFunc("/ws", ServeWs(hub, cfg, log))

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	return ts, wsURL
}

// peer bundles one connected client with its handler, call session and
// the event pump that joins them, mirroring the CLI wiring.
type peer struct {
	client     *signaling.Client
	handler    *signaling.Handler
	session    *call.Session
	remoteEnds atomic.Int64
}

func newPeer(t *testing.T, wsURL, name string) *peer {
	t.Helper()

	client := signaling.NewClient(wsURL)
	require.NoError(t, client.Connect())
	t.Cleanup(client.Close)

	p := &peer{
		client:  client,
		handler: signaling.NewHandler(client),
	}
	p.session = call.NewSession(client, call.Config{
		Room: "lobby",
		User: name,
		Acquire: func() (media.Source, error) {
			return media.NewSource(media.Silence())
		},
	})

	go p.handler.Start()
	go p.pump()

	client.JoinRoom("lobby")
	return p
}

func (p *peer) pump() {
	for {
		select {
		case incoming, ok := <-p.handler.CallIncoming:
			if !ok {
				return
			}
			p.session.HandleIncomingOffer(incoming.Signal, incoming.From)
		case answer, ok := <-p.handler.CallAccepted:
			if !ok {
				return
			}
			p.session.HandleAnswer(answer)
		case candidate, ok := <-p.handler.Candidates:
			if !ok {
				return
			}
			p.session.HandleCandidate(candidate)
		case _, ok := <-p.handler.CallEnded:
			if !ok {
				return
			}
			p.remoteEnds.Add(1)
			p.session.HandleRemoteEnd()
		}
	}
}

// waitForMembership gives the relay time to process both joins before a
// broadcast races them.
func waitForMembership() {
	time.Sleep(200 * time.Millisecond)
}

func TestHealthCheck(t *testing.T) {
	ts, _ := newRelayServer(t, &Config{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "healthy")
}

func TestOriginRestriction(t *testing.T) {
	_, wsURL := newRelayServer(t, &Config{FrontendURL: "https://chat.example.com"})

	// Browser from the wrong origin is rejected at the handshake.
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{
		"Origin": {"https://evil.example.com"},
	})
	require.Error(t, err)
	if resp != nil {
		resp.Body.Close()
	}

	// The configured origin and origin-less clients both get through.
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{
		"Origin": {"https://chat.example.com"},
	})
	require.NoError(t, err)
	conn.Close()

	conn, _, err = websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	conn.Close()
}

func TestChatDeliveredToOtherMembersOnly(t *testing.T) {
	_, wsURL := newRelayServer(t, &Config{})

	alice := newPeer(t, wsURL, "alice")
	bob := newPeer(t, wsURL, "bob")
	waitForMembership()

	sent := chat.NewMessage("lobby", "alice", "hello bob")
	require.NoError(t, alice.client.SendChat(sent))

	select {
	case got := <-bob.handler.Messages:
		require.Equal(t, sent, got)
	case <-time.After(5 * time.Second):
		t.Fatal("message never reached the other room member")
	}

	// The sender must not receive their own message back.
	select {
	case got := <-alice.handler.Messages:
		t.Fatalf("sender received own message: %+v", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestTypingRelayedToOtherMembers(t *testing.T) {
	_, wsURL := newRelayServer(t, &Config{})

	alice := newPeer(t, wsURL, "alice")
	bob := newPeer(t, wsURL, "bob")
	waitForMembership()

	require.NoError(t, alice.client.SendTyping("alice", "lobby"))

	select {
	case name := <-bob.handler.Typing:
		require.Equal(t, "alice", name)
	case <-time.After(5 * time.Second):
		t.Fatal("typing event never reached the other room member")
	}
}

func TestFullCallFlowOverRelay(t *testing.T) {
	_, wsURL := newRelayServer(t, &Config{})

	alice := newPeer(t, wsURL, "alice")
	bob := newPeer(t, wsURL, "bob")
	waitForMembership()

	require.NoError(t, alice.session.Start())

	require.Eventually(t, func() bool {
		return bob.session.State() == call.StateRinging
	}, 10*time.Second, 20*time.Millisecond, "callee never started ringing")
	require.Equal(t, "alice", bob.session.RemoteUser())

	require.NoError(t, bob.session.Accept())
	require.Equal(t, call.StateConnected, bob.session.State())

	require.Eventually(t, func() bool {
		return alice.session.State() == call.StateConnected
	}, 10*time.Second, 20*time.Millisecond, "caller never reached connected")

	alice.session.HangUp()

	require.Eventually(t, func() bool {
		return bob.session.State() == call.StateIdle
	}, 10*time.Second, 20*time.Millisecond, "callee never tore down")

	// Exactly one end travels over the wire; the reacting side must not
	// echo it back.
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, int64(1), bob.remoteEnds.Load())
	require.Zero(t, alice.remoteEnds.Load())
	require.Equal(t, call.StateIdle, alice.session.State())
}

func TestDeclineNotifiesCaller(t *testing.T) {
	_, wsURL := newRelayServer(t, &Config{})

	alice := newPeer(t, wsURL, "alice")
	bob := newPeer(t, wsURL, "bob")
	waitForMembership()

	require.NoError(t, alice.session.Start())
	require.Eventually(t, func() bool {
		return bob.session.State() == call.StateRinging
	}, 10*time.Second, 20*time.Millisecond)

	require.NoError(t, bob.session.Decline())

	require.Eventually(t, func() bool {
		return alice.session.State() == call.StateIdle
	}, 10*time.Second, 20*time.Millisecond, "caller never learned of the decline")
	require.Equal(t, int64(1), alice.remoteEnds.Load())
}
