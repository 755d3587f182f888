package call

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/parley-app/parley/internal/media"
)

// DefaultSTUNServers are the public STUN servers used when none are
// configured.
var DefaultSTUNServers = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
	"stun:stun2.l.google.com:19302",
	"stun:stun3.l.google.com:19302",
	"stun:stun4.l.google.com:19302",
}

// Signaler is the slice of the signaling client the session needs. The
// relay is an oblivious pipe; these calls are fire-and-forget.
type Signaler interface {
	SendCallOffer(room string, offer webrtc.SessionDescription, from string) error
	SendCallAnswer(room string, answer webrtc.SessionDescription) error
	SendCandidate(room string, candidate webrtc.ICECandidateInit) error
	SendEndCall(room string) error
}

// AcquireFunc obtains the local audio source. Called at call initiation
// and acceptance, never earlier.
type AcquireFunc func() (media.Source, error)

// Config configures a call session.
type Config struct {
	Room        string
	User        string
	STUNServers []string
	Acquire     AcquireFunc
}

// Session drives one-to-one call negotiation over the relay. It is the
// exclusive owner of the peer connection handle and the local media
// handle; both are released on every exit path.
//
// Media acquisition and description exchange are suspend points: remote
// events can interleave with them. Every async step therefore snapshots
// the session generation up front and unwinds if it changed, so a
// completion racing a hangup never touches the successor state.
type Session struct {
	mu    sync.Mutex
	state State
	gen   uint64

	room string
	user string
	stun []string

	signaler Signaler
	acquire  AcquireFunc

	pc      *webrtc.PeerConnection
	source  media.Source
	control *Control

	pendingOffer *webrtc.SessionDescription
	remoteUser   string
	connectedAt  time.Time
	muted        bool

	onState      func(State)
	onRemoteMute func(bool)
}

// NewSession creates an idle session bound to one room and user.
func NewSession(signaler Signaler, cfg Config) *Session {
	stun := cfg.STUNServers
	if len(stun) == 0 {
		stun = DefaultSTUNServers
	}
	acquire := cfg.Acquire
	if acquire == nil {
		acquire = func() (media.Source, error) {
			return media.NewSource(media.Silence())
		}
	}

	return &Session{
		state:    StateIdle,
		room:     cfg.Room,
		user:     cfg.User,
		stun:     stun,
		signaler: signaler,
		acquire:  acquire,
	}
}

// SetOnStateChange registers the state callback. Set before first use;
// invoked outside the session lock.
func (s *Session) SetOnStateChange(fn func(State)) { s.onState = fn }

// SetOnRemoteMute registers the callback for the peer's mute state.
func (s *Session) SetOnRemoteMute(fn func(bool)) { s.onRemoteMute = fn }

// State returns the current negotiation state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RemoteUser returns the peer label for a ringing or connected call.
func (s *Session) RemoteUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remoteUser
}

// ConnectedAt returns when the call reached the connected state.
func (s *Session) ConnectedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectedAt
}

// Muted reports the local mute toggle.
func (s *Session) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Start initiates a call: acquire audio, build the peer connection,
// offer, and announce the call to the room.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	gen := s.gen
	s.state = StateCalling
	s.mu.Unlock()
	s.notifyState(StateCalling)

	src, err := s.acquire()
	if err != nil {
		slog.Debug("media acquisition failed", slog.Any("error", err))
		s.revert(gen, StateCalling)
		return newError("acquire local audio", ErrMediaUnavailable)
	}

	pc, err := s.setupPeer(gen, src)
	if err != nil {
		src.Close()
		return err
	}

	// The caller opens the call-control channel; the callee adopts it
	// via OnDataChannel.
	dc, err := pc.CreateDataChannel(ControlChannelLabel, nil)
	if err != nil {
		s.revert(gen, StateCalling)
		return newError("create control channel", err)
	}
	s.adoptControl(gen, dc)

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		s.revert(gen, StateCalling)
		return newError("create offer", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		s.revert(gen, StateCalling)
		return newError("set local description", err)
	}

	s.mu.Lock()
	if s.gen != gen || s.state != StateCalling {
		s.mu.Unlock()
		return ErrCancelled
	}
	s.mu.Unlock()

	return s.signaler.SendCallOffer(s.room, *pc.LocalDescription(), s.user)
}

// HandleIncomingOffer surfaces a remote offer. Simultaneous offers are
// not arbitrated: the newest transition wins and any in-flight local
// attempt is discarded without an end event.
func (s *Session) HandleIncomingOffer(offer webrtc.SessionDescription, from string) {
	s.mu.Lock()
	src, pc, ctrl := s.detachLocked()
	s.pendingOffer = &offer
	s.remoteUser = from
	s.state = StateRinging
	s.mu.Unlock()

	closeHandles(src, pc, ctrl)
	s.notifyState(StateRinging)
}

// Accept answers the pending offer: acquire audio, apply the remote
// description, answer, and transition to connected.
func (s *Session) Accept() error {
	s.mu.Lock()
	if s.state != StateRinging || s.pendingOffer == nil {
		s.mu.Unlock()
		return ErrNoPendingCall
	}
	gen := s.gen
	offer := *s.pendingOffer
	s.mu.Unlock()

	src, err := s.acquire()
	if err != nil {
		slog.Debug("media acquisition failed", slog.Any("error", err))
		s.revert(gen, StateRinging)
		return newError("acquire local audio", ErrMediaUnavailable)
	}

	pc, err := s.setupPeer(gen, src)
	if err != nil {
		src.Close()
		return err
	}

	if err := pc.SetRemoteDescription(offer); err != nil {
		s.revert(gen, StateRinging)
		return newError("set remote description", err)
	}
	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		s.revert(gen, StateRinging)
		return newError("create answer", err)
	}
	if err := pc.SetLocalDescription(answer); err != nil {
		s.revert(gen, StateRinging)
		return newError("set local description", err)
	}

	s.mu.Lock()
	if s.gen != gen || s.state != StateRinging {
		s.mu.Unlock()
		return ErrCancelled
	}
	s.pendingOffer = nil
	s.state = StateConnected
	s.connectedAt = time.Now()
	s.mu.Unlock()

	s.notifyState(StateConnected)
	return s.signaler.SendCallAnswer(s.room, *pc.LocalDescription())
}

// Decline discards the pending offer and tells the caller, so they are
// not left ringing until their own patience runs out.
func (s *Session) Decline() error {
	s.mu.Lock()
	if s.state != StateRinging {
		s.mu.Unlock()
		return ErrNoPendingCall
	}
	src, pc, ctrl := s.detachLocked()
	s.state = StateIdle
	s.mu.Unlock()

	closeHandles(src, pc, ctrl)
	s.notifyState(StateIdle)
	return s.signaler.SendEndCall(s.room)
}

// HandleAnswer applies the remote answer to a call we initiated. An
// answer arriving in any other state is stale and dropped.
func (s *Session) HandleAnswer(answer webrtc.SessionDescription) {
	s.mu.Lock()
	if s.state != StateCalling || s.pc == nil {
		s.mu.Unlock()
		slog.Debug("dropping stale call answer")
		return
	}
	pc := s.pc
	gen := s.gen
	s.mu.Unlock()

	if err := pc.SetRemoteDescription(answer); err != nil {
		// Negotiation failure is not fatal; the session may stay stuck
		// until the user hangs up.
		slog.Debug("failed to apply answer", slog.Any("error", err))
		return
	}

	s.mu.Lock()
	if s.gen != gen || s.state != StateCalling {
		s.mu.Unlock()
		return
	}
	s.state = StateConnected
	s.connectedAt = time.Now()
	s.mu.Unlock()
	s.notifyState(StateConnected)
}

// HandleCandidate applies a relayed ICE candidate. Candidates arriving
// with no live peer connection (late, after teardown) are dropped.
func (s *Session) HandleCandidate(candidate webrtc.ICECandidateInit) {
	s.mu.Lock()
	pc := s.pc
	s.mu.Unlock()

	if pc == nil {
		slog.Debug("dropping candidate with no active peer connection")
		return
	}
	if err := pc.AddICECandidate(candidate); err != nil {
		slog.Debug("failed to add candidate", slog.Any("error", err))
	}
}

// HangUp ends the call from this side and broadcasts end_call. It also
// interrupts an in-flight negotiation: the next generation check after
// any pending async step will see the bump and unwind.
func (s *Session) HangUp() {
	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return
	}
	src, pc, ctrl := s.detachLocked()
	s.state = StateIdle
	s.mu.Unlock()

	closeHandles(src, pc, ctrl)
	s.notifyState(StateIdle)
	s.signaler.SendEndCall(s.room)
}

// HandleRemoteEnd tears the session down in reaction to a remote
// call_ended. It must not re-broadcast end_call; doing so would echo
// forever between the two peers.
func (s *Session) HandleRemoteEnd() {
	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return
	}
	src, pc, ctrl := s.detachLocked()
	s.state = StateIdle
	s.mu.Unlock()

	closeHandles(src, pc, ctrl)
	s.notifyState(StateIdle)
}

// ToggleMute flips the local mute flag and syncs it to the peer over the
// control channel. Returns the new state.
func (s *Session) ToggleMute() bool {
	s.mu.Lock()
	s.muted = !s.muted
	muted := s.muted
	ctrl := s.control
	s.mu.Unlock()

	if ctrl != nil {
		if err := ctrl.SendMute(muted); err != nil {
			slog.Debug("failed to sync mute state", slog.Any("error", err))
		}
	}
	return muted
}

// setupPeer creates the peer connection, attaches the local track and
// installs the ICE/track handlers, guarded by the generation snapshot.
func (s *Session) setupPeer(gen uint64, src media.Source) (*webrtc.PeerConnection, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: s.stun}},
	})
	if err != nil {
		s.revert(gen, s.State())
		return nil, newError("create peer connection", err)
	}

	s.mu.Lock()
	if s.gen != gen || (s.state != StateCalling && s.state != StateRinging) {
		s.mu.Unlock()
		pc.Close()
		return nil, ErrCancelled
	}
	s.pc = pc
	s.source = src
	s.mu.Unlock()

	if _, err := pc.AddTrack(src.Track()); err != nil {
		s.revert(gen, s.State())
		return nil, newError("attach local track", err)
	}
	if err := src.Start(); err != nil {
		s.revert(gen, s.State())
		return nil, newError("start local audio", err)
	}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		if s.generation() != gen {
			return
		}
		if err := s.signaler.SendCandidate(s.room, c.ToJSON()); err != nil {
			slog.Debug("failed to send candidate", slog.Any("error", err))
		}
	})

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		// Keep the remote stream drained; playout is the audio sink's
		// concern, not the state machine's.
		go drainTrack(track)
	})

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		if dc.Label() != ControlChannelLabel {
			return
		}
		s.adoptControl(gen, dc)
	})

	pc.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		slog.Debug("ice connection state", slog.String("state", state.String()))
	})

	return pc, nil
}

// adoptControl wires a control channel into the session unless the
// session has moved on since gen.
func (s *Session) adoptControl(gen uint64, dc *webrtc.DataChannel) {
	ctrl := NewControl(dc, func(muted bool) {
		if s.generation() != gen {
			return
		}
		if s.onRemoteMute != nil {
			s.onRemoteMute(muted)
		}
	})

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		ctrl.Close()
		return
	}
	s.control = ctrl
	s.mu.Unlock()
}

// revert rolls a failed transition back to idle, provided no concurrent
// event already moved the session elsewhere.
func (s *Session) revert(gen uint64, from State) {
	s.mu.Lock()
	if s.gen != gen || s.state != from {
		s.mu.Unlock()
		return
	}
	src, pc, ctrl := s.detachLocked()
	s.state = StateIdle
	s.mu.Unlock()

	closeHandles(src, pc, ctrl)
	s.notifyState(StateIdle)
}

// detachLocked removes ownership of all handles and bumps the
// generation, cancelling in-flight async steps. Callers close the
// returned handles after releasing the lock.
func (s *Session) detachLocked() (media.Source, *webrtc.PeerConnection, *Control) {
	s.gen++
	src, pc, ctrl := s.source, s.pc, s.control
	s.source, s.pc, s.control = nil, nil, nil
	s.pendingOffer = nil
	s.remoteUser = ""
	s.connectedAt = time.Time{}
	s.muted = false
	return src, pc, ctrl
}

func (s *Session) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Session) notifyState(state State) {
	if s.onState != nil {
		s.onState(state)
	}
}

func closeHandles(src media.Source, pc *webrtc.PeerConnection, ctrl *Control) {
	if ctrl != nil {
		ctrl.Close()
	}
	if src != nil {
		src.Close()
	}
	if pc != nil {
		pc.Close()
	}
}

func drainTrack(track *webrtc.TrackRemote) {
	buf := make([]byte, 1500)
	for {
		if _, _, err := track.Read(buf); err != nil {
			return
		}
	}
}
